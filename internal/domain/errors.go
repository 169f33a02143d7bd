package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ResolvableError is a destination failure reported through the inline
// `_error` field of an otherwise successful response. Such failures are safe
// to retry on a later run.
type ResolvableError struct {
	Message string
}

func (e *ResolvableError) Error() string {
	return "destination rejected request: " + e.Message
}

// IsResolvable reports whether err carries a *ResolvableError and returns it.
func IsResolvable(err error) (*ResolvableError, bool) {
	var re *ResolvableError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

type TransferStage string

const (
	StageCreateApplicant TransferStage = "CREATE_APPLICANT"
	StageCreateNote      TransferStage = "CREATE_NOTE"
)

// TransferError is a queued, replayable submission failure.
//
// A CreateApplicant error's Payload is a complete ApplicantPayload and Notes
// holds the follow-up notes still owed once it succeeds. A CreateNote error's
// Payload is a NotePayload carrying the already-created applicant id.
type TransferError struct {
	Type    TransferStage   `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Notes   []string        `json:"notes,omitempty"`
	Message string          `json:"message"`
}

func NewApplicantError(p ApplicantPayload, notes []string, message string) (TransferError, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return TransferError{}, fmt.Errorf("marshal applicant payload: %w", err)
	}
	return TransferError{Type: StageCreateApplicant, Payload: raw, Notes: notes, Message: message}, nil
}

func NewNoteError(p NotePayload, message string) (TransferError, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return TransferError{}, fmt.Errorf("marshal note payload: %w", err)
	}
	return TransferError{Type: StageCreateNote, Payload: raw, Message: message}, nil
}

func (e TransferError) ApplicantPayload() (ApplicantPayload, error) {
	var p ApplicantPayload
	if e.Type != StageCreateApplicant {
		return p, fmt.Errorf("transfer error type %q has no applicant payload", e.Type)
	}
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return p, fmt.Errorf("decode applicant payload: %w", err)
	}
	return p, nil
}

func (e TransferError) NotePayload() (NotePayload, error) {
	var p NotePayload
	if e.Type != StageCreateNote {
		return p, fmt.Errorf("transfer error type %q has no note payload", e.Type)
	}
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return p, fmt.Errorf("decode note payload: %w", err)
	}
	return p, nil
}
