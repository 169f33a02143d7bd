package domain

import (
	"encoding/json"
	"strings"
)

// Slot is a destination job posting that can receive applicants.
type Slot struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// CrossReference links a destination applicant to a slot.
type CrossReference struct {
	ID          string `json:"id"`
	ApplicantID string `json:"applicant_id"`
	SlotID      string `json:"job_id"`
}

type Comment struct {
	Text string `json:"text"`
}

// Comments accepts either a single comment object or a list of them; the
// destination returns whichever shape matches the comment count.
type Comments []Comment

func (c *Comments) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	switch {
	case trimmed == "" || trimmed == "null" || trimmed == `""`:
		*c = nil
		return nil
	case strings.HasPrefix(trimmed, "["):
		var list []Comment
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*c = list
		return nil
	default:
		var one Comment
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*c = Comments{one}
		return nil
	}
}

// ApplicantDetail is the subset of a destination applicant record the
// reconciler needs.
type ApplicantDetail struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	ApplyDate string   `json:"apply_date"`
	Source    string   `json:"source"`
	Comments  Comments `json:"comments"`
}

// ApplicantPayload is the destination's applicant creation body.
type ApplicantPayload struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	ApplyDate    string `json:"apply_date"`
	Phone        string `json:"phone"`
	Linkedin     string `json:"linkedin"`
	CoverLetter  string `json:"coverletter"`
	Job          string `json:"job"`
	Source       string `json:"source"`
	Base64Resume string `json:"base64-resume,omitempty"`
}

// NotePayload is the destination's note creation body, minus credentials.
type NotePayload struct {
	ApplicantID string `json:"applicant_id"`
	Contents    string `json:"contents"`
	UserID      string `json:"user_id,omitempty"`
	Security    int    `json:"security,omitempty"`
}
