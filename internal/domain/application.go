package domain

import (
	"fmt"
	"strings"
	"time"
)

// SourceApplication is one candidate as the source platform reports it.
type SourceApplication struct {
	ID              string       `json:"id"`
	CreatedAt       string       `json:"created_at"`
	Name            string       `json:"name"`
	Email           string       `json:"email"`
	Phone           string       `json:"phone"`
	LinkedinURL     string       `json:"linkedin_url"`
	CoverLetterHTML string       `json:"cover_letter_html"`
	OfferTitle      string       `json:"offer_title"`
	Notes           string       `json:"notes,omitempty"`
	Attachments     []Attachment `json:"attachments"`
}

type Attachment struct {
	URL string `json:"url"`
}

// createdLayouts are tried in order; the first is what the source API emits.
var createdLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseCreatedAt parses a source timestamp. Offsets, when present, are kept
// as given rather than converted.
func ParseCreatedAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized created_at %q", raw)
}

// Created returns the parsed CreatedAt, or the zero time if it cannot be parsed.
func (a SourceApplication) Created() time.Time {
	t, _ := ParseCreatedAt(a.CreatedAt)
	return t
}
