package sync

import (
	"net/url"
	"strings"
	"time"

	"applysync/internal/ats/util"
	"applysync/internal/domain"
)

const (
	// SourceIDPrefix tags the source application id inside destination
	// records; the reconciler parses it back out.
	SourceIDPrefix = "startupJobsId: "

	NoLastName = "[NO LAST NAME PROVIDED]"

	freeTextNotePrefix   = "Startup jobs note: "
	attachmentNotePrefix = "Startup jobs attachment links: "

	applyDateLayout = "2006-01-02"
)

var resumeExtensions = []string{".pdf", ".doc", ".docx", ".rtf", ".odt", ".txt"}

// SplitName returns the first whitespace-delimited token as the given name
// and the rest, space-joined, as the family name.
func SplitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", NoLastName
	}
	if len(parts) == 1 {
		return parts[0], NoLastName
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// ApplyDate renders a source timestamp as YYYY-MM-DD in the offset the source
// gave it. An unparseable timestamp falls back to its leading date, if any.
func ApplyDate(createdAt string) string {
	t, err := domain.ParseCreatedAt(createdAt)
	if err == nil {
		return t.Format("2006-01-02")
	}
	raw := strings.TrimSpace(createdAt)
	if len(raw) < len(applyDateLayout) {
		return ""
	}
	if _, err := time.Parse(applyDateLayout, raw[:len(applyDateLayout)]); err != nil {
		return ""
	}
	return raw[:len(applyDateLayout)]
}

func SourceTag(sourceApplicationID string) string {
	return SourceIDPrefix + sourceApplicationID
}

// ResumeCandidateURL returns the first attachment that looks like a document,
// or "" when there is none.
func ResumeCandidateURL(app domain.SourceApplication) string {
	if i := resumeIndex(app.Attachments); i >= 0 {
		return app.Attachments[i].URL
	}
	return ""
}

func resumeIndex(attachments []domain.Attachment) int {
	for i, a := range attachments {
		if isDocumentURL(a.URL) {
			return i
		}
	}
	return -1
}

func isDocumentURL(raw string) bool {
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}
	p = strings.ToLower(p)
	for _, ext := range resumeExtensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

// ToNotes derives the follow-up notes for app: its free-text note, then one
// note listing every attachment that is not the resume.
func ToNotes(app domain.SourceApplication) []string {
	var notes []string
	if strings.TrimSpace(app.Notes) != "" {
		notes = append(notes, freeTextNotePrefix+app.Notes)
	}

	skip := resumeIndex(app.Attachments)
	var links []string
	for i, a := range app.Attachments {
		if i == skip {
			continue
		}
		links = append(links, a.URL)
	}
	if len(links) > 0 {
		notes = append(notes, attachmentNotePrefix+strings.Join(links, ",\n"))
	}
	return notes
}

// ToDestinationPayload maps app onto the destination's creation body.
// resume is the encoded resume, or "" when there is none.
func ToDestinationPayload(app domain.SourceApplication, slotID, resume string) domain.ApplicantPayload {
	first, last := SplitName(app.Name)
	return domain.ApplicantPayload{
		FirstName:    first,
		LastName:     last,
		Email:        app.Email,
		ApplyDate:    ApplyDate(app.CreatedAt),
		Phone:        app.Phone,
		Linkedin:     app.LinkedinURL,
		CoverLetter:  util.HTMLToText(app.CoverLetterHTML),
		Job:          slotID,
		Source:       SourceTag(app.ID),
		Base64Resume: resume,
	}
}
