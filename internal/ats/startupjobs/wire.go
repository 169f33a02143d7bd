package startupjobs

import (
	"bytes"
	"encoding/json"
	"strings"

	"applysync/internal/domain"
)

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type offerName struct {
	Name string `json:"name"`
}

// The listing endpoint names offer titles `names`, the detail endpoint `name`.
type wireOffer struct {
	Names []offerName `json:"names"`
	Name  []offerName `json:"name"`
}

func (o *wireOffer) title() string {
	if o == nil {
		return ""
	}
	for _, list := range [][]offerName{o.Names, o.Name} {
		if len(list) > 0 {
			return list[0].Name
		}
	}
	return ""
}

type wireApplication struct {
	ID        flexString `json:"id"`
	CreatedAt string     `json:"created_at"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Linkedin  *struct {
		URL string `json:"url"`
	} `json:"linkedin"`
	Text        string     `json:"text"`
	Notes       string     `json:"notes"`
	Offer       *wireOffer `json:"offer"`
	Attachments []struct {
		URL string `json:"url"`
	} `json:"attachments"`
}

func (w wireApplication) toDomain() domain.SourceApplication {
	app := domain.SourceApplication{
		ID:              strings.TrimSpace(string(w.ID)),
		CreatedAt:       strings.TrimSpace(w.CreatedAt),
		Name:            w.Name,
		Email:           w.Email,
		Phone:           w.Phone,
		CoverLetterHTML: w.Text,
		OfferTitle:      w.Offer.title(),
		Notes:           w.Notes,
	}
	if w.Linkedin != nil {
		app.LinkedinURL = w.Linkedin.URL
	}
	for _, a := range w.Attachments {
		if u := strings.TrimSpace(a.URL); u != "" {
			app.Attachments = append(app.Attachments, domain.Attachment{URL: u})
		}
	}
	return app
}
