package sync

import (
	"strings"

	"applysync/internal/domain"
)

// idStrategy pulls the tagged source application id out of one
// representation of a destination applicant.
type idStrategy struct {
	name    string
	extract func(domain.ApplicantDetail) (string, bool)
}

// sourceIDStrategies are tried in order. Records created by this tool carry
// the tag in `source`; older ones carry it in a comment.
var sourceIDStrategies = []idStrategy{
	{name: "source", extract: func(d domain.ApplicantDetail) (string, bool) {
		return parseTaggedID(d.Source)
	}},
	{name: "comment", extract: func(d domain.ApplicantDetail) (string, bool) {
		for _, c := range d.Comments {
			if id, ok := parseTaggedID(c.Text); ok {
				return id, true
			}
		}
		return "", false
	}},
}

// ExtractSourceApplicationID returns the tagged source id carried by d, or
// "" if none of the known representations has one.
func ExtractSourceApplicationID(d domain.ApplicantDetail) string {
	for _, s := range sourceIDStrategies {
		if id, ok := s.extract(d); ok {
			return id
		}
	}
	return ""
}

func parseTaggedID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, SourceIDPrefix) {
		return "", false
	}
	id := strings.TrimSpace(strings.TrimPrefix(s, SourceIDPrefix))
	return id, id != ""
}
