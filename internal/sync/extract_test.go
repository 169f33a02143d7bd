package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"applysync/internal/domain"
)

func TestExtractSourceApplicationID(t *testing.T) {
	tests := []struct {
		name   string
		detail domain.ApplicantDetail
		want   string
	}{
		{
			name:   "source field",
			detail: domain.ApplicantDetail{Source: "startupJobsId: a1"},
			want:   "a1",
		},
		{
			name: "comment",
			detail: domain.ApplicantDetail{
				Source:   "Website",
				Comments: domain.Comments{{Text: "called back"}, {Text: " startupJobsId: 77 "}},
			},
			want: "77",
		},
		{
			name: "source wins over comment",
			detail: domain.ApplicantDetail{
				Source:   "startupJobsId: new",
				Comments: domain.Comments{{Text: "startupJobsId: old"}},
			},
			want: "new",
		},
		{
			name:   "prefix without id",
			detail: domain.ApplicantDetail{Source: "startupJobsId: "},
			want:   "",
		},
		{
			name:   "untagged",
			detail: domain.ApplicantDetail{Source: "LinkedIn"},
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSourceApplicationID(tt.detail))
		})
	}
}
