package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFileName(t *testing.T) {
	tests := []struct {
		msg  string
		want string
		ok   bool
	}{
		{"can you explain report_final.pdf for me", "report_final.pdf", true},
		{"what is the capital of france?", "", false},
		{"please unzip archive.zip", "", false},
		{"summarize week-3_slides.pptx", "week-3_slides.pptx", true},
		{"open deck.ppt now", "deck.ppt", true},
		{"notes.txt and essay.docx", "notes.txt", true},
		{"see my essay.docx.", "essay.docx", true},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			got, ok := DetectFileName(tt.msg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFileNameAfterLowercasing(t *testing.T) {
	got, ok := DetectFileName(strings.ToLower("Explain REPORT.PDF"))
	assert.True(t, ok)
	assert.Equal(t, "report.pdf", got)
}
