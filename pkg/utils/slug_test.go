package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Harvard University", "harvard-university"},
		{"punctuation", "University of California, Berkeley", "university-of-california-berkeley"},
		{"extra whitespace", "  Gatech   University  ", "gatech-university"},
		{"trailing punctuation", "Agora!", "agora"},
		{"digits", "Area 51 College", "area-51-college"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}
