package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEmailDomain(t *testing.T) {
	d, err := ExtractEmailDomain("student@mit.edu")
	assert.NoError(t, err)
	assert.Equal(t, "mit.edu", d)

	_, err = ExtractEmailDomain("no-at-sign")
	assert.Error(t, err)
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("a@b.edu"))
	assert.True(t, IsValidEmail("first.last@cs.cmu.edu"))
	assert.False(t, IsValidEmail("spaces in@mit.edu"))
	assert.False(t, IsValidEmail("missing-domain@"))
	assert.False(t, IsValidEmail(""))
}

func TestIsInstitutionalEmail(t *testing.T) {
	assert.True(t, IsInstitutionalEmail("student@mit.edu"))
	assert.True(t, IsInstitutionalEmail("student@cs.berkeley.edu"))
	assert.False(t, IsInstitutionalEmail("someone@gmail.com"))
	assert.False(t, IsInstitutionalEmail("edu@gmail.com"))
}
