package contacts_test

import (
	"testing"

	contacts "github.com/goliatone/go-contacts"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase passthrough", "person@example.com", "person@example.com"},
		{"mixed case", "Person@Example.COM", "person@example.com"},
		{"surrounding whitespace", "  person@example.com \n", "person@example.com"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, contacts.NormalizeEmail(tt.input))
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"valid US number", "(650) 253-0000", "+16502530000"},
		{"already E.164", "+16502530000", "+16502530000"},
		{"free form stays as typed", "555-1111", "555-1111"},
		{"nonsense stays as typed", "call me maybe", "call me maybe"},
		{"whitespace trimmed", "  555-1111 ", "555-1111"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, contacts.NormalizePhone(tt.input, "US"))
		})
	}
}
