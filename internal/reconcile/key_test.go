package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupKey(t *testing.T) {
	base := DedupKey("Flaky Tests", []string{"Ana", "Bia"}, "ed1")

	tests := []struct {
		name    string
		title   string
		authors []string
		edition string
		same    bool
	}{
		{"identical", "Flaky Tests", []string{"Ana", "Bia"}, "ed1", true},
		{"author order", "Flaky Tests", []string{"Bia", "Ana"}, "ed1", true},
		{"case and spacing", "  FLAKY\ttests ", []string{"ana", " BIA "}, "ed1", true},
		{"repeated author", "Flaky Tests", []string{"Ana", "Bia", "ana"}, "ed1", true},
		{"other edition", "Flaky Tests", []string{"Ana", "Bia"}, "ed2", false},
		{"other title", "Flaky Test", []string{"Ana", "Bia"}, "ed1", false},
		{"extra author", "Flaky Tests", []string{"Ana", "Bia", "Caio"}, "ed1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DedupKey(tt.title, tt.authors, tt.edition)
			assert.Equal(t, tt.same, got == base)
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Efficient  File\tSystems", "efficient file systems"},
		{"\ufb01ne tuning", "fine tuning"},
		{"Sa\u0303o Paulo", "são paulo"},
		{"  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}
