package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTravelRelated(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"duration lead", "3 days in Tokyo", true},
		{"duration lead with weeks", "2 weeks to Iceland", true},
		{"keyword hit", "I want a beach vacation", true},
		{"single keyword suffices", "any good hotel recommendations", true},
		{"road trip keyword", "road trip along the coast", true},
		{"groceries", "buy groceries", false},
		{"arithmetic", "calculate 2+2", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTravelRelated(tt.text))
		})
	}
}
