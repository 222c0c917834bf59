package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRoomCodeLengthAndAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := GenerateRoomCode(6)
		assert.Len(t, code, 6)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, c), "unexpected glyph %q in %s", c, code)
		}
	}
}

func TestGenerateRoomCodeAvoidsAmbiguousGlyphs(t *testing.T) {
	for _, banned := range "0O1I" {
		assert.False(t, strings.ContainsRune(codeAlphabet, banned))
	}
}

func TestClampTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		ts    int64
		maxMs int64
		want  int64
	}{
		{"in range", 5000, 180_000, 5000},
		{"negative", -1, 180_000, 0},
		{"over max", 200_000, 180_000, 180_000},
		{"at zero", 0, 180_000, 0},
		{"at max", 180_000, 180_000, 180_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampTimestamp(tt.ts, tt.maxMs))
		})
	}
}
