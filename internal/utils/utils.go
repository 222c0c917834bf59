package utils

import (
	"crypto/rand"
	"math/big"
)

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// Room code alphabet excludes 0/O/1/I so codes survive being read aloud.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateRoomCode returns an uppercase code of the given length.
func GenerateRoomCode(length int) string {
	code := make([]byte, length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken;
			// fall back to a fixed glyph rather than panic mid-join.
			code[i] = codeAlphabet[0]
			continue
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code)
}

// ClampTimestamp bounds a client-reported timestamp into [0, maxMs].
// Client clocks are trusted only up to this clamp.
func ClampTimestamp(ts, maxMs int64) int64 {
	if ts < 0 {
		return 0
	}
	if ts > maxMs {
		return maxMs
	}
	return ts
}
