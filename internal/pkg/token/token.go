// Package token generates opaque confirmation tokens.
package token

import (
	"crypto/rand"
	"encoding/hex"
)

// New returns a 32-character hex token from 16 random bytes. The token
// carries no structure: it is not derived from the subscriber's email,
// a timestamp, or a counter. An unreadable entropy source is fatal.
func New() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("token: entropy source unavailable: " + err.Error())
	}
	return hex.EncodeToString(b)
}
