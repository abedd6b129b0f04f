// Package keymask implements the reversible transform applied to API keys in
// transit by legacy clients. A passphrase is reduced to a single shift value
// and applied per byte over the hex-encoded key. The key space is tiny: this
// is transport masking for compatibility with already-issued keys, not
// security.
package keymask

import (
	"encoding/hex"
	"fmt"
)

// Shift reduces a passphrase to its shift value by summing letter positions
// (A=1 … Z=26, case-insensitive). Non-letter characters are ignored.
func Shift(passphrase string) int {
	sum := 0
	for _, r := range passphrase {
		switch {
		case r >= 'a' && r <= 'z':
			sum += int(r-'a') + 1
		case r >= 'A' && r <= 'Z':
			sum += int(r-'A') + 1
		}
	}
	return sum
}

// Mask obfuscates a hex-encoded key by adding the passphrase shift to each
// byte, mod 256. The input must be an even-length hex string.
func Mask(key, passphrase string) (string, error) {
	return transform(key, Shift(passphrase))
}

// Unmask recovers the original hex-encoded key from its masked form. It is
// the exact inverse of Mask under the same passphrase.
func Unmask(key, passphrase string) (string, error) {
	return transform(key, -Shift(passphrase))
}

func transform(key string, shift int) (string, error) {
	raw, err := hex.DecodeString(key)
	if err != nil {
		return "", fmt.Errorf("keymask: key is not valid hex: %w", err)
	}
	delta := shift % 256
	if delta < 0 {
		delta += 256
	}
	out := make([]byte, len(raw))
	for i, b := range raw {
		out[i] = byte((int(b) + delta) % 256)
	}
	return hex.EncodeToString(out), nil
}
