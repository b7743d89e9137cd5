package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// codeAlphabet excludes glyphs that are easy to misread over the phone
// or from a printout (no 0/O, no 1/I). 32 symbols divide 256 evenly,
// so reducing a random byte modulo the alphabet stays uniform.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// VerificationCodeLength is the number of characters in an email
// verification code.
const VerificationCodeLength = 6

// GenerateVerificationCode draws each character independently from the
// code alphabet using a cryptographically secure source.
func GenerateVerificationCode() (string, error) {
	buf := make([]byte, VerificationCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

// GenerateResetToken returns a 128-bit random token rendered as hex.
func GenerateResetToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
