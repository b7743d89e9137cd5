package domain

import "time"

// EmailVerification is a short-lived single-use code proving ownership
// of an email address. At most one unused row may exist per email;
// issuing a new code removes the previous unused ones.
type EmailVerification struct {
	ID        string
	Email     string
	Code      string
	Used      bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// PasswordResetToken is a single-use random token mailed as a link.
type PasswordResetToken struct {
	ID        string
	Email     string
	Token     string
	Used      bool
	CreatedAt time.Time
	ExpiresAt time.Time
}
