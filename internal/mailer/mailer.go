// Package mailer delivers one-time codes to the user's registered email
// address. Delivery failures surface as a single error to the caller; the
// gate has no retry path, the user simply requests a new code.
package mailer

import "context"

type SendOTPInput struct {
	Email string
	Name  string
	Code  string
}

type Mailer interface {
	SendOTP(ctx context.Context, in SendOTPInput) error
}
