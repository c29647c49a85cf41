package mailer

import (
	"context"
	"fmt"
	"log"
	"os"
)

// LogMailer is the dev fallback when no SMTP host is configured: the code
// is written to the log instead of delivered.
type LogMailer struct{}

func NewLogMailer() *LogMailer { return &LogMailer{} }

func (n *LogMailer) SendOTP(ctx context.Context, in SendOTPInput) error {
	// simulate a provider outage for manual testing
	if os.Getenv("MAILER_FAIL") == "1" {
		return fmt.Errorf("provider down (simulated)")
	}

	log.Printf("mail.otp email=%s code=%s", in.Email, in.Code)
	return nil
}
