package mail

import (
	"context"
	"log"
)

// DevSender prints the code to the process log instead of sending email.
// Used when no relay is configured outside production, so an issued code is
// never silently dropped during development.
type DevSender struct{}

// SendCode logs the code. Never use in production.
func (DevSender) SendCode(ctx context.Context, email, code string) error {
	log.Printf("[DEV] OTP for %s: %s", email, code)
	return nil
}
