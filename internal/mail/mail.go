// Package mail delivers OTP codes to operators. Delivery is best-effort and
// fire-and-forget from the issuing side: a failed send is logged and does
// not invalidate the challenge, since the operator may still receive the
// code via a side channel.
package mail

import "context"

// Sender delivers a one-time code to the given email address.
type Sender interface {
	SendCode(ctx context.Context, email, code string) error
}
