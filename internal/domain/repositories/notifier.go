package repositories

import "context"

// Notifier delivers a verification code to a phone.
type Notifier interface {
	Send(ctx context.Context, phone, code string) error
}
