// Package notify delivers fall alerts by SMS to the single emergency contact.
package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/BarkinBalci/fall-event-service/internal/config"
)

// ErrNotConfigured is returned when the selected provider has no credentials
var ErrNotConfigured = errors.New("notification provider is not configured")

// Provider sends one text message through an external SMS service
type Provider interface {
	// Name identifies the provider in logs and status output
	Name() string

	// Send delivers body to the phone number and returns the provider message id
	Send(ctx context.Context, to, body string) (string, error)

	// Verify checks that the provider accepts the configured credentials
	Verify(ctx context.Context) error
}

// NewProvider builds the provider selected by NOTIFICATION_PROVIDER
func NewProvider(ctx context.Context, cfg *config.Config, log *zap.Logger) (Provider, error) {
	switch cfg.Notification.Provider {
	case config.ProviderTwilio:
		if cfg.Twilio.AccountSID == "" || cfg.Twilio.AuthToken == "" || cfg.Twilio.FromNumber == "" {
			return nil, ErrNotConfigured
		}
		return NewTwilioProvider(cfg.Twilio), nil
	case config.ProviderSNS:
		provider, err := NewSNSProvider(ctx, cfg.SNS, log)
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported notification provider: %s", cfg.Notification.Provider)
	}
}

// call runs fn in its own goroutine and gives up when ctx is done.
// A panic inside fn is reported as an error.
func call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}

	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				done <- result{value: zero, err: fmt.Errorf("provider panic: %v", r)}
			}
		}()
		value, err := fn()
		done <- result{value: value, err: err}
	}()

	select {
	case res := <-done:
		return res.value, res.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
