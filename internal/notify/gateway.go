package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const alertTemplate = "ALERT: A person may have fallen! Device ID: %s, Alert type: %s. Please check immediately."

// Gateway sends fall alerts. It never returns an error; delivery is reported as a bool.
type Gateway interface {
	SendAlert(ctx context.Context, deviceID, alertType string) bool
	Available() bool
}

// SMSGateway sends alerts through a Provider to one recipient
type SMSGateway struct {
	provider  Provider
	recipient string
	timeout   time.Duration
	available bool
	log       *zap.Logger
}

// NewSMSGateway probes the provider once. A nil provider, an empty recipient
// or a failed probe leaves the gateway unavailable for its lifetime.
func NewSMSGateway(ctx context.Context, provider Provider, recipient string, timeout time.Duration, log *zap.Logger) *SMSGateway {
	g := &SMSGateway{
		provider:  provider,
		recipient: recipient,
		timeout:   timeout,
		log:       log,
	}

	switch {
	case provider == nil:
		log.Warn("SMS alerts disabled: no notification provider configured")
	case recipient == "":
		log.Warn("SMS alerts disabled: no emergency contact configured", zap.String("provider", provider.Name()))
	default:
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := provider.Verify(ctx); err != nil {
			log.Warn("SMS alerts disabled: provider check failed",
				zap.String("provider", provider.Name()),
				zap.Error(err))
			break
		}

		g.available = true
		log.Info("Connected to SMS provider", zap.String("provider", provider.Name()))
	}

	return g
}

// Available reports whether the provider passed the startup check
func (g *SMSGateway) Available() bool {
	return g.available
}

// Provider returns the provider name, empty when none is configured
func (g *SMSGateway) Provider() string {
	if g.provider == nil {
		return ""
	}
	return g.provider.Name()
}

// SendAlert notifies the emergency contact. It returns true only when the provider accepted the message.
func (g *SMSGateway) SendAlert(ctx context.Context, deviceID, alertType string) (delivered bool) {
	if !g.available {
		g.log.Info("SMS alert not sent: gateway unavailable", zap.String("device_id", deviceID))
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			g.log.Error("SMS provider panicked", zap.Any("panic", r), zap.String("device_id", deviceID))
			delivered = false
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	messageID, err := g.provider.Send(ctx, g.recipient, AlertMessage(deviceID, alertType))
	if err != nil {
		g.log.Error("Failed to send SMS alert",
			zap.String("provider", g.provider.Name()),
			zap.String("device_id", deviceID),
			zap.Error(err))
		return false
	}

	g.log.Info("SMS alert sent",
		zap.String("provider", g.provider.Name()),
		zap.String("message_id", messageID),
		zap.String("device_id", deviceID))
	return true
}

// AlertMessage renders the text sent to the emergency contact
func AlertMessage(deviceID, alertType string) string {
	return fmt.Sprintf(alertTemplate, deviceID, alertType)
}
