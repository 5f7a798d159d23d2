package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/BarkinBalci/fall-event-service/internal/config"
)

// twilioAPI is the part of the Twilio REST API the provider uses
type twilioAPI interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
	FetchAccount(sid string) (*openapi.ApiV2010Account, error)
}

// TwilioProvider sends SMS through the Twilio messaging API.
// The SDK calls do not take a context, so each one is abandoned once the context expires.
type TwilioProvider struct {
	api        twilioAPI
	accountSID string
	from       string
}

// NewTwilioProvider creates a provider authenticated with the account SID and auth token
func NewTwilioProvider(cfg config.Twilio) *TwilioProvider {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &TwilioProvider{
		api:        client.Api,
		accountSID: cfg.AccountSID,
		from:       cfg.FromNumber,
	}
}

// Name returns the provider name
func (p *TwilioProvider) Name() string {
	return config.ProviderTwilio
}

// Verify fetches the account to confirm the credentials
func (p *TwilioProvider) Verify(ctx context.Context) error {
	account, err := call(ctx, func() (*openapi.ApiV2010Account, error) {
		return p.api.FetchAccount(p.accountSID)
	})
	if err != nil {
		return fmt.Errorf("failed to fetch Twilio account: %w", err)
	}
	if account == nil {
		return errors.New("twilio returned no account")
	}
	if account.Status != nil && *account.Status != "active" {
		return fmt.Errorf("twilio account is %s", *account.Status)
	}
	return nil
}

// Send creates one outbound message
func (p *TwilioProvider) Send(ctx context.Context, to, body string) (string, error) {
	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(p.from)
	params.SetBody(body)

	message, err := call(ctx, func() (*openapi.ApiV2010Message, error) {
		return p.api.CreateMessage(params)
	})
	if err != nil {
		return "", fmt.Errorf("failed to create Twilio message: %w", err)
	}
	if message == nil || message.Sid == nil {
		return "", errors.New("twilio returned no message sid")
	}

	return *message.Sid, nil
}
