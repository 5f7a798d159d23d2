package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.uber.org/zap"

	"github.com/BarkinBalci/fall-event-service/internal/config"
)

// snsAPI is the part of the SNS client the provider uses
type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	GetSMSAttributes(ctx context.Context, params *sns.GetSMSAttributesInput, optFns ...func(*sns.Options)) (*sns.GetSMSAttributesOutput, error)
}

// SNSProvider sends SMS by publishing directly to a phone number through AWS SNS
type SNSProvider struct {
	client   snsAPI
	senderID string
}

// NewSNSProvider creates an SNS provider from the default AWS credential chain.
// A configured endpoint switches to static dummy credentials for local development.
func NewSNSProvider(ctx context.Context, cfg config.SNS, log *zap.Logger) (*SNSProvider, error) {
	configOpts := []func(*awsConfig.LoadOptions) error{
		awsConfig.WithRegion(cfg.Region),
	}

	var clientOpts []func(*sns.Options)

	if cfg.Endpoint != "" {
		log.Info("Configuring SNS for local development", zap.String("endpoint", cfg.Endpoint))
		configOpts = append(configOpts,
			awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("dummy", "dummy", "")))

		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Info("SNS client created", zap.String("region", cfg.Region))

	return &SNSProvider{
		client:   sns.NewFromConfig(awsCfg, clientOpts...),
		senderID: cfg.SenderID,
	}, nil
}

// Name returns the provider name
func (p *SNSProvider) Name() string {
	return config.ProviderSNS
}

// Verify reads the account SMS attributes to confirm credentials and permissions
func (p *SNSProvider) Verify(ctx context.Context) error {
	if _, err := p.client.GetSMSAttributes(ctx, &sns.GetSMSAttributesInput{}); err != nil {
		return fmt.Errorf("failed to read SNS SMS attributes: %w", err)
	}
	return nil
}

// Send publishes a transactional SMS to the phone number
func (p *SNSProvider) Send(ctx context.Context, to, body string) (string, error) {
	attributes := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		},
	}
	if p.senderID != "" {
		attributes["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(p.senderID),
		}
	}

	output, err := p.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(to),
		Message:           aws.String(body),
		MessageAttributes: attributes,
	})
	if err != nil {
		return "", fmt.Errorf("failed to publish SNS message: %w", err)
	}
	if output.MessageId == nil {
		return "", errors.New("SNS returned no message id")
	}

	return *output.MessageId, nil
}
