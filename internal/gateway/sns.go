package gateway

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSAPI is the slice of the SNS client the gateway uses, split out for
// mocking.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSGateway sends SMS through AWS SNS.
type SNSGateway struct {
	client SNSAPI
}

// NewSNSGateway loads the default AWS config for the region and wires the
// SNS client.
func NewSNSGateway(ctx context.Context, region string) (*SNSGateway, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SNSGateway{client: sns.NewFromConfig(cfg)}, nil
}

// NewSNSGatewayWithClient wires an existing client, used in tests.
func NewSNSGatewayWithClient(client SNSAPI) *SNSGateway {
	return &SNSGateway{client: client}
}

// Send publishes one SMS with the brand's sender ID attribute.
func (g *SNSGateway) Send(ctx context.Context, phoneNumber, text, senderID string) (*SendResult, error) {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(phoneNumber),
		Message:     aws.String(text),
	}
	if senderID != "" {
		input.MessageAttributes = map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(senderID),
			},
		}
	}

	out, err := g.client.Publish(ctx, input)
	if err != nil {
		return nil, &Error{Provider: "sns", Message: err.Error(), Err: err}
	}

	result := &SendResult{MessageID: "unknown", Status: "sent"}
	if out.MessageId != nil {
		result.MessageID = *out.MessageId
	}
	return result, nil
}
