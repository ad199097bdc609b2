package gateway

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSNS struct {
	input *sns.PublishInput
	out   *sns.PublishOutput
	err   error
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.input = params
	return m.out, m.err
}

func TestSNSGateway_Send(t *testing.T) {
	mock := &mockSNS{out: &sns.PublishOutput{MessageId: aws.String("sns-msg-1")}}
	g := NewSNSGatewayWithClient(mock)

	result, err := g.Send(context.Background(), "+447700900123", "Your order is ready.", "B&Q")
	require.NoError(t, err)
	assert.Equal(t, "sns-msg-1", result.MessageID)
	assert.Equal(t, "sent", result.Status)

	require.NotNil(t, mock.input)
	assert.Equal(t, "+447700900123", aws.ToString(mock.input.PhoneNumber))
	assert.Equal(t, "Your order is ready.", aws.ToString(mock.input.Message))

	attr, ok := mock.input.MessageAttributes["AWS.SNS.SMS.SenderID"]
	require.True(t, ok)
	assert.Equal(t, "B&Q", aws.ToString(attr.StringValue))
}

func TestSNSGateway_Send_NoSenderID(t *testing.T) {
	mock := &mockSNS{out: &sns.PublishOutput{MessageId: aws.String("sns-msg-2")}}
	g := NewSNSGatewayWithClient(mock)

	_, err := g.Send(context.Background(), "+447700900123", "text", "")
	require.NoError(t, err)
	assert.Empty(t, mock.input.MessageAttributes)
}

func TestSNSGateway_Send_PublishFails(t *testing.T) {
	mock := &mockSNS{err: fmt.Errorf("throttled")}
	g := NewSNSGatewayWithClient(mock)

	result, err := g.Send(context.Background(), "+447700900123", "text", "B&Q")
	assert.Nil(t, result)

	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "sns", gwErr.Provider)
}
