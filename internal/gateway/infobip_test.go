package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sms-notifier/internal/common/logger"
)

func TestFormatPhoneNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"UK national to international", "07700900123", "447700900123"},
		{"already international", "447700900123", "447700900123"},
		{"formatting characters stripped", "+44 7700 900-123", "447700900123"},
		{"national with spaces", "07700 900123", "447700900123"},
		{"PL national to international", "0889403808", "48889403808"},
		{"short number untouched", "12345", "12345"},
		{"leading zero but neither 10 nor 11 digits", "077009001", "077009001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatPhoneNumber(tt.input))
		})
	}
}

func TestInfobipClient_Send(t *testing.T) {
	var captured struct {
		path   string
		auth   string
		body   infobipRequest
		called bool
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.called = true
		captured.path = r.URL.Path
		captured.auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages":[{"messageId":"msg-1","status":{"name":"PENDING_ACCEPTED"}}]}`))
	}))
	defer srv.Close()

	c := NewInfobipClient(srv.URL, "secret-key", time.Second, logger.NewTestLogger(t))
	result, err := c.Send(context.Background(), "07700900123", "Your order is ready.", "B&Q")
	require.NoError(t, err)

	assert.True(t, captured.called)
	assert.Equal(t, "/sms/3/messages", captured.path)
	assert.Equal(t, "App secret-key", captured.auth)
	require.Len(t, captured.body.Messages, 1)
	msg := captured.body.Messages[0]
	assert.Equal(t, "B&Q", msg.From)
	require.Len(t, msg.Destinations, 1)
	assert.Equal(t, "447700900123", msg.Destinations[0].To)
	assert.Equal(t, "Your order is ready.", msg.Content.Text)

	assert.Equal(t, "msg-1", result.MessageID)
	assert.Equal(t, "PENDING_ACCEPTED", result.Status)
}

func TestInfobipClient_Send_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"requestError":"temporarily unavailable"}`))
	}))
	defer srv.Close()

	c := NewInfobipClient(srv.URL, "secret-key", time.Second, logger.NewTestLogger(t))
	result, err := c.Send(context.Background(), "07700900123", "text", "B&Q")
	assert.Nil(t, result)

	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "infobip", gwErr.Provider)
	assert.Equal(t, http.StatusServiceUnavailable, gwErr.StatusCode)
	assert.Contains(t, gwErr.Message, "temporarily unavailable")
}

func TestInfobipClient_Send_RespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server notices the client disconnect and the
		// context fires; otherwise the handler (and srv.Close) hang forever.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewInfobipClient(srv.URL, "secret-key", 10*time.Second, logger.NewTestLogger(t))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Send(ctx, "07700900123", "text", "B&Q")
	require.Error(t, err)
	var gwErr *Error
	assert.ErrorAs(t, err, &gwErr)
}

func TestInfobipClient_Send_EmptyResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"messages":[]}`))
	}))
	defer srv.Close()

	c := NewInfobipClient(srv.URL, "secret-key", time.Second, logger.NewTestLogger(t))
	result, err := c.Send(context.Background(), "07700900123", "text", "B&Q")
	require.NoError(t, err)
	assert.Equal(t, "unknown", result.MessageID)
	assert.Equal(t, "unknown", result.Status)
}
