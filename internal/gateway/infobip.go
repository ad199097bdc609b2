package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"sms-notifier/internal/common/logger"
)

const infobipSendPath = "/sms/3/messages"

// InfobipClient sends SMS through the Infobip messaging API.
type InfobipClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        logger.Logger
}

// NewInfobipClient creates a client. The overall client timeout is a safety
// net; per-attempt deadlines come from the dispatcher's context.
func NewInfobipClient(baseURL, apiKey string, timeout time.Duration, log logger.Logger) *InfobipClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &InfobipClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.WithFields(map[string]interface{}{"gateway": "infobip"}),
	}
}

type infobipDestination struct {
	To string `json:"to"`
}

type infobipContent struct {
	Text string `json:"text"`
}

type infobipMessage struct {
	From         string               `json:"from"`
	Destinations []infobipDestination `json:"destinations"`
	Content      infobipContent       `json:"content"`
}

type infobipRequest struct {
	Messages []infobipMessage `json:"messages"`
}

type infobipResponse struct {
	Messages []struct {
		MessageID string `json:"messageId"`
		Status    struct {
			Name string `json:"name"`
		} `json:"status"`
	} `json:"messages"`
}

// Send posts one message. Non-2xx responses and transport errors map to
// *Error so the dispatcher treats them as retryable failures.
func (c *InfobipClient) Send(ctx context.Context, phoneNumber, text, senderID string) (*SendResult, error) {
	formatted := FormatPhoneNumber(phoneNumber)

	payload := infobipRequest{
		Messages: []infobipMessage{{
			From:         senderID,
			Destinations: []infobipDestination{{To: formatted}},
			Content:      infobipContent{Text: text},
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Provider: "infobip", Message: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+infobipSendPath, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Provider: "infobip", Message: "build request", Err: err}
	}
	req.Header.Set("Authorization", "App "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug("calling Infobip API", map[string]interface{}{
		"to": formatted, "sender": senderID,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Provider: "infobip", Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.log.Error("Infobip API call failed", map[string]interface{}{
			"statusCode": resp.StatusCode,
			"response":   string(detail),
			"to":         formatted,
			"sender":     senderID,
		})
		return nil, &Error{
			Provider:   "infobip",
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(detail)),
		}
	}

	var parsed infobipResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &Error{Provider: "infobip", Message: "decode response", Err: err}
	}

	result := &SendResult{MessageID: "unknown", Status: "unknown"}
	if len(parsed.Messages) > 0 {
		if parsed.Messages[0].MessageID != "" {
			result.MessageID = parsed.Messages[0].MessageID
		}
		if parsed.Messages[0].Status.Name != "" {
			result.Status = parsed.Messages[0].Status.Name
		}
	}
	return result, nil
}

// FormatPhoneNumber strips non-digits and rewrites national numbers with a
// leading 0 to international form: 11 digits as UK (44), 10 digits as
// Poland (48). Anything else passes through cleaned.
func FormatPhoneNumber(phoneNumber string) string {
	var b strings.Builder
	for _, r := range phoneNumber {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if strings.HasPrefix(cleaned, "0") {
		switch len(cleaned) {
		case 11:
			return "44" + cleaned[1:]
		case 10:
			return "48" + cleaned[1:]
		}
	}
	return cleaned
}
