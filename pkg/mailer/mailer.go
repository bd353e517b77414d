package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/ruwinya10/agrilink-backend/pkg/config"
	"github.com/ruwinya10/agrilink-backend/pkg/logger"
)

const (
	sendgridEndpoint = "https://api.sendgrid.com/v3/mail/send"
	requestTimeout   = 10 * time.Second
	initialBackoff   = 500 * time.Millisecond
)

// Message is a single outbound email.
type Message struct {
	ToEmail string
	ToName  string
	Subject string
	Body    string
}

// Mailer delivers transactional email. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type sendgridMailer struct {
	cfg      config.MailerConfig
	client   *http.Client
	endpoint string
	backoff  time.Duration
}

type noopMailer struct{}

func (noopMailer) Send(ctx context.Context, msg Message) error { return nil }

// New returns a SendGrid-backed mailer, or a no-op mailer when the API key
// or sender address is not configured.
func New(cfg config.MailerConfig) Mailer {
	if !cfg.Enabled() {
		return noopMailer{}
	}
	return &sendgridMailer{
		cfg:      cfg,
		client:   &http.Client{Timeout: requestTimeout},
		endpoint: sendgridEndpoint,
		backoff:  initialBackoff,
	}
}

type sendgridPersonalization struct {
	To []sendgridAddress `json:"to"`
}

type sendgridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendgridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendgridRequest struct {
	Personalizations []sendgridPersonalization `json:"personalizations"`
	From             sendgridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendgridContent         `json:"content"`
}

func (m *sendgridMailer) Send(ctx context.Context, msg Message) error {
	if msg.ToEmail == "" {
		return fmt.Errorf("recipient email is required")
	}

	payload, err := json.Marshal(sendgridRequest{
		Personalizations: []sendgridPersonalization{{
			To: []sendgridAddress{{Email: msg.ToEmail, Name: msg.ToName}},
		}},
		From:    sendgridAddress{Email: m.cfg.FromEmail, Name: m.cfg.FromName},
		Subject: msg.Subject,
		Content: []sendgridContent{{Type: "text/plain", Value: msg.Body}},
	})
	if err != nil {
		return fmt.Errorf("encoding mail payload: %w", err)
	}

	attempts := uint64(m.cfg.MaxAttempts)
	if attempts == 0 {
		attempts = 1
	}
	backoff := retry.WithMaxRetries(attempts-1, retry.NewFibonacci(m.backoff))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		return m.sendOnce(ctx, payload)
	})
}

func (m *sendgridMailer) sendOnce(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return retry.RetryableError(fmt.Errorf("sending mail: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return retry.RetryableError(fmt.Errorf("sendgrid responded %d: %s", resp.StatusCode, body))
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sendgrid responded %d: %s", resp.StatusCode, body)
	}
}

// SendAsync fires the message on a goroutine and logs the outcome. Callers
// use it after commit so mail failures never roll back business writes.
func SendAsync(logg *logger.Logger, m Mailer, msg Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := m.Send(ctx, msg); err != nil {
			logg.Error(logg.WithField(ctx, "to", msg.ToEmail), "email send failed", err)
		}
	}()
}
