// Package notify delivers transactional email through the Brevo API.
package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Attachment is a named binary payload attached to a message.
type Attachment struct {
	Name    string
	Content []byte
}

// Message is one outbound email.
type Message struct {
	To          string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

// Notifier sends an email with optional attachments.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// BrevoConfig configures the Brevo client.
type BrevoConfig struct {
	BaseURL       string
	APIKey        string
	SenderName    string
	SenderEmail   string
	RatePerSecond float64
	Burst         int
}

// BrevoClient calls the Brevo transactional email endpoint. Outbound sends
// are rate limited so a burst of bookings cannot trip the provider's quota.
type BrevoClient struct {
	cfg        BrevoConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// NewBrevoClient constructs a client; rate and burst fall back to 5/10.
func NewBrevoClient(cfg BrevoConfig, log zerolog.Logger) *BrevoClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.brevo.com"
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}
	return &BrevoClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		log:        log.With().Str("component", "notify").Logger(),
	}
}

type brevoRecipient struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoAttachment struct {
	Name    string `json:"name"`
	Content string `json:"content"` // base64
}

type brevoEmail struct {
	Sender      brevoRecipient    `json:"sender"`
	To          []brevoRecipient  `json:"to"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent"`
	Attachment  []brevoAttachment `json:"attachment,omitempty"`
}

// Send delivers the message, blocking on the rate limiter first.
func (c *BrevoClient) Send(ctx context.Context, msg Message) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	payload := brevoEmail{
		Sender:      brevoRecipient{Name: c.cfg.SenderName, Email: c.cfg.SenderEmail},
		To:          []brevoRecipient{{Email: msg.To}},
		Subject:     msg.Subject,
		HTMLContent: fmt.Sprintf("<html><body><p>%s</p></body></html>", msg.HTMLBody),
	}
	for _, a := range msg.Attachments {
		payload.Attachment = append(payload.Attachment, brevoAttachment{
			Name:    a.Name,
			Content: base64.StdEncoding.EncodeToString(a.Content),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v3/smtp/email", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("brevo status %d: %s", resp.StatusCode, detail)
	}

	c.log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("email sent")
	return nil
}

// NopNotifier drops messages; used when email delivery is disabled.
type NopNotifier struct {
	Log zerolog.Logger
}

func (n NopNotifier) Send(_ context.Context, msg Message) error {
	n.Log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("email delivery disabled, dropping message")
	return nil
}
