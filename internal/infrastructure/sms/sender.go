package sms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-otp-auth/internal/domain"
)

// Sender delivers a text message to a phone number.
type Sender interface {
	Send(ctx context.Context, to, text string) error
}

// AakashClient sends SMS through the Aakash SMS HTTP gateway with a
// single synchronous form-encoded POST. No retry, no backoff — any
// failure (timeout, non-2xx, network error) surfaces as ErrGateway.
type AakashClient struct {
	sendURL    string
	authToken  string
	httpClient *http.Client
}

func NewAakashClient(sendURL, authToken string, httpClient *http.Client) *AakashClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &AakashClient{
		sendURL:    strings.TrimSpace(sendURL),
		authToken:  strings.TrimSpace(authToken),
		httpClient: httpClient,
	}
}

func (c *AakashClient) Send(ctx context.Context, to, text string) error {
	form := url.Values{}
	form.Set("auth_token", c.authToken)
	form.Set("to", to)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %v: %w", err, domain.ErrGateway)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway returned %d: %s: %w", resp.StatusCode, strings.TrimSpace(string(body)), domain.ErrGateway)
	}
	return nil
}
