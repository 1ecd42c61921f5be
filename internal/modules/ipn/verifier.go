package ipn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	VerificationVerified = "VERIFIED"
	VerificationInvalid  = "INVALID"

	maxVerificationResponse = 1 << 10
)

// PayPalVerifier posts the notification back to PayPal's webscr endpoint.
type PayPalVerifier struct {
	client   *http.Client
	endpoint string
}

func NewPayPalVerifier(endpoint string, timeout time.Duration) *PayPalVerifier {
	return &PayPalVerifier{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
	}
}

// Verify returns PayPal's answer, normally VERIFIED or INVALID. Transport
// failures, non-200 statuses and empty answers are errors.
func (v *PayPalVerifier) Verify(ctx context.Context, body string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "mod_paypal-ipn")

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("post to paypal: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxVerificationResponse))
	if err != nil {
		return "", fmt.Errorf("read paypal response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal responded with status %d", resp.StatusCode)
	}

	result := strings.TrimSpace(string(raw))
	if result == "" {
		return "", fmt.Errorf("empty paypal response")
	}
	return result, nil
}
