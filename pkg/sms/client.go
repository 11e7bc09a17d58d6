package sms

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/arsmn/go-smsir/smsir"

	"github.com/udelar-dtx/dtx_backend/config"
)

var ErrInvalidRequest = errors.New("invalid sms request")

// Sender is what the alert worker depends on.
type Sender interface {
	SendAlert(ctx context.Context, phoneNumber string, params map[string]string) error
	IsEnabled() bool
}

// Client sends template messages via sms.ir.
type Client struct {
	client     *smsir.Client
	templateID string
	enabled    bool
}

// NewFromConfig creates a new SMS client from the application configuration.
// If SMS is disabled, returns a client that no-ops on all operations.
func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{enabled: false}, nil
	}

	if cfg.SMSIR.APIKey == "" {
		return nil, fmt.Errorf("sms.ir API key required when SMS enabled")
	}
	if cfg.SMSIR.TemplateID == "" {
		return nil, fmt.Errorf("sms.ir template id required when SMS enabled")
	}

	client := smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey)

	return &Client{
		client:     client,
		templateID: cfg.SMSIR.TemplateID,
		enabled:    true,
	}, nil
}

// SendAlert sends the configured alert template to phoneNumber. Every
// template parameter must be non-empty. No-op when SMS is disabled.
func (c *Client) SendAlert(ctx context.Context, phoneNumber string, params map[string]string) error {
	if !c.enabled {
		return nil
	}

	req, err := alertRequest(phoneNumber, c.templateID, params)
	if err != nil {
		return err
	}

	if _, err := c.client.Verification.UltraFastSend(ctx, req); err != nil {
		return fmt.Errorf("sms.ir send failed: %w", err)
	}
	return nil
}

func alertRequest(phoneNumber, templateID string, params map[string]string) (*smsir.UltraFastSendRequest, error) {
	if phoneNumber == "" {
		return nil, fmt.Errorf("%w: phone number is required", ErrInvalidRequest)
	}
	if templateID == "" {
		return nil, fmt.Errorf("%w: template id is required", ErrInvalidRequest)
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]smsir.UltraFastParameter, 0, len(keys))
	for _, k := range keys {
		if params[k] == "" {
			return nil, fmt.Errorf("%w: parameter %q is empty", ErrInvalidRequest, k)
		}
		out = append(out, smsir.UltraFastParameter{Key: k, Value: params[k]})
	}

	return &smsir.UltraFastSendRequest{
		Mobile:     phoneNumber,
		TemplateID: templateID,
		Parameters: out,
	}, nil
}

// IsEnabled returns whether SMS sending is enabled.
func (c *Client) IsEnabled() bool {
	return c.enabled
}
