package sms

import (
	"context"
	"errors"
	"testing"

	"github.com/udelar-dtx/dtx_backend/config"
)

func TestNewFromConfig_Disabled(t *testing.T) {
	client, err := NewFromConfig(config.SMSConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}

	if client.IsEnabled() {
		t.Error("Expected client to be disabled")
	}
}

func TestNewFromConfig_Enabled(t *testing.T) {
	tests := []struct {
		name    string
		smsir   config.SMSIRConfig
		wantErr bool
	}{
		{"missing api key", config.SMSIRConfig{TemplateID: "100200"}, true},
		{"missing template", config.SMSIRConfig{APIKey: "k"}, true},
		{"complete", config.SMSIRConfig{APIKey: "k", SecretKey: "s", TemplateID: "100200"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewFromConfig(config.SMSConfig{Enabled: true, SMSIR: tt.smsir})
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewFromConfig failed: %v", err)
			}
			if !client.IsEnabled() {
				t.Error("Expected client to be enabled")
			}
		})
	}
}

func TestSendAlert_DisabledClient(t *testing.T) {
	client := &Client{enabled: false}

	if err := client.SendAlert(context.Background(), "", nil); err != nil {
		t.Errorf("Expected no error for disabled client, got: %v", err)
	}
}

func TestAlertRequest(t *testing.T) {
	tests := []struct {
		name       string
		phone      string
		templateID string
		params     map[string]string
		wantErr    bool
	}{
		{"empty phone number", "", "100200", map[string]string{"patient": "P-001"}, true},
		{"empty template", "+59899123456", "", map[string]string{"patient": "P-001"}, true},
		{"empty parameter", "+59899123456", "100200", map[string]string{"patient": ""}, true},
		{"valid", "+59899123456", "100200", map[string]string{"patient": "P-001", "date": "2026-03-02"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := alertRequest(tt.phone, tt.templateID, tt.params)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRequest) {
					t.Errorf("Expected ErrInvalidRequest, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(req.Parameters) != len(tt.params) {
				t.Fatalf("got %d parameters, want %d", len(req.Parameters), len(tt.params))
			}
			// parameters are sorted by key
			if req.Parameters[0].Key != "date" || req.Parameters[1].Key != "patient" {
				t.Errorf("unexpected parameter order: %+v", req.Parameters)
			}
		})
	}
}
