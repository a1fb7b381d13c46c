package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"wefix.backend/pkg/logger"
	"wefix.backend/pkg/utils"
)

const (
	defaultSMSTimeout = 10 * time.Second
	maxErrorBody      = 512
)

// MessageTemplate is the SMS body; %s receives the code.
const MessageTemplate = "Your WeFix verification code is: %s"

// ErrGatewayNotConfigured is returned when the gateway has no API key or URL.
var ErrGatewayNotConfigured = errors.New("sms gateway not configured")

// GatewayError carries a non-2xx gateway response.
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("sms gateway: request failed status=%d body=%s", e.StatusCode, e.Body)
}

// SMSGatewayConfig configures the HTTP SMS gateway
type SMSGatewayConfig struct {
	URL      string
	APIKey   string
	SenderID string
	Timeout  time.Duration
}

type smsRequest struct {
	To      string `json:"to"`
	From    string `json:"from,omitempty"`
	Message string `json:"message"`
}

// SMSGatewayNotifier posts codes to an HTTP SMS gateway
type SMSGatewayNotifier struct {
	cfg        SMSGatewayConfig
	httpClient *http.Client
}

// NewSMSGatewayNotifier creates a gateway notifier
func NewSMSGatewayNotifier(cfg SMSGatewayConfig) *SMSGatewayNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSMSTimeout
	}
	return &SMSGatewayNotifier{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Send delivers the code. The code itself is never logged here.
func (n *SMSGatewayNotifier) Send(ctx context.Context, phone, code string) error {
	if n.cfg.APIKey == "" || n.cfg.URL == "" {
		return ErrGatewayNotConfigured
	}

	raw, err := json.Marshal(smsRequest{
		To:      phone,
		From:    n.cfg.SenderID,
		Message: fmt.Sprintf(MessageTemplate, code),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.URL, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("sms gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", n.cfg.APIKey)

	start := time.Now()
	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &GatewayError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	logger.Debug(ctx, "SMS dispatched",
		zap.String("phone", utils.MaskPhone(phone)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	return nil
}
