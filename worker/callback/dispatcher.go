package callback

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"visionRelay/worker/kafka"
)

// TaskStore is the single write the dispatcher performs: recording a
// delivery failure on the blob record.
type TaskStore interface {
	SetCallbackError(ctx context.Context, blobID, message string) error
}

type payload struct {
	BlobID string          `json:"blob_id"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Dispatcher delivers terminal results to caller-supplied webhooks. One
// POST, one attempt; any failure is recorded as callback_error and never
// touches the blob's status.
type Dispatcher struct {
	tasks     TaskStore
	timeout   time.Duration
	userAgent string
	logger    *zap.Logger
}

func NewDispatcher(tasks TaskStore, timeout time.Duration, userAgent string, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		tasks:     tasks,
		timeout:   timeout,
		userAgent: userAgent,
		logger:    logger,
	}
}

func (d *Dispatcher) Deliver(ctx context.Context, msg *kafka.StatusMessage) error {
	deliveryErr := d.post(ctx, msg)
	if deliveryErr == "" {
		d.logger.Info("Callback delivered",
			zap.String("blob_id", msg.BlobID),
			zap.String("url", msg.CallbackURL),
		)
		return nil
	}

	d.logger.Warn("Callback delivery failed",
		zap.String("blob_id", msg.BlobID),
		zap.String("url", msg.CallbackURL),
		zap.String("reason", deliveryErr),
	)

	return d.tasks.SetCallbackError(ctx, msg.BlobID, deliveryErr)
}

// post performs the single delivery attempt and returns a human-readable
// failure reason, or "" on success.
func (d *Dispatcher) post(ctx context.Context, msg *kafka.StatusMessage) string {
	body, err := json.Marshal(buildPayload(msg))
	if err != nil {
		return "General error while calling back"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, msg.CallbackURL, bytes.NewReader(body))
	if err != nil {
		return "General error while calling back"
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client(msg.AllowInsecureCallback).Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Sprintf("Server responded with code %d", resp.StatusCode)
	}

	return ""
}

// client builds a fresh http.Client per delivery so the TLS relaxation
// for one blob can never leak into another request.
func (d *Dispatcher) client(allowInsecure bool) *http.Client {
	client := &http.Client{Timeout: d.timeout}
	if allowInsecure {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return client
}

func buildPayload(msg *kafka.StatusMessage) *payload {
	p := &payload{
		BlobID: msg.BlobID,
		Status: msg.Status,
		Error:  msg.Error,
	}

	// The result travels as the stored serialized string; the webhook
	// receives it as structured JSON.
	if msg.Result != "" {
		if json.Valid([]byte(msg.Result)) {
			p.Result = json.RawMessage(msg.Result)
		} else {
			quoted, _ := json.Marshal(msg.Result)
			p.Result = quoted
		}
	}

	return p
}

func classifyTransportError(err error) string {
	var certErr *tls.CertificateVerificationError
	var authErr x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	if errors.As(err, &certErr) || errors.As(err, &authErr) || errors.As(err, &hostErr) {
		return "Failed SSL verification, consider using 'allow_insecure_callback'"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return "Failed to connect to the callback_url server"
	}

	return "General error while calling back"
}
