// Package gateway talks to the remote record gateway: one HTTP endpoint that
// stores every record of the portal in a single flat collection.
package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"barangay/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	ActionGetAll      = "getAll"
	ActionCreate      = "create"
	ActionUpdate      = "update"
	ActionDelete      = "delete"
	ActionUploadImage = "uploadImage"

	resultOK = "OK"

	maxReplyBytes = 32 << 20
)

// Client is a gateway client. Calls are independent and never retried; a
// failed call returns a *types.GatewayError and leaves nothing behind.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *logrus.Logger
	observer   Observer
}

// Observer is told about every gateway call once it finishes.
type Observer interface {
	ObserveGatewayCall(action string, elapsed time.Duration, err error)
}

// Observe reports every call to o.
func (c *Client) Observe(o Observer) *Client {
	c.observer = o
	return c
}

func NewClient(endpoint string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type reply struct {
	Result  string           `json:"result"`
	Data    []map[string]any `json:"data"`
	URL     string           `json:"url"`
	Error   string           `json:"error"`
	Message string           `json:"message"`
}

func (r *reply) err() error {
	switch {
	case r.Error != "":
		return fmt.Errorf("gateway replied %q: %s", r.Result, r.Error)
	case r.Message != "":
		return fmt.Errorf("gateway replied %q: %s", r.Result, r.Message)
	default:
		return fmt.Errorf("gateway replied %q", r.Result)
	}
}

type mutationRequest struct {
	Action string `json:"action"`
	Record any    `json:"record"`
}

type uploadRequest struct {
	Action   string `json:"action"`
	Filename string `json:"filename"`
	Base64   string `json:"base64"`
}

// FetchAll returns every record the gateway holds, decoded into typed
// records. Entries with an unknown __sheet_type are skipped.
func (c *Client) FetchAll(ctx context.Context) ([]types.Record, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, types.NewGatewayError(ActionGetAll, fmt.Errorf("failed to parse endpoint: %w", err))
	}

	q := u.Query()
	q.Set("action", ActionGetAll)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, types.NewGatewayError(ActionGetAll, fmt.Errorf("failed to create request: %w", err))
	}

	var rep reply
	if err := c.do(req, ActionGetAll, &rep); err != nil {
		return nil, err
	}

	if rep.Result != resultOK {
		return nil, types.NewGatewayError(ActionGetAll, rep.err())
	}

	return c.decodeRecords(rep.Data), nil
}

func (c *Client) Create(ctx context.Context, record types.Record) error {
	return c.mutate(ctx, ActionCreate, types.Tag(record))
}

func (c *Client) Update(ctx context.Context, record types.Record) error {
	return c.mutate(ctx, ActionUpdate, types.Tag(record))
}

// Delete removes the record whose key field equals idValue. The gateway works
// out which sheet and key field match.
func (c *Client) Delete(ctx context.Context, idValue string) error {
	return c.mutate(ctx, ActionDelete, map[string]string{types.FieldIDValue: idValue})
}

// UploadImage stores an image and returns its public URL. The payload is sent
// as a data URL with the content type sniffed from data.
func (c *Client) UploadImage(ctx context.Context, filename string, data []byte) (string, error) {
	payload := uploadRequest{
		Action:   ActionUploadImage,
		Filename: filename,
		Base64:   DataURL(data),
	}

	var rep reply
	if err := c.post(ctx, ActionUploadImage, payload, &rep); err != nil {
		return "", err
	}

	if rep.URL == "" {
		return "", types.NewGatewayError(ActionUploadImage, rep.err())
	}

	return rep.URL, nil
}

// DataURL encodes data the way browsers' FileReader.readAsDataURL does.
func DataURL(data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", http.DetectContentType(data), base64.StdEncoding.EncodeToString(data))
}

func (c *Client) mutate(ctx context.Context, action string, record any) error {
	var rep reply
	if err := c.post(ctx, action, mutationRequest{Action: action, Record: record}, &rep); err != nil {
		return err
	}

	if rep.Result != resultOK {
		return types.NewGatewayError(action, rep.err())
	}

	return nil
}

func (c *Client) post(ctx context.Context, action string, payload any, out *reply) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return types.NewGatewayError(action, fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return types.NewGatewayError(action, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, action, out)
}

func (c *Client) do(req *http.Request, action string, out *reply) error {
	started := time.Now()

	err := c.send(req, action, out, started)
	if c.observer != nil {
		c.observer.ObserveGatewayCall(action, time.Since(started), err)
	}

	return err
}

func (c *Client) send(req *http.Request, action string, out *reply, started time.Time) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.NewGatewayError(action, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return types.NewGatewayError(action, fmt.Errorf("failed to read reply: %w", err))
	}

	c.logger.WithFields(logrus.Fields{
		"action":      action,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(started).Milliseconds(),
	}).Debug("gateway request")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return types.NewGatewayError(action, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, snippet(body)))
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return types.NewGatewayError(action, fmt.Errorf("failed to decode reply: %w", err))
	}

	return nil
}

func snippet(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
