package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/SLASHOO/SkyMotion-Library/internal/identity"
)

// DefaultBaseURL is the hosted SkyMotion API.
const DefaultBaseURL = "https://skymotion.onrender.com"

// HeaderMemberID carries the resolved member id on every request.
const HeaderMemberID = "X-Ms-Id"

const (
	defaultIdentityTimeout = identity.DefaultTimeout
	defaultDurableTimeout  = 10 * time.Second
	maxResponseBytes       = 8 << 20
)

// Identity resolves the current member; nil means unauthenticated.
type Identity interface {
	Resolve(ctx context.Context, timeout time.Duration) *identity.Member
}

type Config struct {
	BaseURL string
	// MemberToken, when set, is sent as a bearer token next to the member id.
	MemberToken string
	HTTPClient  *http.Client
	// IdentityTimeout bounds identity resolution per call. Zero means
	// identity.DefaultTimeout.
	IdentityTimeout time.Duration
}

// Client is the only network boundary for session and saved-item calls.
type Client struct {
	baseURL         string
	memberToken     string
	identity        Identity
	http            *http.Client
	identityTimeout time.Duration
	durableTimeout  time.Duration
	durable         sync.WaitGroup
}

func New(cfg Config, id Identity) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// No client timeout: calls rely on transport defaults and the caller's context.
		httpClient = &http.Client{}
	}
	identityTimeout := cfg.IdentityTimeout
	if identityTimeout <= 0 {
		identityTimeout = defaultIdentityTimeout
	}
	return &Client{
		baseURL:         baseURL,
		memberToken:     cfg.MemberToken,
		identity:        id,
		http:            httpClient,
		identityTimeout: identityTimeout,
		durableTimeout:  defaultDurableTimeout,
	}
}

// Call performs an authenticated request. body may be nil, raw JSON bytes,
// or any value that encodes to JSON.
func (c *Client) Call(ctx context.Context, method, path string, body any) (Payload, error) {
	return c.do(ctx, method, path, body)
}

// CallDurable performs the request detached from ctx cancellation, bounded
// by the durable timeout. It is meant for writes issued while the caller is
// shutting down; Drain waits for them.
func (c *Client) CallDurable(ctx context.Context, method, path string, body any) (Payload, error) {
	c.durable.Add(1)
	defer c.durable.Done()

	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.durableTimeout)
	defer cancel()
	return c.do(dctx, method, path, body)
}

// Drain blocks until outstanding durable calls finish or ctx ends.
func (c *Client) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.durable.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any) (Payload, error) {
	var member *identity.Member
	if c.identity != nil {
		member = c.identity.Resolve(ctx, c.identityTimeout)
	}
	if member == nil || member.ID == "" {
		return Payload{}, ErrLoginRequired
	}

	reader, hasBody, err := encodeBody(body)
	if err != nil {
		return Payload{}, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return Payload{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(HeaderMemberID, member.ID)
	req.Header.Set("Accept", "application/json")
	if c.memberToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.memberToken)
	}
	if hasBody && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Payload{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload := readPayload(resp)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return payload, &Error{
			Kind:    fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Status:  resp.StatusCode,
			Payload: payload,
		}
	}
	return payload, nil
}

func encodeBody(body any) (io.Reader, bool, error) {
	switch b := body.(type) {
	case nil:
		return nil, false, nil
	case []byte:
		return bytes.NewReader(b), true, nil
	case json.RawMessage:
		return bytes.NewReader(b), true, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, false, fmt.Errorf("marshal request body: %w", err)
	}
	return bytes.NewReader(data), true, nil
}

func readPayload(resp *http.Response) Payload {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Payload{}
	}
	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if strings.Contains(contentType, "application/json") {
		if !json.Valid(data) {
			return Payload{}
		}
		return Payload{JSON: data}
	}
	return Payload{Text: string(data)}
}
