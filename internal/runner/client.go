package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/sjson"
)

// DefaultTimeout bounds a run when the client has no timeout configured.
const DefaultTimeout = 10 * time.Second

// maxReplyBytes caps how much of a reply is read.
const maxReplyBytes = 4 << 20

// Client submits solutions to the execution service.
type Client struct {
	endpoint string
	http     *http.Client
	timeout  time.Duration
	inFlight atomic.Bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each run.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a client posting to endpoint.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     http.DefaultClient,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL runs are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Busy reports whether a run is in progress.
func (c *Client) Busy() bool {
	return c.inFlight.Load()
}

// Run submits code for the exercise and returns the service's verdict.
// Only one run may be in flight; a concurrent call fails with
// ErrRunInFlight.
func (c *Client) Run(ctx context.Context, exerciseID int64, code string) (Result, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return Result{}, ErrRunInFlight
	}
	defer c.inFlight.Store(false)

	body, err := requestBody(exerciseID, code)
	if err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("runner: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("runner: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return Result{}, fmt.Errorf("runner: reading reply: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return ParseResult(data)
}

// requestBody builds {"problem_id": id, "code": code}.
func requestBody(exerciseID int64, code string) ([]byte, error) {
	body, err := sjson.SetBytes([]byte(`{}`), "problem_id", exerciseID)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(body, "code", code)
}

// Submission records one run.
type Submission struct {
	ID         string
	ExerciseID int64
	Code       string
	Result     Result
	CreatedAt  time.Time
}

// NewSubmission stamps a result with a fresh ID and the current time.
func NewSubmission(exerciseID int64, code string, r Result) Submission {
	return Submission{
		ID:         uuid.New().String(),
		ExerciseID: exerciseID,
		Code:       code,
		Result:     r,
		CreatedAt:  time.Now(),
	}
}
