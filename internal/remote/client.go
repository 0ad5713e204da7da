// Package remote implements the remote record store and the user directory over a
// PostgREST-style HTTP API. Rows use snake_case field names and every request is
// scoped by user_id.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/service"
)

// ErrUnexpectedStatus is returned for responses outside the 2xx range.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Config holds the connection settings for the HTTP store.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Retry   common.RetryOptions
}

// Client talks to the HTTP store.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	retry      common.RetryOptions
}

var (
	_ service.RemoteStore = (*Client)(nil)
	_ service.UserStore   = (*Client)(nil)
)

// NewClient creates a client for the store at cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("%w: remote.url", common.ErrMissingConfig)
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("%w: remote.url %q: %w", common.ErrInvalidConfig, base, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		retry:   cfg.Retry,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Accounts returns the accounts collection.
func (c *Client) Accounts() service.Collection[model.Account] {
	return &collection[model.Account, accountRow]{client: c, table: "accounts", order: "created_at.desc", toRow: newAccountRow}
}

// CreditCards returns the credit cards collection.
func (c *Client) CreditCards() service.Collection[model.CreditCard] {
	return &collection[model.CreditCard, creditCardRow]{client: c, table: "credit_cards", order: "created_at.desc", toRow: newCreditCardRow}
}

// Transactions returns the transactions collection.
func (c *Client) Transactions() service.Collection[model.Transaction] {
	return &collection[model.Transaction, transactionRow]{client: c, table: "transactions", order: "date.desc", toRow: newTransactionRow}
}

// Categories returns the categories collection.
func (c *Client) Categories() service.Collection[model.Category] {
	return &collection[model.Category, categoryRow]{client: c, table: "categories", order: "name.asc", toRow: newCategoryRow}
}

// do sends a request and decodes a JSON response into out when out is non-nil.
// Server errors and rate limiting are retried; other failures are returned as is.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	u := c.baseURL + "/rest/v1/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	return common.WithRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(payload))
		if err != nil {
			return &common.RetryableError{Err: fmt.Errorf("failed to create request: %w", err)}
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Prefer", "return=representation")
		}
		if c.apiKey != "" {
			req.Header.Set("apikey", c.apiKey)
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		slog.Debug("remote request", "method", method, "path", path)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return &common.RetryableError{Err: ctx.Err()}
			}
			return &common.RetryableError{Err: fmt.Errorf("%s %s: %w", method, path, err), Retryable: true}
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return statusError(method, path, resp.StatusCode, respBody)
		}

		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &common.RetryableError{Err: fmt.Errorf("failed to decode response: %w", err)}
		}
		return nil
	}, c.retry)
}

func statusError(method, path string, status int, body []byte) error {
	err := fmt.Errorf("%w: %s %s: %d - %s", ErrUnexpectedStatus, method, path, status, strings.TrimSpace(string(body)))
	switch {
	case status == http.StatusTooManyRequests:
		return &common.RetryableError{Err: fmt.Errorf("%w: %w", common.ErrRateLimit, err), Retryable: true}
	case status >= 500:
		return &common.RetryableError{Err: err, Retryable: true}
	case status == http.StatusConflict:
		return &common.RetryableError{Err: fmt.Errorf("%w: %w", common.ErrDuplicateEntry, err)}
	case status == http.StatusNotFound:
		return &common.RetryableError{Err: fmt.Errorf("%w: %w", common.ErrNotFound, err)}
	default:
		return &common.RetryableError{Err: err}
	}
}

func eq(v string) string {
	return "eq." + v
}
