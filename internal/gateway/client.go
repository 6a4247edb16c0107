// Package gateway is a thin client for the remote event admin HTTP API.
// It attaches the stored credential to every call, decodes the gateway's
// response envelope and converts every failure into a fetch error.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ventureops/eventadmin/internal/apperror"
	"github.com/ventureops/eventadmin/internal/models"
)

// CredentialSource yields the bearer token attached to authenticated
// requests. Implemented by the session store.
type CredentialSource interface {
	Token() (string, bool)
}

// Client issues requests against the six admin operations of the remote
// gateway. All methods are safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	log     *zap.Logger
}

// New constructs a Client for the gateway at baseURL. httpClient may be
// nil, in which case a default client with a request timeout is used; its
// transport is always wrapped to inject credentials and request ids.
func New(baseURL string, creds CredentialSource, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	next := httpClient.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	// Wrap a shallow copy so the caller's client is left untouched.
	wrapped := *httpClient
	wrapped.Transport = &authTransport{creds: creds, next: next}

	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		http:    &wrapped,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// envelope is the gateway's response wrapper; payloads live under "data".
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Login exchanges credentials for a fresh bearer token. It is the only
// operation dispatched without a stored credential.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	var data struct {
		Token string `json:"token"`
	}
	if err := c.post(ctx, "login", "/login", body, &data); err != nil {
		return "", err
	}
	if data.Token == "" {
		return "", apperror.Fetch("login", errors.New("invalid response: empty token"))
	}
	return data.Token, nil
}

// List fetches the full event collection.
func (c *Client) List(ctx context.Context) ([]models.Event, error) {
	var data struct {
		Events []models.Event `json:"events"`
	}
	if err := c.get(ctx, "list", "/list", nil, &data); err != nil {
		return nil, err
	}
	return data.Events, nil
}

// SetShow updates an event's visibility flag, encoded 0/1 on the wire.
func (c *Client) SetShow(ctx context.Context, id int64, visible bool) error {
	isShow := 0
	if visible {
		isShow = 1
	}
	body := map[string]int64{"event_id": id, "is_show": int64(isShow)}
	return c.post(ctx, "set-show", "/set-show", body, nil)
}

// Delete removes an event server-side.
func (c *Client) Delete(ctx context.Context, id int64) error {
	body := map[string]int64{"event_id": id}
	return c.post(ctx, "delete", "/delete", body, nil)
}

// SetSort updates an event's sort order.
func (c *Client) SetSort(ctx context.Context, id int64, sort int) error {
	body := map[string]int64{"event_id": id, "sort": int64(sort)}
	return c.post(ctx, "set-sort", "/set-sort", body, nil)
}

// Info fetches the full detail of a single event.
func (c *Client) Info(ctx context.Context, id int64) (models.Event, error) {
	query := url.Values{"event_id": []string{strconv.FormatInt(id, 10)}}
	var ev models.Event
	if err := c.get(ctx, "info", "/info", query, &ev); err != nil {
		return models.Event{}, err
	}
	return ev, nil
}

// AddVotes sets an event's vote total. The gateway contract takes the
// absolute new total, not a delta; the controller computes it.
func (c *Client) AddVotes(ctx context.Context, id int64, votes int) error {
	body := map[string]int64{"event_id": id, "votes": int64(votes)}
	return c.post(ctx, "add-votes", "/add-votes", body, nil)
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return apperror.Fetch(op, err)
	}
	return c.do(op, req, out)
}

func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return apperror.Fetch(op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return apperror.Fetch(op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(op, req, out)
}

// do dispatches the request, enforces a 2xx status and decodes the data
// envelope into out when out is non-nil.
func (c *Client) do(op string, req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		// The transport fails closed before dispatch when no
		// credential is stored; keep that typed instead of folding
		// it into a fetch error.
		if errors.Is(err, apperror.ErrAuthentication) {
			c.log.Warn("gateway call refused, no credential", zap.String("op", op))
			return apperror.Authentication("no credential stored, login required")
		}
		c.log.Error("gateway call failed", zap.String("op", op), zap.Error(err))
		return apperror.Fetch(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("server error: %s", strings.TrimSpace(string(msg)))
		c.log.Error("gateway call rejected",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
		)
		return apperror.Fetch(op, err)
	}

	if out != nil {
		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return apperror.Fetch(op, fmt.Errorf("invalid response: %w", err))
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return apperror.Fetch(op, fmt.Errorf("invalid response: %w", err))
		}
	}

	c.log.Debug("gateway call ok",
		zap.String("op", op),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
