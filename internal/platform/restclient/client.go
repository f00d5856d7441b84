// Package restclient is the shared HTTP gateway for every outbound call
// the service makes, webhook delivery included. Transport and downstream
// failures are folded into a Result; no error crosses the package
// boundary, so callers can treat every outcome uniformly.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Header names propagated on outbound calls.
const (
	HeaderUserID   = "UserID"
	HeaderModuleID = "ModuleID"
)

const (
	contentTypeJSON     = "application/json"
	contentTypeJSONUTF8 = "application/json;charset=UTF-8"
)

// Request carries everything about one outbound call besides method and
// target URL. Every field is optional.
type Request struct {
	Headers    map[string]string
	PathParams map[string]string
	// Query supports multi-valued keys; each value is appended as a
	// repeated parameter.
	Query map[string][]string
	// Body is JSON-encoded when present.
	Body any
	// Response, when non-nil, receives the decoded success body. When nil
	// and Body was supplied, the response is decoded into a fresh value of
	// the body's type instead (see Result.Payload).
	Response any
	// Outside selects the bare application/json content type used for
	// calls that leave the platform; internal calls declare UTF-8
	// explicitly.
	Outside bool
}

// Result is what every call returns, success or failure. On 2xx Body holds
// the raw response; on classified failures it holds the downstream body or
// a diagnostic message.
type Result struct {
	StatusCode int
	Body       []byte
	// Payload holds the decoded success body when decoding applied.
	Payload any
}

// Client wraps one shared http.Client. Safe for concurrent use; the only
// state is the injected client handle.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// New builds a Client around httpClient. A nil httpClient gets a default
// with a 30s timeout.
func New(logger *slog.Logger, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger.With("component", "rest_client"),
	}
}

func (c *Client) Get(ctx context.Context, rawURL string, req Request) Result {
	return c.do(ctx, http.MethodGet, rawURL, req)
}

func (c *Client) Post(ctx context.Context, rawURL string, req Request) Result {
	return c.do(ctx, http.MethodPost, rawURL, req)
}

func (c *Client) Put(ctx context.Context, rawURL string, req Request) Result {
	return c.do(ctx, http.MethodPut, rawURL, req)
}

// Patch goes through the same shared client: net/http's default transport
// sends request bodies on PATCH, unlike some HTTP stacks.
func (c *Client) Patch(ctx context.Context, rawURL string, req Request) Result {
	return c.do(ctx, http.MethodPatch, rawURL, req)
}

func (c *Client) Delete(ctx context.Context, rawURL string, req Request) Result {
	return c.do(ctx, http.MethodDelete, rawURL, req)
}

// GetAsync issues the call without blocking; the returned channel yields
// exactly one Result and is then closed. Same contract for the other
// Async forms.
func (c *Client) GetAsync(ctx context.Context, rawURL string, req Request) <-chan Result {
	return c.doAsync(ctx, http.MethodGet, rawURL, req)
}

func (c *Client) PostAsync(ctx context.Context, rawURL string, req Request) <-chan Result {
	return c.doAsync(ctx, http.MethodPost, rawURL, req)
}

func (c *Client) PutAsync(ctx context.Context, rawURL string, req Request) <-chan Result {
	return c.doAsync(ctx, http.MethodPut, rawURL, req)
}

func (c *Client) PatchAsync(ctx context.Context, rawURL string, req Request) <-chan Result {
	return c.doAsync(ctx, http.MethodPatch, rawURL, req)
}

func (c *Client) DeleteAsync(ctx context.Context, rawURL string, req Request) <-chan Result {
	return c.doAsync(ctx, http.MethodDelete, rawURL, req)
}

func (c *Client) doAsync(ctx context.Context, method, rawURL string, req Request) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		out <- c.do(ctx, method, rawURL, req)
	}()
	return out
}

func (c *Client) do(ctx context.Context, method, rawURL string, req Request) Result {
	target, err := buildURL(rawURL, req.PathParams, req.Query)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to build request URL", "url", rawURL, "error", err)
		return failure(http.StatusInternalServerError, err)
	}

	var payload []byte
	if req.Body != nil {
		payload, err = json.Marshal(req.Body)
		if err != nil {
			c.logger.ErrorContext(ctx, "failed to encode request body", "error", err)
			return failure(http.StatusInternalServerError, err)
		}
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to create request", "method", method, "url", target, "error", err)
		return failure(http.StatusInternalServerError, err)
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		if req.Outside {
			httpReq.Header.Set("Content-Type", contentTypeJSON)
		} else {
			httpReq.Header.Set("Content-Type", contentTypeJSONUTF8)
		}
	}

	c.logger.DebugContext(ctx, "sending request",
		"method", method,
		"url", target,
		"user_id", req.Headers[HeaderUserID],
		"module_id", req.Headers[HeaderModuleID])
	c.logBody(ctx, payload, "request body")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Legacy mapping: connection/transport failures surface as 404.
		c.logger.ErrorContext(ctx, "request failed", "method", method, "url", target, "error", err)
		return failure(http.StatusNotFound, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to read response body", "status", resp.StatusCode, "error", err)
		return failure(http.StatusInternalServerError, err)
	}

	c.logger.DebugContext(ctx, "received response", "method", method, "url", target, "status", resp.StatusCode)
	c.logBody(ctx, respBody, "response body")

	return c.classify(ctx, resp.StatusCode, respBody, req)
}

// classify maps the downstream status to the uniform result contract:
// 400/404/409/500 carry the downstream body verbatim, every other 4xx/5xx
// carries a synthesized status message.
func (c *Client) classify(ctx context.Context, status int, body []byte, req Request) Result {
	switch {
	case status < http.StatusBadRequest:
		return c.decode(ctx, status, body, req)
	case status == http.StatusBadRequest,
		status == http.StatusNotFound,
		status == http.StatusConflict,
		status == http.StatusInternalServerError:
		c.logger.WarnContext(ctx, "downstream error", "status", status, "body", string(body))
		return Result{StatusCode: status, Body: body}
	default:
		msg := fmt.Sprintf("%d %s", status, http.StatusText(status))
		c.logger.WarnContext(ctx, "downstream error", "status", status, "message", msg)
		return Result{StatusCode: status, Body: []byte(msg)}
	}
}

func (c *Client) decode(ctx context.Context, status int, body []byte, req Request) Result {
	res := Result{StatusCode: status, Body: body}
	if len(body) == 0 {
		return res
	}
	switch {
	case req.Response != nil:
		if err := json.Unmarshal(body, req.Response); err != nil {
			c.logger.ErrorContext(ctx, "failed to decode response body", "error", err)
			return failure(http.StatusInternalServerError, err)
		}
		res.Payload = req.Response
	case req.Body != nil:
		// Same-shape round trip: no hint given, so decode into the body's
		// own type.
		t := reflect.TypeOf(req.Body)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		target := reflect.New(t).Interface()
		if err := json.Unmarshal(body, target); err != nil {
			c.logger.ErrorContext(ctx, "failed to decode response body", "error", err)
			return failure(http.StatusInternalServerError, err)
		}
		res.Payload = target
	}
	return res
}

// logBody emits a request/response body at debug level, chunked so the
// logging transport never drops an oversized message.
func (c *Client) logBody(ctx context.Context, data []byte, kind string) {
	if len(data) == 0 {
		return
	}
	chunks := SplitChunks(string(data))
	if len(chunks) == 1 {
		c.logger.DebugContext(ctx, kind, "body", chunks[0])
		return
	}
	c.logger.DebugContext(ctx, "split oversized log message", "kind", kind, "parts", len(chunks))
	for i, chunk := range chunks {
		c.logger.DebugContext(ctx, kind, "part", i+1, "body", chunk)
	}
}

func failure(status int, err error) Result {
	return Result{StatusCode: status, Body: []byte(err.Error())}
}

// buildURL substitutes path parameters into the URL template and appends
// query parameters. Placeholders missing from the template are appended as
// extra path segments in key order. Encoding happens once, after
// substitution.
func buildURL(rawURL string, pathParams map[string]string, query map[string][]string) (string, error) {
	if len(pathParams) > 0 {
		keys := make([]string, 0, len(pathParams))
		for k := range pathParams {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			placeholder := "{" + k + "}"
			if !strings.Contains(rawURL, placeholder) {
				if !strings.HasSuffix(rawURL, "/") {
					rawURL += "/"
				}
				rawURL += placeholder
			}
			rawURL = strings.ReplaceAll(rawURL, placeholder, url.PathEscape(pathParams[k]))
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	if len(query) > 0 {
		q := u.Query()
		keys := make([]string, 0, len(query))
		for k := range query {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			for _, val := range query[k] {
				q.Add(k, val)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
