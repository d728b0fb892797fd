package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/memodb-io/sitestore/internal/modules/serializer"
	"github.com/memodb-io/sitestore/internal/pkg/apperr"
	"go.uber.org/zap"
)

// Client is the HTTP client for the sitestore API. Errors it returns carry
// the same apperr.Kind the server raised.
type Client struct {
	BaseURL    string
	Token      string
	Principal  string
	HTTPClient *http.Client
	Logger     *zap.Logger

	// PrincipalHeader defaults to X-Principal-Id.
	PrincipalHeader string
	// ChunkSize must match the server's storage.chunkSize.
	ChunkSize int
	// Parallel bounds concurrent chunk uploads.
	Parallel int
}

// NewClient creates a new Client acting as principal.
func NewClient(baseURL, token, principal string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Token:     token,
		Principal: principal,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Logger:          log,
		PrincipalHeader: "X-Principal-Id",
		ChunkSize:       1 << 20,
		Parallel:        4,
	}
}

type envelope[T any] struct {
	Code  int    `json:"code"`
	Data  T      `json:"data"`
	Msg   string `json:"msg"`
	Error string `json:"error"`
}

var knownKinds = map[apperr.Kind]bool{
	apperr.KindNotFound:     true,
	apperr.KindUnauthorized: true,
	apperr.KindInvalidInput: true,
	apperr.KindTransport:    true,
	apperr.KindIncomplete:   true,
}

// statusError rebuilds a typed error from a failed response. The kind sent
// by the server wins; otherwise it is derived from the status code.
func statusError(op string, status int, body []byte) error {
	var res serializer.Response
	_ = sonic.Unmarshal(body, &res)

	kind := apperr.Kind(res.Error)
	if !knownKinds[kind] {
		kind = serializer.KindOfStatus(status)
	}
	msg := res.Msg
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}
	return apperr.New(kind, op, msg)
}

// do sends one request and returns the raw body of a 2xx response.
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string) ([]byte, string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindInvalidInput, op, fmt.Errorf("create request: %w", err))
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.Principal != "" {
		httpReq.Header.Set(c.PrincipalHeader, c.Principal)
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, "", apperr.Transport(op, fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", apperr.Transport(op, fmt.Errorf("read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.Logger.Debug(op+" request failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(respBody)))
		return nil, "", statusError(op, resp.StatusCode, respBody)
	}
	return respBody, resp.Header.Get("Content-Type"), nil
}

// doJSON marshals in (when non-nil) and decodes the data field of the
// response envelope into out (when non-nil).
func doJSON[T any](ctx context.Context, c *Client, op, method, path string, in interface{}) (T, error) {
	var zero T

	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := sonic.Marshal(in)
		if err != nil {
			return zero, apperr.Wrap(apperr.KindInvalidInput, op, fmt.Errorf("marshal request: %w", err))
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	respBody, _, err := c.do(ctx, op, method, path, body, contentType)
	if err != nil {
		return zero, err
	}

	var res envelope[T]
	if err := sonic.Unmarshal(respBody, &res); err != nil {
		return zero, apperr.Transport(op, fmt.Errorf("unmarshal response: %w", err))
	}
	return res.Data, nil
}
