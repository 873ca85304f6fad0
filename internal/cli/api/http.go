package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
)

// AuthCookieName is the cookie carrying the backend session token.
const AuthCookieName = "auth_token"

// ErrMalformed is returned when a response body is not the expected JSON.
var ErrMalformed = errors.New("malformed response")

// StatusError is a non-2xx answer. Message comes from the "error" field of the body when present.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("http %d", e.Code)
}

// Client sends requests relative to one base URL.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// NewClient returns a client for baseURL. A zero timeout means no client-side limit.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// WithToken returns a copy that sends token as the auth cookie.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// BaseURL returns the base the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) url(path string, q url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) do(req *http.Request) (*http.Response, []byte, error) {
	if c.token != "" {
		req.Header.Set("Cookie", AuthCookieName+"="+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	return resp, bytes.TrimSpace(body), nil
}

// PostJSON sends payload as a JSON POST to path.
func (c *Client) PostJSON(ctx context.Context, path string, payload any) (*http.Response, []byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path, nil), bytes.NewReader(b))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// Get sends a GET to path with query q.
func (c *Client) Get(ctx context.Context, path string, q url.Values) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path, q), nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

// FilePart is one file of a multipart form.
type FilePart struct {
	Field       string
	FileName    string
	ContentType string
	Data        []byte
}

// PostMultipart sends fields and files as multipart/form-data to path.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, files ...FilePart) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, nil, err
		}
	}
	for _, f := range files {
		if f.Field == "" || len(f.Data) == 0 {
			return nil, nil, fmt.Errorf("empty file part %q", f.Field)
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.Field, f.FileName))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		w, err := mw.CreatePart(h)
		if err != nil {
			return nil, nil, err
		}
		if _, err := w.Write(f.Data); err != nil {
			return nil, nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path, nil), &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

// DecodeJSON checks the status of resp and decodes body into out.
// Non-2xx answers become *StatusError; undecodable bodies wrap ErrMalformed.
func DecodeJSON(resp *http.Response, body []byte, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &e)
		return &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(e.Error)}
	}
	if out == nil {
		return nil
	}
	if len(body) == 0 {
		return fmt.Errorf("%w: empty body", ErrMalformed)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// AuthCookie извлекает auth cookie из ответа.
func AuthCookie(resp *http.Response) (string, error) {
	for _, c := range resp.Cookies() {
		if c.Name == AuthCookieName && c.Value != "" {
			return c.Value, nil
		}
	}
	return "", fmt.Errorf("no auth cookie in response")
}
