package publish

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
	"strings"

	oerrors "github.com/karmakrafts/modship/internal/errors"
	"github.com/karmakrafts/modship/internal/version"
)

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 4 << 10

// UserAgent identifies modship to remote APIs.
func UserAgent() string {
	return "karmakrafts/modship/" + version.Get().Version
}

// Client is the HTTP plumbing shared by channel publishers.
type Client struct {
	Channel   string
	Rejection error
	HTTP      *http.Client
	Headers   http.Header
}

// NewClient creates a client for a channel. A nil httpClient uses
// http.DefaultClient. The returned client always sends a User-Agent.
func NewClient(channel string, rejection error, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	h := http.Header{}
	h.Set("User-Agent", UserAgent())
	return &Client{Channel: channel, Rejection: rejection, HTTP: httpClient, Headers: h}
}

// Do sends a request built from method, url and body, and returns the
// response if its status is 2xx. Any other outcome is a *ChannelError; the
// response body is closed in that case.
func (c *Client) Do(ctx context.Context, method, url string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, oerrors.NewChannelError(c.Channel, c.Rejection, err)
	}
	for k, v := range c.Headers {
		req.Header[k] = v
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		kind := c.Rejection
		if errors.Is(err, context.DeadlineExceeded) {
			kind = oerrors.ErrTimeout
		}
		return nil, oerrors.NewChannelError(c.Channel, kind, err)
	}

	if err := CheckStatus(c.Channel, c.Rejection, resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// DoJSON performs Do and decodes a JSON response into out. A nil out
// discards the body.
func (c *Client) DoJSON(ctx context.Context, method, url string, body io.Reader, contentType string, out any) error {
	resp, err := c.Do(ctx, method, url, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return oerrors.NewChannelError(c.Channel, c.Rejection, fmt.Errorf("decoding %s response: %w", url, err))
	}
	return nil
}

// CheckStatus classifies a response: 2xx is success, 401 and 403 are
// AuthError, anything else is the given rejection kind.
func CheckStatus(channel string, rejection error, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	kind := rejection
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		kind = oerrors.ErrAuth
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &oerrors.ChannelError{
		Channel:    channel,
		Kind:       kind,
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
	}
}

// Multipart builds a multipart/form-data body in memory.
type Multipart struct {
	buf bytes.Buffer
	w   *multipart.Writer
}

// NewMultipart creates an empty form.
func NewMultipart() *Multipart {
	m := &Multipart{}
	m.w = multipart.NewWriter(&m.buf)
	return m
}

// JSON adds a field whose value is v encoded as JSON.
func (m *Multipart) JSON(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q`, name))
	h.Set("Content-Type", "application/json")
	pw, err := m.w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = pw.Write(data)
	return err
}

// File adds a file part copied from r.
func (m *Multipart) File(field, filename string, r io.Reader) error {
	fw, err := m.w.CreateFormFile(field, filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(fw, r)
	return err
}

// Close finalizes the form and returns the body and its content type.
func (m *Multipart) Close() (io.Reader, string, error) {
	if err := m.w.Close(); err != nil {
		return nil, "", err
	}
	return &m.buf, m.w.FormDataContentType(), nil
}
