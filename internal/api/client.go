// Package api implements the REST client for the dealer-panel backend.
//
// Every endpoint answers with the same envelope, `{success, data,
// message}`; non-2xx statuses and success=false are collapsed into one
// failure class so callers never branch on transport detail. A bearer
// credential is attached whenever the session provides one.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/panelkit/dealerpanel/internal/platform/errors"
	"github.com/panelkit/dealerpanel/internal/platform/timeouts"
)

// CredentialSource supplies the bearer credential for outgoing calls.
// An empty token means a guest session and sends no Authorization
// header.
type CredentialSource interface {
	Token() string
}

// Client is the shared HTTP client all resource gateways hang off.
type Client struct {
	baseURL string
	httpc   *http.Client
	creds   CredentialSource
}

// New creates a client for the backend at baseURL (for example
// "https://panel.example.com/api").
func New(baseURL string, creds CredentialSource) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, apperrors.New(apperrors.CodeConfigInvalid, "api base url is required")
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeouts.HTTPRequest},
		creds:   creds,
	}, nil
}

// envelope is the uniform response wrapper used by every endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) send(ctx context.Context, method, path string, body any, out any) error {
	return c.do(ctx, method, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeAPIRequestFailed, "encode request body", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeAPIRequestFailed, fmt.Sprintf("%s %s", method, path), err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeAPIRequestFailed, fmt.Sprintf("read %s %s response", method, path), err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return apperrors.New(apperrors.CodeAPIUnauthorized,
			fmt.Sprintf("%s %s: backend returned %d", method, path, resp.StatusCode))
	}

	var env envelope
	decodeErr := json.Unmarshal(payload, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := env.Message
		if decodeErr != nil || message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return apperrors.WithMetadata(apperrors.CodeAPIRejected,
			fmt.Sprintf("%s %s: backend returned %d: %s", method, path, resp.StatusCode, message),
			map[string]string{"message": message})
	}
	if decodeErr != nil {
		return apperrors.Wrap(apperrors.CodeAPIRequestFailed,
			fmt.Sprintf("decode %s %s response", method, path), decodeErr)
	}
	if !env.Success {
		message := env.Message
		if message == "" {
			message = "request rejected"
		}
		return apperrors.WithMetadata(apperrors.CodeAPIRejected,
			fmt.Sprintf("%s %s: %s", method, path, message),
			map[string]string{"message": message})
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return apperrors.Wrap(apperrors.CodeAPIRequestFailed,
				fmt.Sprintf("decode %s %s data", method, path), err)
		}
	}
	return nil
}

// download streams a non-enveloped binary response (file exports) into w.
func (c *Client) download(ctx context.Context, path string, query url.Values, w io.Writer) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeAPIRequestFailed, "GET "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return apperrors.New(apperrors.CodeAPIUnauthorized,
			fmt.Sprintf("GET %s: backend returned %d", path, resp.StatusCode))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.WithMetadata(apperrors.CodeAPIRejected,
			fmt.Sprintf("GET %s: backend returned %d", path, resp.StatusCode),
			map[string]string{"message": http.StatusText(resp.StatusCode)})
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return apperrors.Wrap(apperrors.CodeAPIRequestFailed, "stream "+path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeAPIRequestFailed, fmt.Sprintf("build %s %s", method, path), err)
	}
	if c.creds != nil {
		if token := c.creds.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}
