package out

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"studyhub/internal/modules/mirror/domain"
	mirrorout "studyhub/internal/modules/mirror/port/out"
	apperrors "studyhub/internal/platform/errors"
)

// ListResponse is the body of a collection listing.
type ListResponse struct {
	Items []json.RawMessage `json:"items"`
}

type errorBody struct {
	Error string `json:"error"`
}

// HTTPDocumentAPI talks to a mirror server over
// /api/v1/users/{uid}/{collection}[/{id}].
type HTTPDocumentAPI struct {
	httpClient *http.Client
	baseURL    string
}

func NewHTTPDocumentAPI(httpClient *http.Client, baseURL string, timeout time.Duration) mirrorout.DocumentAPI {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HTTPDocumentAPI{httpClient: httpClient, baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

func (c *HTTPDocumentAPI) path(who domain.Identity, collection, id string) string {
	p := "/api/v1/users/" + url.PathEscape(who.UserID) + "/" + url.PathEscape(collection)
	if id != "" {
		p += "/" + url.PathEscape(id)
	}
	return p
}

func (c *HTTPDocumentAPI) Upsert(ctx context.Context, who domain.Identity, collection, id string, body json.RawMessage) error {
	return c.do(ctx, who, http.MethodPut, c.path(who, collection, id), body, nil)
}

func (c *HTTPDocumentAPI) Remove(ctx context.Context, who domain.Identity, collection, id string) error {
	err := c.do(ctx, who, http.MethodDelete, c.path(who, collection, id), nil, nil)
	if errors.Is(err, errGone) {
		return nil
	}
	return err
}

func (c *HTTPDocumentAPI) List(ctx context.Context, who domain.Identity, collection string) ([]json.RawMessage, error) {
	var out ListResponse
	if err := c.do(ctx, who, http.MethodGet, c.path(who, collection, ""), nil, &out); err != nil {
		if errors.Is(err, errGone) {
			return []json.RawMessage{}, nil
		}
		return nil, err
	}
	if out.Items == nil {
		out.Items = []json.RawMessage{}
	}
	return out.Items, nil
}

var errGone = fmt.Errorf("%w: not found", apperrors.ErrRemoteUnavailable)

func (c *HTTPDocumentAPI) do(ctx context.Context, who domain.Identity, method, path string, body []byte, out any) error {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", apperrors.ErrRemoteUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if who.Token != "" {
		token := who.Token
		if !strings.HasPrefix(strings.ToLower(token), "bearer ") {
			token = "Bearer " + token
		}
		req.Header.Set("Authorization", token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode %s: %v", apperrors.ErrRemoteUnavailable, path, err)
		}
		return nil
	}

	var eb errorBody
	_ = json.NewDecoder(resp.Body).Decode(&eb)
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: remote returned %d %s", apperrors.ErrAuthorizationRejected, resp.StatusCode, strings.TrimSpace(eb.Error))
	case http.StatusNotFound:
		return errGone
	default:
		if strings.TrimSpace(eb.Error) != "" {
			return fmt.Errorf("%w: remote %d: %s", apperrors.ErrRemoteUnavailable, resp.StatusCode, eb.Error)
		}
		return fmt.Errorf("%w: remote status %d", apperrors.ErrRemoteUnavailable, resp.StatusCode)
	}
}
