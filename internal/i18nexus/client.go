// Package i18nexus is a client for the i18nexus project resources API, used as
// the external machine translation source for courses.
package i18nexus

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
)

const (
	DefaultBaseURL = "https://api.i18nexus.com/project_resources"

	defaultTimeout     = 30 * time.Second
	maxRetries         = 3
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2
)

// Credentials authenticate reads (APIKey) and writes (AccessToken).
type Credentials struct {
	APIKey      string
	AccessToken string
}

// CredentialSource supplies credentials at request time so they can be rotated
// without restarting.
type CredentialSource interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// StaticCredentials is a fixed CredentialSource.
type StaticCredentials Credentials

func (s StaticCredentials) Credentials(context.Context) (Credentials, error) {
	return Credentials(s), nil
}

// Client interfaces with the i18nexus API
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      CredentialSource
	retryDelay time.Duration
}

// NewClient creates a new i18nexus API client
func NewClient(baseURL string, timeout time.Duration, creds CredentialSource) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		retryDelay: initialRetryDelay,
	}
}

// Namespace is a translation namespace; one per course.
type Namespace struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"created_at"`
}

// Language is a project language.
type Language struct {
	Name         string `json:"name"`
	FullCode     string `json:"full_code"`
	LanguageCode string `json:"language_code"`
	BaseLanguage bool   `json:"base_language"`
}

type collection[T any] struct {
	Collection []T `json:"collection"`
}

// Namespaces lists all namespaces of the project
func (c *Client) Namespaces(ctx context.Context) ([]Namespace, error) {
	var resp collection[Namespace]
	if err := c.call(ctx, http.MethodGet, "namespaces.json", nil, false, &resp); err != nil {
		return nil, fmt.Errorf("list namespaces: %w", err)
	}
	return resp.Collection, nil
}

// CreateNamespace creates a namespace with the given title
func (c *Client) CreateNamespace(ctx context.Context, title string) error {
	body := map[string]string{"title": title}
	if err := c.call(ctx, http.MethodPost, "namespaces.json", body, true, nil); err != nil {
		return fmt.Errorf("create namespace %q: %w", title, err)
	}
	return nil
}

// CreateString creates a base language string, which triggers machine translation
// into every project language.
func (c *Client) CreateString(ctx context.Context, key, value, namespace, aiInstructions string) error {
	body := map[string]string{"key": key, "value": value, "namespace": namespace}
	if aiInstructions != "" {
		body["ai_instructions"] = aiInstructions
	}
	if err := c.call(ctx, http.MethodPost, "base_strings.json", body, true, nil); err != nil {
		return fmt.Errorf("create string %q: %w", key, err)
	}
	return nil
}

// ImportStrings imports strings per language into a namespace without translating them.
func (c *Client) ImportStrings(ctx context.Context, namespace string, languages map[string]map[string]string, overwrite, confirm bool) error {
	body := map[string]any{
		"namespace": namespace,
		"languages": languages,
		"overwrite": overwrite,
		"confirm":   confirm,
	}
	if err := c.call(ctx, http.MethodPost, "import.json", body, true, nil); err != nil {
		return fmt.Errorf("import strings into %q: %w", namespace, err)
	}
	return nil
}

// DeleteString deletes a base string by key and namespace
func (c *Client) DeleteString(ctx context.Context, key, namespace string) error {
	body := map[string]any{"id": map[string]string{"key": key, "namespace": namespace}}
	if err := c.call(ctx, http.MethodDelete, "base_strings.json", body, true, nil); err != nil {
		return fmt.Errorf("delete string %q: %w", key, err)
	}
	return nil
}

// Translations fetches the strings of one language and namespace flattened into
// dot keys. Non-string leaves are ignored. It returns ErrNoTranslations when the
// pair has no data.
func (c *Client) Translations(ctx context.Context, languageCode, namespace string) (map[string]string, error) {
	path := fmt.Sprintf("translations/%s/%s.json", url.PathEscape(languageCode), url.PathEscape(namespace))
	var nested map[string]any
	err := c.call(ctx, http.MethodGet, path, nil, false, &nested)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return nil, ErrNoTranslations
	}
	if err != nil {
		return nil, fmt.Errorf("fetch translations %s/%s: %w", languageCode, namespace, err)
	}
	flat := Flatten(nested)
	if len(flat) == 0 {
		return nil, ErrNoTranslations
	}
	return flat, nil
}

// Languages lists the project languages
func (c *Client) Languages(ctx context.Context) ([]Language, error) {
	var resp collection[Language]
	if err := c.call(ctx, http.MethodGet, "languages.json", nil, false, &resp); err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	return resp.Collection, nil
}

// Flatten turns nested objects into dot keys, keeping only string leaves.
func Flatten(nested map[string]any) map[string]string {
	out := make(map[string]string)
	flattenInto(out, "", nested)
	return out
}

func flattenInto(out map[string]string, prefix string, obj map[string]any) {
	for k, v := range obj {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch t := v.(type) {
		case string:
			out[key] = t
		case map[string]any:
			flattenInto(out, key, t)
		}
	}
}

func (c *Client) call(ctx context.Context, method, path string, body any, write bool, out any) error {
	if c.creds == nil {
		return ErrNotConfigured
	}
	creds, err := c.creds.Credentials(ctx)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	if creds.APIKey == "" || (write && creds.AccessToken == "") {
		return ErrNotConfigured
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	u := c.baseURL + "/" + path + "?api_key=" + url.QueryEscape(creds.APIKey)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.calculateRetryDelay(attempt)):
			}
		}

		lastErr = c.doRequest(ctx, method, u, payload, write, creds, out)
		if lastErr == nil {
			return nil
		}

		// Only retry on rate limits, server errors and transport failures
		if !isRetryableError(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, method, u string, payload []byte, write bool, creds Credentials, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if write {
		req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrInvalidToken
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode >= 500:
		return &ServerError{StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) calculateRetryDelay(attempt int) time.Duration {
	delay := c.retryDelay
	for i := 0; i < attempt-1; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func isRetryableError(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return false
}

// IsUnavailable reports whether err means the service could not be reached or
// kept failing, as opposed to rejecting the request.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if isRetryableError(err) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
