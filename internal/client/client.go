package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sisgestion/empresas/internal/api"
	"github.com/sisgestion/empresas/internal/api/auth"
	"github.com/sisgestion/empresas/internal/api/empresa"
)

// APIError carries the failure envelope the server returned alongside
// its HTTP status.
type APIError struct {
	Status  int
	Message string
	Errors  []string
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("api error %d: %s (%s)", e.Status, e.Message, strings.Join(e.Errors, "; "))
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client is a typed consumer of the empresas API. Authenticated calls
// pick up the bearer token automatically through BearerTransport.
type Client struct {
	baseURL string
	http    *http.Client
	session *SessionStore
}

func New(baseURL string, session *SessionStore) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: &BearerTransport{Session: session},
		},
	}
}

// Login exchanges credentials for a token and persists the session.
func (c *Client) Login(ctx context.Context, email, password string) error {
	return c.authenticate(ctx, "/api/auth/login", auth.LoginRequest{
		Email:    email,
		Password: password,
	})
}

// Register creates an account. The server logs the new account in
// immediately, so the returned token is persisted just like Login's.
func (c *Client) Register(ctx context.Context, email, password, confirmPassword string) error {
	return c.authenticate(ctx, "/api/auth/register", auth.RegisterRequest{
		Email:           email,
		Password:        password,
		ConfirmPassword: confirmPassword,
	})
}

// Logout drops the persisted session. Purely local; tokens are not
// revocable server-side.
func (c *Client) Logout() error {
	return c.session.Clear()
}

func (c *Client) authenticate(ctx context.Context, path string, payload interface{}) error {
	resp, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
		Errors  []string        `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode auth response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !envelope.Success {
		return &APIError{Status: resp.StatusCode, Message: envelope.Message, Errors: envelope.Errors}
	}

	var authResp auth.AuthResponse
	if err := json.Unmarshal(envelope.Data, &authResp); err != nil {
		return fmt.Errorf("failed to decode auth payload: %w", err)
	}
	return c.session.Save(authResp.Token, authResp.Email, authResp.Expiration)
}

// GetEmpresas lists every empresa.
func (c *Client) GetEmpresas(ctx context.Context) ([]empresa.Empresa, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/empresas", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.asAPIError(resp)
	}
	var empresas []empresa.Empresa
	if err := json.NewDecoder(resp.Body).Decode(&empresas); err != nil {
		return nil, fmt.Errorf("failed to decode empresas: %w", err)
	}
	return empresas, nil
}

// GetEmpresa fetches a single empresa. Returns api.ErrNotFound when the
// id does not exist.
func (c *Client) GetEmpresa(ctx context.Context, id int) (*empresa.Empresa, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/empresas/%d", id), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return nil, api.ErrNotFound
	default:
		return nil, c.asAPIError(resp)
	}

	var e empresa.Empresa
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		return nil, fmt.Errorf("failed to decode empresa: %w", err)
	}
	return &e, nil
}

// CreateEmpresa posts a new record and returns it with the assigned id.
func (c *Client) CreateEmpresa(ctx context.Context, e *empresa.Empresa) (*empresa.Empresa, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/empresas", e)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, c.asAPIError(resp)
	}
	var created empresa.Empresa
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode created empresa: %w", err)
	}
	return &created, nil
}

// UpdateEmpresa overwrites the record whose id matches e.EmpresaID.
// Returns api.ErrNotFound when the record vanished.
func (c *Client) UpdateEmpresa(ctx context.Context, e *empresa.Empresa) error {
	resp, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/empresas/%d", e.EmpresaID), e)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return api.ErrNotFound
	default:
		return c.asAPIError(resp)
	}
}

// DeleteEmpresa removes a record. Returns api.ErrNotFound when it was
// already gone.
func (c *Client) DeleteEmpresa(ctx context.Context, id int) error {
	resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/empresas/%d", id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return api.ErrNotFound
	default:
		return c.asAPIError(resp)
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func (c *Client) asAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var envelope struct {
		Message string   `json:"message"`
		Errors  []string `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		if envelope.Message != "" {
			apiErr.Message = envelope.Message
		}
		apiErr.Errors = envelope.Errors
	}
	return apiErr
}
