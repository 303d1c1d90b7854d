// Package backend implements the BackendClient port against the CoproConnect
// REST API. Every call passes through the same normalization pipeline: the
// current credential is attached (except on the auth endpoints), failures are
// classified into the closed model.ErrorKind set, and every resident record
// leaves with non-nil occupant and happix lists.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/coproconnect/panel/internal/domain/model"
	"github.com/coproconnect/panel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.BackendClient = (*Client)(nil)

// TokenSource supplies the current session credential and accepts the
// structured expiry signal raised on a 401 from an authorized endpoint.
// Implemented by application.SessionManager.
type TokenSource interface {
	// Token returns the current raw credential, or false when none is held.
	Token() (string, bool)

	// Invalidate clears the session because the backend rejected the
	// credential. Must be safe to call on an already-cleared session.
	Invalidate(ctx context.Context)
}

// Client implements the driven.BackendClient port over the backend REST API.
type Client struct {
	http    *http.Client
	baseURL string
	tokens  TokenSource
}

// NewClient creates a backend client with an in-memory HTTP cache transport
// so repeated GETs honor the backend's conditional request headers.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		http: &http.Client{
			Transport: httpcache.NewMemoryCacheTransport(),
			Timeout:   30 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an
// httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, tokens TokenSource) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
	}
}

// do executes one backend request. Non-2xx responses are drained and
// converted to classified errors; the caller only ever sees a successful
// response or a model.AppError. A 401 on an authorized endpoint additionally
// invalidates the session through the TokenSource.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, authorized bool) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if authorized {
		if tok, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Debug("backend request failed", "method", method, "path", path, "error", err)
		return nil, ClassifyStatus(0)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	// Drain so the underlying connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()

	slog.Debug("backend request rejected", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode == http.StatusUnauthorized && authorized {
		c.tokens.Invalidate(ctx)
		return nil, errSessionExpired()
	}

	return nil, ClassifyStatus(resp.StatusCode)
}

// decodeInto reads and decodes a JSON response body, always closing it.
func decodeInto(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// loginResponse is the wire shape of both auth exchanges.
type loginResponse struct {
	Token       string `json:"token"`
	MFARequired bool   `json:"mfa_required"`
	MaskedEmail string `json:"masked_email"`
	Message     string `json:"message"`
}

// Login sends credentials to the backend. The raw token is returned to the
// caller unvalidated; the session gateway owns local validity checking.
func (c *Client) Login(ctx context.Context, username, password string) (string, model.LoginResult, error) {
	payload := map[string]string{"username": username, "password": password}

	resp, err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, payload, false)
	if err != nil {
		return "", model.LoginResult{}, err
	}

	var body loginResponse
	if err := decodeInto(resp, &body); err != nil {
		return "", model.LoginResult{}, model.NewAppError(model.ErrGeneric, "Something went wrong. Please try again.")
	}

	if body.MFARequired {
		return "", model.LoginResult{
			MFARequired: true,
			MaskedEmail: body.MaskedEmail,
			Message:     body.Message,
		}, nil
	}

	return body.Token, model.LoginResult{Message: body.Message}, nil
}

// VerifyMFA exchanges a 6-digit code for a raw token.
func (c *Client) VerifyMFA(ctx context.Context, username, code string) (string, error) {
	payload := map[string]string{"username": username, "code": code}

	resp, err := c.do(ctx, http.MethodPost, "/api/auth/verify", nil, payload, false)
	if err != nil {
		return "", err
	}

	var body loginResponse
	if err := decodeInto(resp, &body); err != nil {
		return "", model.NewAppError(model.ErrGeneric, "Something went wrong. Please try again.")
	}

	if body.Token == "" {
		return "", model.NewAppError(model.ErrInvalidCredentials, "The verification code is invalid or has expired.")
	}

	return body.Token, nil
}

// FetchResidentsPage retrieves one page of residents with the backend's
// pagination metadata. Every record is normalized before it is returned.
func (c *Client) FetchResidentsPage(ctx context.Context, q model.PageQuery) (model.PagedResidents, error) {
	params := url.Values{}
	params.Set("page", fmt.Sprintf("%d", q.Page))
	params.Set("size", fmt.Sprintf("%d", q.Size))
	if s := strings.TrimSpace(q.Search); s != "" {
		params.Set("search", s)
	}
	if q.Building != "" {
		params.Set("batiment", q.Building)
	}
	if q.LotStatus != "" {
		params.Set("statutLot", q.LotStatus)
	}
	if q.SortField != "" {
		dir := q.SortDir
		if dir == "" {
			dir = model.SortAsc
		}
		params.Set("sort", q.SortField+","+string(dir))
	}

	resp, err := c.do(ctx, http.MethodGet, "/api/residents", params, nil, true)
	if err != nil {
		return model.PagedResidents{}, err
	}

	var page model.PagedResidents
	if err := decodeInto(resp, &page); err != nil {
		return model.PagedResidents{}, model.NewAppError(model.ErrGeneric, "Something went wrong. Please try again.")
	}

	page.Residents = NormalizeResidents(page.Residents)
	return page, nil
}

// FetchAllResidents retrieves the entire unpaginated collection, accepting
// both payload shapes the backend serves for it.
func (c *Client) FetchAllResidents(ctx context.Context) ([]model.Resident, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/residents/all", nil, nil, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewAppError(model.ErrGeneric, "Something went wrong. Please try again.")
	}

	residents, err := extractCollection(data)
	if err != nil {
		return nil, model.NewAppError(model.ErrGeneric, "Something went wrong. Please try again.")
	}

	return NormalizeResidents(residents), nil
}

// FetchStatistics retrieves the backend's aggregate counts.
func (c *Client) FetchStatistics(ctx context.Context) (model.Statistics, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/residents/statistics", nil, nil, true)
	if err != nil {
		return model.Statistics{}, err
	}

	var stats model.Statistics
	if err := decodeInto(resp, &stats); err != nil {
		return model.Statistics{}, model.NewAppError(model.ErrGeneric, "Something went wrong. Please try again.")
	}
	return stats, nil
}

// FetchApartmentHistory retrieves the audit trail for one apartment.
func (c *Client) FetchApartmentHistory(ctx context.Context, building, floor, door string) ([]model.HistoryEntry, error) {
	params := url.Values{}
	params.Set("batiment", building)
	params.Set("etage", floor)
	params.Set("porte", door)

	resp, err := c.do(ctx, http.MethodGet, "/api/residents/history/apartment", params, nil, true)
	if err != nil {
		return nil, err
	}

	var history []model.HistoryEntry
	if err := decodeInto(resp, &history); err != nil {
		return nil, model.NewAppError(model.ErrGeneric, "Something went wrong. Please try again.")
	}
	if history == nil {
		history = []model.HistoryEntry{}
	}
	return history, nil
}

// CreateResident creates a record and returns the normalized stored copy.
func (c *Client) CreateResident(ctx context.Context, r model.Resident) (model.Resident, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/residents", nil, r, true)
	if err != nil {
		return model.Resident{}, err
	}
	return c.readRecord(resp)
}

// UpdateResident replaces a record and returns the normalized stored copy.
func (c *Client) UpdateResident(ctx context.Context, r model.Resident) (model.Resident, error) {
	if r.ID == "" {
		return model.Resident{}, model.NewAppError(model.ErrValidation, "Missing identifier for update.")
	}

	resp, err := c.do(ctx, http.MethodPut, "/api/residents/"+url.PathEscape(r.ID), nil, r, true)
	if err != nil {
		return model.Resident{}, err
	}
	return c.readRecord(resp)
}

// DeleteResident removes a record.
func (c *Client) DeleteResident(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/api/residents/"+url.PathEscape(id), nil, nil, true)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return resp.Body.Close()
}

// ExportPDF streams the rendered PDF export into w.
func (c *Client) ExportPDF(ctx context.Context, kind driven.ExportKind, w io.Writer) error {
	resp, err := c.do(ctx, http.MethodGet, "/api/export/"+string(kind)+"/pdf", nil, nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return model.NewAppError(model.ErrGeneric, "Something went wrong. Please try again.")
	}
	return nil
}

// readRecord decodes a single resident from either payload shape and
// normalizes it.
func (c *Client) readRecord(resp *http.Response) (model.Resident, error) {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Resident{}, model.NewAppError(model.ErrGeneric, "Something went wrong. Please try again.")
	}

	r, err := extractRecord(data)
	if err != nil {
		return model.Resident{}, model.NewAppError(model.ErrGeneric, "Something went wrong. Please try again.")
	}
	return NormalizeResident(r), nil
}
