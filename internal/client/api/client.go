// Package api is the HTTP client for the stone-budget server. Every call
// goes through one transport that attaches the stored token and one error
// translator that unwraps the response envelope.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shaunstone0/stone-budget/internal/client/session"
	"github.com/shaunstone0/stone-budget/internal/model"
)

// Error is a structured failure from the server, carrying the envelope's
// message and machine-readable kind alongside the HTTP status.
type Error struct {
	Status  int
	Kind    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// IsAuthFailure reports whether the error is a 401.
func (e *Error) IsAuthFailure() bool {
	return e.Status == http.StatusUnauthorized
}

// User mirrors the public user view in responses.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthData is the payload of register and login responses.
type AuthData struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Pagination accompanies list responses.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Pagination *Pagination     `json:"pagination"`
}

// Client talks to the server and keeps the session store in sync: a 401
// from any authenticated call clears the session asynchronously before the
// error is returned to the call site.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions *session.Store
	logger   *slog.Logger
}

// New builds a Client around the given session store. The transport injects
// the bearer token on every request except login and register.
func New(baseURL string, sessions *session.Store, logger *slog.Logger) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		sessions: sessions,
		logger:   logger,
	}
	c.http = &http.Client{
		Timeout: 30 * time.Second,
		Transport: &bearerTransport{
			base:     http.DefaultTransport,
			sessions: sessions,
		},
	}
	return c
}

// bearerTransport attaches the stored token to outgoing requests. Login and
// register are exempt: they establish the session rather than use it.
type bearerTransport struct {
	base     http.RoundTripper
	sessions *session.Store
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !isAuthExempt(req.URL.Path) {
		if token := t.sessions.Token(); token != "" {
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return t.base.RoundTrip(req)
}

func isAuthExempt(path string) bool {
	return strings.HasSuffix(path, "/auth/login") || strings.HasSuffix(path, "/auth/register")
}

// do performs one request and decodes the envelope. On any 401 from a
// non-exempt path, the session is cleared in the background and the error
// still reaches the caller.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) (*envelope, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &Error{Status: resp.StatusCode, Message: "Unexpected response from server"}
	}

	if resp.StatusCode == http.StatusUnauthorized && !isAuthExempt(req.URL.Path) {
		// Session invalidated remotely. Clear in the background so the
		// originating call site still sees the error first.
		go func() {
			c.logger.Debug("clearing session after 401")
			c.sessions.ClearSession()
		}()
	}

	if !env.Success {
		message := env.Message
		if message == "" {
			message = "Something went wrong"
		}
		return nil, &Error{Status: resp.StatusCode, Kind: env.Error, Message: message}
	}

	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decoding response data: %w", err)
		}
	}
	return &env, nil
}

// Register creates an account and stores the resulting session.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthData, error) {
	var data AuthData
	_, err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	}, &data)
	if err != nil {
		return nil, err
	}
	c.storeSession(&data)
	return &data, nil
}

// Login authenticates and stores the resulting session.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthData, error) {
	var data AuthData
	_, err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": email, "password": password,
	}, &data)
	if err != nil {
		return nil, err
	}
	c.storeSession(&data)
	return &data, nil
}

func (c *Client) storeSession(data *AuthData) {
	if data.Token == "" || data.User == nil {
		return
	}
	c.sessions.SetSession(data.Token, session.User{
		ID:    data.User.ID,
		Name:  data.User.Name,
		Email: data.User.Email,
	})
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var data struct {
		User *User `json:"user"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/auth/profile", nil, &data); err != nil {
		return nil, err
	}
	return data.User, nil
}

// Verify asks the server whether the stored token is still good.
func (c *Client) Verify(ctx context.Context) (*User, error) {
	var data struct {
		User       *User `json:"user"`
		TokenValid bool  `json:"tokenValid"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/auth/verify", nil, &data); err != nil {
		return nil, err
	}
	return data.User, nil
}

// Logout tells the server goodbye and clears the local session either way.
// Tokens are not revoked server-side, so a failed call still logs out
// locally.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
	c.sessions.ClearSession()
	return err
}

// ValidateStoredToken reconciles "token looks present" with "token is still
// valid" at startup. Any failure clears the session.
func (c *Client) ValidateStoredToken(ctx context.Context) bool {
	if c.sessions.Token() == "" {
		return false
	}
	if _, err := c.Verify(ctx); err != nil {
		c.logger.Debug("stored token rejected", slog.String("error", err.Error()))
		c.sessions.ClearSession()
		return false
	}
	return true
}

// --- Categories ---

func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/categories/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, name, description string) (*model.Category, error) {
	var out model.Category
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/categories/", map[string]string{
		"name": name, "description": description,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/categories/"+url.PathEscape(id), nil, nil)
	return err
}

// --- Banks ---

func (c *Client) ListBanks(ctx context.Context) ([]model.Bank, error) {
	var out []model.Bank
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/banks/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateBank(ctx context.Context, name, accountType string) (*model.Bank, error) {
	var out model.Bank
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/banks/", map[string]string{
		"name": name, "accountType": accountType,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteBank(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/banks/"+url.PathEscape(id), nil, nil)
	return err
}

// --- Bills ---

// BillFilter narrows ListBills. Zero values mean "no filter".
type BillFilter struct {
	Month      string
	Status     string
	CategoryID string
}

// CreateBillRequest is the payload for CreateBill. Dates use YYYY-MM-DD and
// months YYYY-MM.
type CreateBillRequest struct {
	Name        string  `json:"name"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status,omitempty"`
	PaymentType string  `json:"paymentType"`
	CategoryID  string  `json:"categoryId"`
	DueDate     string  `json:"dueDate"`
	BankID      string  `json:"bankId"`
	Month       string  `json:"month"`
}

func (c *Client) ListBills(ctx context.Context, filter BillFilter, page, limit int) ([]model.Bill, *Pagination, error) {
	q := url.Values{}
	if filter.Month != "" {
		q.Set("month", filter.Month)
	}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.CategoryID != "" {
		q.Set("categoryId", filter.CategoryID)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/v1/bills/"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []model.Bill
	env, err := c.do(ctx, http.MethodGet, path, nil, &out)
	if err != nil {
		return nil, nil, err
	}
	return out, env.Pagination, nil
}

func (c *Client) CreateBill(ctx context.Context, req CreateBillRequest) (*model.Bill, error) {
	var out model.Bill
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/bills/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteBill(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/bills/"+url.PathEscape(id), nil, nil)
	return err
}

// --- Balances ---

// CreateBalanceRequest is the payload for CreateBalance.
type CreateBalanceRequest struct {
	PersonName     string  `json:"personName"`
	BankID         string  `json:"bankId"`
	Month          string  `json:"month"`
	OpeningBalance float64 `json:"openingBalance"`
}

func (c *Client) ListBalances(ctx context.Context, month string) ([]model.MonthlyBalance, error) {
	var out []model.MonthlyBalance
	path := "/api/v1/balances/?month=" + url.QueryEscape(month)
	if _, err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateBalance(ctx context.Context, req CreateBalanceRequest) (*model.MonthlyBalance, error) {
	var out model.MonthlyBalance
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/balances/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteBalance(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/balances/"+url.PathEscape(id), nil, nil)
	return err
}
