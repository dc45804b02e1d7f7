// Package api is the typed REST client for the Tavola platform. It owns the
// wire formats (JSON bodies, multipart forms, the {error} envelope) and the
// error taxonomy; callers never touch net/http directly.
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
	"time"

	"github.com/tavolaapp/tavola-admin/internal/model"
	"github.com/tavolaapp/tavola-admin/internal/session"
)

const defaultTimeout = 15 * time.Second

// Client talks to the platform API. The session is read on every
// authenticated call and never written.
type Client struct {
	base string
	http *http.Client
	sess *session.Session
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying transport, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New builds a client for the given base URL.
func New(baseURL string, sess *session.Session, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: defaultTimeout},
		sess: sess,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// errEnvelope is the API's error response body.
type errEnvelope struct {
	Error string `json:"error"`
}

// do issues one request and decodes the response into out when non-nil.
// Transport failures, auth failures, and non-2xx responses map onto the
// package error types.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.sess.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &AuthError{Status: resp.StatusCode, Message: decodeError(resp.Body)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := decodeError(resp.Body)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &ServerError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(r io.Reader) string {
	var env errEnvelope
	if err := json.NewDecoder(io.LimitReader(r, 1<<16)).Decode(&env); err != nil {
		return ""
	}
	return env.Error
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, method, path, bytes.NewReader(raw), "application/json", out)
}

// Categories

// CategoryPayload is the JSON body for category create/update.
type CategoryPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	if err := c.getJSON(ctx, "/categories", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, p CategoryPayload) (model.Category, error) {
	var out model.Category
	err := c.sendJSON(ctx, http.MethodPost, "/categories", p, &out)
	return out, err
}

func (c *Client) UpdateCategory(ctx context.Context, id string, p CategoryPayload) (model.Category, error) {
	var out model.Category
	err := c.sendJSON(ctx, http.MethodPut, "/categories/"+url.PathEscape(id), p, &out)
	return out, err
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, "", nil)
}

// Menu items

// MenuItemForm is the multipart body for menu item create/update. Price is
// a decimal string; Image uploads under the "image" part when present.
type MenuItemForm struct {
	Name        string
	Description string
	Price       string
	CategoryID  string
	Image       *Upload
}

func (f MenuItemForm) fields() []field {
	return []field{
		{"name", f.Name},
		{"description", f.Description},
		{"price", f.Price},
		{"category", f.CategoryID},
	}
}

func (c *Client) ListMenuItems(ctx context.Context) ([]model.MenuItem, error) {
	var out []model.MenuItem
	if err := c.getJSON(ctx, "/menu-items", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateMenuItem(ctx context.Context, f MenuItemForm) (model.MenuItem, error) {
	var out model.MenuItem
	err := c.sendForm(ctx, http.MethodPost, "/menu-items", f.fields(), "image", f.Image, &out)
	return out, err
}

func (c *Client) UpdateMenuItem(ctx context.Context, id string, f MenuItemForm) (model.MenuItem, error) {
	var out model.MenuItem
	err := c.sendForm(ctx, http.MethodPut, "/menu-items/"+url.PathEscape(id), f.fields(), "image", f.Image, &out)
	return out, err
}

func (c *Client) DeleteMenuItem(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/menu-items/"+url.PathEscape(id), nil, "", nil)
}

// Ingredients

// IngredientForm is the multipart body for ingredient create/update.
type IngredientForm struct {
	Name    string
	Price   string
	Picture *Upload
}

func (f IngredientForm) fields() []field {
	return []field{
		{"name", f.Name},
		{"price", f.Price},
	}
}

func (c *Client) ListIngredients(ctx context.Context) ([]model.Ingredient, error) {
	var out []model.Ingredient
	if err := c.getJSON(ctx, "/ingredients", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveIngredient creates when id is empty and updates otherwise. The
// backend binds both to POST, with the id appended for updates; that verb
// quirk stays contained here.
func (c *Client) SaveIngredient(ctx context.Context, id string, f IngredientForm) (model.Ingredient, error) {
	path := "/ingredients"
	if id != "" {
		path += "/" + url.PathEscape(id)
	}
	var out model.Ingredient
	err := c.sendForm(ctx, http.MethodPost, path, f.fields(), "picture", f.Picture, &out)
	return out, err
}

func (c *Client) DeleteIngredient(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/ingredients/"+url.PathEscape(id), nil, "", nil)
}

// Orders

func (c *Client) ListOrders(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	if err := c.getJSON(ctx, "/orders", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (model.Order, error) {
	var out model.Order
	err := c.sendJSON(ctx, http.MethodPut, "/orders/"+url.PathEscape(id), map[string]model.OrderStatus{"status": status}, &out)
	return out, err
}

// Auth

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out loginResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", &ServerError{Status: http.StatusOK, Message: "login response carried no token"}
	}
	return out.Token, nil
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates an admin account.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	return c.sendJSON(ctx, http.MethodPost, "/auth/register", registerRequest{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     "admin",
	}, nil)
}
