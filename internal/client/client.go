// Package client talks to the marketplace HTTP API from the CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/andresfq/mercadito/internal/errs"
	"github.com/andresfq/mercadito/internal/model"
	"github.com/andresfq/mercadito/internal/service"
)

// Client wraps the JSON API. Token is optional; authenticated calls fail with
// ErrUnauthorized without one.
type Client struct {
	base  string
	token string
	http  *http.Client
}

// New trims the trailing slash off base.
func New(base, token string) *Client {
	return &Client{
		base:  strings.TrimRight(base, "/"),
		token: token,
		http:  &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken swaps the bearer token after login.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := statusErr(resp); err != nil {
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// statusErr maps HTTP statuses back to the shared sentinels.
func statusErr(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return errs.ErrUnauthorized
	case http.StatusForbidden:
		return errs.ErrForbidden
	case http.StatusNotFound:
		return errs.ErrNotFound
	case http.StatusConflict:
		return errs.ErrAlreadyExists
	case http.StatusUnprocessableEntity:
		return errs.ErrEmptyCart
	case http.StatusTooManyRequests:
		return errs.ErrRateLimited
	}
	if body.Error != "" {
		return fmt.Errorf("server: %s", body.Error)
	}
	return fmt.Errorf("server: status %d", resp.StatusCode)
}

// Register creates an account and returns the new user id.
func (c *Client) Register(ctx context.Context, in service.RegisterInput) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", in, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// LoginResult carries tokens plus the profile for role routing.
type LoginResult struct {
	Tokens  model.Tokens  `json:"tokens"`
	Profile model.Profile `json:"profile"`
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	in := map[string]string{"email": email, "password": password}
	var resp LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", in, &resp); err != nil {
		return LoginResult{}, err
	}
	c.token = resp.Tokens.AccessToken
	return resp, nil
}

// Catalog fetches the published product list.
func (c *Client) Catalog(ctx context.Context) ([]model.Product, error) {
	var resp struct {
		Productos []model.Product `json:"productos"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/productos", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Productos, nil
}

// Product fetches one product with seller contact fields.
func (c *Client) Product(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	if err := c.do(ctx, http.MethodGet, "/api/productos/"+id.String(), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Profile fetches the caller's profile.
func (c *Client) Profile(ctx context.Context) (*model.Profile, error) {
	var p model.Profile
	if err := c.do(ctx, http.MethodGet, "/api/perfil", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile writes buyer display fields; blanks keep the stored values.
func (c *Client) UpdateProfile(ctx context.Context, nombre, descripcion string) (*model.Profile, error) {
	in := map[string]string{"nombre": nombre, "descripcion": descripcion}
	var p model.Profile
	if err := c.do(ctx, http.MethodPut, "/api/perfil", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// MyProducts lists the seller's own products.
func (c *Client) MyProducts(ctx context.Context) ([]model.Product, error) {
	var resp struct {
		Productos []model.Product `json:"productos"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/vendedor/productos", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Productos, nil
}

// Publish creates a product.
func (c *Client) Publish(ctx context.Context, in service.ProductInput) (*model.Product, error) {
	var p model.Product
	if err := c.do(ctx, http.MethodPost, "/api/vendedor/productos", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProduct edits an owned product.
func (c *Client) UpdateProduct(ctx context.Context, id uuid.UUID, in service.ProductInput) (*model.Product, error) {
	var p model.Product
	if err := c.do(ctx, http.MethodPut, "/api/vendedor/productos/"+id.String(), in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProduct removes an owned product.
func (c *Client) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/vendedor/productos/"+id.String(), nil, nil)
}

// UploadImage posts a multipart image and returns its public URL.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("imagen", filepath.Base(filename))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/imagenes", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := statusErr(resp); err != nil {
		return "", err
	}

	var out struct {
		ImagenURL string `json:"imagen_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.ImagenURL, nil
}

// CartView mirrors the server's cart payload.
type CartView struct {
	Lines []model.CartLine `json:"lines"`
	Total int64            `json:"total"`
	Count int              `json:"count"`
}

// Cart fetches the current cart.
func (c *Client) Cart(ctx context.Context) (CartView, error) {
	var v CartView
	err := c.do(ctx, http.MethodGet, "/api/carrito", nil, &v)
	return v, err
}

// AddToCart adds a product or bumps its existing line.
func (c *Client) AddToCart(ctx context.Context, productoID uuid.UUID) (*model.CartLine, error) {
	in := map[string]string{"producto_id": productoID.String()}
	var l model.CartLine
	if err := c.do(ctx, http.MethodPost, "/api/carrito", in, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// ChangeQuantity applies delta (+1/-1) to a cart line.
func (c *Client) ChangeQuantity(ctx context.Context, lineID uuid.UUID, delta int) (CartView, error) {
	in := map[string]int{"delta": delta}
	var v CartView
	err := c.do(ctx, http.MethodPut, "/api/carrito/"+lineID.String(), in, &v)
	return v, err
}

// RemoveFromCart deletes one line.
func (c *Client) RemoveFromCart(ctx context.Context, lineID uuid.UUID) (CartView, error) {
	var v CartView
	err := c.do(ctx, http.MethodDelete, "/api/carrito/"+lineID.String(), nil, &v)
	return v, err
}

// ClearCart deletes every line.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/carrito", nil, nil)
}

// CheckoutResult carries the purchase records and their grand total.
type CheckoutResult struct {
	Compras []model.Purchase `json:"compras"`
	Total   int64            `json:"total"`
}

// Checkout converts the cart into purchases.
func (c *Client) Checkout(ctx context.Context) (CheckoutResult, error) {
	var r CheckoutResult
	err := c.do(ctx, http.MethodPost, "/api/checkout", nil, &r)
	return r, err
}

// Purchases fetches the buyer's history, newest first.
func (c *Client) Purchases(ctx context.Context) ([]model.Purchase, error) {
	var resp struct {
		Compras []model.Purchase `json:"compras"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/compras", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Compras, nil
}
