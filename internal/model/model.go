// Package model defines domain entities used by services, repositories and the API.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// UserType distinguishes the two profile roles.
type UserType string

const (
	UserTypeComprador UserType = "comprador"
	UserTypeVendedor  UserType = "vendedor"
)

// Valid reports whether the value is one of the two known roles.
func (t UserType) Valid() bool {
	return t == UserTypeComprador || t == UserTypeVendedor
}

// User is an authentication account. Profiles carry the public fields.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"` // unique
	PwdHash   []byte    `json:"-"`     // Argon2id(password, SaltAuth)
	SaltAuth  []byte    `json:"-"`     // per-user auth salt
	CreatedAt time.Time `json:"created_at"`
}

// Tokens collects issued access tokens.
type Tokens struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Profile is the public identity linked to a user, with role-specific counters.
// Counters are maintained transactionally alongside the writes that change them.
type Profile struct {
	ID          uuid.UUID `json:"id"` // same as users.id
	Email       string    `json:"email"`
	UserType    UserType  `json:"user_type"`
	Nombre      string    `json:"nombre"`
	Negocio     string    `json:"negocio,omitempty"`     // vendedor only
	Descripcion string    `json:"descripcion,omitempty"` // comprador only

	ProductosPublicados int `json:"productos_publicados"`
	ProductosVendidos   int `json:"productos_vendidos"`
	ObjetosComprados    int `json:"objetos_comprados"`

	CreatedAt time.Time `json:"created_at"`
}

// SellerInfo is the embedded seller display block on catalog and detail reads.
type SellerInfo struct {
	Nombre  string `json:"nombre"`
	Negocio string `json:"negocio"`
	Email   string `json:"email,omitempty"`
}

// DisplayName prefers the business name, falling back to the personal one.
func (s SellerInfo) DisplayName() string {
	if s.Negocio != "" {
		return s.Negocio
	}
	return s.Nombre
}

// Product is owned by exactly one vendedor. Precio is whole COP, never negative.
type Product struct {
	ID          uuid.UUID  `json:"id"`
	VendedorID  uuid.UUID  `json:"vendedor_id"`
	Nombre      string     `json:"nombre"`
	Descripcion string     `json:"descripcion"`
	Precio      int64      `json:"precio"`
	ImagenURL   string     `json:"imagen_url"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Vendedor    SellerInfo `json:"vendedor"`
}

// ProductSnapshot is the product view joined onto cart lines and purchases at
// read time. Prices seen here are not re-quoted at checkout.
type ProductSnapshot struct {
	Nombre     string    `json:"nombre"`
	Precio     int64     `json:"precio"`
	ImagenURL  string    `json:"imagen_url"`
	VendedorID uuid.UUID `json:"vendedor_id"`
}

// CartLine is one pending-purchase row. Cantidad is always >= 1; a decrement
// that would reach 0 deletes the line instead.
type CartLine struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	ProductoID uuid.UUID       `json:"producto_id"`
	Cantidad   int             `json:"cantidad"`
	Producto   ProductSnapshot `json:"producto"`
}

// Subtotal is the line contribution to the cart total.
func (l CartLine) Subtotal() int64 {
	return int64(l.Cantidad) * l.Producto.Precio
}

// Purchase is an immutable append-only record of one completed line-item sale.
type Purchase struct {
	ID          uuid.UUID       `json:"id"`
	CompradorID uuid.UUID       `json:"comprador_id"`
	ProductoID  uuid.UUID       `json:"producto_id"`
	Cantidad    int             `json:"cantidad"`
	Total       int64           `json:"total"`
	FechaCompra time.Time       `json:"fecha_compra"`
	Producto    ProductSnapshot `json:"producto"`
}
