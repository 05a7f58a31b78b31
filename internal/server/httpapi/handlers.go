// Package httpapi exposes the marketplace over a JSON HTTP API.
package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/andresfq/mercadito/internal/errs"
	"github.com/andresfq/mercadito/internal/model"
	"github.com/andresfq/mercadito/internal/service"
	"github.com/andresfq/mercadito/internal/storage"
)

// Server holds the services behind the HTTP handlers.
type Server struct {
	auth     service.AuthService
	products service.ProductService
	cart     service.CartService
	checkout service.CheckoutService
	profile  service.ProfileService
	images   *storage.ImageStore // nil disables uploads
	log      *zap.Logger
}

// NewServer wires handlers to services. images may be nil.
func NewServer(
	auth service.AuthService,
	products service.ProductService,
	cart service.CartService,
	checkout service.CheckoutService,
	profile service.ProfileService,
	images *storage.ImageStore,
	log *zap.Logger,
) *Server {
	return &Server{
		auth:     auth,
		products: products,
		cart:     cart,
		checkout: checkout,
		profile:  profile,
		images:   images,
		log:      log,
	}
}

// writeErr maps sentinel errors to HTTP statuses. Unmapped errors never leak
// to the client; they are logged here instead.
func (s *Server) writeErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, errs.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, errs.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, errs.ErrEmptyCart):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "empty cart"})
	case errors.Is(err, errs.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts"})
	case strings.HasPrefix(err.Error(), "validation:"):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.log.Error("internal error",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
	}
}

func (s *Server) handleRegister(c *gin.Context) {
	var in service.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	id, err := s.auth.Register(c.Request.Context(), in)
	if err != nil {
		s.writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Tokens  model.Tokens  `json:"tokens"`
	Profile model.Profile `json:"profile"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var in loginRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	tokens, prof, err := s.auth.LoginWithIP(c.Request.Context(), in.Email, in.Password, c.ClientIP())
	if err != nil {
		s.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{Tokens: tokens, Profile: prof})
}

func (s *Server) handleCatalog(c *gin.Context) {
	products, err := s.products.Catalog(c.Request.Context())
	if err != nil {
		s.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"productos": products})
}

func (s *Server) handleProductDetail(c *gin.Context) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad product id"})
		return
	}
	p, err := s.products.Get(c.Request.Context(), id)
	if err != nil {
		s.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleProfile(c *gin.Context) {
	id, _ := UserIDFrom(c)
	prof, err := s.profile.Get(c.Request.Context(), id)
	if err != nil {
		s.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, prof)
}

type profileUpdateRequest struct {
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
}

func (s *Server) handleProfileUpdate(c *gin.Context) {
	id, _ := UserIDFrom(c)
	var in profileUpdateRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	prof, err := s.profile.UpdateComprador(c.Request.Context(), id, in.Nombre, in.Descripcion)
	if err != nil {
		s.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, prof)
}

func (s *Server) handleSellerProducts(c *gin.Context) {
	id, _ := UserIDFrom(c)
	products, err := s.products.ListByVendedor(c.Request.Context(), id)
	if err != nil {
		s.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"productos": products})
}

func (s *Server) handlePublish(c *gin.Context) {
	id, _ := UserIDFrom(c)
	var in service.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	p, err := s.products.Publish(c.Request.Context(), id, in)
	if err != nil {
		s.writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) handleProductUpdate(c *gin.Context) {
	uid, _ := UserIDFrom(c)
	pid, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad product id"})
		return
	}
	var in service.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	prev := s.storedImage(c, uid, pid)
	p, err := s.products.Update(c.Request.Context(), uid, pid, in)
	if err != nil {
		s.writeErr(c, err)
		return
	}
	if prev != "" && prev != p.ImagenURL {
		s.removeImage(c, prev)
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleProductDelete(c *gin.Context) {
	uid, _ := UserIDFrom(c)
	pid, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad product id"})
		return
	}
	img := s.storedImage(c, uid, pid)
	if err := s.products.Delete(c.Request.Context(), uid, pid); err != nil {
		s.writeErr(c, err)
		return
	}
	if img != "" {
		s.removeImage(c, img)
	}
	c.Status(http.StatusNoContent)
}

// storedImage reads the current image URL of the seller's own product so it
// can be deleted from disk after the product row changes. Any lookup failure
// is left for the service call to report.
func (s *Server) storedImage(c *gin.Context, uid, pid uuid.UUID) string {
	if s.images == nil {
		return ""
	}
	p, err := s.products.Get(c.Request.Context(), pid)
	if err != nil || p.VendedorID != uid {
		return ""
	}
	return p.ImagenURL
}

func (s *Server) removeImage(c *gin.Context, url string) {
	if err := s.images.Remove(url); err != nil {
		s.log.Warn("remove image",
			zap.String("imagen_url", url),
			zap.Error(err),
		)
	}
}

func (s *Server) handleImageUpload(c *gin.Context) {
	if s.images == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "uploads disabled"})
		return
	}
	fh, err := c.FormFile("imagen")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "imagen is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "imagen is required"})
		return
	}
	defer f.Close()

	url, err := s.images.Save(fh.Filename, f)
	if err != nil {
		s.writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"imagen_url": url})
}

// cartView is the single source for lines, total and badge count.
type cartView struct {
	Lines []model.CartLine `json:"lines"`
	Total int64            `json:"total"`
	Count int              `json:"count"`
}

func newCartView(lines []model.CartLine) cartView {
	return cartView{Lines: lines, Total: service.Summary(lines), Count: len(lines)}
}

func (s *Server) handleCartList(c *gin.Context) {
	id, _ := UserIDFrom(c)
	lines, err := s.cart.List(c.Request.Context(), id)
	if err != nil {
		s.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartView(lines))
}

type cartAddRequest struct {
	ProductoID uuid.UUID `json:"producto_id"`
}

func (s *Server) handleCartAdd(c *gin.Context) {
	id, _ := UserIDFrom(c)
	var in cartAddRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	line, err := s.cart.AddOrIncrement(c.Request.Context(), id, in.ProductoID)
	if err != nil {
		s.writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, line)
}

type cartQtyRequest struct {
	Delta int `json:"delta"`
}

func (s *Server) handleCartQuantity(c *gin.Context) {
	uid, _ := UserIDFrom(c)
	lineID, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad line id"})
		return
	}
	var in cartQtyRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	lines, err := s.cart.ChangeQuantity(c.Request.Context(), uid, lineID, in.Delta)
	if err != nil {
		s.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartView(lines))
}

func (s *Server) handleCartRemove(c *gin.Context) {
	uid, _ := UserIDFrom(c)
	lineID, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad line id"})
		return
	}
	lines, err := s.cart.Remove(c.Request.Context(), uid, lineID)
	if err != nil {
		s.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartView(lines))
}

func (s *Server) handleCartClear(c *gin.Context) {
	uid, _ := UserIDFrom(c)
	if err := s.cart.Clear(c.Request.Context(), uid); err != nil {
		s.writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleCheckout(c *gin.Context) {
	uid, _ := UserIDFrom(c)
	purchases, err := s.checkout.Checkout(c.Request.Context(), uid)
	if err != nil {
		s.writeErr(c, err)
		return
	}
	var total int64
	for _, p := range purchases {
		total += p.Total
	}
	c.JSON(http.StatusOK, gin.H{"compras": purchases, "total": total})
}

func (s *Server) handlePurchases(c *gin.Context) {
	uid, _ := UserIDFrom(c)
	purchases, err := s.profile.Historial(c.Request.Context(), uid)
	if err != nil {
		s.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"compras": purchases})
}
