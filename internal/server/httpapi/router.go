package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/andresfq/mercadito/internal/model"
)

// NewRouter assembles the gin engine: recovery, logging, CORS, routes and
// the static image mount.
func NewRouter(s *Server, signKey []byte, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(Recover(log))
	r.Use(Logging(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	if s.images != nil {
		r.Static(s.images.PublicPrefix(), s.images.Dir())
	}

	api := r.Group("/api")
	{
		api.POST("/auth/register", s.handleRegister)
		api.POST("/auth/login", s.handleLogin)

		api.GET("/productos", s.handleCatalog)
		api.GET("/productos/:id", s.handleProductDetail)
	}

	authed := r.Group("/api", Auth(signKey))
	{
		authed.GET("/perfil", s.handleProfile)
		authed.PUT("/perfil", s.handleProfileUpdate)
	}

	vendedor := r.Group("/api", Auth(signKey), RequireRole(s, model.UserTypeVendedor))
	{
		vendedor.GET("/vendedor/productos", s.handleSellerProducts)
		vendedor.POST("/vendedor/productos", s.handlePublish)
		vendedor.PUT("/vendedor/productos/:id", s.handleProductUpdate)
		vendedor.DELETE("/vendedor/productos/:id", s.handleProductDelete)
		vendedor.POST("/imagenes", s.handleImageUpload)
	}

	comprador := r.Group("/api", Auth(signKey), RequireRole(s, model.UserTypeComprador))
	{
		comprador.GET("/carrito", s.handleCartList)
		comprador.POST("/carrito", s.handleCartAdd)
		comprador.PUT("/carrito/:id", s.handleCartQuantity)
		comprador.DELETE("/carrito/:id", s.handleCartRemove)
		comprador.DELETE("/carrito", s.handleCartClear)
		comprador.POST("/checkout", s.handleCheckout)
		comprador.GET("/compras", s.handlePurchases)
	}

	return r
}
