package server

import (
	"time" // CORS max age

	"artspace/internal/api"        // Custom package for API handlers
	"artspace/internal/config"     // Custom package for configuration
	"artspace/internal/db"         // Store operations
	"artspace/internal/middleware" // Custom package for middleware
	"artspace/internal/storage"    // Asset store

	"github.com/gin-contrib/cors"  // CORS middleware
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Deps are the explicitly constructed resources the routes run against
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Assets storage.AssetStore
	Redis  *redis.Client // nil disables caching
}

// AdminSeed derives the seed account from the configuration
func AdminSeed(cfg *config.Config) db.AdminSeed {
	return db.AdminSeed{Name: cfg.AdminName, Email: cfg.AdminEmail, Password: cfg.AdminPassword}
}

// NewRouter builds the gin engine with every route of the storefront API
func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.MaxMultipartMemory = cfg.MaxUploadMB << 20

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	corsCfg.MaxAge = 12 * time.Hour
	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	}
	r.Use(cors.New(corsCfg))

	// Storefront page and uploaded assets
	r.GET("/", api.IndexHandler(cfg.TemplateDir))
	r.GET("/static/uploads/:folder/:name", api.AssetHandler(d.Assets))

	apiGroup := r.Group("/api")

	// Public routes
	apiGroup.GET("/artworks", api.ListArtworksHandler(d.DB, d.Redis))
	apiGroup.POST("/register", api.RegisterHandler(d.DB, d.Redis, cfg.JWTSecret))
	apiGroup.POST("/login", api.LoginHandler(d.DB, d.Redis, cfg.JWTSecret, cfg.AdminEmail))
	apiGroup.POST("/upload", api.UploadHandler(d.DB, d.Assets, d.Redis))
	apiGroup.POST("/buy", api.BuyHandler(d.DB, d.Assets, d.Redis, cfg.AllowResale))
	apiGroup.POST("/edit", api.EditHandler(d.DB, d.Redis))
	apiGroup.POST("/delete_art", api.DeleteArtworkHandler(d.DB, d.Assets, d.Redis))

	deleteUser := api.DeleteUserHandler(d.DB, d.Redis, cfg.AdminEmail)

	// Signed-in routes, the user is re-read from the store on every request
	authGroup := apiGroup.Group("")
	authGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.CurrentUserMiddleware(d.DB))
	authGroup.POST("/delete_account", deleteUser)

	// Admin routes (protected, admin only)
	adminGroup := apiGroup.Group("")
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(d.DB))
	adminGroup.GET("/users", api.ListUsersHandler(d.DB, d.Redis))
	adminGroup.POST("/delete_user", deleteUser)
	adminGroup.POST("/reset", api.ResetHandler(d.DB, d.Assets, d.Redis, AdminSeed(cfg)))

	return r
}
