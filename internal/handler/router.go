package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"strikealight/playhub/internal/config"
	"strikealight/playhub/internal/handler/middleware"
	jwtpkg "strikealight/playhub/pkg/jwt"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	jwtManager *jwtpkg.Manager,
	authHandler *AuthHandler,
	voucherHandler *VoucherHandler,
	studentHandler *StudentHandler,
	directoryHandler *DirectoryHandler,
	adminHandler *AdminHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Voucher contract, consumed by terminals and web clients. The token is
	// the credential; no session auth on this surface.
	r.POST("/vouchers", voucherHandler.Issue)
	r.GET("/vouchers/:token", voucherHandler.Get)
	r.POST("/vouchers/:token/redeem", voucherHandler.Redeem)

	// Public auth routes
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	// Protected routes
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth(jwtManager))
	{
		protected.POST("/auth/logout", authHandler.Logout)

		// Student management
		protected.POST("/students", studentHandler.Create)
		protected.GET("/students/:id", studentHandler.Get)
		protected.GET("/institutions/:institutionId/students", studentHandler.ListByInstitution)
		protected.DELETE("/students/:id", studentHandler.Delete)

		// Directory lookups for dashboards
		protected.GET("/users/:id", directoryHandler.GetUser)
		protected.GET("/institutions/:institutionId", directoryHandler.GetInstitution)
	}

	// Admin routes (JWT + operator allow-list)
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.JWTAuth(jwtManager))
	admin.Use(middleware.AdminAuth(cfg.Admin.UserIDs))
	{
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/users", adminHandler.SearchUsers)
		admin.GET("/institutions", adminHandler.SearchInstitutions)
		admin.GET("/institutions/:id/students", adminHandler.InstitutionStudents)

		admin.GET("/vouchers", voucherHandler.List)
		admin.POST("/vouchers/:token/revoke", voucherHandler.Revoke)
	}

	return r
}
