package main

import (
	"github.com/gin-gonic/gin"

	domainerrors "wealthline.backend/internal/domain/errors"
	"wealthline.backend/internal/interfaces/http/handlers"
	"wealthline.backend/internal/interfaces/http/middleware"
	"wealthline.backend/internal/interfaces/http/response"
)

type routeDeps struct {
	authHandler       *handlers.AuthHandler
	profileHandler    *handlers.ProfileHandler
	withdrawalHandler *handlers.WithdrawalHandler
	adminHandler      *handlers.AdminHandler
	pagesHandler      *handlers.PagesHandler
	storageHandler    *handlers.StorageHandler
	routeGate         gin.HandlerFunc
	authLimiter       gin.HandlerFunc
}

func registerRoutes(r *gin.Engine, d routeDeps) {
	registerPageRoutes(r, d)
	registerAPIV1Routes(r, d)

	// Admin console endpoint kept at its historical path
	r.POST("/api/admin", middleware.IdempotencyMiddleware(), d.adminHandler.Command)

	r.GET("/storage/v1/object/sign/:bucket/*path", d.storageHandler.ServeSigned)

	// unknown pages still pass the gate so protected prefixes redirect
	r.NoRoute(d.routeGate, func(c *gin.Context) {
		response.Error(c, domainerrors.NotFound("Not found"))
	})
}

// registerPageRoutes mounts the gated page view models.
func registerPageRoutes(r *gin.Engine, d routeDeps) {
	pages := r.Group("")
	pages.Use(d.routeGate)
	{
		pages.GET("/", d.pagesHandler.Landing)
		pages.GET("/login", d.pagesHandler.Login)
		pages.GET("/auth", d.pagesHandler.Auth)
		pages.GET("/reset-password", d.pagesHandler.ResetPassword)

		pages.GET("/dashboard", d.pagesHandler.Dashboard)
		pages.GET("/invest", d.pagesHandler.Invest)
		pages.GET("/invest/create", d.pagesHandler.InvestCreate)
		pages.GET("/withdraw", d.pagesHandler.Withdraw)
		pages.GET("/profile", d.pagesHandler.Profile)
		pages.GET("/admin", d.pagesHandler.Admin)
	}
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/signup/code", d.authLimiter, d.authHandler.SignupCode)
			auth.POST("/signup", d.authLimiter, d.authHandler.Signup)
			auth.POST("/login", d.authLimiter, d.authHandler.Login)
			auth.POST("/otp", d.authLimiter, d.authHandler.RequestOTP)
			auth.POST("/otp/verify", d.authLimiter, d.authHandler.VerifyOTP)
			auth.POST("/password/reset", d.authLimiter, d.authHandler.RequestPasswordReset)
			auth.POST("/password/recover", d.authHandler.RecoverPassword)
			auth.POST("/password/update", middleware.RequireAuth(), d.authHandler.UpdatePassword)
			auth.POST("/logout", d.authHandler.Logout)
			auth.GET("/me", d.authHandler.Me)
		}

		// Profile routes (protected)
		profile := v1.Group("/profile")
		profile.Use(middleware.RequireAuth())
		{
			profile.GET("", d.profileHandler.Get)
			profile.PUT("", d.profileHandler.Save)
			profile.POST("/id-document", d.profileHandler.UploadIDDocument)
			profile.GET("/id-document/preview", d.profileHandler.Preview)
		}

		v1.POST("/withdrawals", middleware.RequireAuth(), d.withdrawalHandler.Prepare)

		// Admin routes, authorization is checked per action
		admin := v1.Group("/admin")
		admin.Use(middleware.RequireAuth())
		{
			admin.POST("/commands", middleware.IdempotencyMiddleware(), d.adminHandler.Command)
			admin.GET("/plans", d.adminHandler.ListPlans)
			admin.GET("/users", d.adminHandler.ListUsers)
		}
	}
}
