package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopcart-backend/internal/shared/middleware"
	"shopcart-backend/pkg/container"
)

func setupRouter(c *container.Container) *gin.Engine {
	if c.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	router.GET("/health", healthCheckHandler(c))

	v1 := router.Group("/v1")
	{
		setupAuthRoutes(v1, c)
		setupUserRoutes(v1, c)
		setupProductRoutes(v1, c)
		setupCouponRoutes(v1, c)
		setupCartRoutes(v1, c)
		setupAdminRoutes(v1, c)
	}

	return router
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database unreachable",
			})
			return
		}

		ctx.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": c.Config.App.Version,
		})
	}
}

func setupAuthRoutes(rg *gin.RouterGroup, c *container.Container) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", c.UserHandler.Register)
		auth.POST("/login", c.UserHandler.Login)
		auth.POST("/refresh", c.UserHandler.Refresh)
	}
}

func setupUserRoutes(rg *gin.RouterGroup, c *container.Container) {
	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(c.Config.JWT.Secret))
	{
		users.GET("/me", c.UserHandler.GetProfile)
	}
}

func setupProductRoutes(rg *gin.RouterGroup, c *container.Container) {
	products := rg.Group("/products")
	{
		products.GET("", c.ProductHandler.ListProducts)
		products.GET("/:id", c.ProductHandler.GetProduct)
	}
}

func setupCouponRoutes(rg *gin.RouterGroup, c *container.Container) {
	coupons := rg.Group("/coupons")
	{
		coupons.GET("", c.CouponHandler.ListActiveCoupons)
		coupons.POST("/validate",
			middleware.AuthMiddleware(c.Config.JWT.Secret),
			c.CouponHandler.ValidateCoupon,
		)
	}
}

func setupCartRoutes(rg *gin.RouterGroup, c *container.Container) {
	cart := rg.Group("/cart")
	cart.Use(middleware.AuthMiddleware(c.Config.JWT.Secret))
	{
		cart.GET("", c.CartHandler.GetCart)
		cart.DELETE("", c.CartHandler.ClearCart)

		cart.POST("/items", c.CartHandler.AddItem)
		cart.PUT("/items/:productId", c.CartHandler.UpdateItem)
		cart.DELETE("/items/:productId", c.CartHandler.RemoveItem)

		cart.POST("/coupons", c.CartHandler.ApplyCoupon)
		cart.DELETE("/coupons/:code", c.CartHandler.RemoveCoupon)
		cart.POST("/auto-apply", c.CartHandler.AutoApplyCoupons)
	}
}

func setupAdminRoutes(rg *gin.RouterGroup, c *container.Container) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(c.Config.JWT.Secret))
	admin.Use(middleware.AdminMiddleware())
	{
		coupons := admin.Group("/coupons")
		{
			coupons.POST("", c.CouponAdminHandler.CreateCoupon)
			coupons.GET("", c.CouponAdminHandler.ListCoupons)
			coupons.GET("/:id", c.CouponAdminHandler.GetCoupon)
			coupons.PUT("/:id", c.CouponAdminHandler.UpdateCoupon)
			coupons.PATCH("/:id/status", c.CouponAdminHandler.UpdateCouponStatus)
			coupons.DELETE("/:id", c.CouponAdminHandler.DeleteCoupon)
			coupons.GET("/:id/usage", c.CouponAdminHandler.GetUsageHistory)
			coupons.GET("/:id/usage/export", c.CouponAdminHandler.ExportUsageHistory)
		}

		products := admin.Group("/products")
		{
			products.POST("", c.ProductHandler.CreateProduct)
			products.PUT("/:id", c.ProductHandler.UpdateProduct)
			products.DELETE("/:id", c.ProductHandler.DeleteProduct)
		}
	}
}
