package routes

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/orchid/internal/catalog"
	"github.com/example/orchid/internal/config"
	"github.com/example/orchid/internal/handlers"
	"github.com/example/orchid/internal/middleware"
	"github.com/example/orchid/internal/models"
	"github.com/example/orchid/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, log *zap.Logger) {
	provider := catalog.NewGormProvider(db)

	mergeService := services.NewMergeService(db, log)
	wishlistService := services.NewWishlistService(db, provider, log)
	cartService := services.NewCartService(db, provider, log)
	recentService := services.NewRecentlyViewedService(db, cfg.RecentlyViewedLimit, log)
	addressService := services.NewAddressService(db, cfg.AllowedCities, cfg.AllowedCountries, log)
	couponService := services.NewCouponService(db, log)
	orderService := services.NewOrderService(db, provider, couponService, log)
	otpService := services.NewOTPService(db, log)

	authHandler := handlers.NewAuthHandler(db, cfg, mergeService)
	wishlistHandler := handlers.NewWishlistHandler(wishlistService)
	cartHandler := handlers.NewCartHandler(cartService)
	recentHandler := handlers.NewRecentlyViewedHandler(recentService)
	addressHandler := handlers.NewAddressHandler(addressService)
	couponHandler := handlers.NewCouponHandler(couponService)
	orderHandler := handlers.NewOrderHandler(orderService)
	adminHandler := handlers.NewAdminOrderHandler(orderService)
	deliveryHandler := handlers.NewDeliveryHandler(otpService)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Principal resolution; works for guests and accounts alike
	optional := api.Group("", middleware.OptionalAuthMiddleware(cfg))
	optional.Get("/session", authHandler.Session)

	// Owned collections, shared by guests and accounts
	wishlist := optional.Group("/wishlist")
	wishlist.Get("/", wishlistHandler.List)
	wishlist.Post("/", wishlistHandler.Add)
	wishlist.Get("/count", wishlistHandler.Count)
	wishlist.Get("/:productId", wishlistHandler.Check)
	wishlist.Delete("/", wishlistHandler.Clear)
	wishlist.Delete("/:productId", wishlistHandler.Remove)

	cart := optional.Group("/cart")
	cart.Get("/", cartHandler.List)
	cart.Post("/", cartHandler.Add)
	cart.Put("/:id", cartHandler.Update)
	cart.Delete("/", cartHandler.Clear)
	cart.Delete("/:id", cartHandler.Remove)

	recent := optional.Group("/recently-viewed")
	recent.Get("/", recentHandler.List)
	recent.Post("/", recentHandler.Record)

	// Coupon validation is open to guests; per-user limits apply to accounts
	optional.Post("/coupons/validate", couponHandler.Validate)

	// Account-only routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/profile/addresses", addressHandler.List)
	protected.Post("/profile/addresses", addressHandler.Create)
	protected.Put("/profile/addresses/:id", addressHandler.Update)
	protected.Delete("/profile/addresses/:id", addressHandler.Delete)
	protected.Post("/profile/addresses/:id/default", addressHandler.SetDefault)

	protected.Post("/orders", orderHandler.Create)
	protected.Get("/orders", orderHandler.List)
	protected.Get("/orders/:id", orderHandler.Show)
	protected.Post("/orders/:id/cancel", orderHandler.Cancel)
	protected.Post("/orders/:id/return", orderHandler.RequestReturn)
	protected.Post("/orders/:id/replacement", orderHandler.RequestReplacement)

	// Back-office routes
	admin := protected.Group("/admin", middleware.RequireRole(db, models.RoleAdmin))
	admin.Post("/coupons", couponHandler.Create)
	admin.Get("/coupons", couponHandler.List)
	admin.Put("/coupons/:id/active", couponHandler.SetActive)
	admin.Post("/orders/:id/advance", adminHandler.Advance)
	admin.Post("/orders/:id/assign-agent", adminHandler.AssignAgent)
	admin.Post("/orders/:id/return/resolve", adminHandler.ResolveReturn)
	admin.Post("/orders/:id/replacement/resolve", adminHandler.ResolveReplacement)

	// Delivery agent routes
	delivery := protected.Group("/delivery", middleware.RequireRole(db, models.RoleDelivery))
	delivery.Post("/orders/:id/otp", deliveryHandler.GenerateOTP)
	delivery.Post("/orders/:id/verify-otp", deliveryHandler.VerifyOTP)
}
