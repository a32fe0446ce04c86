// Package server assembles the HTTP router.
package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"freelance-backend/internal/config"
	"freelance-backend/internal/handlers"
	"freelance-backend/internal/middleware"
	"freelance-backend/internal/services"
)

type Deps struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          handlers.Pinger
	Identity    middleware.IdentityResolver
	Marketplace *services.MarketplaceService
	Payments    *services.PaymentService
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(d.Logger))
	router.Use(middleware.Metrics())

	projectsHandler := handlers.NewProjectsHandler(d.Marketplace)
	bidsHandler := handlers.NewBidsHandler(d.Marketplace)
	profilesHandler := handlers.NewProfilesHandler(d.Marketplace)
	paymentsHandler := handlers.NewPaymentsHandler(d.Payments)
	webhookHandler := handlers.NewWebhookHandler(d.Config.StripeWebhookSecret, d.Payments, d.Logger)

	// No auth
	router.GET("/health", handlers.HealthHandler(d.DB))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Webhook (no auth, uses Stripe signature)
	router.POST("/api/v1/webhooks/stripe", webhookHandler.HandleStripeWebhook)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(d.Config, d.Identity))

	// Projects
	api.GET("/projects", projectsHandler.ListProjects)
	api.POST("/projects", projectsHandler.CreateProject)
	api.GET("/projects/:project_id", projectsHandler.GetProject)
	api.PATCH("/projects/:project_id", projectsHandler.UpdateProject)
	api.DELETE("/projects/:project_id", projectsHandler.DeleteProject)
	api.POST("/projects/:project_id/accept-bid", projectsHandler.AcceptBid)
	api.POST("/projects/:project_id/complete", projectsHandler.CompleteProject)
	api.GET("/my-projects", projectsHandler.MyProjects)

	// Bids
	api.POST("/projects/:project_id/bids", bidsHandler.PlaceBid)
	api.GET("/projects/:project_id/bids", bidsHandler.ListProjectBids)
	api.DELETE("/bids/:bid_id", bidsHandler.WithdrawBid)
	api.GET("/my-bids", bidsHandler.MyBids)

	// Profiles
	api.GET("/profile", profilesHandler.GetMyProfile)
	api.PUT("/profile", profilesHandler.UpdateMyProfile)
	api.GET("/freelancers/:user_id/profile", profilesHandler.GetFreelancerProfile)

	// Payments
	api.GET("/payments", paymentsHandler.ListPayments)
	api.POST("/payments", paymentsHandler.CreatePayment)
	api.GET("/payments/:payment_id", paymentsHandler.GetPayment)
	api.POST("/payments/:payment_id/intent", paymentsHandler.CreateIntent)

	return router
}
