package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"campus-food-ordering/internal/domain"
	"campus-food-ordering/internal/metrics"
	cartsvc "campus-food-ordering/internal/service/cart"
	checkoutsvc "campus-food-ordering/internal/service/checkout"
	ordersvc "campus-food-ordering/internal/service/order"
	profilesvc "campus-food-ordering/internal/service/profile"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type profileService interface {
	Signup(ctx context.Context, in profilesvc.SignupInput) (*domain.Profile, error)
	Login(ctx context.Context, identifier, password string) (*domain.Profile, string, error)
	Logout(ctx context.Context, token string) error
	LookupByToken(ctx context.Context, token string) (*domain.Profile, error)
	ResetPassword(ctx context.Context, in profilesvc.ResetInput) error
	AccessTTLSeconds() int
}

type catalogService interface {
	ListCategories(ctx context.Context, categoryType string) []domain.ItemCategory
	ItemsByCategory(ctx context.Context, name string) ([]domain.Item, error)
	ListItems(ctx context.Context) []domain.Item
	GetItem(ctx context.Context, id string) (*domain.Item, error)
}

type cartService interface {
	Apply(ctx context.Context, c *domain.Cart, actions []cartsvc.UpdateAction) error
}

type orderService interface {
	PlaceOrder(ctx context.Context, studentID string, in ordersvc.PlaceInput) (*ordersvc.Placement, error)
	Review(ctx context.Context, studentID string) ordersvc.Review
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	CountdownFor(ctx context.Context, studentID, orderID string) (ordersvc.CountdownState, error)
	UpdateOrder(ctx context.Context, newStatus domain.OrderStatus, actingUser, orderID string) (*domain.Order, error)
	Cancel(ctx context.Context, studentID, orderID string) error
}

type checkoutService interface {
	CreateSession(ctx context.Context, req checkoutsvc.Request) (string, error)
}

type feedbackService interface {
	List(ctx context.Context) []domain.Feedback
	Create(ctx context.Context, message string) (*domain.Feedback, error)
	Update(ctx context.Context, id, message string) (*domain.Feedback, error)
	Delete(ctx context.Context, id string) error
}

// Deps groups the services the router serves.
type Deps struct {
	ProfileSvc  profileService
	CatalogSvc  catalogService
	CartSvc     cartService
	OrderSvc    orderService
	CheckoutSvc checkoutService
	FeedbackSvc feedbackService
	Metrics     *metrics.Metrics
	// CORSOrigins lists allowed browser origins; empty allows any origin.
	CORSOrigins []string
}

func (d Deps) validate() error {
	switch {
	case d.ProfileSvc == nil:
		return errors.New("profile service required")
	case d.CatalogSvc == nil:
		return errors.New("catalog service required")
	case d.CartSvc == nil:
		return errors.New("cart service required")
	case d.OrderSvc == nil:
		return errors.New("order service required")
	case d.CheckoutSvc == nil:
		return errors.New("checkout service required")
	case d.FeedbackSvc == nil:
		return errors.New("feedback service required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	router := gin.New()
	router.Use(
		gin.LoggerWithWriter(logger.Writer()),
		gin.Recovery(),
		corsMiddleware(deps.CORSOrigins),
		deps.Metrics.Middleware(),
	)

	h := &handlers{deps: deps, logger: logger}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	router.POST("/create-checkout-session", h.createCheckoutSession)

	router.POST("/me/signup", h.signup)
	router.POST("/me/login", h.login)
	router.POST("/me/password", h.resetPassword)

	authed := router.Group("/", authMiddleware(deps.ProfileSvc))
	authed.GET("/me", h.me)
	authed.POST("/me/logout", h.logout)

	router.GET("/categories", h.listCategories)
	router.GET("/categories/:name/items", h.itemsByCategory)
	router.GET("/items", h.listItems)
	router.GET("/items/:id", h.getItem)
	router.POST("/cart", h.previewCart)

	authed.POST("/orders", h.placeOrder)
	authed.GET("/orders", h.reviewOrders)
	authed.GET("/orders/:id", h.getOrder)
	authed.GET("/orders/:id/countdown", h.orderCountdown)
	authed.PATCH("/orders/:id", h.updateOrder)
	authed.POST("/orders/:id/accept", h.transition(domain.OrderStatusDelivering))
	authed.POST("/orders/:id/complete", h.transition(domain.OrderStatusCompleted))
	authed.DELETE("/orders/:id", h.cancelOrder)

	router.GET("/feedback", h.listFeedback)
	authed.POST("/feedback", h.createFeedback)
	authed.PUT("/feedback/:id", h.updateFeedback)
	authed.DELETE("/feedback/:id", h.deleteFeedback)

	return router, nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}
