package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-food-ordering/internal/cache"
	"campus-food-ordering/internal/config"
	"campus-food-ordering/internal/db"
	"campus-food-ordering/internal/httpserver"
	"campus-food-ordering/internal/metrics"
	"campus-food-ordering/internal/payment"
	categoryrepo "campus-food-ordering/internal/repository/category"
	feedbackrepo "campus-food-ordering/internal/repository/feedback"
	itemrepo "campus-food-ordering/internal/repository/item"
	orderrepo "campus-food-ordering/internal/repository/order"
	profilerepo "campus-food-ordering/internal/repository/profile"
	tokenrepo "campus-food-ordering/internal/repository/token"
	"campus-food-ordering/internal/scheduler"
	cartsvc "campus-food-ordering/internal/service/cart"
	catalogsvc "campus-food-ordering/internal/service/catalog"
	checkoutsvc "campus-food-ordering/internal/service/checkout"
	feedbacksvc "campus-food-ordering/internal/service/feedback"
	ordersvc "campus-food-ordering/internal/service/order"
	profilesvc "campus-food-ordering/internal/service/profile"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, db.PoolOptions{MaxConns: cfg.DBMaxConns, ApplicationName: "campus-food-api"})
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	guard := confirmationGuard(ctx, cfg, logger)
	m := metrics.New()

	categoryRepo := categoryrepo.NewPostgres(dbpool)
	itemRepo := itemrepo.NewPostgres(dbpool, logger)
	profileRepo := profilerepo.NewPostgres(dbpool, logger)
	tokenRepo := tokenrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	feedbackRepo := feedbackrepo.NewPostgres(dbpool)

	profileService := profilesvc.New(profileRepo, tokenRepo, logger)
	catalogService := catalogsvc.New(categoryRepo, itemRepo, logger)
	cartService := cartsvc.New(itemRepo)
	orderService := ordersvc.New(orderRepo, cartService, profileRepo, itemRepo, ordersvc.Options{
		PendingTTL: cfg.OrderPendingTTL,
		ServiceFee: cfg.ServiceFee,
		Guard:      guard,
		Metrics:    m,
		Logger:     logger,
	})
	if cfg.StripeSecretKey == "" {
		logger.Printf("STRIPE_SECRET_KEY not set; checkout sessions will fail")
	}
	checkoutService := checkoutsvc.New(payment.NewStripe(cfg.StripeSecretKey, nil, logger), checkoutsvc.Options{
		Currency:   cfg.CheckoutCurrency,
		SuccessURL: cfg.CheckoutSuccessURL,
		CancelURL:  cfg.CheckoutCancelURL,
		Metrics:    m,
		Logger:     logger,
	})
	feedbackService := feedbacksvc.New(feedbackRepo, logger)

	sched := scheduler.New(logger, cfg.ShutdownTimeout)
	jobs := []scheduler.Job{
		{Name: "expire-pending-orders", Run: func(ctx context.Context) error {
			_, err := orderService.SweepExpired(ctx)
			return err
		}},
		{Name: "purge-expired-tokens", Run: func(ctx context.Context) error {
			_, err := tokenRepo.DeleteExpired(ctx, time.Now())
			return err
		}},
	}
	for _, job := range jobs {
		if err := sched.Add(cfg.OrderSweepSpec, job); err != nil {
			logger.Fatalf("scheduler: %v", err)
		}
	}
	// Collect orders left Pending by a previous process before serving.
	sched.RunAll()
	sched.Start()

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		ProfileSvc:  profileService,
		CatalogSvc:  catalogService,
		CartSvc:     cartService,
		OrderSvc:    orderService,
		CheckoutSvc: checkoutService,
		FeedbackSvc: feedbackService,
		Metrics:     m,
		CORSOrigins: cfg.CORSAllowedOrigins,
	}, cfg.RequestTimeout)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
	if err := sched.Stop(ctx); err != nil {
		logger.Printf("scheduler stop: %v", err)
	}
	orderService.Close()
}

// confirmationGuard uses Redis when REDIS_ADDR is set and reachable, and an
// in-process guard otherwise.
func confirmationGuard(ctx context.Context, cfg config.Config, logger *log.Logger) cache.Guard {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryGuard()
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Printf("redis %s unreachable, using in-memory guard: %v", cfg.RedisAddr, err)
		_ = client.Close()
		return cache.NewMemoryGuard()
	}
	logger.Printf("using redis confirmation guard at %s", cfg.RedisAddr)
	return cache.NewRedisGuard(client)
}
