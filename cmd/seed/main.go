package main

import (
	"context"
	"log"
	"os"

	"campus-food-ordering/internal/config"
	"campus-food-ordering/internal/db"
	categoryrepo "campus-food-ordering/internal/repository/category"
	itemrepo "campus-food-ordering/internal/repository/item"
	profilerepo "campus-food-ordering/internal/repository/profile"
	tokenrepo "campus-food-ordering/internal/repository/token"
	"campus-food-ordering/internal/seed"
	catalogsvc "campus-food-ordering/internal/service/catalog"
	profilesvc "campus-food-ordering/internal/service/profile"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, db.PoolOptions{ApplicationName: "campus-food-seed"})
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	catalog := catalogsvc.New(categoryrepo.NewPostgres(pool), itemrepo.NewPostgres(pool, logger), logger)
	profiles := profilesvc.New(profilerepo.NewPostgres(pool, logger), tokenrepo.NewPostgres(pool), logger)

	if err := seed.Apply(ctx, catalog, profiles); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Printf("seed applied; demo students log in with password %q", seed.DemoPassword)
}
