package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"campus-food-ordering/internal/config"
	"campus-food-ordering/internal/db"
	"campus-food-ordering/internal/importer"
	categoryrepo "campus-food-ordering/internal/repository/category"
	itemrepo "campus-food-ordering/internal/repository/item"
	catalogsvc "campus-food-ordering/internal/service/catalog"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to menu CSV (category,category_type,name,description,price,image)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger := log.New(os.Stderr, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString, db.PoolOptions{ApplicationName: "campus-food-importer"})
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	catalog := catalogsvc.New(categoryrepo.NewPostgres(pool), itemrepo.NewPostgres(pool, logger), logger)
	imp := importer.NewCSVImporter(f, catalog)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import failed after %d items: %v", count, err)
	}

	fmt.Printf("Imported %d menu items in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
