// cmd/seed/main.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const dbKey ctxKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFromContext(c *cli.Context) (*sql.DB, error) {
	db, ok := c.Context.Value(dbKey).(*sql.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}
	return db, nil
}

func runInit(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS stock_data (
			id SERIAL PRIMARY KEY,
			week_date TIMESTAMP NOT NULL,
			product_sku VARCHAR(100) NOT NULL,
			product_name VARCHAR(255),
			category VARCHAR(255),
			stock_level INTEGER NOT NULL,
			uploaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stock_data_week_date
			ON stock_data(week_date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_stock_data_product_sku
			ON stock_data(product_sku)`,
		`CREATE TABLE IF NOT EXISTS manual_overrides (
			product_key VARCHAR(255) PRIMARY KEY,
			min_stock INTEGER,
			buffer INTEGER,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(c.Context, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	log.Println("stock tables initialized")
	return nil
}

func runSample(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}

	var count int
	if err := db.QueryRowContext(c.Context, "SELECT COUNT(*) FROM stock_data").Scan(&count); err != nil {
		return fmt.Errorf("failed to check existing data: %w", err)
	}
	if count > 0 {
		log.Printf("stock_data already has %d records, skipping sample data", count)
		return nil
	}

	products := []struct {
		name      string
		sku       string
		baseStock int
		weeklyUse int
	}{
		{"Product A", "SKU-001", 150, 10},
		{"Product B", "SKU-002", 80, 10},
		{"Product C", "SKU-003", 45, 25},
		{"Product D", "SKU-004", 200, 10},
		{"Product E", "SKU-005", 30, 25},
	}

	now := time.Now()
	dates := []time.Time{
		now.AddDate(0, 0, -14),
		now.AddDate(0, 0, -7),
		now,
	}

	query := `
		INSERT INTO stock_data (week_date, product_sku, product_name, stock_level)
		VALUES ($1, $2, $3, $4)
	`

	inserted := 0
	for dateIdx, weekDate := range dates {
		for _, p := range products {
			stock := p.baseStock - dateIdx*p.weeklyUse
			if stock < 0 {
				stock = 0
			}
			if _, err := db.ExecContext(c.Context, query, weekDate, p.sku, p.name, stock); err != nil {
				return fmt.Errorf("failed to insert sample row for %s: %w", p.sku, err)
			}
			inserted++
		}
	}

	log.Printf("inserted %d sample stock records across %d weeks", inserted, len(dates))
	return nil
}

func runOverride(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}

	productKey := c.String("product-key")
	if productKey == "" {
		return fmt.Errorf("--product-key is required")
	}
	if !c.IsSet("min-stock") && !c.IsSet("buffer") {
		return fmt.Errorf("at least one of --min-stock or --buffer is required")
	}

	var minStock, buffer sql.NullInt64
	if c.IsSet("min-stock") {
		minStock = sql.NullInt64{Int64: c.Int64("min-stock"), Valid: true}
	}
	if c.IsSet("buffer") {
		buffer = sql.NullInt64{Int64: c.Int64("buffer"), Valid: true}
	}

	query := `
		INSERT INTO manual_overrides (product_key, min_stock, buffer, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (product_key) DO UPDATE SET
			min_stock = COALESCE(EXCLUDED.min_stock, manual_overrides.min_stock),
			buffer = COALESCE(EXCLUDED.buffer, manual_overrides.buffer),
			updated_at = NOW()
	`

	if _, err := db.ExecContext(c.Context, query, productKey, minStock, buffer); err != nil {
		return fmt.Errorf("failed to store override for %s: %w", productKey, err)
	}

	log.Printf("override stored for %s", productKey)
	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Initialize and seed the stock tracking database",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Create the stock_data and manual_overrides tables",
				Flags: []cli.Flag{
					newDBURLFlag(),
				},
				Before: initDB,
				After:  closeDB,
				Action: runInit,
			},
			{
				Name:  "sample",
				Usage: "Insert sample stock snapshots for testing",
				Flags: []cli.Flag{
					newDBURLFlag(),
				},
				Before: initDB,
				After:  closeDB,
				Action: runSample,
			},
			{
				Name:  "override",
				Usage: "Set a manual min-stock and/or buffer value for a product",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:     "product-key",
						Usage:    "Product identifier the override applies to",
						Required: true,
					},
					&cli.Int64Flag{
						Name:  "min-stock",
						Usage: "Manual minimum stock level",
					},
					&cli.Int64Flag{
						Name:  "buffer",
						Usage: "Manual safety buffer",
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runOverride,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
