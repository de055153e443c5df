package database

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"shop_sales/internal/config"
)

const createSaleTable = `
	CREATE TABLE IF NOT EXISTS %s.sale (
		id INT AUTO_INCREMENT PRIMARY KEY,
		productName TEXT NOT NULL,
		productPrice INT NOT NULL,
		amount INT NOT NULL,
		totalPrice INT NOT NULL,
		createdAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)
`

var identifier = regexp.MustCompile(`^[A-Za-z0-9_$]{1,64}$`)

// Open returns a pool on the configured database. No connection is made
// until the first request needs one.
func Open(cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN(true))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// Bootstrap connects to the server without selecting a database and runs
// Initialize. Errors are logged and returned; callers may keep serving.
func Bootstrap(ctx context.Context, cfg config.DBConfig, logger *zap.Logger) error {
	db, err := sql.Open("mysql", cfg.DSN(false))
	if err != nil {
		logger.Error("error initializing database", zap.Error(err))
		return err
	}
	defer db.Close()

	if err := Initialize(ctx, db, cfg.Name); err != nil {
		logger.Error("error initializing database", zap.String("database", cfg.Name), zap.Error(err))
		return err
	}
	logger.Info("database and tables initialized", zap.String("database", cfg.Name))
	return nil
}

// Initialize creates the database and the sale table when they are absent.
// Existing objects are left untouched.
func Initialize(ctx context.Context, db *sql.DB, name string) error {
	if !identifier.MatchString(name) {
		return fmt.Errorf("invalid database name %q", name)
	}
	quoted := "`" + name + "`"

	if _, err := db.ExecContext(ctx, "CREATE DATABASE IF NOT EXISTS "+quoted); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(createSaleTable, quoted)); err != nil {
		return fmt.Errorf("failed to create sale table: %w", err)
	}
	return nil
}
