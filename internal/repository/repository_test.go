package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestWithPoolSize(t *testing.T) {
	cfg, err := pgxpool.ParseConfig("postgres://userdesk@localhost:5432/userdesk")
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	cfg.MaxConns, cfg.MinConns = 10, 2

	WithPoolSize(20, 5)(cfg)
	if cfg.MaxConns != 20 || cfg.MinConns != 5 {
		t.Errorf("pool = %d/%d, want 20/5", cfg.MaxConns, cfg.MinConns)
	}

	WithPoolSize(0, 50)(cfg)
	if cfg.MaxConns != 20 || cfg.MinConns != 5 {
		t.Errorf("invalid sizes applied: %d/%d", cfg.MaxConns, cfg.MinConns)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}
	other := &pgconn.PgError{Code: "23503"}

	if !isUniqueViolation(fmt.Errorf("insert: %w", unique)) {
		t.Error("wrapped 23505 should be a unique violation")
	}
	if isUniqueViolation(other) {
		t.Error("23503 is not a unique violation")
	}
	if isUniqueViolation(errors.New("duplicate key")) {
		t.Error("plain errors are not unique violations")
	}
}
