package repository

import (
	"context"
	"fmt"

	"laonlink/storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveProducts(ctx context.Context, products []domain.Product) error
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

type productRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) ProductRepository {
	return &productRepository{
		db: db,
	}
}

func (r *productRepository) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		data JSONB NOT NULL
	)`
	_, err := r.db.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create products table: %w", err)
	}

	return nil
}

// SaveProducts upserts products in one transaction. Position records the
// source order so listing returns the catalog as it was imported.
func (r *productRepository) SaveProducts(ctx context.Context, products []domain.Product) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := `
	INSERT INTO products (id, position, data) 
	VALUES ($1, $2, $3) 
	ON CONFLICT (id) 
	DO UPDATE SET position = $2, data = $3`

	batch := &pgx.Batch{}
	for i, p := range products {
		batch.Queue(query, p.ID, i, p)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save products: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit products: %w", err)
	}

	return nil
}

func (r *productRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT data FROM products ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Product, error) {
		var p domain.Product
		err := row.Scan(&p)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}

	return products, nil
}
