package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noryangjin/auction-server/internal/domain"
)

// ProductRepository manages listing persistence.
type ProductRepository interface {
	// Create stores a new listing and returns the stored copy carrying its id.
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]domain.Product, error)
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository builds the repository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

const productColumns = `id, seller_id, name, price, quantity, category, status, created_at, updated_at`

func (r *productRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product.ID != "" {
		return nil, errors.New("product already has an id")
	}
	const query = `
        INSERT INTO products (seller_id, name, price, quantity, category, status, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING ` + productColumns

	stored, err := scanProduct(r.pool.QueryRow(ctx, query,
		product.SellerID,
		product.Name,
		product.Price,
		product.Quantity,
		product.Category,
		product.Status,
		product.CreatedAt,
		product.UpdatedAt,
	))
	if err != nil {
		return nil, translateError("create product", err)
	}
	stored.BindSeller(product.Seller())
	return stored, nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id=$1`

	product, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateError("get product", err)
	}
	return product, nil
}

func (r *productRepository) ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]domain.Product, error) {
	const query = `
        SELECT ` + productColumns + ` FROM products
        WHERE seller_id=$1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, sellerID, limit, offset)
	if err != nil {
		return nil, translateError("list products", err)
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, translateError("list products", err)
		}
		result = append(result, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("list products", err)
	}
	return result, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID,
		&p.SellerID,
		&p.Name,
		&p.Price,
		&p.Quantity,
		&p.Category,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
