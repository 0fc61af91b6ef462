package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/storefront-be/internal/models"
	"github.com/isdelr/storefront-be/internal/repository"
)

// ProductRepository stores products in the products table.
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository creates a ProductRepository.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = "id, image, title, description, price, features_json, created_at"

func scanProduct(row scanner) (models.Product, error) {
	var p models.Product
	var features string
	if err := row.Scan(&p.ID, &p.Image, &p.Title, &p.Description, &p.Price, &features, &p.CreatedAt); err != nil {
		return models.Product{}, mapScanErr(err)
	}
	p.Features = []string{}
	if features != "" {
		if err := json.Unmarshal([]byte(features), &p.Features); err != nil {
			return models.Product{}, fmt.Errorf("decode features of product %s: %w", p.ID, err)
		}
	}
	return p, nil
}

func encodeFeatures(features []string) (string, error) {
	if features == nil {
		features = []string{}
	}
	b, err := json.Marshal(features)
	return string(b), err
}

// List returns all products, newest first.
func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Get retrieves a single product by id.
func (r *ProductRepository) Get(ctx context.Context, id string) (models.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
	return scanProduct(row)
}

// Create adds a new product.
func (r *ProductRepository) Create(ctx context.Context, product models.Product) (models.Product, error) {
	product.ID = uuid.New().String()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	if product.Features == nil {
		product.Features = []string{}
	}
	features, err := encodeFeatures(product.Features)
	if err != nil {
		return models.Product{}, err
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO products("+productColumns+") VALUES(?, ?, ?, ?, ?, ?, ?)",
		product.ID, product.Image, product.Title, product.Description, product.Price, features, product.CreatedAt,
	)
	if err != nil {
		return models.Product{}, mapWriteErr(err)
	}
	return product, nil
}

// Update replaces the editable fields of a product.
func (r *ProductRepository) Update(ctx context.Context, id string, product models.Product) (models.Product, error) {
	features, err := encodeFeatures(product.Features)
	if err != nil {
		return models.Product{}, err
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE products SET image = ?, title = ?, description = ?, price = ?, features_json = ? WHERE id = ?",
		product.Image, product.Title, product.Description, product.Price, features, id,
	)
	if err != nil {
		return models.Product{}, mapWriteErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Product{}, repository.ErrNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Count returns the number of products.
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n)
	return n, err
}
