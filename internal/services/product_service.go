package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/isdelr/storefront-be/internal/apperr"
	"github.com/isdelr/storefront-be/internal/models"
	"github.com/isdelr/storefront-be/internal/repository"
)

// ProductServiceProvider defines the interface for product services.
type ProductServiceProvider interface {
	GetAllProducts(ctx context.Context) ([]models.Product, error)
	GetProductByID(ctx context.Context, id string) (models.Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (models.Product, error)
	UpdateProduct(ctx context.Context, id string, in ProductInput) (models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	CountProducts(ctx context.Context) (int64, error)
}

// ProductInput is the editable part of a product.
type ProductInput struct {
	Image       string   `json:"image"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Features    []string `json:"features"`
}

// Validate checks the product fields.
func (in ProductInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Image, validation.Required),
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Description, validation.Required),
		validation.Field(&in.Price, validation.NotNil, validation.Min(0.0)),
		validation.Field(&in.Features, validation.By(noBlankItems)),
	)
}

func (in ProductInput) normalize() ProductInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	features := make([]string, 0, len(in.Features))
	for _, f := range in.Features {
		features = append(features, strings.TrimSpace(f))
	}
	in.Features = features
	return in
}

func (in ProductInput) toModel() models.Product {
	var price float64
	if in.Price != nil {
		price = *in.Price
	}
	return models.Product{
		Image:       in.Image,
		Title:       in.Title,
		Description: in.Description,
		Price:       price,
		Features:    in.Features,
	}
}

// ProductService provides business logic for product management.
type ProductService struct {
	repo   repository.ProductRepository
	events EventServiceProvider
}

// NewProductService creates a new ProductService. events may be nil.
func NewProductService(repo repository.ProductRepository, events EventServiceProvider) *ProductService {
	return &ProductService{repo: repo, events: events}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to retrieve products", err)
	}
	return products, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (models.Product, error) {
	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.Product{}, productErr(err, "failed to retrieve product")
	}
	return product, nil
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (models.Product, error) {
	in = in.normalize()
	if err := in.Validate(); err != nil {
		return models.Product{}, validationError(err)
	}

	product, err := s.repo.Create(ctx, in.toModel())
	if err != nil {
		return models.Product{}, productErr(err, "failed to create product")
	}

	record(ctx, s.events, "product.create", models.EventLevelInfo,
		fmt.Sprintf("Product '%s' created.", product.Title), actor(ctx))
	return product, nil
}

// UpdateProduct replaces the editable fields of an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, in ProductInput) (models.Product, error) {
	in = in.normalize()
	if err := in.Validate(); err != nil {
		return models.Product{}, validationError(err)
	}

	product, err := s.repo.Update(ctx, id, in.toModel())
	if err != nil {
		return models.Product{}, productErr(err, "failed to update product")
	}

	record(ctx, s.events, "product.update", models.EventLevelInfo,
		fmt.Sprintf("Product '%s' updated.", product.Title), actor(ctx))
	return product, nil
}

// DeleteProduct removes a product.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return productErr(err, "failed to delete product")
	}
	record(ctx, s.events, "product.delete", models.EventLevelWarn,
		fmt.Sprintf("Product '%s' was deleted.", id), actor(ctx))
	return nil
}

// CountProducts returns the number of products.
func (s *ProductService) CountProducts(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, apperr.Internal("failed to count products", err)
	}
	return n, nil
}

func productErr(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("product not found")
	}
	return apperr.Internal(msg, err)
}
