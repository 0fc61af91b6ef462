package mongostore

import (
	"context"
	"time"

	"github.com/isdelr/storefront-be/internal/models"
	"github.com/isdelr/storefront-be/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type productDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Image       string             `bson:"image"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Price       float64            `bson:"price"`
	Features    []string           `bson:"features"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d productDoc) toModel() models.Product {
	features := d.Features
	if features == nil {
		features = []string{}
	}
	return models.Product{
		ID:          d.ID.Hex(),
		Image:       d.Image,
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		Features:    features,
		CreatedAt:   d.CreatedAt,
	}
}

// ProductRepository stores products.
type ProductRepository struct {
	coll *mongo.Collection
}

// NewProductRepository creates a ProductRepository on coll.
func NewProductRepository(coll *mongo.Collection) *ProductRepository {
	return &ProductRepository{coll: coll}
}

// List returns all products, newest first.
func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	products := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, d.toModel())
	}
	return products, nil
}

// Get loads one product.
func (r *ProductRepository) Get(ctx context.Context, id string) (models.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.Product{}, err
	}
	var doc productDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return models.Product{}, mapFindErr(err)
	}
	return doc.toModel(), nil
}

// Create inserts a product and returns it with its id.
func (r *ProductRepository) Create(ctx context.Context, product models.Product) (models.Product, error) {
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	doc := productDoc{
		Image:       product.Image,
		Title:       product.Title,
		Description: product.Description,
		Price:       product.Price,
		Features:    product.Features,
		CreatedAt:   product.CreatedAt,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return models.Product{}, mapWriteErr(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toModel(), nil
}

// Update replaces the editable fields of a product.
func (r *ProductRepository) Update(ctx context.Context, id string, product models.Product) (models.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.Product{}, err
	}
	update := bson.M{"$set": bson.M{
		"image":       product.Image,
		"title":       product.Title,
		"description": product.Description,
		"price":       product.Price,
		"features":    product.Features,
	}}
	var doc productDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		return models.Product{}, mapFindErr(err)
	}
	return doc.toModel(), nil
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Count returns the number of products.
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{})
}
