package mongostore

import (
	"context"
	"time"

	"github.com/isdelr/storefront-be/internal/models"
	"github.com/isdelr/storefront-be/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type postDoc struct {
	ID       string    `bson:"id"`
	Title    string    `bson:"title"`
	Slug     string    `bson:"slug"`
	Category string    `bson:"category"`
	Date     time.Time `bson:"date"`
	Image    string    `bson:"image"`
	Excerpt  string    `bson:"excerpt"`
	Content  string    `bson:"content"`
}

func newPostDoc(p models.Post) postDoc {
	return postDoc{
		ID:       p.ID,
		Title:    p.Title,
		Slug:     p.Slug,
		Category: p.Category,
		Date:     p.Date,
		Image:    p.Image,
		Excerpt:  p.Excerpt,
		Content:  p.Content,
	}
}

func (d postDoc) toModel() models.Post {
	return models.Post{
		ID:       d.ID,
		Title:    d.Title,
		Slug:     d.Slug,
		Category: d.Category,
		Date:     d.Date,
		Image:    d.Image,
		Excerpt:  d.Excerpt,
		Content:  d.Content,
	}
}

// PostRepository stores posts keyed by their string id and slug, both unique.
type PostRepository struct {
	coll *mongo.Collection
}

// NewPostRepository creates a PostRepository on coll.
func NewPostRepository(coll *mongo.Collection) *PostRepository {
	return &PostRepository{coll: coll}
}

// List returns posts newest first, optionally limited to one category.
func (r *PostRepository) List(ctx context.Context, category string) ([]models.Post, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []postDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	posts := make([]models.Post, 0, len(docs))
	for _, d := range docs {
		posts = append(posts, d.toModel())
	}
	return posts, nil
}

// GetBySlug loads one post.
func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (models.Post, error) {
	var doc postDoc
	if err := r.coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc); err != nil {
		return models.Post{}, mapFindErr(err)
	}
	return doc.toModel(), nil
}

// Create inserts a post. A taken id or slug yields repository.ErrDuplicate.
func (r *PostRepository) Create(ctx context.Context, post models.Post) (models.Post, error) {
	if _, err := r.coll.InsertOne(ctx, newPostDoc(post)); err != nil {
		return models.Post{}, mapWriteErr(err)
	}
	return post, nil
}

// Update replaces every field except the id.
func (r *PostRepository) Update(ctx context.Context, id string, post models.Post) (models.Post, error) {
	post.ID = id
	doc := newPostDoc(post)
	update := bson.M{"$set": bson.M{
		"title":    doc.Title,
		"slug":     doc.Slug,
		"category": doc.Category,
		"date":     doc.Date,
		"image":    doc.Image,
		"excerpt":  doc.Excerpt,
		"content":  doc.Content,
	}}
	var updated postDoc
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Post{}, repository.ErrDuplicate
		}
		return models.Post{}, mapFindErr(err)
	}
	return updated.toModel(), nil
}

// Delete removes a post by id.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ReplaceAll deletes every post, then inserts posts.
func (r *PostRepository) ReplaceAll(ctx context.Context, posts []models.Post) (int, error) {
	if _, err := r.coll.DeleteMany(ctx, bson.D{}); err != nil {
		return 0, err
	}
	if len(posts) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, 0, len(posts))
	for _, p := range posts {
		docs = append(docs, newPostDoc(p))
	}
	res, err := r.coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, mapWriteErr(err)
	}
	return len(res.InsertedIDs), nil
}

// Count returns the number of posts.
func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{})
}
