package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/isdelr/storefront-be/internal/apperr"
	"github.com/isdelr/storefront-be/internal/importer"
	"github.com/isdelr/storefront-be/internal/models"
	"github.com/isdelr/storefront-be/internal/repository"
	"github.com/rs/zerolog/log"
)

// postDateLayouts are the date formats accepted in post payloads and import files.
var postDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// PostServiceProvider defines the interface for blog post services.
type PostServiceProvider interface {
	GetPosts(ctx context.Context, category string) ([]models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (models.Post, error)
	CreatePost(ctx context.Context, in PostInput) (models.Post, error)
	UpdatePost(ctx context.Context, id string, in PostInput) (models.Post, error)
	DeletePost(ctx context.Context, id string) error
	ImportPosts(ctx context.Context) (int, error)
	CountPosts(ctx context.Context) (int64, error)
}

// PostInput is a post as sent by the admin panel or found in an import file.
type PostInput struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Category string `json:"category"`
	Date     string `json:"date"`
	Image    string `json:"image"`
	Excerpt  string `json:"excerpt"`
	Content  string `json:"content"`
}

// Validate checks the post fields. Only id and slug are required; slugs from
// older import files keep whatever characters they were written with.
func (in PostInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.ID, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Slug, validation.Required, validation.Length(1, 200), validation.By(noSurroundingSpace)),
		validation.Field(&in.Date, validation.By(validDate)),
	)
}

func (in PostInput) toModel() models.Post {
	date, _ := parsePostDate(in.Date)
	return models.Post{
		ID:       strings.TrimSpace(in.ID),
		Title:    strings.TrimSpace(in.Title),
		Slug:     strings.TrimSpace(in.Slug),
		Category: strings.TrimSpace(in.Category),
		Date:     date,
		Image:    in.Image,
		Excerpt:  in.Excerpt,
		Content:  in.Content,
	}
}

func parsePostDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range postDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func validDate(value interface{}) error {
	s, _ := value.(string)
	if _, err := parsePostDate(s); err != nil {
		return errors.New("must be a date like 2006-01-02 or RFC 3339")
	}
	return nil
}

// PostService provides business logic for blog posts.
type PostService struct {
	repo   repository.PostRepository
	source importer.Source
	events EventServiceProvider
}

// NewPostService creates a new PostService. source and events may be nil.
func NewPostService(repo repository.PostRepository, source importer.Source, events EventServiceProvider) *PostService {
	return &PostService{repo: repo, source: source, events: events}
}

// GetPosts retrieves posts newest first, optionally filtered by category.
func (s *PostService) GetPosts(ctx context.Context, category string) ([]models.Post, error) {
	posts, err := s.repo.List(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, apperr.Internal("failed to retrieve posts", err)
	}
	return posts, nil
}

// GetPostBySlug retrieves a single post.
func (s *PostService) GetPostBySlug(ctx context.Context, slug string) (models.Post, error) {
	post, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return models.Post{}, postErr(err, "failed to retrieve post")
	}
	return post, nil
}

// CreatePost validates and stores a new post.
func (s *PostService) CreatePost(ctx context.Context, in PostInput) (models.Post, error) {
	if err := in.Validate(); err != nil {
		return models.Post{}, validationError(err)
	}

	post, err := s.repo.Create(ctx, in.toModel())
	if err != nil {
		return models.Post{}, postErr(err, "failed to create post")
	}

	record(ctx, s.events, "post.create", models.EventLevelInfo,
		fmt.Sprintf("Post '%s' created.", post.Slug), actor(ctx))
	return post, nil
}

// UpdatePost replaces an existing post; the id in the path wins over the body.
func (s *PostService) UpdatePost(ctx context.Context, id string, in PostInput) (models.Post, error) {
	in.ID = id
	if err := in.Validate(); err != nil {
		return models.Post{}, validationError(err)
	}

	post, err := s.repo.Update(ctx, id, in.toModel())
	if err != nil {
		return models.Post{}, postErr(err, "failed to update post")
	}

	record(ctx, s.events, "post.update", models.EventLevelInfo,
		fmt.Sprintf("Post '%s' updated.", post.Slug), actor(ctx))
	return post, nil
}

// DeletePost removes a post by id.
func (s *PostService) DeletePost(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return postErr(err, "failed to delete post")
	}
	record(ctx, s.events, "post.delete", models.EventLevelWarn,
		fmt.Sprintf("Post '%s' was deleted.", id), actor(ctx))
	return nil
}

// importDocument is the layout of an import file: {"posts": [...]}.
type importDocument struct {
	Posts *[]PostInput `json:"posts"`
}

// ImportPosts replaces every post with the contents of the configured source.
// Nothing is written unless the whole document is valid.
func (s *PostService) ImportPosts(ctx context.Context) (int, error) {
	if s.source == nil {
		return 0, apperr.Validation("no posts import source configured")
	}

	rc, err := s.source.Open(ctx)
	if err != nil {
		return 0, apperr.Internal("failed to read posts file", err)
	}
	defer rc.Close()

	var doc importDocument
	if err := json.NewDecoder(rc).Decode(&doc); err != nil {
		return 0, apperr.Validation("posts file is malformed: " + err.Error())
	}
	if doc.Posts == nil {
		return 0, apperr.Validation("posts file is malformed: missing posts array")
	}

	posts := make([]models.Post, 0, len(*doc.Posts))
	for i, in := range *doc.Posts {
		if err := in.Validate(); err != nil {
			return 0, apperr.Validation(fmt.Sprintf("post %d: %s", i, err.Error()))
		}
		posts = append(posts, in.toModel())
	}

	n, err := s.repo.ReplaceAll(ctx, posts)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return 0, apperr.Conflict("posts file contains a duplicate id or slug")
		}
		return 0, apperr.Internal("failed to import posts", err)
	}

	log.Info().Int("count", n).Str("source", s.source.String()).Msg("Imported posts")
	record(ctx, s.events, "post.import", models.EventLevelInfo,
		fmt.Sprintf("Imported %d posts from %s.", n, s.source.String()), actor(ctx))
	return n, nil
}

// CountPosts returns the number of posts.
func (s *PostService) CountPosts(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, apperr.Internal("failed to count posts", err)
	}
	return n, nil
}

func postErr(err error, msg string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("post not found")
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Conflict("post id or slug already in use")
	default:
		return apperr.Internal(msg, err)
	}
}
