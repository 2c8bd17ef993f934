package service

import (
	"context"
	"encoding/json"
	"mbs-hub/internal/data"
)

// ContentRepository defines the published read set. Not-found lookups return
// nil with no error; only store failures are errors.
type ContentRepository interface {
	ListPillars(ctx context.Context) ([]data.Pillar, error)
	GetPillarBySlug(ctx context.Context, slug string) (*data.PillarWithArticles, error)
	ListArticles(ctx context.Context) ([]data.Article, error)
	ListFeaturedArticles(ctx context.Context, limit int) ([]data.Article, error)
	ListLatestArticles(ctx context.Context, limit int) ([]data.Article, error)
	GetArticleBySlug(ctx context.Context, slug string) (*data.Article, error)
	ListArticlesByPillarSlug(ctx context.Context, pillarSlug string) ([]data.Article, error)
	ListAuthors(ctx context.Context) ([]data.Author, error)
	GetAuthorBySlug(ctx context.Context, slug string) (*data.Author, error)
}

// PreviewRepository defines the read set that includes unpublished articles.
type PreviewRepository interface {
	GetArticlePreview(ctx context.Context, slug string) (*data.Article, error)
	ListArticlesPreview(ctx context.Context) ([]data.Article, error)
	ListArticlesByPillarPreview(ctx context.Context, pillarSlug string) ([]data.Article, error)
	ListArticlesByAuthorPreview(ctx context.Context, authorSlug string) ([]data.Article, error)
	ListFeaturedArticlesPreview(ctx context.Context, limit int) ([]data.Article, error)
	ListRecentArticles(ctx context.Context, limit int) ([]data.Article, error)
	GetPublishingStats(ctx context.Context) (*data.PublishingStats, error)
}

// NewsletterRepository stores newsletter subscriptions.
type NewsletterRepository interface {
	Subscribe(ctx context.Context, email string) error
	Unsubscribe(ctx context.Context, email string) error
}

// UserRepository stores authenticated users.
type UserRepository interface {
	UpsertUser(ctx context.Context, u data.UserUpsert) error
	GetUserByOpenID(ctx context.Context, openID string) (*data.User, error)
}

// BodyRenderer turns a stored article body into HTML.
type BodyRenderer interface {
	Render(body json.RawMessage) (string, error)
}
