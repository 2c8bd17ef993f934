package handler

import (
	"context"
	"mbs-hub/internal/auth"
	"mbs-hub/internal/data"
	"mbs-hub/internal/service"
)

// ContentServicer is the published-content read surface.
type ContentServicer interface {
	GetPillars(ctx context.Context) ([]data.Pillar, error)
	GetPillarBySlug(ctx context.Context, slug string) (*data.PillarWithArticles, error)
	GetArticles(ctx context.Context) ([]data.Article, error)
	GetFeaturedArticles(ctx context.Context) ([]data.Article, error)
	GetLatestArticles(ctx context.Context, limit int) ([]data.Article, error)
	GetArticleBySlug(ctx context.Context, slug string) (*data.Article, error)
	GetArticlesByPillarSlug(ctx context.Context, pillarSlug string) ([]data.Article, error)
	GetAuthors(ctx context.Context) ([]data.Author, error)
	GetAuthorBySlug(ctx context.Context, slug string) (*data.Author, error)
	GetHomePage(ctx context.Context, latestLimit int) (*service.HomePage, error)
}

// PreviewServicer is the editor read surface over every article status.
type PreviewServicer interface {
	Status() service.PreviewStatus
	GetArticlePreview(ctx context.Context, slug string) (*data.Article, error)
	GetAllArticlesPreview(ctx context.Context) ([]data.Article, error)
	GetArticlesByPillarPreview(ctx context.Context, pillarSlug string) ([]data.Article, error)
	GetArticlesByAuthor(ctx context.Context, authorSlug string) ([]data.Article, error)
	GetFeaturedArticlesPreview(ctx context.Context) ([]data.Article, error)
	GetRecentArticles(ctx context.Context, limit int) ([]data.Article, error)
	GetPublishingStats(ctx context.Context) (*data.PublishingStats, error)
}

// NewsletterServicer handles newsletter sign-ups.
type NewsletterServicer interface {
	Subscribe(ctx context.Context, email string) (*service.SubscriptionResult, error)
	Unsubscribe(ctx context.Context, email string) (*service.SubscriptionResult, error)
}

// LoginServicer records a successful sign-in.
type LoginServicer interface {
	Login(ctx context.Context, id service.Identity) (*data.User, error)
}

// Authenticator runs the OIDC authorization code flow.
type Authenticator interface {
	LoginURL(state string) string
	Authenticate(ctx context.Context, code string) (*auth.Claims, error)
}

var (
	_ ContentServicer    = (*service.ContentService)(nil)
	_ PreviewServicer    = (*service.PreviewService)(nil)
	_ NewsletterServicer = (*service.NewsletterService)(nil)
	_ LoginServicer      = (*service.AuthService)(nil)
	_ Authenticator      = (*auth.Authenticator)(nil)
)
