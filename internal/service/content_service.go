package service

import (
	"context"
	"mbs-hub/internal/data"
	"mbs-hub/internal/logger"

	"golang.org/x/sync/errgroup"
)

const (
	// FeaturedLimit caps the featured list on the home page.
	FeaturedLimit = 3
	// DefaultLatestLimit applies when the caller does not pass a limit.
	DefaultLatestLimit = 10
)

// HomePage bundles the three reads the home page needs.
type HomePage struct {
	Featured []data.Article `json:"featured"`
	Latest   []data.Article `json:"latest"`
	Pillars  []data.Pillar  `json:"pillars"`
}

// ContentService provides the public content reads.
type ContentService struct {
	repo     ContentRepository
	renderer BodyRenderer
	log      logger.Logger
}

// NewContentService creates a new ContentService. renderer may be nil, in
// which case article bodies are returned without HTML.
func NewContentService(repo ContentRepository, renderer BodyRenderer, log logger.Logger) *ContentService {
	return &ContentService{repo: repo, renderer: renderer, log: log}
}

// GetPillars returns all pillars ordered by name.
func (s *ContentService) GetPillars(ctx context.Context) ([]data.Pillar, error) {
	return s.repo.ListPillars(ctx)
}

// GetPillarBySlug returns a pillar with its published articles, or nil.
func (s *ContentService) GetPillarBySlug(ctx context.Context, slug string) (*data.PillarWithArticles, error) {
	return s.repo.GetPillarBySlug(ctx, slug)
}

// GetArticles returns all published articles.
func (s *ContentService) GetArticles(ctx context.Context) ([]data.Article, error) {
	return s.repo.ListArticles(ctx)
}

// GetFeaturedArticles returns up to three featured articles.
func (s *ContentService) GetFeaturedArticles(ctx context.Context) ([]data.Article, error) {
	return s.repo.ListFeaturedArticles(ctx, FeaturedLimit)
}

// GetLatestArticles returns up to limit articles; zero means DefaultLatestLimit.
func (s *ContentService) GetLatestArticles(ctx context.Context, limit int) ([]data.Article, error) {
	if limit <= 0 {
		limit = DefaultLatestLimit
	}
	return s.repo.ListLatestArticles(ctx, limit)
}

// GetArticleBySlug returns a published article with its body rendered, or nil.
func (s *ContentService) GetArticleBySlug(ctx context.Context, slug string) (*data.Article, error) {
	article, err := s.repo.GetArticleBySlug(ctx, slug)
	if err != nil || article == nil {
		return article, err
	}
	renderBody(s.renderer, s.log, article)
	return article, nil
}

// GetArticlesByPillarSlug returns the published articles of a pillar.
func (s *ContentService) GetArticlesByPillarSlug(ctx context.Context, pillarSlug string) ([]data.Article, error) {
	return s.repo.ListArticlesByPillarSlug(ctx, pillarSlug)
}

// GetAuthors returns all authors ordered by name.
func (s *ContentService) GetAuthors(ctx context.Context) ([]data.Author, error) {
	return s.repo.ListAuthors(ctx)
}

// GetAuthorBySlug returns an author or nil.
func (s *ContentService) GetAuthorBySlug(ctx context.Context, slug string) (*data.Author, error) {
	return s.repo.GetAuthorBySlug(ctx, slug)
}

// GetHomePage runs the featured, latest and pillar reads concurrently. The
// first failure cancels the others.
func (s *ContentService) GetHomePage(ctx context.Context, latestLimit int) (*HomePage, error) {
	var home HomePage
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		featured, err := s.GetFeaturedArticles(gctx)
		home.Featured = featured
		return err
	})
	g.Go(func() error {
		latest, err := s.GetLatestArticles(gctx, latestLimit)
		home.Latest = latest
		return err
	})
	g.Go(func() error {
		pillars, err := s.GetPillars(gctx)
		home.Pillars = pillars
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &home, nil
}

// renderBody fills BodyHTML. A render failure is logged and leaves the raw body.
func renderBody(r BodyRenderer, log logger.Logger, article *data.Article) {
	if r == nil || len(article.Body) == 0 {
		return
	}
	html, err := r.Render(article.Body)
	if err != nil {
		log.With(map[string]interface{}{"slug": article.Slug}).Error(err, "Failed to render article body")
		return
	}
	article.BodyHTML = html
}
