package service

import (
	"context"
	"mbs-hub/internal/data"
	"mbs-hub/internal/logger"
)

// DefaultRecentLimit applies to ListRecentArticles when no limit is given.
const DefaultRecentLimit = 10

// PreviewStatus reports whether draft content can be read.
type PreviewStatus struct {
	Enabled  bool `json:"enabled"`
	HasToken bool `json:"hasToken"`
}

// PreviewService reads content of every status for editors. Store failures
// are logged and returned so the caller can tell them apart from empty data.
type PreviewService struct {
	repo     PreviewRepository
	renderer BodyRenderer
	status   PreviewStatus
	log      logger.Logger
}

// NewPreviewService creates a new PreviewService.
func NewPreviewService(repo PreviewRepository, renderer BodyRenderer, status PreviewStatus, log logger.Logger) *PreviewService {
	return &PreviewService{repo: repo, renderer: renderer, status: status, log: log}
}

func (s *PreviewService) logFailure(err error, op string) {
	if err != nil {
		s.log.With(map[string]interface{}{"op": op}).Error(err, "Preview read failed")
	}
}

// Status reports the preview configuration.
func (s *PreviewService) Status() PreviewStatus {
	return s.status
}

// GetArticlePreview returns an article of any status with its body rendered.
func (s *PreviewService) GetArticlePreview(ctx context.Context, slug string) (*data.Article, error) {
	article, err := s.repo.GetArticlePreview(ctx, slug)
	s.logFailure(err, "getArticlePreview")
	if err != nil || article == nil {
		return article, err
	}
	renderBody(s.renderer, s.log, article)
	return article, nil
}

// GetAllArticlesPreview returns every article.
func (s *PreviewService) GetAllArticlesPreview(ctx context.Context) ([]data.Article, error) {
	articles, err := s.repo.ListArticlesPreview(ctx)
	s.logFailure(err, "getAllArticlesPreview")
	return articles, err
}

// GetArticlesByPillarPreview returns every article of a pillar.
func (s *PreviewService) GetArticlesByPillarPreview(ctx context.Context, pillarSlug string) ([]data.Article, error) {
	articles, err := s.repo.ListArticlesByPillarPreview(ctx, pillarSlug)
	s.logFailure(err, "getArticlesByPillarPreview")
	return articles, err
}

// GetArticlesByAuthor returns every article by an author.
func (s *PreviewService) GetArticlesByAuthor(ctx context.Context, authorSlug string) ([]data.Article, error) {
	articles, err := s.repo.ListArticlesByAuthorPreview(ctx, authorSlug)
	s.logFailure(err, "getArticlesByAuthor")
	return articles, err
}

// GetFeaturedArticlesPreview returns up to three featured articles of any status.
func (s *PreviewService) GetFeaturedArticlesPreview(ctx context.Context) ([]data.Article, error) {
	articles, err := s.repo.ListFeaturedArticlesPreview(ctx, FeaturedLimit)
	s.logFailure(err, "getFeaturedArticlesPreview")
	return articles, err
}

// GetRecentArticles returns up to limit articles by last modification.
func (s *PreviewService) GetRecentArticles(ctx context.Context, limit int) ([]data.Article, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	articles, err := s.repo.ListRecentArticles(ctx, limit)
	s.logFailure(err, "getRecentArticles")
	return articles, err
}

// GetPublishingStats counts articles by status.
func (s *PreviewService) GetPublishingStats(ctx context.Context) (*data.PublishingStats, error) {
	stats, err := s.repo.GetPublishingStats(ctx)
	s.logFailure(err, "getPublishingStats")
	return stats, err
}
