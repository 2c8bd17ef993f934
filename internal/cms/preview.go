package cms

import (
	"context"
	"mbs-hub/internal/common"
	"mbs-hub/internal/data"
)

// PreviewRepository reads CMS content of every status, drafts included.
type PreviewRepository struct {
	client *Client
	res    resolver
}

// NewPreviewRepository creates a new PreviewRepository.
func NewPreviewRepository(client *Client) *PreviewRepository {
	return &PreviewRepository{
		client: client,
		res:    resolver{projectID: client.ProjectID(), dataset: client.Dataset()},
	}
}

func (r *PreviewRepository) fetchArticles(ctx context.Context, op, query string, params map[string]interface{}) ([]data.Article, error) {
	var articles []data.Article
	if err := r.client.FetchDrafts(ctx, query, params, &articles); err != nil {
		return nil, common.NewStoreError(op, err)
	}
	return r.res.articles(articles), nil
}

// GetArticlePreview returns an article of any status, or nil.
func (r *PreviewRepository) GetArticlePreview(ctx context.Context, slug string) (*data.Article, error) {
	var article *data.Article
	if err := r.client.FetchDrafts(ctx, queryArticlePreview, map[string]interface{}{"slug": slug}, &article); err != nil {
		return nil, common.NewStoreError("get article preview", err)
	}
	r.res.article(article)
	return article, nil
}

// ListArticlesPreview returns every article, newest first.
func (r *PreviewRepository) ListArticlesPreview(ctx context.Context) ([]data.Article, error) {
	return r.fetchArticles(ctx, "list articles preview", queryArticlesPreview, nil)
}

// ListArticlesByPillarPreview returns every article of a pillar.
func (r *PreviewRepository) ListArticlesByPillarPreview(ctx context.Context, pillarSlug string) ([]data.Article, error) {
	return r.fetchArticles(ctx, "list pillar articles preview", queryArticlesByPillarPreview,
		map[string]interface{}{"pillarSlug": pillarSlug})
}

// ListArticlesByAuthorPreview returns every article by an author.
func (r *PreviewRepository) ListArticlesByAuthorPreview(ctx context.Context, authorSlug string) ([]data.Article, error) {
	return r.fetchArticles(ctx, "list author articles preview", queryArticlesByAuthorPreview,
		map[string]interface{}{"authorSlug": authorSlug})
}

// ListFeaturedArticlesPreview returns at most limit featured articles of any status.
func (r *PreviewRepository) ListFeaturedArticlesPreview(ctx context.Context, limit int) ([]data.Article, error) {
	return r.fetchArticles(ctx, "list featured articles preview", featuredArticlesPreviewQuery(limit), nil)
}

// ListRecentArticles returns at most limit articles ordered by last modification.
func (r *PreviewRepository) ListRecentArticles(ctx context.Context, limit int) ([]data.Article, error) {
	return r.fetchArticles(ctx, "list recent articles", recentArticlesQuery(limit), nil)
}

// GetPublishingStats counts articles by status.
func (r *PreviewRepository) GetPublishingStats(ctx context.Context) (*data.PublishingStats, error) {
	var stats data.PublishingStats
	if err := r.client.FetchDrafts(ctx, queryPublishingStats, nil, &stats); err != nil {
		return nil, common.NewStoreError("get publishing stats", err)
	}
	return &stats, nil
}

// HasToken reports whether the CMS client can read drafts.
func (r *PreviewRepository) HasToken() bool {
	return r.client.HasToken()
}
