package cms

import (
	"context"
	"mbs-hub/internal/common"
	"mbs-hub/internal/data"
)

// Repository serves published content from the CMS.
type Repository struct {
	client *Client
	res    resolver
}

// NewRepository creates a new Repository.
func NewRepository(client *Client) *Repository {
	return &Repository{
		client: client,
		res:    resolver{projectID: client.ProjectID(), dataset: client.Dataset()},
	}
}

func (r *Repository) fetchArticles(ctx context.Context, op, query string, params map[string]interface{}) ([]data.Article, error) {
	var articles []data.Article
	if err := r.client.Fetch(ctx, query, params, &articles); err != nil {
		return nil, common.NewStoreError(op, err)
	}
	return r.res.articles(articles), nil
}

func (r *Repository) fetchArticle(ctx context.Context, op, query string, params map[string]interface{}) (*data.Article, error) {
	var article *data.Article
	if err := r.client.Fetch(ctx, query, params, &article); err != nil {
		return nil, common.NewStoreError(op, err)
	}
	r.res.article(article)
	return article, nil
}

// ListPillars returns every pillar ordered by name.
func (r *Repository) ListPillars(ctx context.Context) ([]data.Pillar, error) {
	var pillars []data.Pillar
	if err := r.client.Fetch(ctx, queryPillars, nil, &pillars); err != nil {
		return nil, common.NewStoreError("list pillars", err)
	}
	if pillars == nil {
		pillars = []data.Pillar{}
	}
	return pillars, nil
}

// GetPillarBySlug returns the pillar with its published articles, or nil.
func (r *Repository) GetPillarBySlug(ctx context.Context, slug string) (*data.PillarWithArticles, error) {
	var pillar *data.PillarWithArticles
	if err := r.client.Fetch(ctx, queryPillarBySlug, map[string]interface{}{"slug": slug}, &pillar); err != nil {
		return nil, common.NewStoreError("get pillar by slug", err)
	}
	if pillar == nil {
		return nil, nil
	}
	pillar.Articles = r.res.articles(pillar.Articles)
	return pillar, nil
}

// ListArticles returns all published articles, newest first.
func (r *Repository) ListArticles(ctx context.Context) ([]data.Article, error) {
	return r.fetchArticles(ctx, "list articles", queryArticles, nil)
}

// ListFeaturedArticles returns at most limit published, featured articles.
func (r *Repository) ListFeaturedArticles(ctx context.Context, limit int) ([]data.Article, error) {
	return r.fetchArticles(ctx, "list featured articles", featuredArticlesQuery(limit), nil)
}

// ListLatestArticles returns at most limit published articles, newest first.
func (r *Repository) ListLatestArticles(ctx context.Context, limit int) ([]data.Article, error) {
	return r.fetchArticles(ctx, "list latest articles", latestArticlesQuery(limit), nil)
}

// GetArticleBySlug returns a published article or nil.
func (r *Repository) GetArticleBySlug(ctx context.Context, slug string) (*data.Article, error) {
	return r.fetchArticle(ctx, "get article by slug", queryArticleBySlug, map[string]interface{}{"slug": slug})
}

// ListArticlesByPillarSlug returns the published articles of a pillar.
func (r *Repository) ListArticlesByPillarSlug(ctx context.Context, pillarSlug string) ([]data.Article, error) {
	return r.fetchArticles(ctx, "list articles by pillar", queryArticlesByPillar, map[string]interface{}{"pillarSlug": pillarSlug})
}

// ListAuthors returns every author ordered by name.
func (r *Repository) ListAuthors(ctx context.Context) ([]data.Author, error) {
	var authors []data.Author
	if err := r.client.Fetch(ctx, queryAuthors, nil, &authors); err != nil {
		return nil, common.NewStoreError("list authors", err)
	}
	return r.res.authors(authors), nil
}

// GetAuthorBySlug returns an author or nil.
func (r *Repository) GetAuthorBySlug(ctx context.Context, slug string) (*data.Author, error) {
	var author *data.Author
	if err := r.client.Fetch(ctx, queryAuthorBySlug, map[string]interface{}{"slug": slug}, &author); err != nil {
		return nil, common.NewStoreError("get author by slug", err)
	}
	r.res.author(author)
	return author, nil
}
