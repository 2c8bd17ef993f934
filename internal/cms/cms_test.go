//go:build unit

package cms

import (
	"context"
	"errors"
	"mbs-hub/internal/common"
	"mbs-hub/internal/config"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeCMS answers GROQ queries with canned results and records requests.
type fakeCMS struct {
	mu       sync.Mutex
	requests []*http.Request
	status   int
	respond  func(r *http.Request) string
}

func (f *fakeCMS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"error":{"description":"param $slug referenced, but not provided","type":"queryParseError"}}`))
		return
	}
	_, _ = w.Write([]byte(`{"ms":1,"result":` + f.respond(r) + `}`))
}

func (f *fakeCMS) lastRequest(t *testing.T) *http.Request {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func (f *fakeCMS) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestClient(t *testing.T, fake *fakeCMS, token string, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewClient(config.CMSConfig{
		ProjectID:  "proj1",
		Dataset:    "production",
		APIVersion: "2021-06-07",
		APIHost:    srv.URL,
		Token:      token,
	}, opts...)
}

const articleJSON = `{
  "id": "art-1", "title": "Breathing", "slug": "breathing", "status": "published", "isFeatured": true,
  "publishedAt": "2024-05-01T10:00:00.000Z",
  "author": {"id": "au-1", "name": "Jane", "slug": "jane", "image": {"assetRef": "image-abc123-800x600-png", "url": null}},
  "pillar": {"id": "pi-1", "slug": "mind", "name": "Mind", "color": "#336699"},
  "featuredImage": {"assetRef": "image-Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000-jpg", "url": null, "alt": "lake"},
  "body": [{"_type": "block", "children": [{"_type": "span", "text": "Hello"}]}],
  "seoKeywords": ["calm"]
}`

func TestRepository_GetArticleBySlug(t *testing.T) {
	fake := &fakeCMS{respond: func(r *http.Request) string { return articleJSON }}
	repo := NewRepository(newTestClient(t, fake, ""))

	article, err := repo.GetArticleBySlug(context.Background(), "breathing")
	require.NoError(t, err)
	require.NotNil(t, article)

	req := fake.lastRequest(t)
	require.Equal(t, "/v2021-06-07/data/query/production", req.URL.Path)
	require.Equal(t, `"breathing"`, req.URL.Query().Get("$slug"))
	require.Contains(t, req.URL.Query().Get("query"), `status == "published"`)
	require.Empty(t, req.Header.Get("Authorization"))

	require.Equal(t, "mind", article.Pillar.Slug)
	require.Equal(t, "Mind", article.Pillar.Name)
	require.Equal(t, "jane", article.Author.Slug)
	require.Equal(t, "https://cdn.sanity.io/images/proj1/production/Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000.jpg", article.FeaturedImage.URL)
	require.Equal(t, "https://cdn.sanity.io/images/proj1/production/abc123-800x600.png", article.Author.Image.URL)
	require.JSONEq(t, `[{"_type": "block", "children": [{"_type": "span", "text": "Hello"}]}]`, string(article.Body))
}

func TestRepository_NotFoundIsNil(t *testing.T) {
	fake := &fakeCMS{respond: func(r *http.Request) string { return "null" }}
	repo := NewRepository(newTestClient(t, fake, ""))
	ctx := context.Background()

	article, err := repo.GetArticleBySlug(ctx, "unknown")
	require.NoError(t, err)
	require.Nil(t, article)

	pillar, err := repo.GetPillarBySlug(ctx, "unknown")
	require.NoError(t, err)
	require.Nil(t, pillar)

	author, err := repo.GetAuthorBySlug(ctx, "unknown")
	require.NoError(t, err)
	require.Nil(t, author)

	articles, err := repo.ListArticles(ctx)
	require.NoError(t, err)
	require.NotNil(t, articles)
	require.Empty(t, articles)
}

func TestRepository_LimitUsesExclusiveRange(t *testing.T) {
	fake := &fakeCMS{respond: func(r *http.Request) string { return "[]" }}
	repo := NewRepository(newTestClient(t, fake, ""))
	ctx := context.Background()

	_, err := repo.ListFeaturedArticles(ctx, 3)
	require.NoError(t, err)
	query := fake.lastRequest(t).URL.Query().Get("query")
	require.Contains(t, query, "[0...3]")
	require.Contains(t, query, "isFeatured == true")

	_, err = repo.ListLatestArticles(ctx, 9)
	require.NoError(t, err)
	require.Contains(t, fake.lastRequest(t).URL.Query().Get("query"), "[0...9]")
}

func TestRepository_GetPillarBySlug(t *testing.T) {
	fake := &fakeCMS{respond: func(r *http.Request) string {
		return `{"id": "pi-1", "slug": "mind", "name": "Mind", "articles": [` + articleJSON + `]}`
	}}
	repo := NewRepository(newTestClient(t, fake, ""))

	pillar, err := repo.GetPillarBySlug(context.Background(), "mind")
	require.NoError(t, err)
	require.Equal(t, "mind", pillar.Slug)
	require.Len(t, pillar.Articles, 1)
	require.Equal(t, "breathing", pillar.Articles[0].Slug)
	require.Contains(t, fake.lastRequest(t).URL.Query().Get("query"), "references(^._id)")
}

func TestRepository_StoreErrors(t *testing.T) {
	fake := &fakeCMS{status: http.StatusBadRequest}
	repo := NewRepository(newTestClient(t, fake, ""))

	_, err := repo.ListPillars(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, common.ErrStore))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Contains(t, apiErr.Message, "not provided")
}

func TestRepository_Unconfigured(t *testing.T) {
	repo := NewRepository(NewClient(config.CMSConfig{}))

	_, err := repo.ListAuthors(context.Background())
	require.ErrorIs(t, err, common.ErrUnconfigured)
	require.False(t, errors.Is(err, common.ErrStore))
}

type mapCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func (m *mapCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[key], nil
}

func (m *mapCache) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

var _ ResponseCache = (*mapCache)(nil)

func TestClient_CachesPublishedQueriesOnly(t *testing.T) {
	fake := &fakeCMS{respond: func(r *http.Request) string { return `[{"id":"pi-1","slug":"mind","name":"Mind"}]` }}
	cache := &mapCache{items: map[string][]byte{}}
	client := newTestClient(t, fake, "secret", WithCache(cache))
	ctx := context.Background()

	repo := NewRepository(client)
	for i := 0; i < 2; i++ {
		pillars, err := repo.ListPillars(ctx)
		require.NoError(t, err)
		require.Len(t, pillars, 1)
	}
	require.Equal(t, 1, fake.count(), "second published read should be served from cache")

	preview := NewPreviewRepository(client)
	for i := 0; i < 2; i++ {
		_, err := preview.ListArticlesPreview(ctx)
		require.NoError(t, err)
	}
	require.Equal(t, 3, fake.count(), "draft reads must bypass the cache")
}

func TestPreviewRepository_Drafts(t *testing.T) {
	fake := &fakeCMS{respond: func(r *http.Request) string {
		q := r.URL.Query().Get("query")
		if strings.Contains(q, `count(`) {
			return `{"draft": 2, "published": 3, "scheduled": 1, "archived": 1, "total": 6}`
		}
		return `[{"id": "drafts.art-9", "slug": "wip", "title": "WIP", "status": "draft",
		  "createdAt": "2024-06-01T00:00:00Z", "updatedAt": "2024-06-02T00:00:00Z"}]`
	}}
	preview := NewPreviewRepository(newTestClient(t, fake, "secret"))
	ctx := context.Background()

	articles, err := preview.ListRecentArticles(ctx, 10)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	require.NotNil(t, articles[0].UpdatedAt)

	req := fake.lastRequest(t)
	require.Equal(t, "previewDrafts", req.URL.Query().Get("perspective"))
	require.Equal(t, "Bearer secret", req.Header.Get("Authorization"))
	require.Contains(t, req.URL.Query().Get("query"), "order(_updatedAt desc)[0...10]")

	byAuthor, err := preview.ListArticlesByAuthorPreview(ctx, "jane")
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	require.Equal(t, `"jane"`, fake.lastRequest(t).URL.Query().Get("$authorSlug"))

	stats, err := preview.GetPublishingStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 6, stats.Total)
	require.Equal(t, stats.Total, stats.Draft+stats.Published+stats.Archived)
	require.True(t, preview.HasToken())
}

func TestImageURL(t *testing.T) {
	testCases := []struct {
		name string
		ref  string
		want string
	}{
		{"jpeg", "image-Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000-jpg", "https://cdn.sanity.io/images/p/d/Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000.jpg"},
		{"dashed id", "image-ab-cd-10x20-webp", "https://cdn.sanity.io/images/p/d/ab-cd-10x20.webp"},
		{"file asset", "file-abc-pdf", ""},
		{"missing dims", "image-abc-png", ""},
		{"empty", "", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ImageURL("p", "d", tc.ref))
		})
	}
}
