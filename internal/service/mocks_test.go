//go:build unit

package service

import (
	"context"
	"encoding/json"
	"mbs-hub/internal/data"
	"sync"
)

// mockContentRepository is a mock implementation of the ContentRepository interface.
type mockContentRepository struct {
	mu            sync.Mutex
	errToReturn   error
	pillars       []data.Pillar
	pillar        *data.PillarWithArticles
	articles      []data.Article
	article       *data.Article
	authors       []data.Author
	author        *data.Author
	lastLimit     int
	lastSlug      string
	featuredLimit int
}

var _ ContentRepository = (*mockContentRepository)(nil)

func (m *mockContentRepository) ListPillars(ctx context.Context) ([]data.Pillar, error) {
	return m.pillars, m.errToReturn
}

func (m *mockContentRepository) GetPillarBySlug(ctx context.Context, slug string) (*data.PillarWithArticles, error) {
	m.lastSlug = slug
	return m.pillar, m.errToReturn
}

func (m *mockContentRepository) ListArticles(ctx context.Context) ([]data.Article, error) {
	return m.articles, m.errToReturn
}

func (m *mockContentRepository) ListFeaturedArticles(ctx context.Context, limit int) ([]data.Article, error) {
	m.mu.Lock()
	m.featuredLimit = limit
	m.mu.Unlock()
	return m.articles, m.errToReturn
}

func (m *mockContentRepository) ListLatestArticles(ctx context.Context, limit int) ([]data.Article, error) {
	m.mu.Lock()
	m.lastLimit = limit
	m.mu.Unlock()
	return m.articles, m.errToReturn
}

func (m *mockContentRepository) GetArticleBySlug(ctx context.Context, slug string) (*data.Article, error) {
	m.lastSlug = slug
	return m.article, m.errToReturn
}

func (m *mockContentRepository) ListArticlesByPillarSlug(ctx context.Context, pillarSlug string) ([]data.Article, error) {
	m.lastSlug = pillarSlug
	return m.articles, m.errToReturn
}

func (m *mockContentRepository) ListAuthors(ctx context.Context) ([]data.Author, error) {
	return m.authors, m.errToReturn
}

func (m *mockContentRepository) GetAuthorBySlug(ctx context.Context, slug string) (*data.Author, error) {
	m.lastSlug = slug
	return m.author, m.errToReturn
}

// mockPreviewRepository is a mock implementation of the PreviewRepository interface.
type mockPreviewRepository struct {
	errToReturn error
	articles    []data.Article
	article     *data.Article
	stats       *data.PublishingStats
	lastLimit   int
	lastSlug    string
}

var _ PreviewRepository = (*mockPreviewRepository)(nil)

func (m *mockPreviewRepository) GetArticlePreview(ctx context.Context, slug string) (*data.Article, error) {
	m.lastSlug = slug
	return m.article, m.errToReturn
}

func (m *mockPreviewRepository) ListArticlesPreview(ctx context.Context) ([]data.Article, error) {
	return m.articles, m.errToReturn
}

func (m *mockPreviewRepository) ListArticlesByPillarPreview(ctx context.Context, pillarSlug string) ([]data.Article, error) {
	m.lastSlug = pillarSlug
	return m.articles, m.errToReturn
}

func (m *mockPreviewRepository) ListArticlesByAuthorPreview(ctx context.Context, authorSlug string) ([]data.Article, error) {
	m.lastSlug = authorSlug
	return m.articles, m.errToReturn
}

func (m *mockPreviewRepository) ListFeaturedArticlesPreview(ctx context.Context, limit int) ([]data.Article, error) {
	m.lastLimit = limit
	return m.articles, m.errToReturn
}

func (m *mockPreviewRepository) ListRecentArticles(ctx context.Context, limit int) ([]data.Article, error) {
	m.lastLimit = limit
	return m.articles, m.errToReturn
}

func (m *mockPreviewRepository) GetPublishingStats(ctx context.Context) (*data.PublishingStats, error) {
	return m.stats, m.errToReturn
}

// mockNewsletterRepository is a mock implementation of the NewsletterRepository interface.
type mockNewsletterRepository struct {
	errToReturn       error
	subscribeCalled   bool
	unsubscribeCalled bool
	lastEmail         string
}

var _ NewsletterRepository = (*mockNewsletterRepository)(nil)

func (m *mockNewsletterRepository) Subscribe(ctx context.Context, email string) error {
	m.subscribeCalled = true
	m.lastEmail = email
	return m.errToReturn
}

func (m *mockNewsletterRepository) Unsubscribe(ctx context.Context, email string) error {
	m.unsubscribeCalled = true
	m.lastEmail = email
	return m.errToReturn
}

// mockUserRepository is a mock implementation of the UserRepository interface.
type mockUserRepository struct {
	upsertErr    error
	getErr       error
	userToReturn *data.User
	lastUpsert   data.UserUpsert
	upsertCalled bool
}

var _ UserRepository = (*mockUserRepository)(nil)

func (m *mockUserRepository) UpsertUser(ctx context.Context, u data.UserUpsert) error {
	m.upsertCalled = true
	m.lastUpsert = u
	return m.upsertErr
}

func (m *mockUserRepository) GetUserByOpenID(ctx context.Context, openID string) (*data.User, error) {
	return m.userToReturn, m.getErr
}

// stubRenderer echoes the body length so tests can see it ran.
type stubRenderer struct {
	err   error
	calls int
}

var _ BodyRenderer = (*stubRenderer)(nil)

func (s *stubRenderer) Render(body json.RawMessage) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "<p>rendered</p>", nil
}
