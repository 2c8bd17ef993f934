//go:build unit

package handler

import (
	"context"
	"mbs-hub/internal/auth"
	"mbs-hub/internal/data"
	"mbs-hub/internal/service"
	"mbs-hub/internal/session"
	"net/http"
)

// mockSessionManager is a mock implementation of the session.Manager interface.
type mockSessionManager struct {
	values        map[string]string
	destroyCalled bool
	destroyErr    error
	renewCalled   bool
}

// Ensure mockSessionManager implements the session.Manager interface.
var _ session.Manager = (*mockSessionManager)(nil)

func newMockSession(values map[string]string) *mockSessionManager {
	if values == nil {
		values = map[string]string{}
	}
	return &mockSessionManager{values: values}
}

func (m *mockSessionManager) LoadAndSave(next http.Handler) http.Handler { return next }
func (m *mockSessionManager) Put(ctx context.Context, key string, val interface{}) {
	m.values[key], _ = val.(string)
}
func (m *mockSessionManager) GetString(ctx context.Context, key string) string { return m.values[key] }
func (m *mockSessionManager) PopString(ctx context.Context, key string) string {
	v := m.values[key]
	delete(m.values, key)
	return v
}
func (m *mockSessionManager) Remove(ctx context.Context, key string) { delete(m.values, key) }
func (m *mockSessionManager) RenewToken(ctx context.Context) error {
	m.renewCalled = true
	return nil
}
func (m *mockSessionManager) Destroy(ctx context.Context) error {
	m.destroyCalled = true
	if m.destroyErr != nil {
		return m.destroyErr
	}
	m.values = map[string]string{}
	return nil
}

// mockContentService is a mock implementation of ContentServicer.
type mockContentService struct {
	pillars   []data.Pillar
	articles  []data.Article
	authors   []data.Author
	err       error
	calls     int
	lastSlug  string
	lastLimit int
}

var _ ContentServicer = (*mockContentService)(nil)

func (m *mockContentService) GetPillars(ctx context.Context) ([]data.Pillar, error) {
	m.calls++
	return m.pillars, m.err
}

func (m *mockContentService) GetPillarBySlug(ctx context.Context, slug string) (*data.PillarWithArticles, error) {
	m.calls++
	m.lastSlug = slug
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.pillars {
		if p.Slug == slug {
			return &data.PillarWithArticles{Pillar: p, Articles: m.articles}, nil
		}
	}
	return nil, nil
}

func (m *mockContentService) GetArticles(ctx context.Context) ([]data.Article, error) {
	m.calls++
	return m.articles, m.err
}

func (m *mockContentService) GetFeaturedArticles(ctx context.Context) ([]data.Article, error) {
	m.calls++
	return m.articles, m.err
}

func (m *mockContentService) GetLatestArticles(ctx context.Context, limit int) ([]data.Article, error) {
	m.calls++
	m.lastLimit = limit
	return m.articles, m.err
}

func (m *mockContentService) GetArticleBySlug(ctx context.Context, slug string) (*data.Article, error) {
	m.calls++
	m.lastSlug = slug
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.articles {
		if m.articles[i].Slug == slug {
			return &m.articles[i], nil
		}
	}
	return nil, nil
}

func (m *mockContentService) GetArticlesByPillarSlug(ctx context.Context, pillarSlug string) ([]data.Article, error) {
	m.calls++
	m.lastSlug = pillarSlug
	return m.articles, m.err
}

func (m *mockContentService) GetAuthors(ctx context.Context) ([]data.Author, error) {
	m.calls++
	return m.authors, m.err
}

func (m *mockContentService) GetAuthorBySlug(ctx context.Context, slug string) (*data.Author, error) {
	m.calls++
	m.lastSlug = slug
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.authors {
		if m.authors[i].Slug == slug {
			return &m.authors[i], nil
		}
	}
	return nil, nil
}

func (m *mockContentService) GetHomePage(ctx context.Context, latestLimit int) (*service.HomePage, error) {
	m.calls++
	m.lastLimit = latestLimit
	if m.err != nil {
		return nil, m.err
	}
	return &service.HomePage{Featured: m.articles, Latest: m.articles, Pillars: m.pillars}, nil
}

// mockPreviewService is a mock implementation of PreviewServicer.
type mockPreviewService struct {
	status    service.PreviewStatus
	articles  []data.Article
	stats     *data.PublishingStats
	err       error
	lastSlug  string
	lastLimit int
}

var _ PreviewServicer = (*mockPreviewService)(nil)

func (m *mockPreviewService) Status() service.PreviewStatus { return m.status }

func (m *mockPreviewService) GetArticlePreview(ctx context.Context, slug string) (*data.Article, error) {
	m.lastSlug = slug
	if m.err != nil || len(m.articles) == 0 {
		return nil, m.err
	}
	return &m.articles[0], nil
}

func (m *mockPreviewService) GetAllArticlesPreview(ctx context.Context) ([]data.Article, error) {
	return m.articles, m.err
}

func (m *mockPreviewService) GetArticlesByPillarPreview(ctx context.Context, pillarSlug string) ([]data.Article, error) {
	m.lastSlug = pillarSlug
	return m.articles, m.err
}

func (m *mockPreviewService) GetArticlesByAuthor(ctx context.Context, authorSlug string) ([]data.Article, error) {
	m.lastSlug = authorSlug
	return m.articles, m.err
}

func (m *mockPreviewService) GetFeaturedArticlesPreview(ctx context.Context) ([]data.Article, error) {
	return m.articles, m.err
}

func (m *mockPreviewService) GetRecentArticles(ctx context.Context, limit int) ([]data.Article, error) {
	m.lastLimit = limit
	return m.articles, m.err
}

func (m *mockPreviewService) GetPublishingStats(ctx context.Context) (*data.PublishingStats, error) {
	return m.stats, m.err
}

// mockNewsletterService is a mock implementation of NewsletterServicer.
type mockNewsletterService struct {
	err       error
	calls     int
	lastEmail string
}

var _ NewsletterServicer = (*mockNewsletterService)(nil)

func (m *mockNewsletterService) Subscribe(ctx context.Context, email string) (*service.SubscriptionResult, error) {
	m.calls++
	m.lastEmail = email
	if m.err != nil {
		return nil, m.err
	}
	return &service.SubscriptionResult{Success: true, Message: "Successfully subscribed to the newsletter!"}, nil
}

func (m *mockNewsletterService) Unsubscribe(ctx context.Context, email string) (*service.SubscriptionResult, error) {
	m.calls++
	m.lastEmail = email
	if m.err != nil {
		return nil, m.err
	}
	return &service.SubscriptionResult{Success: true, Message: "You have been unsubscribed."}, nil
}

// mockAuthenticator is a mock implementation of Authenticator.
type mockAuthenticator struct {
	claims   *auth.Claims
	err      error
	lastCode string
}

var _ Authenticator = (*mockAuthenticator)(nil)

func (m *mockAuthenticator) LoginURL(state string) string {
	return "https://idp.example.com/authorize?state=" + state
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, code string) (*auth.Claims, error) {
	m.lastCode = code
	return m.claims, m.err
}

// mockLoginService is a mock implementation of LoginServicer.
type mockLoginService struct {
	role data.Role
	err  error
	last service.Identity
}

var _ LoginServicer = (*mockLoginService)(nil)

func (m *mockLoginService) Login(ctx context.Context, id service.Identity) (*data.User, error) {
	m.last = id
	if m.err != nil {
		return nil, m.err
	}
	u := &data.User{OpenID: id.OpenID, Role: m.role}
	if id.Name != "" {
		u.Name = &id.Name
	}
	if id.Email != "" {
		u.Email = &id.Email
	}
	return u, nil
}
