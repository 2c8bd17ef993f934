package handler

import (
	"encoding/json"
	"mbs-hub/internal/logger"
	"mbs-hub/internal/middleware"
	"mbs-hub/internal/service"
	"mbs-hub/internal/session"
	"net/http"
)

// Procedures holds the services behind the RPC surface.
type Procedures struct {
	Content    ContentServicer
	Preview    PreviewServicer
	Newsletter NewsletterServicer
	Sessions   session.Manager
	// Log defaults to a no-op logger.
	Log logger.Logger
}

type slugInput struct {
	Slug string `json:"slug" validate:"required,max=200"`
}

type pillarSlugInput struct {
	PillarSlug string `json:"pillarSlug" validate:"required,max=200"`
}

type authorSlugInput struct {
	AuthorSlug string `json:"authorSlug" validate:"required,max=200"`
}

type limitInput struct {
	Limit *int `json:"limit" validate:"omitempty,min=1,max=100"`
}

func (in limitInput) or(def int) int {
	if in.Limit == nil {
		return def
	}
	return *in.Limit
}

type emailInput struct {
	Email string `json:"email" validate:"required,email,max=320"`
}

// NewRPC registers every procedure of the content, authors, newsletter, auth,
// preview and system namespaces.
func NewRPC(p Procedures) *RPC {
	rpc := newRPC()
	log := p.Log
	if log == nil {
		log = logger.Nop()
	}
	rpc.registerContent(p.Content)
	rpc.registerAuthors(p.Content)
	rpc.registerNewsletter(p.Newsletter)
	rpc.registerAuth(p.Sessions, log)
	rpc.registerPreview(p.Preview)
	rpc.registerSystem()
	return rpc
}

func (p *RPC) registerContent(s ContentServicer) {
	p.query("content.getPillars", func(r *http.Request, _ json.RawMessage) (interface{}, error) {
		return s.GetPillars(r.Context())
	})
	p.query("content.getPillarBySlug", func(r *http.Request, raw json.RawMessage) (interface{}, error) {
		in, err := bind[slugInput](p.validate, raw)
		if err != nil {
			return nil, err
		}
		return s.GetPillarBySlug(r.Context(), in.Slug)
	})
	p.query("content.getArticles", func(r *http.Request, _ json.RawMessage) (interface{}, error) {
		return s.GetArticles(r.Context())
	})
	p.query("content.getFeaturedArticles", func(r *http.Request, _ json.RawMessage) (interface{}, error) {
		return s.GetFeaturedArticles(r.Context())
	})
	p.query("content.getLatestArticles", func(r *http.Request, raw json.RawMessage) (interface{}, error) {
		in, err := bind[limitInput](p.validate, raw)
		if err != nil {
			return nil, err
		}
		return s.GetLatestArticles(r.Context(), in.or(service.DefaultLatestLimit))
	})
	p.query("content.getArticleBySlug", func(r *http.Request, raw json.RawMessage) (interface{}, error) {
		in, err := bind[slugInput](p.validate, raw)
		if err != nil {
			return nil, err
		}
		return s.GetArticleBySlug(r.Context(), in.Slug)
	})
	p.query("content.getArticlesByPillarSlug", func(r *http.Request, raw json.RawMessage) (interface{}, error) {
		in, err := bind[pillarSlugInput](p.validate, raw)
		if err != nil {
			return nil, err
		}
		return s.GetArticlesByPillarSlug(r.Context(), in.PillarSlug)
	})
	p.query("content.getHomePage", func(r *http.Request, raw json.RawMessage) (interface{}, error) {
		in, err := bind[limitInput](p.validate, raw)
		if err != nil {
			return nil, err
		}
		return s.GetHomePage(r.Context(), in.or(service.DefaultLatestLimit))
	})
}

func (p *RPC) registerAuthors(s ContentServicer) {
	p.query("authors.getAuthors", func(r *http.Request, _ json.RawMessage) (interface{}, error) {
		return s.GetAuthors(r.Context())
	})
	p.query("authors.getAuthorBySlug", func(r *http.Request, raw json.RawMessage) (interface{}, error) {
		in, err := bind[slugInput](p.validate, raw)
		if err != nil {
			return nil, err
		}
		return s.GetAuthorBySlug(r.Context(), in.Slug)
	})
}

func (p *RPC) registerNewsletter(s NewsletterServicer) {
	p.mutation("newsletter.subscribe", func(r *http.Request, raw json.RawMessage) (interface{}, error) {
		in, err := bind[emailInput](p.validate, raw)
		if err != nil {
			return nil, err
		}
		return s.Subscribe(r.Context(), in.Email)
	})
	p.mutation("newsletter.unsubscribe", func(r *http.Request, raw json.RawMessage) (interface{}, error) {
		in, err := bind[emailInput](p.validate, raw)
		if err != nil {
			return nil, err
		}
		return s.Unsubscribe(r.Context(), in.Email)
	})
}

type logoutResult struct {
	Success bool `json:"success"`
}

func (p *RPC) registerAuth(sm session.Manager, log logger.Logger) {
	p.query("auth.me", func(r *http.Request, _ json.RawMessage) (interface{}, error) {
		user := middleware.GetUserInfo(r.Context())
		if user.Anonymous() {
			return nil, nil
		}
		return user, nil
	})
	// Logout always succeeds; a failed store delete only leaves an orphaned row.
	p.mutation("auth.logout", func(r *http.Request, _ json.RawMessage) (interface{}, error) {
		if err := sm.Destroy(r.Context()); err != nil {
			log.Error(err, "Failed to destroy session on logout")
		}
		return logoutResult{Success: true}, nil
	})
}

func (p *RPC) registerPreview(s PreviewServicer) {
	p.query("preview.getPreviewStatus", func(_ *http.Request, _ json.RawMessage) (interface{}, error) {
		return s.Status(), nil
	})
	p.query("preview.getArticlePreview", func(r *http.Request, raw json.RawMessage) (interface{}, error) {
		in, err := bind[slugInput](p.validate, raw)
		if err != nil {
			return nil, err
		}
		return s.GetArticlePreview(r.Context(), in.Slug)
	})
	p.query("preview.getAllArticlesPreview", func(r *http.Request, _ json.RawMessage) (interface{}, error) {
		return s.GetAllArticlesPreview(r.Context())
	})
	p.query("preview.getArticlesByPillarPreview", func(r *http.Request, raw json.RawMessage) (interface{}, error) {
		in, err := bind[pillarSlugInput](p.validate, raw)
		if err != nil {
			return nil, err
		}
		return s.GetArticlesByPillarPreview(r.Context(), in.PillarSlug)
	})
	p.query("preview.getArticlesByAuthor", func(r *http.Request, raw json.RawMessage) (interface{}, error) {
		in, err := bind[authorSlugInput](p.validate, raw)
		if err != nil {
			return nil, err
		}
		return s.GetArticlesByAuthor(r.Context(), in.AuthorSlug)
	})
	p.query("preview.getPublishingStats", func(r *http.Request, _ json.RawMessage) (interface{}, error) {
		return s.GetPublishingStats(r.Context())
	})
	p.query("preview.getRecentArticles", func(r *http.Request, raw json.RawMessage) (interface{}, error) {
		in, err := bind[limitInput](p.validate, raw)
		if err != nil {
			return nil, err
		}
		return s.GetRecentArticles(r.Context(), in.or(service.DefaultRecentLimit))
	})
	p.query("preview.getFeaturedArticlesPreview", func(r *http.Request, _ json.RawMessage) (interface{}, error) {
		return s.GetFeaturedArticlesPreview(r.Context())
	})
}

type healthResult struct {
	OK bool `json:"ok"`
}

func (p *RPC) registerSystem() {
	p.query("system.health", func(_ *http.Request, _ json.RawMessage) (interface{}, error) {
		return healthResult{OK: true}, nil
	})
}
