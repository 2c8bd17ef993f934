package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"mbs-hub/internal/common"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLContentRepository serves pillars, articles and authors from the relational
// schema. It implements both the public and the preview read sets.
type SQLContentRepository struct {
	conn DBProvider
	now  func() time.Time
}

// NewSQLContentRepository creates a new SQLContentRepository.
func NewSQLContentRepository(conn DBProvider) *SQLContentRepository {
	return &SQLContentRepository{conn: conn, now: time.Now}
}

const articleSelect = `
SELECT a.id, a.slug, a.title, a.subtitle, a.featured_image_url, a.rich_text_body, a.is_featured, a.status,
       a.seo_title, a.seo_description, a.seo_keywords, a.og_image_url, a.published_at, a.created_at, a.updated_at,
       p.id AS pillar_id, p.slug AS pillar_slug, p.name AS pillar_name, p.description AS pillar_description,
       p.color AS pillar_color,
       au.id AS author_id, au.slug AS author_slug, au.name AS author_name, au.bio AS author_bio,
       au.image_url AS author_image_url, au.email AS author_email
FROM articles a
JOIN pillars p ON p.id = a.pillar_id
LEFT JOIN authors au ON au.id = a.author_id`

const (
	orderByPublished = ` ORDER BY a.published_at DESC, a.id DESC`
	orderByUpdated   = ` ORDER BY a.updated_at DESC, a.id DESC`
)

// articleRow is the flat shape of articleSelect.
type articleRow struct {
	ID               int64          `db:"id"`
	Slug             string         `db:"slug"`
	Title            string         `db:"title"`
	Subtitle         sql.NullString `db:"subtitle"`
	FeaturedImageURL sql.NullString `db:"featured_image_url"`
	Body             string         `db:"rich_text_body"`
	IsFeatured       bool           `db:"is_featured"`
	Status           string         `db:"status"`
	SEOTitle         sql.NullString `db:"seo_title"`
	SEODescription   sql.NullString `db:"seo_description"`
	SEOKeywords      sql.NullString `db:"seo_keywords"`
	OGImageURL       sql.NullString `db:"og_image_url"`
	PublishedAt      time.Time      `db:"published_at"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`

	PillarID          int64          `db:"pillar_id"`
	PillarSlug        string         `db:"pillar_slug"`
	PillarName        string         `db:"pillar_name"`
	PillarDescription sql.NullString `db:"pillar_description"`
	PillarColor       sql.NullString `db:"pillar_color"`

	AuthorID       sql.NullInt64  `db:"author_id"`
	AuthorSlug     sql.NullString `db:"author_slug"`
	AuthorName     sql.NullString `db:"author_name"`
	AuthorBio      sql.NullString `db:"author_bio"`
	AuthorImageURL sql.NullString `db:"author_image_url"`
	AuthorEmail    sql.NullString `db:"author_email"`
}

type pillarRow struct {
	ID          int64          `db:"id"`
	Slug        string         `db:"slug"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	Color       sql.NullString `db:"color"`
}

type authorRow struct {
	ID       int64          `db:"id"`
	Slug     string         `db:"slug"`
	Name     string         `db:"name"`
	Bio      sql.NullString `db:"bio"`
	ImageURL sql.NullString `db:"image_url"`
	Email    sql.NullString `db:"email"`
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func imageFromURL(ns sql.NullString) *Image {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return &Image{URL: ns.String}
}

func (r pillarRow) toPillar() Pillar {
	return Pillar{
		ID:          strconv.FormatInt(r.ID, 10),
		Slug:        r.Slug,
		Name:        r.Name,
		Description: nullString(r.Description),
		Color:       nullString(r.Color),
	}
}

func (r authorRow) toAuthor() Author {
	return Author{
		ID:    strconv.FormatInt(r.ID, 10),
		Slug:  r.Slug,
		Name:  r.Name,
		Bio:   nullString(r.Bio),
		Image: imageFromURL(r.ImageURL),
		Email: nullString(r.Email),
	}
}

func (r articleRow) toArticle() Article {
	created, updated := r.CreatedAt, r.UpdatedAt
	a := Article{
		ID:             strconv.FormatInt(r.ID, 10),
		Slug:           r.Slug,
		Title:          r.Title,
		Subtitle:       nullString(r.Subtitle),
		PublishedAt:    r.PublishedAt,
		FeaturedImage:  imageFromURL(r.FeaturedImageURL),
		Body:           bodyJSON(r.Body),
		IsFeatured:     r.IsFeatured,
		Status:         ArticleStatus(r.Status),
		SEOTitle:       nullString(r.SEOTitle),
		SEODescription: nullString(r.SEODescription),
		SEOKeywords:    parseKeywords(r.SEOKeywords),
		OGImage:        imageFromURL(r.OGImageURL),
		CreatedAt:      &created,
		UpdatedAt:      &updated,
		Pillar: &Pillar{
			ID:          strconv.FormatInt(r.PillarID, 10),
			Slug:        r.PillarSlug,
			Name:        r.PillarName,
			Description: nullString(r.PillarDescription),
			Color:       nullString(r.PillarColor),
		},
	}
	if r.AuthorID.Valid {
		a.Author = &Author{
			ID:    strconv.FormatInt(r.AuthorID.Int64, 10),
			Slug:  r.AuthorSlug.String,
			Name:  r.AuthorName.String,
			Bio:   nullString(r.AuthorBio),
			Image: imageFromURL(r.AuthorImageURL),
			Email: nullString(r.AuthorEmail),
		}
	}
	return a
}

// bodyJSON keeps structured bodies as-is and wraps anything else (markdown or
// plain text) as a JSON string.
func bodyJSON(body string) json.RawMessage {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return nil
	}
	if (strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{")) && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	encoded, _ := json.Marshal(body)
	return encoded
}

// parseKeywords accepts a JSON array or a comma separated list.
func parseKeywords(ns sql.NullString) []string {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil
	}
	var keywords []string
	if err := json.Unmarshal([]byte(ns.String), &keywords); err == nil {
		return keywords
	}
	for _, k := range strings.Split(ns.String, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

func (r *SQLContentRepository) db(ctx context.Context) (*sqlx.DB, error) {
	return r.conn.DB(ctx)
}

func (r *SQLContentRepository) selectArticles(ctx context.Context, op, where, order string, limit int, args ...interface{}) ([]Article, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, common.NewStoreError(op, err)
	}
	query := articleSelect + where + order
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	var rows []articleRow
	if err := db.SelectContext(ctx, &rows, db.Rebind(query), args...); err != nil {
		return nil, common.NewStoreError(op, err)
	}
	articles := make([]Article, 0, len(rows))
	for _, row := range rows {
		articles = append(articles, row.toArticle())
	}
	return articles, nil
}

func (r *SQLContentRepository) getArticle(ctx context.Context, op, where string, args ...interface{}) (*Article, error) {
	articles, err := r.selectArticles(ctx, op, where, orderByPublished, 1, args...)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, nil // Not found is not an error
	}
	return &articles[0], nil
}

// ListPillars returns every pillar ordered by name.
func (r *SQLContentRepository) ListPillars(ctx context.Context) ([]Pillar, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, common.NewStoreError("list pillars", err)
	}
	var rows []pillarRow
	query := `SELECT id, slug, name, description, color FROM pillars ORDER BY name ASC`
	if err := db.SelectContext(ctx, &rows, query); err != nil {
		return nil, common.NewStoreError("list pillars", err)
	}
	pillars := make([]Pillar, 0, len(rows))
	for _, row := range rows {
		pillars = append(pillars, row.toPillar())
	}
	return pillars, nil
}

// GetPillarBySlug returns the pillar joined with its published articles.
func (r *SQLContentRepository) GetPillarBySlug(ctx context.Context, slug string) (*PillarWithArticles, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, common.NewStoreError("get pillar by slug", err)
	}
	var row pillarRow
	query := `SELECT id, slug, name, description, color FROM pillars WHERE slug = ?`
	if err := db.GetContext(ctx, &row, db.Rebind(query), slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found is not an error
		}
		return nil, common.NewStoreError("get pillar by slug", err)
	}

	articles, err := r.selectArticles(ctx, "get pillar by slug",
		` WHERE a.pillar_id = ? AND a.status = ?`, orderByPublished, 0, row.ID, string(StatusPublished))
	if err != nil {
		return nil, err
	}
	return &PillarWithArticles{Pillar: row.toPillar(), Articles: articles}, nil
}

// ListArticles returns all published articles, newest first.
func (r *SQLContentRepository) ListArticles(ctx context.Context) ([]Article, error) {
	return r.selectArticles(ctx, "list articles", ` WHERE a.status = ?`, orderByPublished, 0, string(StatusPublished))
}

// ListFeaturedArticles returns at most limit published, featured articles.
func (r *SQLContentRepository) ListFeaturedArticles(ctx context.Context, limit int) ([]Article, error) {
	return r.selectArticles(ctx, "list featured articles",
		` WHERE a.status = ? AND a.is_featured = ?`, orderByPublished, limit, string(StatusPublished), true)
}

// ListLatestArticles returns at most limit published articles, newest first.
func (r *SQLContentRepository) ListLatestArticles(ctx context.Context, limit int) ([]Article, error) {
	return r.selectArticles(ctx, "list latest articles", ` WHERE a.status = ?`, orderByPublished, limit, string(StatusPublished))
}

// GetArticleBySlug returns a published article or nil.
func (r *SQLContentRepository) GetArticleBySlug(ctx context.Context, slug string) (*Article, error) {
	return r.getArticle(ctx, "get article by slug", ` WHERE a.slug = ? AND a.status = ?`, slug, string(StatusPublished))
}

// ListArticlesByPillarSlug returns the published articles of a pillar.
func (r *SQLContentRepository) ListArticlesByPillarSlug(ctx context.Context, pillarSlug string) ([]Article, error) {
	return r.selectArticles(ctx, "list articles by pillar",
		` WHERE p.slug = ? AND a.status = ?`, orderByPublished, 0, pillarSlug, string(StatusPublished))
}

// ListAuthors returns every author ordered by name.
func (r *SQLContentRepository) ListAuthors(ctx context.Context) ([]Author, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, common.NewStoreError("list authors", err)
	}
	var rows []authorRow
	query := `SELECT id, slug, name, bio, image_url, email FROM authors ORDER BY name ASC`
	if err := db.SelectContext(ctx, &rows, query); err != nil {
		return nil, common.NewStoreError("list authors", err)
	}
	authors := make([]Author, 0, len(rows))
	for _, row := range rows {
		authors = append(authors, row.toAuthor())
	}
	return authors, nil
}

// GetAuthorBySlug returns an author or nil.
func (r *SQLContentRepository) GetAuthorBySlug(ctx context.Context, slug string) (*Author, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, common.NewStoreError("get author by slug", err)
	}
	var row authorRow
	query := `SELECT id, slug, name, bio, image_url, email FROM authors WHERE slug = ?`
	if err := db.GetContext(ctx, &row, db.Rebind(query), slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found is not an error
		}
		return nil, common.NewStoreError("get author by slug", err)
	}
	author := row.toAuthor()
	return &author, nil
}

// GetArticlePreview returns an article of any status.
func (r *SQLContentRepository) GetArticlePreview(ctx context.Context, slug string) (*Article, error) {
	return r.getArticle(ctx, "get article preview", ` WHERE a.slug = ?`, slug)
}

// ListArticlesPreview returns every article regardless of status.
func (r *SQLContentRepository) ListArticlesPreview(ctx context.Context) ([]Article, error) {
	return r.selectArticles(ctx, "list articles preview", "", orderByPublished, 0)
}

// ListArticlesByPillarPreview returns every article of a pillar regardless of status.
func (r *SQLContentRepository) ListArticlesByPillarPreview(ctx context.Context, pillarSlug string) ([]Article, error) {
	return r.selectArticles(ctx, "list pillar articles preview", ` WHERE p.slug = ?`, orderByPublished, 0, pillarSlug)
}

// ListArticlesByAuthorPreview returns every article by an author regardless of status.
func (r *SQLContentRepository) ListArticlesByAuthorPreview(ctx context.Context, authorSlug string) ([]Article, error) {
	return r.selectArticles(ctx, "list author articles preview", ` WHERE au.slug = ?`, orderByPublished, 0, authorSlug)
}

// ListFeaturedArticlesPreview returns featured articles of any status.
func (r *SQLContentRepository) ListFeaturedArticlesPreview(ctx context.Context, limit int) ([]Article, error) {
	return r.selectArticles(ctx, "list featured articles preview", ` WHERE a.is_featured = ?`, orderByPublished, limit, true)
}

// ListRecentArticles returns articles of any status ordered by last modification.
func (r *SQLContentRepository) ListRecentArticles(ctx context.Context, limit int) ([]Article, error) {
	return r.selectArticles(ctx, "list recent articles", "", orderByUpdated, limit)
}

// GetPublishingStats counts articles by status.
func (r *SQLContentRepository) GetPublishingStats(ctx context.Context) (*PublishingStats, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, common.NewStoreError("get publishing stats", err)
	}
	query := `
SELECT
    COALESCE(SUM(CASE WHEN status = 'draft' THEN 1 ELSE 0 END), 0) AS draft,
    COALESCE(SUM(CASE WHEN status = 'published' THEN 1 ELSE 0 END), 0) AS published,
    COALESCE(SUM(CASE WHEN status = 'published' AND published_at > ? THEN 1 ELSE 0 END), 0) AS scheduled,
    COALESCE(SUM(CASE WHEN status = 'archived' THEN 1 ELSE 0 END), 0) AS archived,
    COUNT(*) AS total
FROM articles`
	var row struct {
		Draft     int64 `db:"draft"`
		Published int64 `db:"published"`
		Scheduled int64 `db:"scheduled"`
		Archived  int64 `db:"archived"`
		Total     int64 `db:"total"`
	}
	if err := db.GetContext(ctx, &row, db.Rebind(query), r.now().UTC()); err != nil {
		return nil, common.NewStoreError("get publishing stats", err)
	}
	return &PublishingStats{
		Draft:     int(row.Draft),
		Published: int(row.Published),
		Scheduled: int(row.Scheduled),
		Archived:  int(row.Archived),
		Total:     int(row.Total),
	}, nil
}
