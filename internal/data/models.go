package data

import (
	"encoding/json"
	"time"
)

// ArticleStatus is the publishing state of an article.
type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "draft"
	StatusPublished ArticleStatus = "published"
	StatusArchived  ArticleStatus = "archived"
)

// Valid reports whether s is a known status.
func (s ArticleStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Role is the authorization role of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Image points at a stored image. CMS images carry an asset reference; relational
// rows only carry a URL.
type Image struct {
	URL      string `json:"url,omitempty"`
	AssetRef string `json:"assetRef,omitempty"`
	Alt      string `json:"alt,omitempty"`
}

// Pillar is a top-level content category (Mind, Body, Soul).
type Pillar struct {
	ID          string  `json:"id"`
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// PillarWithArticles is a pillar joined with its published articles, newest first.
type PillarWithArticles struct {
	Pillar
	Articles []Article `json:"articles"`
}

// Author writes articles. Articles reference authors, never embed them by value.
type Author struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Slug  string  `json:"slug"`
	Bio   *string `json:"bio,omitempty"`
	Image *Image  `json:"image,omitempty"`
	Email *string `json:"email,omitempty"`
}

// Article is a single piece of content. Author and Pillar are resolved inline.
type Article struct {
	ID             string          `json:"id"`
	Slug           string          `json:"slug"`
	Title          string          `json:"title"`
	Subtitle       *string         `json:"subtitle,omitempty"`
	Author         *Author         `json:"author,omitempty"`
	Pillar         *Pillar         `json:"pillar,omitempty"`
	PublishedAt    time.Time       `json:"publishedAt"`
	FeaturedImage  *Image          `json:"featuredImage,omitempty"`
	Body           json.RawMessage `json:"body,omitempty"`
	BodyHTML       string          `json:"bodyHtml,omitempty"`
	IsFeatured     bool            `json:"isFeatured"`
	Status         ArticleStatus   `json:"status"`
	SEOTitle       *string         `json:"seoTitle,omitempty"`
	SEODescription *string         `json:"seoDescription,omitempty"`
	SEOKeywords    []string        `json:"seoKeywords,omitempty"`
	OGImage        *Image          `json:"ogImage,omitempty"`
	CreatedAt      *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time      `json:"updatedAt,omitempty"`
}

// PublishingStats counts articles by status. Scheduled is the subset of published
// articles whose publish date lies in the future, so
// Draft+Published+Archived == Total.
type PublishingStats struct {
	Draft     int `json:"draft"`
	Published int `json:"published"`
	Scheduled int `json:"scheduled"`
	Archived  int `json:"archived"`
	Total     int `json:"total"`
}

// User is an authenticated account, relational path only.
type User struct {
	ID           int64     `db:"id" json:"id"`
	OpenID       string    `db:"open_id" json:"openId"`
	Name         *string   `db:"name" json:"name,omitempty"`
	Email        *string   `db:"email" json:"email,omitempty"`
	LoginMethod  *string   `db:"login_method" json:"loginMethod,omitempty"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
	LastSignedIn time.Time `db:"last_signed_in" json:"lastSignedIn"`
}

// UserUpsert carries the fields of an upsert. Nil pointers mean "not provided"
// and leave the stored column untouched on update.
type UserUpsert struct {
	OpenID       string
	Name         *string
	Email        *string
	LoginMethod  *string
	Role         *Role
	LastSignedIn *time.Time
}

// NewsletterSubscription is a newsletter sign-up keyed by email.
type NewsletterSubscription struct {
	ID             int64      `db:"id" json:"id"`
	Email          string     `db:"email" json:"email"`
	SubscribedAt   time.Time  `db:"subscribed_at" json:"subscribedAt"`
	UnsubscribedAt *time.Time `db:"unsubscribed_at" json:"unsubscribedAt"`
}
