package cms

import "fmt"

// Projections shape CMS documents into the JSON layout of the data package.
// References are dereferenced inline so each read is a single round trip.
const (
	imageFields = `{"assetRef": asset._ref, "url": asset->url, alt}`

	pillarFields = `"id": _id, "slug": slug.current, "name": title, description, color`

	authorFields = `"id": _id, name, "slug": slug.current, bio, "image": image` + imageFields + `, email`

	articleSummaryFields = `"id": _id, title, "slug": slug.current, subtitle,
  "author": author->{` + authorFields + `},
  "pillar": pillar->{` + pillarFields + `},
  publishedAt, "featuredImage": featuredImage` + imageFields + `, isFeatured, status`

	articleFields = articleSummaryFields + `, body, seoTitle, seoDescription, seoKeywords,
  "ogImage": ogImage` + imageFields

	revisionFields = `, "createdAt": _createdAt, "updatedAt": _updatedAt`
)

const (
	queryPillars = `*[_type == "pillar"] | order(title asc) {` + pillarFields + `}`

	queryPillarBySlug = `*[_type == "pillar" && slug.current == $slug][0] {` + pillarFields + `,
  "articles": *[_type == "article" && references(^._id) && status == "published"] | order(publishedAt desc) {` +
		articleSummaryFields + `}
}`

	queryArticles = `*[_type == "article" && status == "published"] | order(publishedAt desc) {` + articleFields + `}`

	queryArticleBySlug = `*[_type == "article" && slug.current == $slug && status == "published"][0] {` + articleFields + `}`

	queryArticlesByPillar = `*[_type == "article" && pillar->slug.current == $pillarSlug && status == "published"] | order(publishedAt desc) {` +
		articleFields + `}`

	queryAuthors = `*[_type == "author"] | order(name asc) {` + authorFields + `}`

	queryAuthorBySlug = `*[_type == "author" && slug.current == $slug][0] {` + authorFields + `}`
)

const (
	queryArticlePreview = `*[_type == "article" && slug.current == $slug][0] {` + articleFields + revisionFields + `}`

	queryArticlesPreview = `*[_type == "article"] | order(publishedAt desc) {` + articleSummaryFields + revisionFields + `}`

	queryArticlesByPillarPreview = `*[_type == "article" && pillar->slug.current == $pillarSlug] | order(publishedAt desc) {` +
		articleSummaryFields + revisionFields + `}`

	queryArticlesByAuthorPreview = `*[_type == "article" && author->slug.current == $authorSlug] | order(publishedAt desc) {` +
		articleSummaryFields + revisionFields + `}`

	queryPublishingStats = `{
  "draft": count(*[_type == "article" && status == "draft"]),
  "published": count(*[_type == "article" && status == "published"]),
  "scheduled": count(*[_type == "article" && status == "published" && publishedAt > now()]),
  "archived": count(*[_type == "article" && status == "archived"]),
  "total": count(*[_type == "article"])
}`
)

// sliced appends a range selector returning exactly limit items. GROQ's
// two-dot range is inclusive, the three-dot form excludes the end index.
func sliced(filter, projection string, limit int) string {
	return fmt.Sprintf("%s[0...%d] {%s}", filter, limit, projection)
}

func featuredArticlesQuery(limit int) string {
	return sliced(`*[_type == "article" && status == "published" && isFeatured == true] | order(publishedAt desc)`, articleFields, limit)
}

func latestArticlesQuery(limit int) string {
	return sliced(`*[_type == "article" && status == "published"] | order(publishedAt desc)`, articleFields, limit)
}

func featuredArticlesPreviewQuery(limit int) string {
	return sliced(`*[_type == "article" && isFeatured == true] | order(publishedAt desc)`, articleSummaryFields+revisionFields, limit)
}

func recentArticlesQuery(limit int) string {
	return sliced(`*[_type == "article"] | order(_updatedAt desc)`, articleSummaryFields+revisionFields, limit)
}
