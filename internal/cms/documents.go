package cms

import (
	"fmt"
	"mbs-hub/internal/data"
	"strings"
)

const imageCDN = "https://cdn.sanity.io/images"

// ImageURL turns an image asset reference such as
// "image-Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000-jpg" into its CDN URL. Unknown
// formats yield "".
func ImageURL(projectID, dataset, ref string) string {
	if projectID == "" || !strings.HasPrefix(ref, "image-") {
		return ""
	}
	parts := strings.Split(strings.TrimPrefix(ref, "image-"), "-")
	if len(parts) < 3 {
		return ""
	}
	ext := parts[len(parts)-1]
	dims := parts[len(parts)-2]
	id := strings.Join(parts[:len(parts)-2], "-")
	if id == "" || ext == "" || !strings.Contains(dims, "x") {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s/%s-%s.%s", imageCDN, projectID, dataset, id, dims, ext)
}

// resolver fills in image URLs and empty collections on decoded documents.
type resolver struct {
	projectID string
	dataset   string
}

func (r resolver) image(img *data.Image) *data.Image {
	if img == nil || (img.URL == "" && img.AssetRef == "") {
		return nil
	}
	if img.URL == "" {
		img.URL = ImageURL(r.projectID, r.dataset, img.AssetRef)
	}
	return img
}

func (r resolver) author(a *data.Author) {
	if a != nil {
		a.Image = r.image(a.Image)
	}
}

func (r resolver) authors(authors []data.Author) []data.Author {
	if authors == nil {
		return []data.Author{}
	}
	for i := range authors {
		r.author(&authors[i])
	}
	return authors
}

func (r resolver) article(a *data.Article) {
	if a == nil {
		return
	}
	a.FeaturedImage = r.image(a.FeaturedImage)
	a.OGImage = r.image(a.OGImage)
	r.author(a.Author)
}

func (r resolver) articles(articles []data.Article) []data.Article {
	if articles == nil {
		return []data.Article{}
	}
	for i := range articles {
		r.article(&articles[i])
	}
	return articles
}
