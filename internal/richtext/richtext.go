// Package richtext renders article bodies to sanitized HTML. Structured bodies
// use the Portable Text block format; plain string bodies are read as markdown.
package richtext

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ImageResolver maps an image asset reference to a URL.
type ImageResolver func(ref string) string

// Renderer converts article bodies to HTML.
type Renderer struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
	imageURL  ImageResolver
}

// New creates a Renderer. imageURL may be nil, in which case embedded images
// are rendered only when they carry a direct URL.
func New(imageURL ImageResolver) *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.AllowAttrs("class").Matching(regexp.MustCompile(`^callout( callout-(tip|warning|info|success))?$`)).OnElements("aside")
	policy.AllowElements("figure", "figcaption", "aside")

	return &Renderer{
		md:        goldmark.New(goldmark.WithExtensions(extension.GFM)),
		sanitizer: policy,
		imageURL:  imageURL,
	}
}

// Render returns sanitized HTML for body. Empty bodies render to "".
func (r *Renderer) Render(body json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return "", nil
	}

	var raw string
	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return "", fmt.Errorf("failed to decode markdown body: %w", err)
		}
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(text), &buf); err != nil {
			return "", fmt.Errorf("failed to render markdown body: %w", err)
		}
		raw = buf.String()
	case '[':
		var blocks []block
		if err := json.Unmarshal(trimmed, &blocks); err != nil {
			return "", fmt.Errorf("failed to decode rich text body: %w", err)
		}
		raw = r.renderBlocks(blocks)
	default:
		return "", fmt.Errorf("unsupported body format")
	}

	return r.sanitizer.Sanitize(raw), nil
}

type span struct {
	Type  string   `json:"_type"`
	Text  string   `json:"text"`
	Marks []string `json:"marks"`
}

type markDef struct {
	Key  string `json:"_key"`
	Type string `json:"_type"`
	Href string `json:"href"`
}

type assetRef struct {
	Ref string `json:"_ref"`
	URL string `json:"url"`
}

type block struct {
	Type     string    `json:"_type"`
	Style    string    `json:"style"`
	ListItem string    `json:"listItem"`
	Level    int       `json:"level"`
	Children []span    `json:"children"`
	MarkDefs []markDef `json:"markDefs"`

	// image
	Asset   *assetRef `json:"asset"`
	Alt     string    `json:"alt"`
	Caption string    `json:"caption"`

	// callout
	Kind    string  `json:"type"`
	Content []block `json:"content"`
}

var blockStyles = map[string]string{
	"h1":         "h1",
	"h2":         "h2",
	"h3":         "h3",
	"h4":         "h4",
	"blockquote": "blockquote",
	"normal":     "p",
}

var decorators = map[string]string{
	"strong":         "strong",
	"em":             "em",
	"code":           "code",
	"underline":      "u",
	"strike-through": "s",
}

func (r *Renderer) renderBlocks(blocks []block) string {
	var b strings.Builder
	var lists listStack
	for _, blk := range blocks {
		if blk.Type == "block" && blk.ListItem != "" {
			lists.item(&b, blk.ListItem, blk.Level)
			b.WriteString(renderSpans(blk))
			continue
		}
		lists.closeAll(&b)

		switch blk.Type {
		case "block":
			tag, ok := blockStyles[blk.Style]
			if !ok {
				tag = "p"
			}
			fmt.Fprintf(&b, "<%s>%s</%s>", tag, renderSpans(blk), tag)
		case "image":
			r.renderImage(&b, blk)
		case "callout":
			kind := blk.Kind
			if _, ok := calloutKinds[kind]; !ok {
				kind = "info"
			}
			fmt.Fprintf(&b, `<aside class="callout callout-%s">%s</aside>`, kind, r.renderBlocks(blk.Content))
		}
	}
	lists.closeAll(&b)
	return b.String()
}

var calloutKinds = map[string]struct{}{"tip": {}, "warning": {}, "info": {}, "success": {}}

func (r *Renderer) renderImage(b *strings.Builder, blk block) {
	if blk.Asset == nil {
		return
	}
	src := blk.Asset.URL
	if src == "" && r.imageURL != nil {
		src = r.imageURL(blk.Asset.Ref)
	}
	if src == "" {
		return
	}
	alt := blk.Alt
	if alt == "" {
		alt = "Article image"
	}
	b.WriteString("<figure>")
	fmt.Fprintf(b, `<img src="%s" alt="%s">`, html.EscapeString(src), html.EscapeString(alt))
	if blk.Caption != "" {
		fmt.Fprintf(b, "<figcaption>%s</figcaption>", html.EscapeString(blk.Caption))
	}
	b.WriteString("</figure>")
}

func renderSpans(blk block) string {
	links := make(map[string]string, len(blk.MarkDefs))
	for _, def := range blk.MarkDefs {
		if def.Type == "link" {
			links[def.Key] = def.Href
		}
	}

	var b strings.Builder
	for _, s := range blk.Children {
		text := html.EscapeString(s.Text)
		// Innermost mark first so the first listed mark wraps outermost.
		for i := len(s.Marks) - 1; i >= 0; i-- {
			mark := s.Marks[i]
			if tag, ok := decorators[mark]; ok {
				text = fmt.Sprintf("<%s>%s</%s>", tag, text, tag)
			} else if href, ok := links[mark]; ok {
				text = fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(href), text)
			}
		}
		b.WriteString(text)
	}
	return b.String()
}

// maxListDepth bounds nesting taken from stored bodies.
const maxListDepth = 10

// listStack tracks open list elements so nested list items end up inside
// their parent item.
type listStack struct {
	levels []listLevel
}

type listLevel struct {
	tag    string
	liOpen bool
}

func listTag(kind string) string {
	if kind == "number" {
		return "ol"
	}
	return "ul"
}

func (s *listStack) pop(b *strings.Builder) {
	top := s.levels[len(s.levels)-1]
	if top.liOpen {
		b.WriteString("</li>")
	}
	fmt.Fprintf(b, "</%s>", top.tag)
	s.levels = s.levels[:len(s.levels)-1]
}

func (s *listStack) item(b *strings.Builder, kind string, level int) {
	if level < 1 {
		level = 1
	}
	if level > maxListDepth {
		level = maxListDepth
	}
	tag := listTag(kind)
	for len(s.levels) > level {
		s.pop(b)
	}
	if len(s.levels) == level && s.levels[level-1].tag != tag {
		s.pop(b)
	}
	if len(s.levels) == level && s.levels[level-1].liOpen {
		b.WriteString("</li>")
		s.levels[level-1].liOpen = false
	}
	for len(s.levels) < level {
		if n := len(s.levels); n > 0 && !s.levels[n-1].liOpen {
			b.WriteString("<li>")
			s.levels[n-1].liOpen = true
		}
		fmt.Fprintf(b, "<%s>", tag)
		s.levels = append(s.levels, listLevel{tag: tag})
	}
	b.WriteString("<li>")
	s.levels[level-1].liOpen = true
}

func (s *listStack) closeAll(b *strings.Builder) {
	for len(s.levels) > 0 {
		s.pop(b)
	}
}
