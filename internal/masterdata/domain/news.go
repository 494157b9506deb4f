package masterdata

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"energy-audit/internal/validation"
)

const (
	maxNewsTitle   = 200
	maxNewsSummary = 500
)

// News is an item of the public news feed.
type News struct {
	ID          string    `db:"id" json:"id"`
	Slug        string    `db:"slug" json:"slug"`
	Title       string    `db:"title" json:"titulo"`
	Summary     string    `db:"summary" json:"resumen"`
	Body        string    `db:"body" json:"contenido"`
	CoverImage  string    `db:"cover_image" json:"imagen_portada"`
	AuthorID    string    `db:"author_id" json:"autor_id,omitempty"`
	Published   bool      `db:"published" json:"publicada"`
	PublishedAt time.Time `db:"published_at" json:"fecha_publicacion"`
}

// Normalize trims the text attributes and derives the slug from the title
// when none is given.
func (n *News) Normalize() {
	n.Title = strings.TrimSpace(n.Title)
	n.Summary = strings.TrimSpace(n.Summary)
	n.Body = strings.TrimSpace(n.Body)
	n.CoverImage = strings.TrimSpace(n.CoverImage)
	n.Slug = Slugify(n.Slug)
	if n.Slug == "" {
		n.Slug = Slugify(n.Title)
	}
}

// Validate checks news invariants.
func (n News) Validate() error {
	verr := validation.New("news")
	if n.Title == "" {
		verr.Add("titulo", "este campo es obligatorio")
	} else if utf8.RuneCountInString(n.Title) > maxNewsTitle {
		verr.Add("titulo", "máximo 200 caracteres")
	}
	if n.Slug == "" {
		verr.Add("slug", "este campo es obligatorio")
	}
	if n.Summary == "" {
		verr.Add("resumen", "este campo es obligatorio")
	} else if utf8.RuneCountInString(n.Summary) > maxNewsSummary {
		verr.Add("resumen", "máximo 500 caracteres")
	}
	if n.Body == "" {
		verr.Add("contenido", "este campo es obligatorio")
	}
	return verr.OrNil()
}

// Slugify lowercases the text, drops accents and joins words with hyphens.
func Slugify(text string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), text)
	if err != nil {
		folded = text
	}
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
