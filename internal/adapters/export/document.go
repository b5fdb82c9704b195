package export

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
)

const (
	LinesPerPage = 40
	FooterText   = "Event Management System"

	// WrapWidth is the column at which body text is wrapped before
	// counting lines.
	WrapWidth = 90

	dateLayout = "Jan 2, 2006 15:04"
)

var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown

	whitespaceRun = regexp.MustCompile(`\s+`)
)

func getMarkdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		)
	})
	return markdown
}

// Document is a rendered report ready for download.
type Document struct {
	Filename string
	Pages    int
	Body     []byte
}

// Filename is the lower-cased title with whitespace runs replaced by "-".
func Filename(title string) string {
	slug := whitespaceRun.ReplaceAllString(strings.TrimSpace(title), "-")
	if slug == "" {
		slug = "report"
	}
	return strings.ToLower(slug) + ".html"
}

// Render lays the report out as a standalone HTML document. The content is
// wrapped at WrapWidth and split into pages of LinesPerPage lines; page
// numbers are printed only when there is more than one page.
func Render(report domain.Report) (*Document, error) {
	pages := Paginate(Wrap(report.Content, WrapWidth), LinesPerPage)

	sections := make([]g.Node, 0, len(pages))
	for i, lines := range pages {
		var buf bytes.Buffer
		if err := getMarkdown().Convert([]byte(strings.Join(lines, "\n")), &buf); err != nil {
			return nil, fmt.Errorf("render page %d: %w", i+1, err)
		}

		page := []g.Node{h.Class("page"), h.Div(h.Class("page-body"), g.Raw(buf.String()))}
		if len(pages) > 1 {
			page = append(page, h.P(h.Class("page-number"), g.Text(fmt.Sprintf("Page %d of %d", i+1, len(pages)))))
		}
		page = append(page, h.P(h.Class("page-footer"), g.Text(FooterText)))
		sections = append(sections, h.Section(page...))
	}

	doc := h.HTML(
		h.Lang("en"),
		h.Head(
			h.Meta(h.Charset("utf-8")),
			h.TitleEl(g.Text(report.Title)),
			h.StyleEl(g.Raw(documentCSS)),
		),
		h.Body(
			h.H1(h.Class("title"), g.Text(report.Title)),
			h.Hr(),
			h.P(h.Class("metadata"), g.Text(Metadata(report))),
			g.Group(sections),
		),
	)

	var out bytes.Buffer
	out.WriteString("<!doctype html>")
	if err := doc.Render(&out); err != nil {
		return nil, err
	}
	return &Document{Filename: Filename(report.Title), Pages: len(pages), Body: out.Bytes()}, nil
}

// Metadata is the line printed under the title.
func Metadata(report domain.Report) string {
	return fmt.Sprintf("Created: %s | Last updated: %s", formatDate(report.CreatedAt), formatDate(report.UpdatedAt))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(dateLayout)
}

// Wrap breaks text into lines no longer than width runes, keeping existing
// line breaks. Words longer than width are split between runes.
func Wrap(text string, width int) []string {
	var lines []string
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		words := strings.Fields(raw)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		var (
			line  strings.Builder
			count int
		)
		flush := func() {
			if count > 0 {
				lines = append(lines, line.String())
				line.Reset()
				count = 0
			}
		}
		for _, word := range words {
			runes := []rune(word)
			for len(runes) > width {
				flush()
				lines = append(lines, string(runes[:width]))
				runes = runes[width:]
			}
			if count > 0 && count+1+len(runes) > width {
				flush()
			}
			if count > 0 {
				line.WriteByte(' ')
				count++
			}
			line.WriteString(string(runes))
			count += len(runes)
		}
		flush()
	}
	return lines
}

// Paginate splits lines into pages of at most perPage lines. An empty body
// still yields one page.
func Paginate(lines []string, perPage int) [][]string {
	if len(lines) == 0 {
		return [][]string{{}}
	}
	var pages [][]string
	for start := 0; start < len(lines); start += perPage {
		end := start + perPage
		if end > len(lines) {
			end = len(lines)
		}
		pages = append(pages, lines[start:end])
	}
	return pages
}

const documentCSS = `
body { font-family: Helvetica, Arial, sans-serif; max-width: 48rem; margin: 2rem auto; color: #000; }
.title { color: #000080; font-size: 1.5rem; margin-bottom: 0.25rem; }
hr { border: 0; border-top: 1px solid #c8c8c8; }
.metadata { color: #646464; font-size: 0.8rem; }
.page { page-break-after: always; min-height: 60rem; position: relative; padding-bottom: 3rem; }
.page:last-child { page-break-after: auto; }
.page-number { color: #969696; font-size: 0.8rem; position: absolute; right: 0; bottom: 0; }
.page-footer { color: #646464; font-size: 0.8rem; position: absolute; left: 0; bottom: 0; }
`
