// Package extract pulls recipient email addresses out of PDF documents.
package extract

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// emailPattern matches local-part@domain.tld with a 2+ letter top-level label.
var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// Extractor finds the first email address in a PDF that is not the
// configured excluded address. Extraction failures are never fatal: an
// unreadable document or page is treated as containing no addresses.
type Extractor struct {
	excluded string
	logger   *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger for the extractor.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = l
	}
}

// New creates an Extractor. excludedEmail is compared case-insensitively;
// typically it is the sender's own address, which appears in most invoices.
func New(excludedEmail string, opts ...Option) *Extractor {
	e := &Extractor{
		excluded: strings.ToLower(excludedEmail),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Email scans the PDF at path page by page and returns the first address
// that is not the excluded one. ok is false when no such address exists or
// the document cannot be read.
func (e *Extractor) Email(path string) (email string, ok bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		e.logger.Warn("cannot read pdf", "path", path, "error", err)
		return "", false
	}

	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(content), model.NewDefaultConfiguration())
	if err != nil {
		e.logger.Warn("cannot parse pdf", "path", path, "error", err)
		return "", false
	}

	for page := 1; page <= pdfCtx.PageCount; page++ {
		text := e.pageText(pdfCtx, page)
		if text == "" {
			continue
		}

		if email, ok := e.firstEmail(text); ok {
			return email, true
		}
	}

	return "", false
}

// firstEmail returns the first address in text that is not the excluded one.
func (e *Extractor) firstEmail(text string) (string, bool) {
	for _, candidate := range emailPattern.FindAllString(text, -1) {
		if strings.ToLower(candidate) == e.excluded {
			continue
		}
		return candidate, true
	}
	return "", false
}

// pageText extracts readable text from one page's content stream.
// A page that fails to extract yields no text rather than an error.
func (e *Extractor) pageText(pdfCtx *model.Context, page int) string {
	reader, err := pdfcpu.ExtractPageContent(pdfCtx, page)
	if err != nil {
		e.logger.Debug("page extraction failed", "page", page, "error", err)
		return ""
	}

	raw, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}

	return textFromContentStream(raw)
}

// textFromContentStream pulls literal strings out of a PDF content stream.
// Page text lives in Tj/TJ operators as parenthesized literals; collecting
// them in stream order preserves the page's reading order well enough for
// address scanning.
func textFromContentStream(content []byte) string {
	var text strings.Builder
	var current strings.Builder
	str := string(content)
	depth := 0

	for i := 0; i < len(str); i++ {
		ch := str[i]

		switch {
		case ch == '(' && (i == 0 || str[i-1] != '\\'):
			depth++
			if depth == 1 {
				current.Reset()
			}
		case ch == ')' && (i == 0 || str[i-1] != '\\'):
			if depth > 0 {
				depth--
				if depth == 0 && current.Len() > 0 {
					text.WriteString(current.String())
					text.WriteString(" ")
				}
			}
		case depth > 0:
			if ch == '\\' && i+1 < len(str) {
				switch next := str[i+1]; next {
				case 'n':
					current.WriteString("\n")
					i++
				case 'r':
					current.WriteString("\r")
					i++
				case 't':
					current.WriteString("\t")
					i++
				case '(', ')', '\\':
					current.WriteByte(next)
					i++
				default:
					current.WriteByte(ch)
				}
			} else {
				current.WriteByte(ch)
			}
		}
	}

	return strings.Join(strings.Fields(text.String()), " ")
}
