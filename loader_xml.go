package corpex

import (
	"encoding/xml"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════════
// XML BOOK LOADER
// ═══════════════════════════════════════════════════════════════════════════════
// Walks a directory tree for *.xml files, decodes each as a structured book
// document, and extracts the text of its <body> element. A document id is
// the file's path relative to the walked root, with the extension dropped,
// so two builds over the same directory produce the same ids regardless of
// where the directory happens to be mounted.
//
// A file that fails to parse is logged and skipped (BuildInputError,
// spec.md §7): one malformed book never aborts a directory-wide build.
// ═══════════════════════════════════════════════════════════════════════════════

// bookDocument mirrors the subset of structured-book XML this loader reads.
// Unknown elements and attributes are ignored by encoding/xml by default.
type bookDocument struct {
	XMLName xml.Name `xml:"book"`
	Body    bookBody `xml:"body"`
}

// bookBody captures the body element's raw inner XML as a single string
// (",innerxml"); the loader strips the markup afterwards with stripTags, so
// paragraphs, headings, and other structural children all contribute their
// text.
type bookBody struct {
	Content string `xml:",innerxml"`
}

// LoadXMLDirectory walks dir for *.xml files and returns one Document per
// file that parses successfully and has a non-empty body.
func LoadXMLDirectory(dir string) ([]Document, error) {
	var docs []Document
	var skipped int

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("%w: walking %s: %v", ErrBuildInput, path, err)
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".xml") {
			return nil
		}

		doc, ok := loadXMLFile(dir, path)
		if !ok {
			skipped++
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("xml directory loaded", slog.String("dir", dir), slog.Int("documents", len(docs)), slog.Int("skipped", skipped))
	return docs, nil
}

// loadXMLFile parses one file and reports whether it yielded a usable
// document; parse failures and empty bodies are logged, not returned as
// errors, since a single malformed book must not abort the walk.
func loadXMLFile(root, path string) (Document, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("skipping unreadable book", slog.String("path", path), slog.Any("error", err))
		return Document{}, false
	}

	var book bookDocument
	if err := xml.Unmarshal(raw, &book); err != nil {
		slog.Warn("skipping malformed book xml", slog.String("path", path), slog.Any("error", err))
		return Document{}, false
	}

	text := stripTags(book.Body.Content)
	if strings.TrimSpace(text) == "" {
		slog.Warn("skipping book with empty body", slog.String("path", path))
		return Document{}, false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	id := strings.TrimSuffix(rel, filepath.Ext(rel))

	return Document{ID: id, Text: text}, true
}

// stripTags removes inner element markup from a <body>'s raw inner XML,
// leaving only character data, so nested <p>/<h1>/etc. children don't leak
// their tags into tokenization.
func stripTags(innerXML string) string {
	var sb strings.Builder
	depth := 0
	for i := 0; i < len(innerXML); i++ {
		switch innerXML[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				sb.WriteByte(innerXML[i])
			}
		}
	}
	return xmlUnescape(sb.String())
}

// xmlUnescape decodes the five predefined XML entities left behind by
// innerxml's raw character data.
func xmlUnescape(s string) string {
	replacer := strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&apos;", "'",
		"&quot;", `"`,
	)
	return replacer.Replace(s)
}
