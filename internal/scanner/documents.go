package scanner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// readDocument returns the first n runes of a context document and, for
// markdown, its first heading.
func readDocument(path string, n int) (snippet string, title string, err error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		content, err := readPDF(path, n)
		if err != nil {
			return "", "", err
		}
		return content, "", nil
	case ".md", ".markdown":
		content, err := readPrefix(path, n)
		if err != nil {
			return "", "", err
		}
		return content, markdownTitle([]byte(content)), nil
	default:
		content, err := readPrefix(path, n)
		return content, "", err
	}
}

// readPrefix reads at most n runes from the start of a file. Four bytes per
// rune bounds the read.
func readPrefix(path string, n int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open document; %w", err)
	}
	defer f.Close()

	buf, err := io.ReadAll(io.LimitReader(f, int64(n)*4))
	if err != nil {
		return "", fmt.Errorf("failed to read document; %w", err)
	}
	return truncateRunes(strings.ToValidUTF8(string(buf), ""), n), nil
}

// readPDF extracts plain text page by page until n runes are collected.
// The pdf reader panics on some malformed xref tables; those become errors.
func readPDF(path string, n int) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("failed to parse pdf; %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf; %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		content = strings.ReplaceAll(content, "\x00", "")
		sb.WriteString(strings.TrimSpace(content))
		sb.WriteString("\n")
		if sb.Len() >= n*4 {
			break
		}
	}
	return truncateRunes(strings.TrimSpace(sb.String()), n), nil
}

// markdownTitle returns the text of the first heading in a markdown source.
func markdownTitle(src []byte) string {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok {
			title = strings.TrimSpace(string(heading.Text(src)))
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return title
}
