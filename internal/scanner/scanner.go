// Package scanner walks a discovery root and samples brand context from it.
package scanner

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/leefowlercu/phoenix/internal/fsutil"
	"github.com/leefowlercu/phoenix/internal/metrics"
)

// Scanner produces discovery records. It never writes to the filesystem.
type Scanner struct {
	filter *Filter
	limits Limits
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Scanner.
type Option func(*Scanner)

// WithLimits sets the sampling limits. Non-positive fields keep their defaults.
func WithLimits(l Limits) Option {
	return func(s *Scanner) {
		if l.SnippetChars > 0 {
			s.limits.SnippetChars = l.SnippetChars
		}
		if l.FingerprintChars > 0 {
			s.limits.FingerprintChars = l.FingerprintChars
		}
		if l.MaxAssets > 0 {
			s.limits.MaxAssets = l.MaxAssets
		}
		if l.MaxSnippets > 0 {
			s.limits.MaxSnippets = l.MaxSnippets
		}
	}
}

// WithFilter sets the exclusion filter.
func WithFilter(f *Filter) Option {
	return func(s *Scanner) {
		if f != nil {
			s.filter = f
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithClock sets the time source used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) {
		s.now = now
	}
}

// New creates a Scanner with the given options.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		filter: NewFilter(nil, nil),
		limits: DefaultLimits(),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limits returns the sampling limits in effect.
func (s *Scanner) Limits() Limits {
	return s.limits
}

// Scan walks root in lexicographic order and returns its discovery record.
// A missing root yields an empty record with a zero ScannedAt. Unreadable
// entries are skipped; a cancelled context ends the walk early with what has
// been collected.
func (s *Scanner) Scan(ctx context.Context, root string) Record {
	rec := EmptyRecord()

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		s.logger.Debug("discovery root unavailable", "root", root)
		return rec
	}

	start := time.Now()
	visited := 0

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if d.IsDir() {
			if !s.filter.ShouldProcessDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !s.filter.ShouldProcessFile(rel) {
			return nil
		}

		visited++
		s.visit(&rec, path, rel, d)
		return nil
	})

	s.captureFingerprints(&rec, root)

	rec.ScannedAt = s.now().UTC()
	metrics.RecordScan(visited, time.Since(start))

	s.logger.Debug("discovery scan complete",
		"root", root,
		"files", visited,
		"context_count", rec.ContextCount,
		"asset_count", rec.AssetCount,
		"fingerprints", len(rec.ProjectFingerprints))

	return rec
}

func (s *Scanner) visit(rec *Record, path, rel string, d fs.DirEntry) {
	name := d.Name()

	if kind, ok := ClassifyAsset(name); ok {
		rec.AssetCount++
		if len(rec.Assets) >= s.limits.MaxAssets {
			return
		}
		info, err := d.Info()
		if err != nil {
			return
		}
		asset := Asset{Path: rel, Kind: kind, MIME: fsutil.MIMEFromExtension(filepath.Ext(name)), SizeBytes: info.Size()}
		if kind == AssetImage {
			asset.Width, asset.Height = imageDimensions(path)
		}
		rec.Assets = append(rec.Assets, asset)
		return
	}

	if IsContextDocument(name) {
		rec.ContextCount++
		if len(rec.ContextSnippets) >= s.limits.MaxSnippets {
			return
		}
		snippet, title, err := readDocument(path, s.limits.SnippetChars)
		if err != nil {
			s.logger.Debug("failed to read context document", "path", path, "error", err)
			return
		}
		rec.ContextSnippets = append(rec.ContextSnippets, Snippet{Path: rel, Title: title, Snippet: snippet})
	}
}

func (s *Scanner) captureFingerprints(rec *Record, root string) {
	for _, name := range fingerprintFiles {
		path := filepath.Join(root, name)
		info, err := os.Lstat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		content, err := readPrefix(path, s.limits.FingerprintChars)
		if err != nil {
			continue
		}
		rec.ProjectFingerprints = append(rec.ProjectFingerprints, Fingerprint{File: name, Content: content})
	}
}
