package scanner

import "time"

// AssetKind classifies a media asset.
type AssetKind string

const (
	AssetImage AssetKind = "image"
	AssetVideo AssetKind = "video"
)

// Snippet is a bounded prefix of a context document.
type Snippet struct {
	Path    string `json:"path"`
	Title   string `json:"title,omitempty"`
	Snippet string `json:"snippet"`
}

// Asset is a media file found beneath a root.
type Asset struct {
	Path      string    `json:"path"`
	Kind      AssetKind `json:"kind"`
	MIME      string    `json:"mime,omitempty"`
	SizeBytes int64     `json:"sizeBytes"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
}

// Fingerprint is a bounded prefix of a project marker file at the root.
type Fingerprint struct {
	File    string `json:"file"`
	Content string `json:"content"`
}

// Record is the discovery result for one root. Paths are root-relative with
// forward slashes. Snippets and assets are samples in traversal order; the
// counts are totals.
type Record struct {
	ContextSnippets     []Snippet     `json:"contextSnippets"`
	Assets              []Asset       `json:"assets"`
	ProjectFingerprints []Fingerprint `json:"projectFingerprints"`
	ContextCount        int           `json:"contextCount"`
	AssetCount          int           `json:"assetCount"`
	ScannedAt           time.Time     `json:"scannedAt"`
}

// EmptyRecord returns a record with non-nil, empty collections.
func EmptyRecord() Record {
	return Record{
		ContextSnippets:     []Snippet{},
		Assets:              []Asset{},
		ProjectFingerprints: []Fingerprint{},
	}
}

// FingerprintNames returns the file names captured for the record.
func (r Record) FingerprintNames() []string {
	names := make([]string, 0, len(r.ProjectFingerprints))
	for _, fp := range r.ProjectFingerprints {
		names = append(names, fp.File)
	}
	return names
}

// Limits bounds how much of a root a scan keeps.
type Limits struct {
	SnippetChars     int
	FingerprintChars int
	MaxAssets        int
	MaxSnippets      int
}

// DefaultLimits mirrors the configuration defaults.
func DefaultLimits() Limits {
	return Limits{
		SnippetChars:     2000,
		FingerprintChars: 1000,
		MaxAssets:        20,
		MaxSnippets:      5,
	}
}
