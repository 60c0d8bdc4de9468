package synthesis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// BrandIdentity is the synthesized voice of the brand.
type BrandIdentity struct {
	Name             string   `json:"name"`
	Mission          string   `json:"mission"`
	Tone             string   `json:"tone"`
	SignaturePhrases []string `json:"signaturePhrases"`
}

// SuggestedWorkflow is one workflow idea. Replies may give a bare string,
// which becomes the title.
type SuggestedWorkflow struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Asset       string `json:"asset,omitempty"`
}

// UnmarshalJSON accepts a string or an object.
func (w *SuggestedWorkflow) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		var title string
		if err := json.Unmarshal(data, &title); err != nil {
			return err
		}
		*w = SuggestedWorkflow{Title: title}
		return nil
	}
	type plain SuggestedWorkflow
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*w = SuggestedWorkflow(p)
	return nil
}

// BrandManifest is the parsed synthesis reply.
type BrandManifest struct {
	BrandIdentity      BrandIdentity       `json:"brandIdentity"`
	ActiveFocus        string              `json:"activeFocus"`
	SuggestedWorkflows []SuggestedWorkflow `json:"suggestedWorkflows"`
	BrandManifestJSON  json.RawMessage     `json:"brandManifestJson"`
	Raw                string              `json:"raw,omitempty"`
}

// Markdown renders the manifest as a markdown document for terminals and
// chat transcripts.
func (m *BrandManifest) Markdown() string {
	var b strings.Builder

	name := m.BrandIdentity.Name
	if name == "" {
		name = "Untitled brand"
	}
	fmt.Fprintf(&b, "# %s\n\n", name)
	if m.BrandIdentity.Mission != "" {
		fmt.Fprintf(&b, "> %s\n\n", m.BrandIdentity.Mission)
	}
	if m.BrandIdentity.Tone != "" {
		fmt.Fprintf(&b, "**Tone:** %s\n\n", m.BrandIdentity.Tone)
	}
	if m.ActiveFocus != "" {
		fmt.Fprintf(&b, "**Active focus:** %s\n\n", m.ActiveFocus)
	}

	if len(m.BrandIdentity.SignaturePhrases) > 0 {
		b.WriteString("## Signature phrases\n\n")
		for _, p := range m.BrandIdentity.SignaturePhrases {
			fmt.Fprintf(&b, "- %q\n", p)
		}
		b.WriteString("\n")
	}

	if len(m.SuggestedWorkflows) > 0 {
		b.WriteString("## Suggested workflows\n\n")
		for i, w := range m.SuggestedWorkflows {
			fmt.Fprintf(&b, "%d. **%s**", i+1, w.Title)
			if w.Description != "" {
				fmt.Fprintf(&b, ": %s", w.Description)
			}
			if w.Asset != "" {
				fmt.Fprintf(&b, " (`%s`)", w.Asset)
			}
			b.WriteString("\n")
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// manifestSchema is the contract every synthesis reply must satisfy.
const manifestSchema = `{
	"type": "object",
	"required": ["brandIdentity", "activeFocus", "suggestedWorkflows", "brandManifestJson"],
	"properties": {
		"brandIdentity": {
			"type": "object",
			"properties": {
				"name": {"type": "string"},
				"mission": {"type": "string"},
				"tone": {"type": "string"},
				"signaturePhrases": {"type": "array", "items": {"type": "string"}}
			}
		},
		"activeFocus": {"type": "string"},
		"suggestedWorkflows": {
			"type": "array",
			"items": {
				"anyOf": [
					{"type": "string"},
					{"type": "object", "required": ["title"], "properties": {"title": {"type": "string"}}}
				]
			}
		},
		"brandManifestJson": {"type": "object"}
	}
}`
