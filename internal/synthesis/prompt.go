package synthesis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leefowlercu/phoenix/internal/intel"
	"github.com/leefowlercu/phoenix/internal/scanner"
)

const systemPrompt = `You are the brand synthesis engine for an independent creator.
You read raw discovery data from their filesystem and the web and manifest a coherent brand identity.`

func buildPrompt(rec scanner.Record, externals []intel.Record) string {
	var sb strings.Builder

	sb.WriteString("Analyze this raw data from my filesystem and external sources to manifest my brand identity and current workflow.\n\n")

	sb.WriteString("FILESYSTEM DISCOVERY:\n")
	fmt.Fprintf(&sb, "- Assets (%d total): %s\n", rec.AssetCount, mustJSON(rec.Assets))
	fmt.Fprintf(&sb, "- Project DNA: %s\n", mustJSON(rec.ProjectFingerprints))
	fmt.Fprintf(&sb, "- Context Snippets (%d total): %s\n\n", rec.ContextCount, mustJSON(rec.ContextSnippets))

	sb.WriteString("EXTERNAL CONTEXT:\n")
	sb.WriteString(mustJSON(externals))
	sb.WriteString("\n\n")

	sb.WriteString(`TASK:
1. Define the brand identity: name, mission, voice tone, and signature phrases.
2. Identify the core product or work I am focused on right now.
3. Suggest 3 immediate workflows (e.g. "Create a product launch video using asset_x.mp4").
4. Generate a brand manifest JSON object.

Return ONLY a JSON object with keys: brandIdentity (object with name, mission, tone, signaturePhrases),
activeFocus (string), suggestedWorkflows (array of objects with title and description), brandManifestJson (object).
`)

	return sb.String()
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}
