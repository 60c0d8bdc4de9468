package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotJSON is returned when a reply does not hold a single JSON object.
var ErrNotJSON = errors.New("response is not a JSON object")

// ExtractJSON returns the JSON object in text. A single surrounding code
// fence (``` or ```json) is removed; anything else around the object is
// rejected.
func ExtractJSON(text string) (string, error) {
	s := strings.TrimSpace(text)

	if strings.HasPrefix(s, "```") {
		body, ok := strings.CutSuffix(s, "```")
		if !ok {
			return "", fmt.Errorf("%w; unterminated code fence", ErrNotJSON)
		}
		body = strings.TrimPrefix(body, "```")
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			lang := strings.TrimSpace(body[:nl])
			if lang != "" && !strings.EqualFold(lang, "json") {
				return "", fmt.Errorf("%w; fenced %s block", ErrNotJSON, lang)
			}
			body = body[nl+1:]
		} else {
			body = strings.TrimPrefix(body, "json")
		}
		s = strings.TrimSpace(body)
	}

	if !strings.HasPrefix(s, "{") || !json.Valid([]byte(s)) {
		return "", ErrNotJSON
	}
	return s, nil
}
