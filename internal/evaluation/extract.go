package evaluation

import (
	"encoding/json"
	"errors"
	"strings"
)

var errNoJSON = errors.New("no JSON object in model output")

// ExtractResult pulls the first {...} JSON object out of free-form
// model text and unmarshals it. Models wrap replies in prose or
// markdown fences; everything outside the braces is ignored.
func ExtractResult(text string) (Result, error) {
	blob, err := firstJSONObject(text)
	if err != nil {
		return Result{}, err
	}
	var res Result
	if err := json.Unmarshal([]byte(blob), &res); err != nil {
		return Result{}, err
	}
	res.Clamp()
	return res, nil
}

// firstJSONObject scans for the first balanced brace pair, honoring
// string literals so braces inside feedback text don't end the object
// early. Falls back to a first-{ last-} slice when balancing fails.
func firstJSONObject(text string) (string, error) {
	start := strings.Index(text, "{")
	if start < 0 {
		return "", errNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}

	end := strings.LastIndex(text, "}")
	if end <= start {
		return "", errNoJSON
	}
	return text[start : end+1], nil
}
