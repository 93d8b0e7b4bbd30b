package asset

import "regexp"

var schemeURIPattern = regexp.MustCompile(`^[a-z][-+.0-9a-z]*://`)

// resolveURI classifies candidate and, when it is neither a data URI nor an
// absolute URI, resolves it against base by replacing base's last path
// segment with candidate. Reference: gltf_parser.go's loadBufferURI, which
// special-cases "data:" and otherwise joins against the document's base
// directory.
func resolveURI(candidate, base string) string {
	if len(candidate) >= 5 && candidate[:5] == "data:" {
		return candidate
	}
	if schemeURIPattern.MatchString(candidate) {
		return candidate
	}

	prefix := ""
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '/' {
			prefix = base[:i+1]
			break
		}
	}
	return prefix + candidate
}
