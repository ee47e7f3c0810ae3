package knowledge

import "strings"

// ContextSeparator delimits retrieved passages in the assembled context.
const ContextSeparator = "\n\n---\n\n"

// AssembleContext joins the text payloads of the matches in ranking order.
// An empty retrieval result yields an empty string; the generator handles
// "no context" on its own.
func AssembleContext(matches []Match) string {
	if len(matches) == 0 {
		return ""
	}

	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, m.Payload.Text)
	}
	return strings.Join(parts, ContextSeparator)
}
