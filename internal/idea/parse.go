package idea

import "strings"

// TriggerPrefix marks a chat message as an idea submission. Matching is
// case-insensitive and an optional colon may follow the prefix.
const TriggerPrefix = "PI"

// HasTrigger reports whether text is an idea-submission message.
func HasTrigger(text string) bool {
	return strings.HasPrefix(strings.ToUpper(text), TriggerPrefix)
}

// Parse extracts a title and description from raw message text.
//
// A leading trigger prefix ("PI", "pi:", etc.) is stripped if present. The
// remainder is split on the first "|": the left side becomes the title and
// the right side the description, both trimmed. Without a separator the
// whole remainder is the title. Parse is total; empty input yields ("", "").
func Parse(text string) (title, description string) {
	upper := strings.ToUpper(text)
	if strings.HasPrefix(upper, TriggerPrefix+":") {
		text = strings.TrimSpace(text[len(TriggerPrefix)+1:])
	} else if strings.HasPrefix(upper, TriggerPrefix) {
		text = strings.TrimSpace(text[len(TriggerPrefix):])
	}

	if i := strings.Index(text, "|"); i >= 0 {
		return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+1:])
	}
	return strings.TrimSpace(text), ""
}
