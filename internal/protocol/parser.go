package protocol

import (
	"regexp"
	"strings"
)

// messagePattern matches a full protocol line: marker, event name, an
// optional '?', an optional parenthesized parameter list, and an optional
// trailing quoted string.
var messagePattern = regexp.MustCompile(
	`^[!#]` + // command or echo marker
		`(\w+)` + // event name
		`\??` + // optional query marker
		`(?:\(([^)]*)\))?` + // optional (param1,param2)
		`(?:"([^"]*)")?`, // optional "string"
)

// paramPattern splits a parameter list on commas while keeping quoted
// segments intact. Each match is either a quoted string (group 1) or a
// bare token (group 2).
var paramPattern = regexp.MustCompile(`"(.*?)"|([^,]+)`)

// Parse parses a raw protocol line into a Message. The second return
// value is false for lines that do not match the grammar; such lines are
// discarded by the caller without error.
func Parse(line string) (Message, bool) {
	if len(line) < MinMessageLength {
		return Message{}, false
	}
	idx := messagePattern.FindStringSubmatchIndex(line)
	if idx == nil {
		return Message{}, false
	}

	var params []string
	if idx[4] >= 0 && idx[5] > idx[4] {
		params = splitParams(line[idx[4]:idx[5]])
	}
	// A trailing quoted string is a parameter even when empty; only an
	// absent group contributes nothing.
	if idx[6] >= 0 {
		params = append(params, line[idx[6]:idx[7]])
	}
	return Message{Event: line[idx[2]:idx[3]], Params: params}, true
}

// splitParams splits a comma-separated parameter list. Quoted segments
// are returned verbatim, including any embedded commas; bare tokens are
// trimmed of surrounding whitespace.
func splitParams(s string) []string {
	matches := paramPattern.FindAllStringSubmatch(s, -1)
	params := make([]string, 0, len(matches))
	for _, m := range matches {
		if m[1] != "" {
			params = append(params, m[1])
		} else {
			params = append(params, strings.TrimSpace(m[2]))
		}
	}
	return params
}
