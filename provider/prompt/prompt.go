// Package prompt holds the extraction prompt shared by all LLM backends and
// the parser for their output.
package prompt

import (
	"fmt"
	"strings"
)

// KeyPoints builds the extraction prompt for one source's content.
func KeyPoints(text string, maxPoints int) string {
	return fmt.Sprintf(`You are a precise information extraction system. Extract ONLY the most relevant factual key points from the provided web page content.

Web Page Content:
%s

Instructions:
1. Extract concrete facts, events, data points, or official announcements.
2. Never fabricate or infer beyond the provided content.
3. Discard navigation text, ads, and boilerplate.
4. Return at most %d key points.

Respond ONLY with the key points, one per line, each prefixed with "- ". Do not include any other text or explanation.`, text, maxPoints)
}

// ParsePoints turns a backend completion into at most max key points. Lines
// are trimmed of bullet markers and numbering; blank lines are dropped.
func ParsePoints(raw string, max int) []string {
	var points []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "* ")
		line = trimNumbering(line)
		if line == "" {
			continue
		}
		points = append(points, line)
		if len(points) >= max {
			break
		}
	}
	return points
}

func trimNumbering(line string) string {
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c >= '0' && c <= '9' {
			continue
		}
		if (c == '.' || c == ')') && i > 0 && i+1 < len(line) && line[i+1] == ' ' {
			return strings.TrimSpace(line[i+2:])
		}
		break
	}
	return line
}
