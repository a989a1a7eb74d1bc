package countdown

import (
	"regexp"
	"strconv"
)

var numberPrefix = regexp.MustCompile(`^[0-9,]+`)

// ParseNumber extracts the contribution value from a raw message body.
// The message must start with digits (commas allowed as separators), e.g.
// "1,234 almost there" parses as 1234. Returns false when the message
// doesn't start with a number.
func ParseNumber(content string) (int64, bool) {
	match := numberPrefix.FindString(content)
	if match == "" {
		return 0, false
	}
	stripped := make([]byte, 0, len(match))
	for i := 0; i < len(match); i++ {
		if match[i] != ',' {
			stripped = append(stripped, match[i])
		}
	}
	if len(stripped) == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(string(stripped), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
