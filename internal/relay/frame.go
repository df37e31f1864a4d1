package relay

import "strings"

const dataPrefix = "data: "

// Frame renders one delta as an SSE record: every line gets a data prefix and
// the record ends with a blank line.
func Frame(delta string) []byte {
	lines := strings.Split(delta, "\n")

	size := len(delta) + len(lines)*len(dataPrefix) + 2
	buf := make([]byte, 0, size)
	for i, line := range lines {
		if i > 0 {
			buf = append(buf, '\n')
		}
		buf = append(buf, dataPrefix...)
		buf = append(buf, line...)
	}
	return append(buf, '\n', '\n')
}
