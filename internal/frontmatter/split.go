package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Style records the newline convention of a document so Join can rebuild it.
type Style struct {
	Newline string
	// BareClose is set when the closing delimiter is the last line of the
	// file and carries no newline.
	BareClose bool
}

// Split separates the `---` delimited header from the markdown body.
//
// A document that does not open with a delimiter line has no header: had is
// false and body is the full input. An opened but never closed header yields
// ErrMissingClosingDelimiter.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)
	nl := style.Newline

	open := []byte(delimiter + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, style, nil
	}

	rest := content[len(open):]
	for offset := 0; offset <= len(rest); {
		line, next := nextLine(rest, offset, nl)
		if string(line) == delimiter {
			if next == len(rest) && !bytes.HasSuffix(rest, []byte(nl)) {
				style.BareClose = true
			}
			return rest[:offset], rest[next:], true, style, nil
		}
		if next == offset {
			break
		}
		offset = next
	}
	return nil, nil, false, style, ErrMissingClosingDelimiter
}

// nextLine returns the line starting at offset without its terminator and
// the offset of the following line.
func nextLine(buf []byte, offset int, nl string) ([]byte, int) {
	idx := bytes.Index(buf[offset:], []byte(nl))
	if idx < 0 {
		return buf[offset:], len(buf)
	}
	return buf[offset : offset+idx], offset + idx + len(nl)
}

// Join is the inverse of Split: Join(Split(x)) == x for every x Split accepts.
func Join(frontmatter []byte, body []byte, had bool, style Style) []byte {
	if !had {
		return body
	}

	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}

	out := make([]byte, 0, 2*len(delimiter)+2*len(nl)+len(frontmatter)+len(body))
	out = append(out, delimiter...)
	out = append(out, nl...)
	out = append(out, frontmatter...)
	out = append(out, delimiter...)
	if !style.BareClose {
		out = append(out, nl...)
	}
	out = append(out, body...)
	return out
}

// ParseYAML decodes a header (without delimiters) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(frontmatter) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// ErrMissingClosingDelimiter reports a header that is opened but never closed.
var ErrMissingClosingDelimiter = errors.New("frontmatter opened with --- but never closed")

func detectStyle(content []byte) Style {
	if idx := bytes.IndexByte(content, '\n'); idx > 0 && content[idx-1] == '\r' {
		return Style{Newline: "\r\n"}
	}
	return Style{Newline: "\n"}
}
