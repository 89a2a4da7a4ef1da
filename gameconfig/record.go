// Package gameconfig reads and writes the launcher-facing text records
// the game client keeps outside its INI files: favorite-server lists
// and the cached online user.
package gameconfig

import (
	"errors"
	"fmt"
	"strings"
)

var ErrBadRecord = errors.New("gameconfig: malformed record")

// record is an ordered key/value list in the game's single-line
// parenthesized form: (Key="quoted",Other=bare). Quoted values escape
// embedded quotes and backslashes with a backslash; bare values run to
// the next comma.
type record struct {
	keys   []string
	values []string
	quoted []bool
}

func (r *record) add(key, value string, quote bool) {
	r.keys = append(r.keys, key)
	r.values = append(r.values, value)
	r.quoted = append(r.quoted, quote)
}

func (r *record) get(key string) (string, bool) {
	for i, k := range r.keys {
		if strings.EqualFold(k, key) {
			return r.values[i], true
		}
	}
	return "", false
}

func (r *record) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, k := range r.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		if r.quoted[i] {
			b.WriteByte('"')
			b.WriteString(escapeQuoted(r.values[i]))
			b.WriteByte('"')
		} else {
			b.WriteString(r.values[i])
		}
	}
	b.WriteByte(')')
	return b.String()
}

func escapeQuoted(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func parseRecord(line string) (*record, error) {
	line = strings.TrimSpace(line)
	if len(line) < 2 || line[0] != '(' || line[len(line)-1] != ')' {
		return nil, fmt.Errorf("%w: not parenthesized: %q", ErrBadRecord, line)
	}
	body := line[1 : len(line)-1]

	r := &record{}
	pos := 0
	for pos < len(body) {
		eq := strings.IndexByte(body[pos:], '=')
		if eq < 0 {
			return nil, fmt.Errorf("%w: missing '=' after %q", ErrBadRecord, body[pos:])
		}
		key := body[pos : pos+eq]
		pos += eq + 1

		if pos < len(body) && body[pos] == '"' {
			value, next, err := scanQuoted(body, pos)
			if err != nil {
				return nil, err
			}
			r.add(key, value, true)
			pos = next
		} else {
			end := strings.IndexByte(body[pos:], ',')
			if end < 0 {
				end = len(body) - pos
			}
			r.add(key, body[pos:pos+end], false)
			pos += end
		}

		if pos < len(body) {
			if body[pos] != ',' {
				return nil, fmt.Errorf("%w: expected ',' at %q", ErrBadRecord, body[pos:])
			}
			pos++
		}
	}
	return r, nil
}

// scanQuoted reads a quoted value starting at the opening quote and
// returns the unescaped text and the index after the closing quote.
func scanQuoted(body string, pos int) (string, int, error) {
	var b strings.Builder
	i := pos + 1
	for i < len(body) {
		switch body[i] {
		case '\\':
			if i+1 >= len(body) {
				return "", 0, fmt.Errorf("%w: dangling escape", ErrBadRecord)
			}
			b.WriteByte(body[i+1])
			i += 2
		case '"':
			return b.String(), i + 1, nil
		default:
			b.WriteByte(body[i])
			i++
		}
	}
	return "", 0, fmt.Errorf("%w: unterminated string", ErrBadRecord)
}
