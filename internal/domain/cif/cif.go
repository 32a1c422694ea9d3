// Package cif implements a tolerant tokenizer and document model for the
// CIF family of formats (mmCIF structure files, CCP4 monomer dictionaries).
// Only the generic syntax lives here; interpretation of specific categories
// belongs to the callers.
package cif

import (
	"bufio"
	"io"
	"strings"

	"github.com/turtacn/xpid/pkg/errors"
)

// Loop is one loop_ block: lower-cased tags and the value rows.
type Loop struct {
	Tags []string
	Rows [][]string
}

// Col returns the index of tag in the loop, or -1.
func (l *Loop) Col(tag string) int {
	tag = strings.ToLower(tag)
	for i, t := range l.Tags {
		if t == tag {
			return i
		}
	}
	return -1
}

// Pick returns the index of the first present tag among alternatives.
func (l *Loop) Pick(tags ...string) int {
	for _, t := range tags {
		if c := l.Col(t); c >= 0 {
			return c
		}
	}
	return -1
}

// Get returns row[col] with CIF null markers ("." / "?") mapped to "".
func (l *Loop) Get(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	v := row[col]
	if v == "." || v == "?" {
		return ""
	}
	return v
}

// Document holds the non-loop items and loops of one CIF stream. Data
// block boundaries are not tracked; callers that need per-block scoping
// (monomer dictionaries) should parse one block per file or filter rows
// by their comp_id column.
type Document struct {
	items map[string]string
	loops []*Loop
}

// Item returns a non-loop key-value item, "" when absent or null.
func (d *Document) Item(tag string) string {
	v := d.items[strings.ToLower(tag)]
	if v == "." || v == "?" {
		return ""
	}
	return v
}

// LoopFor returns the first loop that carries the given tag, or nil.
func (d *Document) LoopFor(tag string) *Loop {
	for _, l := range d.loops {
		if l.Col(tag) >= 0 {
			return l
		}
	}
	return nil
}

// Loops returns every loop in document order.
func (d *Document) Loops() []*Loop { return d.loops }

// Parse tokenizes the stream and assembles items and loops. The tokenizer
// handles '...' and "..." quoting, # comments, and semicolon-delimited
// multiline text fields.
func Parse(r io.Reader) (*Document, error) {
	tokens, err := tokenize(r)
	if err != nil {
		return nil, err
	}

	doc := &Document{items: make(map[string]string)}
	i := 0
	for i < len(tokens) {
		tok := tokens[i]
		lower := strings.ToLower(tok)
		switch {
		case lower == "loop_":
			i++
			loop := &Loop{}
			for i < len(tokens) && strings.HasPrefix(tokens[i], "_") {
				loop.Tags = append(loop.Tags, strings.ToLower(tokens[i]))
				i++
			}
			if len(loop.Tags) == 0 {
				continue
			}
			var row []string
			for i < len(tokens) && !isKeyword(tokens[i]) {
				row = append(row, tokens[i])
				i++
				if len(row) == len(loop.Tags) {
					loop.Rows = append(loop.Rows, row)
					row = nil
				}
			}
			doc.loops = append(doc.loops, loop)
		case strings.HasPrefix(tok, "_"):
			if i+1 < len(tokens) && !isKeyword(tokens[i+1]) {
				doc.items[lower] = tokens[i+1]
				i += 2
			} else {
				i++
			}
		default:
			// data_ headers, stop_, stray values.
			i++
		}
	}
	return doc, nil
}

func isKeyword(tok string) bool {
	lower := strings.ToLower(tok)
	return strings.HasPrefix(tok, "_") ||
		lower == "loop_" || lower == "stop_" ||
		strings.HasPrefix(lower, "data_") || strings.HasPrefix(lower, "save_")
}

func tokenize(r io.Reader) ([]string, error) {
	var tokens []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	inText := false
	var text strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if inText {
			if strings.HasPrefix(line, ";") {
				tokens = append(tokens, text.String())
				text.Reset()
				inText = false
			} else {
				text.WriteString(line)
				text.WriteByte('\n')
			}
			continue
		}
		if strings.HasPrefix(line, ";") {
			inText = true
			if rest := strings.TrimPrefix(line, ";"); rest != "" {
				text.WriteString(rest)
				text.WriteByte('\n')
			}
			continue
		}
		tokens = append(tokens, splitLine(line)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeParse, "reading CIF stream")
	}
	return tokens, nil
}

// splitLine splits one line into tokens, honouring single/double quotes
// and truncating at an unquoted comment marker.
func splitLine(line string) []string {
	var out []string
	i := 0
	n := len(line)
	for i < n {
		for i < n && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i >= n || line[i] == '#' {
			break
		}
		if c := line[i]; c == '\'' || c == '"' {
			j := i + 1
			for j < n && line[j] != c {
				j++
			}
			out = append(out, line[i+1:j])
			i = j + 1
			continue
		}
		j := i
		for j < n && line[j] != ' ' && line[j] != '\t' {
			j++
		}
		out = append(out, line[i:j])
		i = j
	}
	return out
}
