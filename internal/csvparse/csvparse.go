// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package csvparse tokenizes comma-separated text into rows of fields.
//
// The tokenizer is lenient: it never fails. Quoted fields may span lines and
// contain doubled quotes, CRLF and LF both end a row, blank rows are dropped,
// and an unterminated quote swallows the remainder of the input into the
// current field.
package csvparse

import "strings"

const (
	comma = ','
	quote = '"'
)

// Parse splits text into rows of fields.
func Parse(text string) [][]string {
	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
		pending  bool // something consumed since the last row boundary
	)

	endRow := func() {
		row = append(row, field.String())
		field.Reset()
		if !isBlank(row) {
			rows = append(rows, row)
		}
		row = nil
		pending = false
	}

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inQuotes {
			if c == quote {
				if i+1 < len(text) && text[i+1] == quote {
					field.WriteByte(quote)
					i++
					continue
				}
				inQuotes = false
				continue
			}
			field.WriteByte(c)
			continue
		}

		switch {
		case c == quote:
			inQuotes = true
			pending = true
		case c == comma:
			row = append(row, field.String())
			field.Reset()
			pending = true
		case c == '\n':
			endRow()
		case c == '\r' && i+1 < len(text) && text[i+1] == '\n':
			endRow()
			i++
		default:
			field.WriteByte(c)
			pending = true
		}
	}

	if pending || field.Len() > 0 {
		endRow()
	}
	return rows
}

// isBlank reports whether every field in row is empty or whitespace.
func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
