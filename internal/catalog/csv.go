package catalog

import (
	"bytes"
	"errors"
	"unicode/utf8"
)

// ErrParse is returned for CSV input that cannot be read as text.
var ErrParse = errors.New("csv: input is not valid UTF-8 text")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Tokenize splits CSV text into rows of cells.
//
// Quoting is permissive: a double quote anywhere outside a quoted section
// opens one, and an unterminated quote runs to the end of input. Rows end at
// \n, \r\n or a lone \r. Rows made of a single empty cell are dropped; rows
// of several empty cells are kept. Ragged rows are returned as-is.
func Tokenize(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, ErrParse
	}

	var (
		rows     [][]string
		row      []string
		cell     []byte
		inQuotes bool
	)

	endRow := func() {
		row = append(row, string(cell))
		if len(row) > 1 || row[0] != "" {
			rows = append(rows, row)
		}
		row = nil
		cell = cell[:0]
	}

	for i := 0; i < len(data); i++ {
		c := data[i]

		if inQuotes {
			switch {
			case c == '"' && i+1 < len(data) && data[i+1] == '"':
				cell = append(cell, '"')
				i++
			case c == '"':
				inQuotes = false
			default:
				cell = append(cell, c)
			}
			continue
		}

		switch c {
		case '"':
			inQuotes = true
		case ',':
			row = append(row, string(cell))
			cell = cell[:0]
		case '\r':
			if i+1 < len(data) && data[i+1] == '\n' {
				i++
			}
			endRow()
		case '\n':
			endRow()
		default:
			cell = append(cell, c)
		}
	}

	if len(row) > 0 || len(cell) > 0 {
		row = append(row, string(cell))
		rows = append(rows, row)
	}

	return rows, nil
}
