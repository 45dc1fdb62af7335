package catalog

import (
	"strings"

	"github.com/dukerupert/flipcart/internal/domain"
)

// Placeholder is the cell value that, like an empty cell, repeats the value
// of the row above.
const Placeholder = "-"

// Column positions of the CSV layout without an id column.
const (
	colName = iota
	colColor
	colSize
	colStorage
	colSellingPrice
	colMRP
	colFeatures
	colImage1
	colImage2
	colImage3
	colImage4
	colImage5
	colDisplayOrder
)

// Record is one resolved catalog row.
type Record struct {
	// Row is the 1-based position of the source row; for CSV input the
	// header is row 1.
	Row        int
	ExternalID string
	Name       string
	domain.VariantFields

	// DisplayOrder defaults to domain.DefaultDisplayOrder; OrderSet reports
	// whether the source cell carried a value.
	DisplayOrder string
	OrderSet     bool
}

// Layout describes where the fields of a data row live.
type Layout struct {
	// IDColumn is the index of the id column, or -1.
	IDColumn int
}

func (l Layout) offset() int {
	if l.IDColumn >= 0 {
		return 1
	}
	return 0
}

// DetectLayout looks for an "id" header cell (case-insensitive).
func DetectLayout(header []string) Layout {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "id") {
			return Layout{IDColumn: i}
		}
	}
	return Layout{IDColumn: -1}
}

// resolver carries inheritance state across the rows of one batch. The state
// is never reset between products.
type resolver struct {
	lastName string
	last     domain.VariantFields
}

func inherit(cell, prev string) string {
	cell = strings.TrimSpace(cell)
	if cell == "" || cell == Placeholder {
		return prev
	}
	return cell
}

func (r *resolver) resolve(name string, f domain.VariantFields) (string, domain.VariantFields) {
	name = inherit(name, r.lastName)
	f = domain.VariantFields{
		Color:        inherit(f.Color, r.last.Color),
		Size:         inherit(f.Size, r.last.Size),
		Storage:      inherit(f.Storage, r.last.Storage),
		SellingPrice: inherit(f.SellingPrice, r.last.SellingPrice),
		MRP:          inherit(f.MRP, r.last.MRP),
		Features:     inherit(f.Features, r.last.Features),
		Image1:       inherit(f.Image1, r.last.Image1),
		Image2:       inherit(f.Image2, r.last.Image2),
		Image3:       inherit(f.Image3, r.last.Image3),
		Image4:       inherit(f.Image4, r.last.Image4),
		Image5:       inherit(f.Image5, r.last.Image5),
	}
	r.lastName = name
	r.last = f
	return name, f
}

// ResolveCSV turns tokenized CSV rows into records. The first row is always a
// header; it only decides whether an id column is present.
func ResolveCSV(rows [][]string) []Record {
	if len(rows) < 2 {
		return nil
	}

	layout := DetectLayout(rows[0])
	off := layout.offset()
	records := make([]Record, 0, len(rows)-1)

	var r resolver
	for i, row := range rows[1:] {
		cell := func(col int) string {
			if col < len(row) {
				return row[col]
			}
			return ""
		}

		name, fields := r.resolve(cell(colName+off), domain.VariantFields{
			Color:        cell(colColor + off),
			Size:         cell(colSize + off),
			Storage:      cell(colStorage + off),
			SellingPrice: cell(colSellingPrice + off),
			MRP:          cell(colMRP + off),
			Features:     cell(colFeatures + off),
			Image1:       cell(colImage1 + off),
			Image2:       cell(colImage2 + off),
			Image3:       cell(colImage3 + off),
			Image4:       cell(colImage4 + off),
			Image5:       cell(colImage5 + off),
		})

		rec := Record{
			Row:           i + 2,
			Name:          name,
			VariantFields: fields,
			DisplayOrder:  domain.DefaultDisplayOrder,
		}
		if layout.IDColumn >= 0 {
			// "-" is the inheritance marker, never an id
			if id := strings.TrimSpace(cell(layout.IDColumn)); id != Placeholder {
				rec.ExternalID = id
			}
		}
		if order := strings.TrimSpace(cell(colDisplayOrder + off)); order != "" {
			rec.DisplayOrder = order
			rec.OrderSet = true
		}
		records = append(records, rec)
	}
	return records
}

// ResolveVariants applies inheritance to a manually submitted variant list.
// Every input is data; variants left without a name take productName.
func ResolveVariants(productName string, inputs []domain.VariantInput) []Record {
	records := make([]Record, 0, len(inputs))

	var r resolver
	for i, in := range inputs {
		name, fields := r.resolve(in.Name, in.VariantFields)
		if name == "" {
			name = strings.TrimSpace(productName)
		}
		records = append(records, Record{
			Row:           i + 1,
			Name:          name,
			VariantFields: fields,
		})
	}
	return records
}
