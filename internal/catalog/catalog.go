// Package catalog turns CSV files and manual submissions into products with
// variants, and serves paged, searchable reads over them.
package catalog

import (
	"context"
	"strings"

	"github.com/dukerupert/flipcart/internal/domain"
)

// Sink is the write surface Group folds records into. Implementations run
// inside a single transaction.
type Sink interface {
	// HasProduct reports whether a product with the given id exists.
	HasProduct(ctx context.Context, id string) (bool, error)

	// ProductByName returns the id of the product with exactly this name.
	ProductByName(ctx context.Context, name string) (string, bool, error)

	// CreateProduct creates an empty product from rec and returns its id.
	// An empty id asks the sink to generate one.
	CreateProduct(ctx context.Context, id string, rec Record) (string, error)

	// AppendVariant adds rec as a new variant of the product and copies its
	// fields onto the product. When setOrder is true the record's display
	// order replaces the product's.
	AppendVariant(ctx context.Context, productID string, rec Record, setOrder bool) error
}

// Group appends every record to the product it belongs to, creating
// products as needed. An explicit id match wins over a name match. Records
// without a name are skipped and reported; any sink error aborts.
func Group(ctx context.Context, sink Sink, records []Record) (*domain.ImportResult, error) {
	result := &domain.ImportResult{}

	for _, rec := range records {
		if rec.Name == "" {
			result.Skipped = append(result.Skipped, domain.SkippedRow{
				Row:    rec.Row,
				Reason: "name is empty",
			})
			continue
		}

		productID, found, err := locate(ctx, sink, rec)
		if err != nil {
			return nil, err
		}

		if !found {
			productID, err = sink.CreateProduct(ctx, rec.ExternalID, rec)
			if err != nil {
				return nil, err
			}
			result.Created++
		}

		if err := sink.AppendVariant(ctx, productID, rec, found && rec.OrderSet); err != nil {
			return nil, err
		}
		result.Imported++
	}

	return result, nil
}

func locate(ctx context.Context, sink Sink, rec Record) (string, bool, error) {
	if rec.ExternalID != "" {
		ok, err := sink.HasProduct(ctx, rec.ExternalID)
		if err != nil {
			return "", false, err
		}
		if ok {
			return rec.ExternalID, true, nil
		}
	}
	return sink.ProductByName(ctx, rec.Name)
}

// DefaultOrderFunc supplies the display order for manual submissions that
// carry none.
type DefaultOrderFunc func(ctx context.Context) string

// Submission is a validated manual product submission.
type Submission struct {
	Name         string
	DisplayOrder string
	Records      []Record
}

// Mirror returns the fields the product copies from its first variant.
func (s *Submission) Mirror() domain.VariantFields {
	return s.Records[0].VariantFields
}

// PrepareSubmission validates a manual submission and resolves its variants.
func PrepareSubmission(ctx context.Context, op string, params domain.UpsertProductParams, defaults DefaultOrderFunc) (*Submission, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, domain.NewValidationError(op, "name", "name is required")
	}
	if len(params.Variants) == 0 {
		return nil, domain.NewValidationError(op, "variants", "at least one variant is required")
	}

	order := strings.TrimSpace(params.DisplayOrder)
	if order == "" && defaults != nil {
		order = strings.TrimSpace(defaults(ctx))
	}

	return &Submission{
		Name:         name,
		DisplayOrder: order,
		Records:      ResolveVariants(name, params.Variants),
	}, nil
}

// ParseCSV tokenizes and resolves a CSV document.
func ParseCSV(op string, data []byte) ([]Record, error) {
	rows, err := Tokenize(data)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINVALID, op, "CSV file could not be read")
	}
	return ResolveCSV(rows), nil
}
