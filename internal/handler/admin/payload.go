package admin

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/dukerupert/flipcart/internal/domain"
)

// flexString accepts a JSON string, number or boolean and keeps its text.
// The console sends prices and ids either way.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err == nil {
			*s = flexString(n.String())
			return nil
		}
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*s = flexString(strconv.FormatBool(b))
	}
	return nil
}

func (s flexString) String() string { return string(s) }

// flexBool accepts true/false, 0/1 and their string spellings.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(s.String())) {
	case "1", "true", "yes", "on":
		*b = true
	default:
		*b = false
	}
	return nil
}

type variantPayload struct {
	Name         flexString `json:"name"`
	Color        flexString `json:"color"`
	Size         flexString `json:"size"`
	Storage      flexString `json:"storage"`
	SellingPrice flexString `json:"selling_price"`
	MRP          flexString `json:"mrp"`
	Features     flexString `json:"features"`
	Image1       flexString `json:"img1"`
	Image2       flexString `json:"img2"`
	Image3       flexString `json:"img3"`
	Image4       flexString `json:"img4"`
	Image5       flexString `json:"img5"`
}

func (v variantPayload) input() domain.VariantInput {
	return domain.VariantInput{
		Name: v.Name.String(),
		VariantFields: domain.VariantFields{
			Color:        v.Color.String(),
			Size:         v.Size.String(),
			Storage:      v.Storage.String(),
			SellingPrice: v.SellingPrice.String(),
			MRP:          v.MRP.String(),
			Features:     v.Features.String(),
			Image1:       v.Image1.String(),
			Image2:       v.Image2.String(),
			Image3:       v.Image3.String(),
			Image4:       v.Image4.String(),
			Image5:       v.Image5.String(),
		},
	}
}

type productName struct {
	Name flexString `json:"name"`
}

// productPayload is every shape the console has sent for a product:
// variants under "variants" or the older "varient", as an array or a JSON
// encoded string, and the name either flat or under "product".
type productPayload struct {
	Name         flexString      `json:"name"`
	DisplayOrder flexString      `json:"disp_order"`
	Product      *productName    `json:"product"`
	Variants     json.RawMessage `json:"variants"`
	Varient      json.RawMessage `json:"varient"`
}

// params normalizes the payload. Variants that are neither an array nor a
// string holding one are rejected.
func (p productPayload) params(op string) (domain.UpsertProductParams, error) {
	name := p.Name.String()
	if strings.TrimSpace(name) == "" && p.Product != nil {
		name = p.Product.Name.String()
	}

	raw := p.Variants
	if isEmptyJSON(raw) {
		raw = p.Varient
	}
	variants, err := decodeVariants(raw)
	if err != nil {
		return domain.UpsertProductParams{}, domain.WrapError(err, domain.EINVALID, op, "variants must be a JSON array")
	}

	inputs := make([]domain.VariantInput, len(variants))
	for i, v := range variants {
		inputs[i] = v.input()
	}
	return domain.UpsertProductParams{
		Name:         name,
		DisplayOrder: p.DisplayOrder.String(),
		Variants:     inputs,
	}, nil
}

func decodeVariants(raw json.RawMessage) ([]variantPayload, error) {
	if isEmptyJSON(raw) {
		return nil, nil
	}
	raw = bytes.TrimSpace(raw)
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, err
		}
		if strings.TrimSpace(inner) == "" {
			return nil, nil
		}
		raw = json.RawMessage(inner)
	}
	var out []variantPayload
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func isEmptyJSON(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
