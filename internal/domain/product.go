package domain

import (
	"bytes"
	"fmt"
	"math"

	"github.com/goccy/go-json"
)

// ProductID is the stable identifier of a catalog product.
// Catalogs may emit ids as JSON strings or numbers; both decode to the same text.
type ProductID string

func (id ProductID) String() string {
	return string(id)
}

func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id must be a string or a number: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

// Product is a catalog product as handed over by the presentation layer.
// Only ID and Price carry meaning here; everything else (name, image, rating...)
// is kept verbatim in Attributes and written back next to id and price.
type Product struct {
	ID         ProductID
	Price      float64
	Attributes map[string]any
}

func (p Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidProduct)
	}
	if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price < 0 {
		return fmt.Errorf("%w: price must be a non-negative number", ErrInvalidProduct)
	}
	return nil
}

// Clone copies the attribute map so callers cannot reach into store state.
func (p Product) Clone() Product {
	out := Product{ID: p.ID, Price: p.Price}
	if p.Attributes != nil {
		out.Attributes = make(map[string]any, len(p.Attributes))
		for k, v := range p.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}

func (p Product) fields() map[string]any {
	m := make(map[string]any, len(p.Attributes)+3)
	for k, v := range p.Attributes {
		m[k] = v
	}
	m["id"] = string(p.ID)
	m["price"] = p.Price
	return m
}

func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.fields())
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return p.fromRaw(raw)
}

func (p *Product) fromRaw(raw map[string]json.RawMessage) error {
	*p = Product{}

	if v, ok := raw["id"]; ok {
		if err := json.Unmarshal(v, &p.ID); err != nil {
			return err
		}
		delete(raw, "id")
	}
	if v, ok := raw["price"]; ok {
		if !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			if err := json.Unmarshal(v, &p.Price); err != nil {
				return fmt.Errorf("product price: %w", err)
			}
		}
		delete(raw, "price")
	}

	if len(raw) == 0 {
		return nil
	}
	p.Attributes = make(map[string]any, len(raw))
	for k, v := range raw {
		var attr any
		if err := json.Unmarshal(v, &attr); err != nil {
			return fmt.Errorf("product attribute %q: %w", k, err)
		}
		p.Attributes[k] = attr
	}
	return nil
}

// MaxQuantity caps a single cart line. Adds at the cap leave the line
// unchanged and larger requested quantities are clamped down to it.
const MaxQuantity = 9999

// LineItem is a product annotated with a quantity inside one user's cart.
// On the wire it is the product object with an extra "quantity" field.
type LineItem struct {
	Product
	Quantity int
}

func (li LineItem) Clone() LineItem {
	return LineItem{Product: li.Product.Clone(), Quantity: li.Quantity}
}

func (li LineItem) MarshalJSON() ([]byte, error) {
	m := li.Product.fields()
	m["quantity"] = li.Quantity
	return json.Marshal(m)
}

func (li *LineItem) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	quantity := 0
	if v, ok := raw["quantity"]; ok {
		if err := json.Unmarshal(v, &quantity); err != nil {
			return fmt.Errorf("line item quantity: %w", err)
		}
		delete(raw, "quantity")
	}

	var p Product
	if err := p.fromRaw(raw); err != nil {
		return err
	}
	*li = LineItem{Product: p, Quantity: quantity}
	return nil
}
