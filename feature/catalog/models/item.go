package models

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CatalogItem is one product of the storefront catalog.
type CatalogItem struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Subcategory string           `json:"subcategory,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	// InStock mirrors Stock > 0. Only SetStock and Normalize write it.
	InStock bool `json:"inStock"`

	ExternalID          string `json:"externalId,omitempty"`
	ExternalCode        string `json:"externalCode,omitempty"`
	ExternalArticle     string `json:"externalArticle,omitempty"`
	ExternalPriceListID string `json:"externalPriceListId,omitempty"`
	ExternalWarehouseID string `json:"externalWarehouseId,omitempty"`

	PriceUpdatedAt *time.Time `json:"priceUpdatedAt,omitempty"`
	StockUpdatedAt *time.Time `json:"stockUpdatedAt,omitempty"`

	Description string            `json:"description,omitempty"`
	Features    []string          `json:"features,omitempty"`
	Specs       map[string]string `json:"specs,omitempty"`
	Image       string            `json:"image,omitempty"`
	Images      []string          `json:"images,omitempty"`

	// Extra keeps fields written by other tools (admin screens, storefront) so a
	// sync never drops them.
	Extra map[string]json.RawMessage `json:"-"`
}

// SetStock stores a non-negative stock level and derives InStock from it.
func (i *CatalogItem) SetStock(n int) {
	if n < 0 {
		n = 0
	}
	i.Stock = &n
	i.InStock = n > 0
}

// Normalize re-derives InStock from Stock.
func (i *CatalogItem) Normalize() {
	i.InStock = i.Stock != nil && *i.Stock > 0
}

// Clone returns a deep copy.
func (i CatalogItem) Clone() CatalogItem {
	out := i
	if i.Price != nil {
		p := *i.Price
		out.Price = &p
	}
	if i.Stock != nil {
		s := *i.Stock
		out.Stock = &s
	}
	if i.PriceUpdatedAt != nil {
		t := *i.PriceUpdatedAt
		out.PriceUpdatedAt = &t
	}
	if i.StockUpdatedAt != nil {
		t := *i.StockUpdatedAt
		out.StockUpdatedAt = &t
	}
	out.Features = append([]string(nil), i.Features...)
	out.Images = append([]string(nil), i.Images...)
	if i.Specs != nil {
		out.Specs = make(map[string]string, len(i.Specs))
		for k, v := range i.Specs {
			out.Specs[k] = v
		}
	}
	if i.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(i.Extra))
		for k, v := range i.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// catalogItemJSON has the same fields as CatalogItem without its methods.
type catalogItemJSON CatalogItem

// catalogItemWire writes the price as a JSON number, which the storefront reads.
// The outer Price shadows the embedded one.
type catalogItemWire struct {
	catalogItemJSON
	Price *numberPrice `json:"price,omitempty"`
}

type numberPrice decimal.Decimal

func (p numberPrice) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(p).String()), nil
}

var knownFields = func() map[string]struct{} {
	fields := make(map[string]struct{})
	t := reflect.TypeOf(CatalogItem{})
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			fields[name] = struct{}{}
		}
	}
	return fields
}()

// UnmarshalJSON decodes a catalog item and keeps unknown fields in Extra.
// A stored inStock flag is ignored; it is derived from stock.
func (i *CatalogItem) UnmarshalJSON(data []byte) error {
	var item catalogItemJSON
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k := range raw {
		if _, ok := knownFields[k]; ok {
			delete(raw, k)
		}
	}
	if len(raw) > 0 {
		item.Extra = raw
	}

	*i = CatalogItem(item)
	i.Normalize()
	return nil
}

// MarshalJSON encodes a catalog item together with its Extra fields.
// Known fields win over Extra entries with the same name.
func (i CatalogItem) MarshalJSON() ([]byte, error) {
	wire := catalogItemWire{catalogItemJSON: catalogItemJSON(i)}
	if i.Price != nil {
		p := numberPrice(*i.Price)
		wire.Price = &p
	}
	data, err := json.Marshal(wire)
	if err != nil || len(i.Extra) == 0 {
		return data, err
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, v := range i.Extra {
		if _, ok := knownFields[k]; ok {
			continue
		}
		merged[k] = v
	}
	return json.Marshal(merged)
}
