package ers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"catalog-sync/core/utils"

	"github.com/shopspring/decimal"
)

// record is one decoded JSON object.
type record map[string]any

// listKeys are the wrapper keys the ERS uses around lists, in lookup order.
var listKeys = []string{"items", "rows", "data", "result"}

// decodeEnvelope parses a response body that is either a bare array or an object
// wrapping the array under one of listKeys (possibly one level deeper, e.g.
// {"result":{"rows":[...]}}). The object holding the list is returned as well
// so callers can read cursors and totals next to it.
func decodeEnvelope(body []byte) ([]record, record, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	switch v := root.(type) {
	case []any:
		return toRecords(v), record{}, nil
	case map[string]any:
		list, holder, ok := findList(v, 2)
		if !ok {
			return nil, v, nil
		}
		return toRecords(list), holder, nil
	case nil:
		return nil, record{}, nil
	default:
		return nil, nil, fmt.Errorf("%w: unexpected %T payload", ErrInvalidResponse, root)
	}
}

func findList(obj map[string]any, depth int) ([]any, record, bool) {
	for _, k := range listKeys {
		switch inner := obj[k].(type) {
		case []any:
			return inner, obj, true
		case map[string]any:
			if depth > 1 {
				if list, holder, ok := findList(inner, depth-1); ok {
					// Cursors may sit on either level.
					merged := record{}
					for key, val := range obj {
						merged[key] = val
					}
					for key, val := range holder {
						merged[key] = val
					}
					return list, merged, true
				}
			}
		}
	}
	return nil, nil, false
}

func toRecords(list []any) []record {
	out := make([]record, 0, len(list))
	for _, v := range list {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// pick returns the first present, non-null value among keys.
func (r record) pick(keys ...string) any {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func (r record) str(keys ...string) string {
	return strings.TrimSpace(utils.ToString(r.pick(keys...)))
}

func (r record) int64(keys ...string) int64 {
	return utils.ToInt64(r.pick(keys...))
}

// amount reads a number that may be nested as {"value": ...} or {"amount": ...}.
func (r record) amount(keys ...string) (decimal.Decimal, bool) {
	v := r.pick(keys...)
	if m, ok := v.(map[string]any); ok {
		v = record(m).pick("value", "amount", "price")
	}
	return utils.ToDecimal(v)
}

func (r record) cursor() string {
	return r.str("nextCursor", "next_cursor", "cursor", "next", "nextPageToken")
}

// total is the reported listing size, or -1. "count" is often the size of the
// current page, so it only counts as a total when it exceeds pageLen.
func (r record) total(pageLen int) int {
	if v := r.pick("total", "totalCount"); v != nil {
		return utils.ToInt(v)
	}
	if v := r.pick("count"); v != nil {
		if n := utils.ToInt(v); n > pageLen {
			return n
		}
	}
	return -1
}

func toPriceEntry(r record) PriceEntry {
	price, _ := r.amount("price", "priceValue", "salePrice", "cost")
	kind := strings.ToLower(r.str("type", "kind"))

	return PriceEntry{
		ID:       r.str("id", "uuid", "productId", "nomenclatureId"),
		Name:     r.str("name", "title", "fullName"),
		Price:    price,
		Code:     r.str("code", "sku"),
		Article:  r.str("article", "vendorCode", "articul"),
		IsFolder: utils.ToBool(r.pick("isFolder", "folder", "isGroup")) || kind == "folder" || kind == "group",
	}
}

func toPriceEntries(records []record) []PriceEntry {
	out := make([]PriceEntry, 0, len(records))
	for _, r := range records {
		out = append(out, toPriceEntry(r))
	}
	return out
}

// childFolders reads child folder references given as ids or objects.
func childFolders(r record) []string {
	var ids []string
	switch v := r.pick("folders", "children", "subfolders").(type) {
	case []any:
		for _, f := range v {
			switch ref := f.(type) {
			case map[string]any:
				if id := record(ref).str("id", "uuid"); id != "" {
					ids = append(ids, id)
				}
			default:
				if id := strings.TrimSpace(utils.ToString(ref)); id != "" {
					ids = append(ids, id)
				}
			}
		}
	}
	return ids
}

func toStockEntry(r record) StockEntry {
	qty, _ := r.amount("balance", "quantity", "stock", "amount", "qty")
	return StockEntry{
		ProductID:   r.str("productId", "nomenclatureId", "id"),
		WarehouseID: r.int64("warehouseId", "storeId", "warehouse"),
		Quantity:    qty,
	}
}

func toWarehouse(r record) Warehouse {
	return Warehouse{
		ID:      r.int64("id", "warehouseId"),
		Name:    r.str("name", "title"),
		UUID:    r.str("uuid", "externalId", "guid"),
		Address: r.str("address", "location"),
	}
}

func toCompany(r record) Company {
	return Company{
		ID:   r.int64("id", "companyId"),
		Name: r.str("name", "title", "shortName"),
	}
}

func toPriceList(r record) PriceList {
	return PriceList{
		ID:   r.str("id", "uuid", "priceListId"),
		Name: r.str("name", "title"),
	}
}
