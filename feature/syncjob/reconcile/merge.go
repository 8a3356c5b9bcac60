package reconcile

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"catalog-sync/core/utils"
	"catalog-sync/feature/catalog"
	"catalog-sync/feature/catalog/models"
	"catalog-sync/feature/ers"

	"github.com/shopspring/decimal"
)

// mergeInput is what a matched entry contributes to a catalog item.
type mergeInput struct {
	entry       ers.PriceEntry
	priceListID string
	warehouseID string
	// stock is applied only when hasStock is set.
	stock    int
	hasStock bool
	now      time.Time
}

// mergePriceStock overwrites the price and stock fields of item and reports
// whether any value changed. Timestamps advance either way.
func mergePriceStock(item *models.CatalogItem, in mergeInput) bool {
	changed := item.Price == nil || !item.Price.Equal(in.entry.Price)
	price := in.entry.Price
	item.Price = &price
	item.PriceUpdatedAt = timePtr(in.now)

	if in.priceListID != "" {
		changed = changed || item.ExternalPriceListID != in.priceListID
		item.ExternalPriceListID = in.priceListID
	}

	if in.hasStock {
		changed = changed || item.Stock == nil || *item.Stock != in.stock
		item.SetStock(in.stock)
		item.StockUpdatedAt = timePtr(in.now)
		if in.warehouseID != "" {
			changed = changed || item.ExternalWarehouseID != in.warehouseID
			item.ExternalWarehouseID = in.warehouseID
		}
	}
	return changed
}

// rebuild replaces item with one built from the entry, keeping its id and images.
func rebuild(item *models.CatalogItem, in mergeInput) bool {
	fresh := newItem(item.ID, in)
	if !in.hasStock && item.Stock != nil {
		fresh.SetStock(*item.Stock)
		fresh.StockUpdatedAt = item.StockUpdatedAt
	}
	fresh.Image = item.Image
	fresh.Images = item.Images

	changed := !sameContent(*item, fresh)
	*item = fresh
	return changed
}

// newItem builds a catalog item from an entry.
func newItem(id string, in mergeInput) models.CatalogItem {
	category, subcategory := catalog.Classify(in.entry.Name)
	price := in.entry.Price

	item := models.CatalogItem{
		ID:                  id,
		Name:                strings.TrimSpace(in.entry.Name),
		Category:            category,
		Subcategory:         subcategory,
		Price:               &price,
		ExternalID:          strings.TrimSpace(in.entry.ID),
		ExternalCode:        strings.TrimSpace(in.entry.Code),
		ExternalArticle:     strings.TrimSpace(in.entry.Article),
		ExternalPriceListID: in.priceListID,
		PriceUpdatedAt:      timePtr(in.now),
	}
	if in.hasStock {
		item.SetStock(in.stock)
		item.StockUpdatedAt = timePtr(in.now)
		item.ExternalWarehouseID = in.warehouseID
	}
	return item
}

// sameContent compares two items ignoring their timestamps.
func sameContent(a, b models.CatalogItem) bool {
	a, b = a.Clone(), b.Clone()
	a.PriceUpdatedAt, a.StockUpdatedAt = nil, nil
	b.PriceUpdatedAt, b.StockUpdatedAt = nil, nil

	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ja, jb)
}

// idAllocator hands out catalog ids that are unique within the catalog.
type idAllocator struct {
	taken map[string]struct{}
	now   func() time.Time
}

func newIDAllocator(items []models.CatalogItem, now func() time.Time) *idAllocator {
	taken := make(map[string]struct{}, len(items))
	for _, it := range items {
		taken[it.ID] = struct{}{}
	}
	return &idAllocator{taken: taken, now: now}
}

// next derives an id from the entry code, else its name, else the clock.
// Taken ids get a -2, -3, ... suffix.
func (a *idAllocator) next(e ers.PriceEntry) string {
	base := utils.Slugify(e.Code)
	if base == "" {
		base = utils.Slugify(e.Name)
	}
	if base == "" {
		base = "item-" + strconv.FormatInt(a.now().UnixNano(), 10)
	}

	id := base
	for n := 2; ; n++ {
		if _, ok := a.taken[id]; !ok {
			break
		}
		id = base + "-" + strconv.Itoa(n)
	}
	a.taken[id] = struct{}{}
	return id
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func positive(d decimal.Decimal) bool {
	return d.GreaterThan(decimal.Zero)
}
