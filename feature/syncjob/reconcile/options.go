package reconcile

// Options are the inputs of one run.
type Options struct {
	// PriceListID skips price list discovery when set.
	PriceListID string `json:"priceListId"`
	// WarehouseID is a numeric warehouse id or uuid hint for stock sync.
	WarehouseID string `json:"warehouseId"`
	// WarehouseName is a warehouse name hint for stock sync.
	WarehouseName string `json:"warehouseName"`
	// CompanyHint is a company id or name.
	CompanyHint string `json:"company"`
	// Force rebuilds matched items from the ERS instead of updating price and stock only.
	Force bool `json:"force"`
	// SyncStock reads warehouse balances and updates stock levels.
	SyncStock bool `json:"syncStock"`
	// DryRun computes the report without writing the catalog.
	DryRun bool `json:"dryRun"`
	// CreateMissing appends unmatched ERS items to the catalog.
	CreateMissing bool `json:"createMissing"`
	// LookupMissing searches the ERS by code for catalog items no fetched entry matched.
	LookupMissing bool `json:"lookupMissing"`
}

// DefaultOptions returns the options of a plain scheduled run.
func DefaultOptions() Options {
	return Options{CreateMissing: true}
}
