package ers

import (
	"github.com/shopspring/decimal"
)

// PriceList is a named price collection.
type PriceList struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PriceEntry is one nomenclature record with its price.
// Folder records carry no price and have IsFolder set.
type PriceEntry struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Code     string          `json:"code,omitempty"`
	Article  string          `json:"article,omitempty"`
	IsFolder bool            `json:"isFolder,omitempty"`
}

// NomenclaturePage is one page of a nomenclature listing.
type NomenclaturePage struct {
	Items []PriceEntry
	// Next is the cursor for the following page, empty at the end.
	Next string
	// Total is the reported total when the ERS sends one, otherwise -1.
	Total int
}

// FolderPage is one page of a folder listing.
type FolderPage struct {
	Items []PriceEntry
	// Folders are ids of child folders.
	Folders []string
	Next    string
}

// StockEntry is the balance of one product, optionally for one warehouse.
// WarehouseID is 0 when the balance was reported without a warehouse.
type StockEntry struct {
	ProductID   string
	WarehouseID int64
	Quantity    decimal.Decimal
}

// StockQuery selects stock balances.
type StockQuery struct {
	PriceListIDs []string `json:"priceListIds,omitempty"`
	WarehouseIDs []int64  `json:"warehouseIds,omitempty"`
	CompanyIDs   []int64  `json:"companyIds,omitempty"`
}

// Company is an organisation in the ERS.
type Company struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Warehouse is a stock-holding location of a company.
type Warehouse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	UUID    string `json:"uuid,omitempty"`
	Address string `json:"address,omitempty"`
}

// SearchResult is the outcome of a lookup by code.
type SearchResult struct {
	Entry    PriceEntry
	Stock    decimal.Decimal
	HasStock bool
}
