package catalog

import (
	"fmt"
	"io"
	"strings"

	"catalog-sync/feature/catalog/models"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Catalog"

var exportHeader = []any{
	"ID", "Name", "Category", "Subcategory", "Price", "Stock", "In stock",
	"External ID", "External code", "Article", "Price updated", "Stock updated",
}

// WriteXLSX writes the items as a single-sheet workbook.
func WriteXLSX(w io.Writer, items []models.CatalogItem) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetRowStyle(exportSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, item := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := exportRow(item)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(exportSheet, "B", "B", 48); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetPanes(exportSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func exportRow(item models.CatalogItem) []any {
	row := []any{
		item.ID, item.Name, item.Category, item.Subcategory, nil, nil,
		yesNo(item.InStock), item.ExternalID, item.ExternalCode, item.ExternalArticle, "", "",
	}
	if item.Price != nil {
		price, _ := item.Price.Float64()
		row[4] = price
	}
	if item.Stock != nil {
		row[5] = *item.Stock
	}
	if item.PriceUpdatedAt != nil {
		row[10] = item.PriceUpdatedAt.UTC().Format("2006-01-02 15:04:05")
	}
	if item.StockUpdatedAt != nil {
		row[11] = item.StockUpdatedAt.UTC().Format("2006-01-02 15:04:05")
	}
	return row
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// ExportFileName suggests a download name for an export of the given category.
func ExportFileName(category string) string {
	if category == "" {
		return "catalog.xlsx"
	}
	return "catalog-" + strings.ToLower(category) + ".xlsx"
}
