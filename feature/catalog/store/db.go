package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"catalog-sync/core/database"
	"catalog-sync/feature/catalog/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const revisionRowID = 1

// itemRow is one catalog item. The full document lives in Document; the other
// columns exist for querying and reporting from SQL.
type itemRow struct {
	ID           string           `gorm:"primaryKey;size:191"`
	Position     int              `gorm:"index"`
	Name         string           `gorm:"size:512"`
	Category     string           `gorm:"size:128;index"`
	ExternalID   string           `gorm:"size:191;index"`
	ExternalCode string           `gorm:"size:191;index"`
	Price        *decimal.Decimal `gorm:"type:decimal(14,2)"`
	Stock        *int
	InStock      bool
	Document     string `gorm:"type:text"`
}

func (itemRow) TableName() string { return "catalog_items" }

// revisionRow holds the revision of the whole catalog in a single row.
type revisionRow struct {
	ID        uint   `gorm:"primaryKey"`
	Revision  string `gorm:"size:64"`
	UpdatedAt time.Time
}

func (revisionRow) TableName() string { return "catalog_revisions" }

var requiredColumns = map[string][]string{
	"catalog_items":     {"id", "position", "name", "category", "external_id", "external_code", "price", "stock", "in_stock", "document"},
	"catalog_revisions": {"id", "revision", "updated_at"},
}

// DBStore keeps the catalog in SQL tables through gorm.
type DBStore struct {
	db *gorm.DB
}

// NewDBStore creates the store. With migrate the tables are created or extended;
// either way the schema is checked for the columns the store writes.
func NewDBStore(db *gorm.DB, migrate bool) (*DBStore, error) {
	if migrate {
		if err := db.AutoMigrate(&itemRow{}, &revisionRow{}); err != nil {
			return nil, fmt.Errorf("failed to migrate catalog tables: %w", err)
		}
	}

	for table, columns := range requiredColumns {
		missing, err := database.MissingColumns(db, table, columns)
		if err != nil {
			return nil, err
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("table %s is missing columns %v", table, missing)
		}
	}

	return &DBStore{db: db}, nil
}

// Load implements Store.
func (s *DBStore) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rev, _, err := readRevision(tx, false)
		if err != nil {
			return err
		}

		var rows []itemRow
		if err := tx.Order("position").Find(&rows).Error; err != nil {
			return fmt.Errorf("failed to read catalog items: %w", err)
		}

		items := make([]models.CatalogItem, 0, len(rows))
		for _, row := range rows {
			var item models.CatalogItem
			if err := json.Unmarshal([]byte(row.Document), &item); err != nil {
				return fmt.Errorf("failed to decode catalog item %s: %w", row.ID, err)
			}
			items = append(items, item)
		}

		snap = Snapshot{Items: items, Revision: rev}
		return nil
	})
	return snap, err
}

// Save implements Store. Items are replaced inside one transaction that also
// advances the revision row with a compare-and-swap update.
func (s *DBStore) Save(ctx context.Context, items []models.CatalogItem, expectedRevision string) (string, error) {
	data, err := Encode(items)
	if err != nil {
		return "", err
	}
	newRevision := Revision(data)

	rows := make([]itemRow, 0, len(items))
	for i, item := range items {
		doc, err := json.Marshal(item)
		if err != nil {
			return "", fmt.Errorf("failed to encode catalog item %s: %w", item.ID, err)
		}
		rows = append(rows, itemRow{
			ID:           item.ID,
			Position:     i,
			Name:         item.Name,
			Category:     item.Category,
			ExternalID:   item.ExternalID,
			ExternalCode: item.ExternalCode,
			Price:        item.Price,
			Stock:        item.Stock,
			InStock:      item.InStock,
			Document:     string(doc),
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, exists, err := readRevision(tx, true)
		if err != nil {
			return err
		}
		if current != expectedRevision {
			return ErrRevisionConflict
		}

		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&itemRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear catalog items: %w", err)
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, 200).Error; err != nil {
				return fmt.Errorf("failed to write catalog items: %w", err)
			}
		}

		if !exists {
			if err := tx.Create(&revisionRow{ID: revisionRowID, Revision: newRevision}).Error; err != nil {
				return fmt.Errorf("failed to write catalog revision: %w", err)
			}
			return nil
		}

		res := tx.Model(&revisionRow{}).
			Where("id = ? AND revision = ?", revisionRowID, current).
			Updates(map[string]any{"revision": newRevision, "updated_at": time.Now()})
		if res.Error != nil {
			return fmt.Errorf("failed to advance catalog revision: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrRevisionConflict
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return newRevision, nil
}

func readRevision(tx *gorm.DB, forUpdate bool) (string, bool, error) {
	q := tx
	if forUpdate && tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var rev revisionRow
	res := q.Limit(1).Find(&rev, revisionRowID)
	if res.Error != nil {
		return "", false, fmt.Errorf("failed to read catalog revision: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return "", false, nil
	}
	return rev.Revision, true, nil
}
