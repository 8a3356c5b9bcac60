package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"catalog-sync/feature/catalog/models"
)

// Encode renders the catalog document.
func Encode(items []models.CatalogItem) ([]byte, error) {
	if items == nil {
		items = []models.CatalogItem{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a catalog document. It accepts a bare array or an object
// wrapping the array under "items" or "products". Empty input is an empty catalog.
func Decode(data []byte) ([]models.CatalogItem, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var items []models.CatalogItem
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to decode catalog: %w", err)
		}
		return items, nil
	}

	var wrapped struct {
		Items    []models.CatalogItem `json:"items"`
		Products []models.CatalogItem `json:"products"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if wrapped.Items != nil {
		return wrapped.Items, nil
	}
	return wrapped.Products, nil
}

// Revision fingerprints stored content. Nothing stored has the empty revision.
func Revision(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
