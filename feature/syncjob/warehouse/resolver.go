package warehouse

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"catalog-sync/feature/ers"

	"go.uber.org/zap"
)

var (
	// ErrNoCompanies is returned when the ERS lists no company.
	ErrNoCompanies = errors.New("ers lists no companies")
	// ErrNoWarehouses is returned when the selected company has no warehouses.
	ErrNoWarehouses = errors.New("company has no warehouses")
)

// Resolution methods.
const (
	MethodName     = "name"
	MethodID       = "id"
	MethodAlias    = "alias"
	MethodFallback = "first-warehouse-fallback"
)

// API is the part of the ERS client the resolver needs.
type API interface {
	ListCompanies(ctx context.Context) ([]ers.Company, error)
	ListWarehouses(ctx context.Context, companyID int64) ([]ers.Warehouse, error)
}

// Hints narrow the choice of company and warehouse. All are optional.
type Hints struct {
	// Company is a company id or name.
	Company string
	// WarehouseName is matched against warehouse names and addresses.
	WarehouseName string
	// WarehouseID is a numeric warehouse id or a warehouse uuid.
	WarehouseID string
}

// Resolution is the chosen company and warehouse.
type Resolution struct {
	CompanyID   int64
	CompanyName string
	Warehouse   ers.Warehouse
	// WarehouseIDs are the chosen warehouse and every warehouse of the company with the same name.
	WarehouseIDs []int64
	// Method is the rule that picked the warehouse.
	Method   string
	Warnings []string
}

// Resolver picks the company and warehouse whose stock is synced.
type Resolver struct {
	api     API
	aliases []string
	cache   *Cache
	logger  *zap.Logger
}

// NewResolver creates a resolver. Aliases are tokens that identify the default
// warehouse by name or address. Listings are cached for ttl.
func NewResolver(api API, aliases []string, ttl time.Duration, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	var normalized []string
	for _, a := range aliases {
		if a = normalize(a); a != "" {
			normalized = append(normalized, a)
		}
	}
	return &Resolver{api: api, aliases: normalized, cache: NewCache(ttl), logger: logger}
}

// Cache returns the resolver's listing cache.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// Resolve runs the fallback chain: company, then warehouse by name hint, id hint,
// default aliases, and finally the first warehouse of the company.
func (r *Resolver) Resolve(ctx context.Context, hints Hints) (*Resolution, error) {
	companies, err := r.companies(ctx)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, ErrNoCompanies
	}

	res := &Resolution{}
	company := r.pickCompany(companies, hints.Company, res)
	res.CompanyID, res.CompanyName = company.ID, company.Name

	warehouses, err := r.warehouses(ctx, company.ID)
	if err != nil {
		return nil, err
	}
	if len(warehouses) == 0 {
		return nil, fmt.Errorf("%w: company %d (%s)", ErrNoWarehouses, company.ID, company.Name)
	}

	chosen, method := r.pickWarehouse(warehouses, hints, res)
	res.Warehouse, res.Method = chosen, method
	res.WarehouseIDs = sameName(warehouses, chosen)

	r.logger.Info("Warehouse resolved",
		zap.Int64("company_id", res.CompanyID),
		zap.Int64("warehouse_id", chosen.ID),
		zap.String("warehouse", chosen.Name),
		zap.String("method", method),
		zap.Int64s("warehouse_ids", res.WarehouseIDs),
	)
	return res, nil
}

func (r *Resolver) pickCompany(companies []ers.Company, hint string, res *Resolution) ers.Company {
	if hint = strings.TrimSpace(hint); hint != "" {
		id, _ := strconv.ParseInt(hint, 10, 64)
		for _, c := range companies {
			if (id != 0 && c.ID == id) || strings.EqualFold(strings.TrimSpace(c.Name), hint) {
				return c
			}
		}
		for _, c := range companies {
			if contains(normalize(c.Name), normalize(hint)) {
				return c
			}
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf("company %q not found, using %q", hint, companies[0].Name))
		return companies[0]
	}
	if len(companies) > 1 {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("%d companies available, using the first (%q)", len(companies), companies[0].Name))
	}
	return companies[0]
}

func (r *Resolver) pickWarehouse(warehouses []ers.Warehouse, hints Hints, res *Resolution) (ers.Warehouse, string) {
	if name := strings.TrimSpace(hints.WarehouseName); name != "" {
		if w, ok := byName(warehouses, name); ok {
			return w, MethodName
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf("warehouse name %q not found", name))
	}

	if id := strings.TrimSpace(hints.WarehouseID); id != "" {
		if w, ok := byID(warehouses, id); ok {
			return w, MethodID
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf("warehouse id %q not found", id))
	}

	for _, alias := range r.aliases {
		for _, w := range warehouses {
			if contains(normalize(w.Name+" "+w.Address), alias) {
				return w, MethodAlias
			}
		}
	}

	w := warehouses[0]
	res.Warnings = append(res.Warnings,
		fmt.Sprintf("%s: no warehouse matched, using %q (id %d)", MethodFallback, w.Name, w.ID))
	return w, MethodFallback
}

func byName(warehouses []ers.Warehouse, name string) (ers.Warehouse, bool) {
	for _, w := range warehouses {
		if strings.EqualFold(strings.TrimSpace(w.Name), name) {
			return w, true
		}
	}

	tokens := strings.Fields(normalize(name))
	for _, w := range warehouses {
		haystack := normalize(w.Name + " " + w.Address)
		all := len(tokens) > 0
		for _, t := range tokens {
			if !strings.Contains(haystack, t) {
				all = false
				break
			}
		}
		if all {
			return w, true
		}
	}
	return ers.Warehouse{}, false
}

func byID(warehouses []ers.Warehouse, id string) (ers.Warehouse, bool) {
	n, _ := strconv.ParseInt(id, 10, 64)
	for _, w := range warehouses {
		if (n != 0 && w.ID == n) || (w.UUID != "" && strings.EqualFold(w.UUID, id)) {
			return w, true
		}
	}
	return ers.Warehouse{}, false
}

// sameName returns the chosen id followed by the ids of other warehouses with the same name.
func sameName(warehouses []ers.Warehouse, chosen ers.Warehouse) []int64 {
	ids := []int64{chosen.ID}
	key := normalize(chosen.Name)
	for _, w := range warehouses {
		if w.ID != chosen.ID && key != "" && normalize(w.Name) == key {
			ids = append(ids, w.ID)
		}
	}
	return ids
}

func (r *Resolver) companies(ctx context.Context) ([]ers.Company, error) {
	v, err := r.cache.GetOrLoad(ctx, "companies", func(ctx context.Context) (any, error) {
		return r.api.ListCompanies(ctx)
	})
	if err != nil {
		if errors.Is(err, ers.ErrNotFound) {
			return nil, ErrNoCompanies
		}
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return v.([]ers.Company), nil
}

func (r *Resolver) warehouses(ctx context.Context, companyID int64) ([]ers.Warehouse, error) {
	key := "warehouses:" + strconv.FormatInt(companyID, 10)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return r.api.ListWarehouses(ctx, companyID)
	})
	if err != nil {
		if errors.Is(err, ers.ErrNotFound) {
			return nil, fmt.Errorf("%w: company %d", ErrNoWarehouses, companyID)
		}
		return nil, fmt.Errorf("failed to list warehouses: %w", err)
	}
	return v.([]ers.Warehouse), nil
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func contains(haystack, needle string) bool {
	return needle != "" && strings.Contains(haystack, needle)
}
