// Package erstest runs an in-memory External Retail System over httptest for tests.
package erstest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"catalog-sync/feature/ers"

	"go.uber.org/zap"
)

// Item is a nomenclature record as the fake serves it.
type Item map[string]any

// Folder is a folder of the fake's folder tree.
type Folder struct {
	Items    []Item
	Children []string
}

// Fake holds the data the fake ERS serves. Nil listings fall back to Items.
type Fake struct {
	PriceLists  []ers.PriceList
	Items       []Item
	ByPosition  []Item
	ByRoot      []Item
	ByPriceList []Item
	Folders     map[string]Folder
	Companies   []ers.Company
	Warehouses  map[int64][]ers.Warehouse
	// Stock rows: {"productId", "warehouseId", "balance"}.
	Stock []Item

	// Failures maps a path prefix to the number of 503 responses served before it recovers.
	// A negative count fails forever.
	Failures map[string]int

	mu        sync.Mutex
	requests  []string
	stockReqs []ers.StockQuery
}

// Requests returns the request paths (with query) served so far.
func (f *Fake) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// StockQueries returns the bodies of stock balance requests served so far.
func (f *Fake) StockQueries() []ers.StockQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ers.StockQuery(nil), f.stockReqs...)
}

// CountRequests counts served requests whose path starts with prefix.
func (f *Fake) CountRequests(prefix string) int {
	n := 0
	for _, r := range f.Requests() {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

// Token is the bearer token the fake accepts.
const Token = "test-token"

// NewServer starts the fake and returns a client configured against it.
// The server is closed when the test ends.
func NewServer(t testing.TB, f *Fake) (*httptest.Server, *ers.Client) {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	client, err := ers.NewClient(ers.Config{
		BaseURL:        srv.URL,
		Token:          Token,
		SalesPointID:   "sp-1",
		CatalogRootID:  "root",
		TimeoutSeconds: 5,
		MaxPageSize:    100,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create ERS client: %v", err)
	}
	return srv, client
}

func (f *Fake) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.URL.RequestURI())
	failing := false
	for prefix, n := range f.Failures {
		if strings.HasPrefix(r.URL.Path, prefix) && n != 0 {
			if n > 0 {
				f.Failures[prefix] = n - 1
			}
			failing = true
			break
		}
	}
	f.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer "+Token {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if failing {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	path := r.URL.Path
	switch {
	case path == "/price-lists":
		writeJSON(w, map[string]any{"rows": f.PriceLists})
	case path == "/nomenclature/search":
		f.serveSearch(w, q.Get("code"))
	case path == "/nomenclature" && q.Get("salesPointId") != "":
		items := orDefault(f.ByPosition, f.Items)
		pos, limit := atoi(q.Get("position")), atoi(q.Get("limit"))
		writeJSON(w, map[string]any{"items": window(items, pos, limit), "total": len(items)})
	case path == "/nomenclature" && q.Get("catalogRootId") != "":
		items := orDefault(f.ByRoot, f.Items)
		page, size := atoi(q.Get("page")), atoi(q.Get("pageSize"))
		if page < 1 {
			page = 1
		}
		// Bare array: the page strategy stops on a short page.
		writeJSON(w, window(items, (page-1)*size, size))
	case strings.HasPrefix(path, "/price-lists/") && strings.HasSuffix(path, "/nomenclature"):
		items := orDefault(f.ByPriceList, f.Items)
		pos, limit := atoi(q.Get("cursor")), atoi(q.Get("limit"))
		resp := map[string]any{"data": window(items, pos, limit)}
		if pos+limit < len(items) {
			resp["nextCursor"] = strconv.Itoa(pos + limit)
		}
		writeJSON(w, resp)
	case strings.HasPrefix(path, "/folders/"):
		f.serveFolder(w, strings.TrimPrefix(path, "/folders/"), atoi(q.Get("cursor")), atoi(q.Get("limit")))
	case path == "/companies":
		writeJSON(w, f.Companies)
	case strings.HasPrefix(path, "/companies/") && strings.HasSuffix(path, "/warehouses"):
		id, _ := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(path, "/companies/"), "/warehouses"), 10, 64)
		writeJSON(w, map[string]any{"result": f.Warehouses[id]})
	case path == "/stock/balances" && r.Method == http.MethodPost:
		f.serveStock(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *Fake) serveFolder(w http.ResponseWriter, id string, cursor, limit int) {
	folder, ok := f.Folders[id]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	resp := map[string]any{"items": window(folder.Items, cursor, limit)}
	if cursor+limit < len(folder.Items) {
		resp["cursor"] = strconv.Itoa(cursor + limit)
	}
	if cursor == 0 {
		resp["folders"] = folder.Children
	}
	writeJSON(w, resp)
}

func (f *Fake) serveSearch(w http.ResponseWriter, code string) {
	var found []Item
	for _, it := range f.Items {
		if c, _ := it["code"].(string); strings.EqualFold(c, code) {
			found = append(found, it)
		}
	}
	writeJSON(w, map[string]any{"items": found})
}

func (f *Fake) serveStock(w http.ResponseWriter, r *http.Request) {
	var q ers.StockQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.stockReqs = append(f.stockReqs, q)
	f.mu.Unlock()

	allowed := make(map[int64]bool, len(q.WarehouseIDs))
	for _, id := range q.WarehouseIDs {
		allowed[id] = true
	}

	var rows []Item
	for _, s := range f.Stock {
		wid := int64(atoi(strings.TrimSpace(toString(s["warehouseId"]))))
		if len(allowed) > 0 && wid != 0 && !allowed[wid] {
			continue
		}
		rows = append(rows, s)
	}
	writeJSON(w, map[string]any{"rows": rows})
}

func orDefault(items, fallback []Item) []Item {
	if items != nil {
		return items
	}
	return fallback
}

func window(items []Item, from, limit int) []Item {
	if from < 0 || from >= len(items) {
		return []Item{}
	}
	if limit <= 0 {
		limit = len(items)
	}
	to := from + limit
	if to > len(items) {
		to = len(items)
	}
	return items[from:to]
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// Products builds n priced items with codes P0001.. and ids 1..n.
func Products(n int, price float64) []Item {
	items := make([]Item, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, Item{
			"id":    i,
			"name":  "Product " + strconv.Itoa(i),
			"code":  "P" + pad4(i),
			"price": price,
		})
	}
	return items
}

func pad4(i int) string {
	s := strconv.Itoa(i)
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}
