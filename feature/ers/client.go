package ers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxResponseSize = 32 << 20

// Client talks to the External Retail System over HTTP.
type Client struct {
	cfg        Config
	baseURL    *url.URL
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient validates the configuration and creates a client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		cfg:        cfg,
		baseURL:    base,
		httpClient: &http.Client{Timeout: time.Duration(timeout) * time.Second},
		logger:     logger,
	}, nil
}

// Config returns the client's configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// ListPriceLists returns the price lists valid for a sales point at asOf.
func (c *Client) ListPriceLists(ctx context.Context, salesPointID string, asOf time.Time) ([]PriceList, error) {
	q := url.Values{}
	q.Set("salesPointId", salesPointID)
	q.Set("asOf", asOf.UTC().Format(time.RFC3339))

	records, _, err := c.getList(ctx, "/price-lists", q)
	if err != nil {
		return nil, err
	}

	out := make([]PriceList, 0, len(records))
	for _, r := range records {
		if pl := toPriceList(r); pl.ID != "" {
			out = append(out, pl)
		}
	}
	return out, nil
}

// NomenclatureByPosition lists nomenclature of a sales point from a numeric position.
func (c *Client) NomenclatureByPosition(ctx context.Context, salesPointID string, position, limit int) (NomenclaturePage, error) {
	q := url.Values{}
	q.Set("salesPointId", salesPointID)
	q.Set("position", strconv.Itoa(position))
	q.Set("limit", strconv.Itoa(c.cfg.PageSize(limit)))
	return c.nomenclaturePage(ctx, "/nomenclature", q)
}

// NomenclatureByRoot lists nomenclature under a catalog root folder by page number (1-based).
func (c *Client) NomenclatureByRoot(ctx context.Context, rootID string, page, pageSize int) (NomenclaturePage, error) {
	q := url.Values{}
	q.Set("catalogRootId", rootID)
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(c.cfg.PageSize(pageSize)))
	return c.nomenclaturePage(ctx, "/nomenclature", q)
}

// NomenclatureByPriceList lists the items of a price list with an opaque cursor.
func (c *Client) NomenclatureByPriceList(ctx context.Context, priceListID, cursor string, limit int) (NomenclaturePage, error) {
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	q.Set("limit", strconv.Itoa(c.cfg.PageSize(limit)))
	return c.nomenclaturePage(ctx, "/price-lists/"+url.PathEscape(priceListID)+"/nomenclature", q)
}

// Folder lists one page of a folder: its items and its child folders.
// Folder records found among the items are reported as child folders.
func (c *Client) Folder(ctx context.Context, folderID, cursor string, limit int) (FolderPage, error) {
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	q.Set("limit", strconv.Itoa(c.cfg.PageSize(limit)))

	records, holder, err := c.getList(ctx, "/folders/"+url.PathEscape(folderID), q)
	if err != nil {
		return FolderPage{}, err
	}

	page := FolderPage{Folders: childFolders(holder), Next: holder.cursor()}
	for _, e := range toPriceEntries(records) {
		if e.IsFolder {
			if e.ID != "" {
				page.Folders = append(page.Folders, e.ID)
			}
			continue
		}
		page.Items = append(page.Items, e)
	}
	return page, nil
}

// ListCompanies returns all companies visible to the token.
func (c *Client) ListCompanies(ctx context.Context) ([]Company, error) {
	records, _, err := c.getList(ctx, "/companies", nil)
	if err != nil {
		return nil, err
	}
	out := make([]Company, 0, len(records))
	for _, r := range records {
		out = append(out, toCompany(r))
	}
	return out, nil
}

// ListWarehouses returns the warehouses of a company.
func (c *Client) ListWarehouses(ctx context.Context, companyID int64) ([]Warehouse, error) {
	records, _, err := c.getList(ctx, "/companies/"+strconv.FormatInt(companyID, 10)+"/warehouses", nil)
	if err != nil {
		return nil, err
	}
	out := make([]Warehouse, 0, len(records))
	for _, r := range records {
		out = append(out, toWarehouse(r))
	}
	return out, nil
}

// StockBalances returns balances for the given price lists, warehouses and companies.
func (c *Client) StockBalances(ctx context.Context, query StockQuery) ([]StockEntry, error) {
	body, err := c.do(ctx, http.MethodPost, "/stock/balances", nil, query)
	if err != nil {
		return nil, err
	}
	records, _, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}

	out := make([]StockEntry, 0, len(records))
	for _, r := range records {
		if e := toStockEntry(r); e.ProductID != "" {
			out = append(out, e)
		}
	}
	return out, nil
}

// SearchByCode looks up a single item by code within a price list.
// It fails with ErrNotFound when no returned item carries the code.
func (c *Client) SearchByCode(ctx context.Context, code, priceListID string) (*SearchResult, error) {
	q := url.Values{}
	q.Set("code", code)
	if priceListID != "" {
		q.Set("priceListId", priceListID)
	}

	records, _, err := c.getList(ctx, "/nomenclature/search", q)
	if err != nil {
		return nil, err
	}

	want := strings.ToUpper(strings.TrimSpace(code))
	for _, r := range records {
		e := toPriceEntry(r)
		if e.IsFolder || strings.ToUpper(e.Code) != want {
			continue
		}
		res := &SearchResult{Entry: e}
		if qty, ok := r.amount("balance", "stock", "quantity"); ok {
			res.Stock, res.HasStock = qty, true
		}
		return res, nil
	}
	return nil, fmt.Errorf("%w: no item with code %q", ErrNotFound, code)
}

func (c *Client) nomenclaturePage(ctx context.Context, path string, q url.Values) (NomenclaturePage, error) {
	records, holder, err := c.getList(ctx, path, q)
	if err != nil {
		return NomenclaturePage{}, err
	}
	return NomenclaturePage{
		Items: toPriceEntries(records),
		Next:  holder.cursor(),
		Total: holder.total(len(records)),
	}, nil
}

func (c *Client) getList(ctx context.Context, path string, q url.Values) ([]record, record, error) {
	body, err := c.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return nil, nil, err
	}
	return decodeEnvelope(body)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, payload any) ([]byte, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("ers: failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("ers: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrTransient, err)
	}

	c.logger.Debug("ERS request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	switch {
	case resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrConfiguration, resp.StatusCode, path)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrTransient, resp.StatusCode, path)
	default:
		return nil, fmt.Errorf("%w: HTTP %d from %s: %s", ErrRejected, resp.StatusCode, path, snippet(body))
	}
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
