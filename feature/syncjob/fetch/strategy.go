package fetch

import (
	"context"

	"catalog-sync/feature/ers"
)

// API is the part of the ERS client the strategies page through.
type API interface {
	NomenclatureByPosition(ctx context.Context, salesPointID string, position, limit int) (ers.NomenclaturePage, error)
	NomenclatureByRoot(ctx context.Context, rootID string, page, pageSize int) (ers.NomenclaturePage, error)
	NomenclatureByPriceList(ctx context.Context, priceListID, cursor string, limit int) (ers.NomenclaturePage, error)
	Folder(ctx context.Context, folderID, cursor string, limit int) (ers.FolderPage, error)
}

// Source scopes a fetch. Strategies whose scope id is empty are not applicable.
type Source struct {
	SalesPointID  string
	CatalogRootID string
	PriceListID   string
	// PageSize is the requested page size. The client caps it.
	PageSize int
}

// Cursor is the position of a strategy inside its listing.
// The zero Cursor (with Source set) starts a listing.
type Cursor struct {
	Source Source
	// Page counts the pages fetched before this one.
	Page int
	// Offset is the numeric position for position-based listings.
	Offset int
	// Token is the opaque cursor returned by the previous page.
	Token string
	// State carries strategy-specific progress, e.g. the folder queue.
	State any
}

// Page is one page of a strategy. Next is only meaningful when Done is false.
type Page struct {
	Items []ers.PriceEntry
	Next  Cursor
	Done  bool
}

// Strategy is one pagination shape of the ERS nomenclature listing.
type Strategy interface {
	Name() string
	Applicable(src Source) bool
	NextPage(ctx context.Context, cur Cursor) (Page, error)
}

// Strategy names.
const (
	StrategySalesPoint  = "sales-point-cursor"
	StrategyCatalogRoot = "catalog-root-pages"
	StrategyPriceList   = "price-list-cursor"
	StrategyFolderWalk  = "folder-walk"
)

// DefaultStrategies returns the shipped strategies in the order they are tried.
func DefaultStrategies(api API) []Strategy {
	return []Strategy{
		&SalesPointCursor{API: api},
		&CatalogRootPages{API: api},
		&PriceListCursor{API: api},
		&FolderWalk{API: api},
	}
}

// SalesPointCursor pages by numeric position within a sales point.
type SalesPointCursor struct {
	API API
}

func (s *SalesPointCursor) Name() string { return StrategySalesPoint }

func (s *SalesPointCursor) Applicable(src Source) bool { return src.SalesPointID != "" }

func (s *SalesPointCursor) NextPage(ctx context.Context, cur Cursor) (Page, error) {
	res, err := s.API.NomenclatureByPosition(ctx, cur.Source.SalesPointID, cur.Offset, cur.Source.PageSize)
	if err != nil {
		return Page{}, err
	}

	next := cur
	next.Page++
	next.Offset += len(res.Items)

	done := len(res.Items) == 0 || (res.Total >= 0 && next.Offset >= res.Total)
	if res.Total < 0 && cur.Source.PageSize > 0 && len(res.Items) < cur.Source.PageSize {
		done = true
	}
	return Page{Items: res.Items, Next: next, Done: done}, nil
}

// CatalogRootPages pages by 1-based page number under the catalog root folder.
type CatalogRootPages struct {
	API API
}

func (s *CatalogRootPages) Name() string { return StrategyCatalogRoot }

func (s *CatalogRootPages) Applicable(src Source) bool { return src.CatalogRootID != "" }

func (s *CatalogRootPages) NextPage(ctx context.Context, cur Cursor) (Page, error) {
	size := cur.Source.PageSize
	res, err := s.API.NomenclatureByRoot(ctx, cur.Source.CatalogRootID, cur.Page+1, size)
	if err != nil {
		return Page{}, err
	}

	next := cur
	next.Page++
	done := len(res.Items) == 0 || (size > 0 && len(res.Items) < size)
	if res.Total >= 0 && next.Page*size >= res.Total {
		done = true
	}
	return Page{Items: res.Items, Next: next, Done: done}, nil
}

// PriceListCursor pages through a price list with the opaque cursor the ERS returns.
type PriceListCursor struct {
	API API
}

func (s *PriceListCursor) Name() string { return StrategyPriceList }

func (s *PriceListCursor) Applicable(src Source) bool { return src.PriceListID != "" }

func (s *PriceListCursor) NextPage(ctx context.Context, cur Cursor) (Page, error) {
	res, err := s.API.NomenclatureByPriceList(ctx, cur.Source.PriceListID, cur.Token, cur.Source.PageSize)
	if err != nil {
		return Page{}, err
	}

	next := cur
	next.Page++
	next.Token = res.Next
	// A cursor that does not move would loop forever.
	done := len(res.Items) == 0 || res.Next == "" || res.Next == cur.Token
	return Page{Items: res.Items, Next: next, Done: done}, nil
}

// FolderWalk traverses the folder tree from the catalog root breadth first.
// Every folder is listed at most once.
type FolderWalk struct {
	API API
}

type walkState struct {
	current string
	queue   []string
	visited map[string]struct{}
}

func (s *FolderWalk) Name() string { return StrategyFolderWalk }

func (s *FolderWalk) Applicable(src Source) bool { return src.CatalogRootID != "" }

func (s *FolderWalk) NextPage(ctx context.Context, cur Cursor) (Page, error) {
	state, _ := cur.State.(*walkState)
	if state == nil {
		root := cur.Source.CatalogRootID
		state = &walkState{current: root, visited: map[string]struct{}{root: {}}}
	}

	res, err := s.API.Folder(ctx, state.current, cur.Token, cur.Source.PageSize)
	if err != nil {
		return Page{}, err
	}

	// The queue is copied per page. visited is shared and only grows after a
	// successful call, so retrying a failed call on the same cursor sees the same set.
	nextState := &walkState{
		current: state.current,
		queue:   append([]string(nil), state.queue...),
		visited: state.visited,
	}
	for _, id := range res.Folders {
		if _, seen := nextState.visited[id]; seen {
			continue
		}
		nextState.visited[id] = struct{}{}
		nextState.queue = append(nextState.queue, id)
	}

	next := cur
	next.Page++
	next.State = nextState
	if res.Next != "" && res.Next != cur.Token && len(res.Items) > 0 {
		next.Token = res.Next
		return Page{Items: res.Items, Next: next}, nil
	}

	if len(nextState.queue) == 0 {
		return Page{Items: res.Items, Next: next, Done: true}, nil
	}
	nextState.current, nextState.queue = nextState.queue[0], nextState.queue[1:]
	next.Token = ""
	return Page{Items: res.Items, Next: next}, nil
}
