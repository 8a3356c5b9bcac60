package fetch

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"catalog-sync/feature/ers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// folderTree serves a two-level folder tree: the root lists n children, each child
// one item. Folder calls numbered up to failures fail.
type folderTree struct {
	n        int
	failures int
	calls    int
}

func (f *folderTree) NomenclatureByPosition(context.Context, string, int, int) (ers.NomenclaturePage, error) {
	return ers.NomenclaturePage{}, nil
}

func (f *folderTree) NomenclatureByRoot(context.Context, string, int, int) (ers.NomenclaturePage, error) {
	return ers.NomenclaturePage{}, nil
}

func (f *folderTree) NomenclatureByPriceList(context.Context, string, string, int) (ers.NomenclaturePage, error) {
	return ers.NomenclaturePage{}, nil
}

func (f *folderTree) Folder(_ context.Context, id, _ string, _ int) (ers.FolderPage, error) {
	f.calls++
	if f.calls <= f.failures {
		return ers.FolderPage{}, fmt.Errorf("%w: flaky", ers.ErrTransient)
	}
	if id != "root" {
		return ers.FolderPage{Items: []ers.PriceEntry{{ID: "p-" + id}}, Folders: []string{"root"}}, nil
	}
	page := ers.FolderPage{}
	for i := 0; i < f.n; i++ {
		page.Folders = append(page.Folders, fmt.Sprintf("f%d", i))
	}
	return page, nil
}

func TestFolderWalk_SharesVisitedAcrossPages(t *testing.T) {
	api := &folderTree{n: 50}
	s := &FolderWalk{API: api}
	cur := Cursor{Source: Source{CatalogRootID: "root", PageSize: 10}}

	var visited map[string]struct{}
	items := 0
	for pages := 0; ; pages++ {
		require.Less(t, pages, 100)
		page, err := s.NextPage(context.Background(), cur)
		require.NoError(t, err)
		items += len(page.Items)

		state := page.Next.State.(*walkState)
		if visited == nil {
			visited = state.visited
		}
		assert.Equal(t, reflect.ValueOf(visited).Pointer(), reflect.ValueOf(state.visited).Pointer())
		if page.Done {
			break
		}
		cur = page.Next
	}

	assert.Equal(t, 50, items)
	assert.Len(t, visited, 51)
}

func TestFolderWalk_RetryAfterFailureSeesSameState(t *testing.T) {
	api := &folderTree{n: 3}
	s := &FolderWalk{API: api}
	start := Cursor{Source: Source{CatalogRootID: "root", PageSize: 10}}

	first, err := s.NextPage(context.Background(), start)
	require.NoError(t, err)
	queue := append([]string(nil), first.Next.State.(*walkState).queue...)

	api.failures = api.calls + 1
	_, err = s.NextPage(context.Background(), first.Next)
	require.True(t, errors.Is(err, ers.ErrTransient))
	assert.Equal(t, queue, first.Next.State.(*walkState).queue)

	second, err := s.NextPage(context.Background(), first.Next)
	require.NoError(t, err)
	assert.Equal(t, []ers.PriceEntry{{ID: "p-f0"}}, second.Items)
	assert.Equal(t, []string{"f2"}, second.Next.State.(*walkState).queue)
}
