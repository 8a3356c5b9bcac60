package warehouse

import (
	"context"
	"sync"
	"testing"
	"time"

	"catalog-sync/feature/ers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) ListCompanies(ctx context.Context) ([]ers.Company, error) {
	args := m.Called(ctx)
	companies, _ := args.Get(0).([]ers.Company)
	return companies, args.Error(1)
}

func (m *mockAPI) ListWarehouses(ctx context.Context, companyID int64) ([]ers.Warehouse, error) {
	args := m.Called(ctx, companyID)
	warehouses, _ := args.Get(0).([]ers.Warehouse)
	return warehouses, args.Error(1)
}

var testWarehouses = []ers.Warehouse{
	{ID: 11, Name: "Central", UUID: "aaaa-1111", Address: "Lenina 1"},
	{ID: 12, Name: "Showroom Tverskaya", UUID: "bbbb-2222", Address: "Tverskaya 5"},
	{ID: 13, Name: "central ", UUID: "cccc-3333", Address: "Lenina 1, back yard"},
}

func newAPI(companies []ers.Company, warehouses []ers.Warehouse) *mockAPI {
	api := new(mockAPI)
	api.On("ListCompanies", mock.Anything).Return(companies, nil)
	for _, c := range companies {
		api.On("ListWarehouses", mock.Anything, c.ID).Return(warehouses, nil)
	}
	return api
}

func TestResolve_Chain(t *testing.T) {
	companies := []ers.Company{{ID: 1, Name: "Main LLC"}}

	tests := []struct {
		name    string
		hints   Hints
		aliases []string
		wantID  int64
		method  string
		warns   int
	}{
		{"Name exact", Hints{WarehouseName: "showroom tverskaya"}, nil, 12, MethodName, 0},
		{"Name tokens over address", Hints{WarehouseName: "tverskaya 5"}, nil, 12, MethodName, 0},
		{"Numeric id", Hints{WarehouseID: "12"}, nil, 12, MethodID, 0},
		{"UUID", Hints{WarehouseID: "BBBB-2222"}, nil, 12, MethodID, 0},
		{"Name miss falls to id", Hints{WarehouseName: "nowhere", WarehouseID: "13"}, nil, 13, MethodID, 1},
		{"Alias", Hints{}, []string{"Showroom"}, 12, MethodAlias, 0},
		{"Fallback", Hints{}, nil, 11, MethodFallback, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(newAPI(companies, testWarehouses), tt.aliases, 0, zap.NewNop())
			res, err := r.Resolve(context.Background(), tt.hints)
			require.NoError(t, err)

			assert.Equal(t, tt.wantID, res.Warehouse.ID)
			assert.Equal(t, tt.method, res.Method)
			assert.Len(t, res.Warnings, tt.warns)
			assert.Equal(t, int64(1), res.CompanyID)
		})
	}
}

func TestResolve_TwoWarehousesNoHints(t *testing.T) {
	warehouses := []ers.Warehouse{{ID: 21, Name: "Store A"}, {ID: 22, Name: "Store B"}}
	r := NewResolver(newAPI([]ers.Company{{ID: 2, Name: "Solo"}}, warehouses), nil, 0, nil)

	res, err := r.Resolve(context.Background(), Hints{})
	require.NoError(t, err)

	assert.Equal(t, int64(21), res.Warehouse.ID)
	assert.Equal(t, []int64{21}, res.WarehouseIDs)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], MethodFallback)
}

func TestResolve_SameNameWarehouses(t *testing.T) {
	r := NewResolver(newAPI([]ers.Company{{ID: 1, Name: "Main"}}, testWarehouses), nil, 0, nil)

	res, err := r.Resolve(context.Background(), Hints{WarehouseID: "11"})
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 13}, res.WarehouseIDs)
}

func TestResolve_Company(t *testing.T) {
	companies := []ers.Company{{ID: 1, Name: "Alpha"}, {ID: 2, Name: "Beta Trade"}}

	t.Run("Hint by name", func(t *testing.T) {
		r := NewResolver(newAPI(companies, testWarehouses), nil, 0, nil)
		res, err := r.Resolve(context.Background(), Hints{Company: "beta", WarehouseID: "11"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), res.CompanyID)
		assert.Empty(t, res.Warnings)
	})

	t.Run("Hint by id", func(t *testing.T) {
		r := NewResolver(newAPI(companies, testWarehouses), nil, 0, nil)
		res, err := r.Resolve(context.Background(), Hints{Company: "2", WarehouseID: "11"})
		require.NoError(t, err)
		assert.Equal(t, "Beta Trade", res.CompanyName)
	})

	t.Run("Several companies without hint", func(t *testing.T) {
		r := NewResolver(newAPI(companies, testWarehouses), nil, 0, nil)
		res, err := r.Resolve(context.Background(), Hints{WarehouseID: "11"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.CompanyID)
		assert.Len(t, res.Warnings, 1)
	})
}

func TestResolve_Errors(t *testing.T) {
	t.Run("No companies", func(t *testing.T) {
		r := NewResolver(newAPI(nil, nil), nil, 0, nil)
		_, err := r.Resolve(context.Background(), Hints{})
		assert.ErrorIs(t, err, ErrNoCompanies)
	})

	t.Run("No warehouses", func(t *testing.T) {
		r := NewResolver(newAPI([]ers.Company{{ID: 1, Name: "Empty"}}, nil), nil, 0, nil)
		_, err := r.Resolve(context.Background(), Hints{})
		assert.ErrorIs(t, err, ErrNoWarehouses)
	})

	t.Run("Transient error", func(t *testing.T) {
		api := new(mockAPI)
		api.On("ListCompanies", mock.Anything).Return(nil, ers.ErrTransient)
		r := NewResolver(api, nil, 0, nil)
		_, err := r.Resolve(context.Background(), Hints{})
		assert.ErrorIs(t, err, ers.ErrTransient)
	})
}

func TestResolve_CachesListings(t *testing.T) {
	api := newAPI([]ers.Company{{ID: 1, Name: "Main"}}, testWarehouses)
	r := NewResolver(api, nil, time.Minute, nil)

	for i := 0; i < 3; i++ {
		_, err := r.Resolve(context.Background(), Hints{WarehouseID: "12"})
		require.NoError(t, err)
	}
	api.AssertNumberOfCalls(t, "ListCompanies", 1)
	api.AssertNumberOfCalls(t, "ListWarehouses", 1)

	r.Cache().Invalidate()
	_, err := r.Resolve(context.Background(), Hints{})
	require.NoError(t, err)
	api.AssertNumberOfCalls(t, "ListCompanies", 2)
}

func TestCache_Expiry(t *testing.T) {
	c := NewCache(time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	loads := 0
	load := func(context.Context) (any, error) {
		loads++
		return loads, nil
	}

	v, _ := c.GetOrLoad(context.Background(), "k", load)
	assert.Equal(t, 1, v)
	v, _ = c.GetOrLoad(context.Background(), "k", load)
	assert.Equal(t, 1, v)

	now = now.Add(2 * time.Minute)
	v, _ = c.GetOrLoad(context.Background(), "k", load)
	assert.Equal(t, 2, v)
}

func TestCache_CollapsesConcurrentLoads(t *testing.T) {
	c := NewCache(time.Minute)
	release := make(chan struct{})

	var mu sync.Mutex
	loads := 0
	load := func(context.Context) (any, error) {
		mu.Lock()
		loads++
		mu.Unlock()
		<-release
		return "v", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrLoad(context.Background(), "k", load)
			assert.NoError(t, err)
			assert.Equal(t, "v", v)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, loads, 2)
}
