// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase. This follows the Go convention of a
// shared test utility package (like net/http/httptest).
package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	"crash-dash/internal/domain"
)

// CrashQuery is the query text reported by MockDataSource by default.
const CrashQuery = "SELECT *\nFROM `test.crash.crash`\nLIMIT 1000"

// === DataSource Mock ===

// MockDataSource implements domain.DataSource for testing.
type MockDataSource struct {
	FetchFn   func(ctx context.Context) (*domain.Table, error)
	QueryText string

	calls atomic.Int64
}

// Fetch implements the interface method for testing.
func (m *MockDataSource) Fetch(ctx context.Context) (*domain.Table, error) {
	m.calls.Add(1)
	if m.FetchFn != nil {
		return m.FetchFn(ctx)
	}
	panic("unexpected call to MockDataSource.Fetch")
}

// Query implements the interface method for testing.
func (m *MockDataSource) Query() string {
	if m.QueryText == "" {
		return CrashQuery
	}
	return m.QueryText
}

// Calls returns how many times Fetch was invoked.
func (m *MockDataSource) Calls() int {
	return int(m.calls.Load())
}

// StaticSource returns a MockDataSource that always yields table.
func StaticSource(table *domain.Table) *MockDataSource {
	return &MockDataSource{FetchFn: func(context.Context) (*domain.Table, error) { return table, nil }}
}

// FailingSource returns a MockDataSource that always fails with err.
func FailingSource(err error) *MockDataSource {
	return &MockDataSource{FetchFn: func(context.Context) (*domain.Table, error) { return nil, err }}
}

// === TableProvider Mock ===

// MockTableProvider implements domain.TableProvider for testing.
type MockTableProvider struct {
	mu        sync.Mutex
	Table     *domain.Table
	Err       error
	RefreshFn func(ctx context.Context) (*domain.Table, error)
	Refreshes int
}

// Get implements the interface method for testing.
func (m *MockTableProvider) Get(_ context.Context) (*domain.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Table == nil {
		return domain.EmptyTable(), m.Err
	}
	return m.Table, m.Err
}

// Refresh implements the interface method for testing.
func (m *MockTableProvider) Refresh(ctx context.Context) (*domain.Table, error) {
	m.mu.Lock()
	m.Refreshes++
	fn := m.RefreshFn
	m.mu.Unlock()
	if fn != nil {
		t, err := fn(ctx)
		m.mu.Lock()
		m.Table, m.Err = t, err
		m.mu.Unlock()
	}
	return m.Get(ctx)
}

// === Fixtures ===

// CrashTable returns a small crash table with the dashboard's filter columns.
//
//	AGERANGE: 0-18, 0-18, 19-30, null, 31-45
//	DAYNUMBER: 1, 2, 2, 3, 1
func CrashTable() *domain.Table {
	return domain.NewTable(
		[]string{"CRASHID", domain.ColumnAgeRange, domain.ColumnDayNumber},
		[][]domain.Value{
			{"c-1", "0-18", int64(1)},
			{"c-2", "0-18", int64(2)},
			{"c-3", "19-30", int64(2)},
			{"c-4", nil, int64(3)},
			{"c-5", "31-45", int64(1)},
		},
	)
}
