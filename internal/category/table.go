package category

import (
	"sync"

	"github.com/devaqn/financeira-bot/internal/domain"
)

// Table is the shared in-memory category table. The processor reads it on
// every expense while the file watcher may swap it, so access is guarded.
type Table struct {
	mu         sync.RWMutex
	categories []domain.Category
}

// NewTable builds a table from the initial category list.
func NewTable(categories []domain.Category) *Table {
	t := &Table{}
	t.Replace(categories)
	return t
}

// Replace swaps the whole table, preserving the given declaration order.
func (t *Table) Replace(categories []domain.Category) {
	snapshot := make([]domain.Category, len(categories))
	copy(snapshot, categories)

	t.mu.Lock()
	t.categories = snapshot
	t.mu.Unlock()
}

// Snapshot returns the current table. Callers must not mutate the result.
func (t *Table) Snapshot() []domain.Category {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.categories
}

// ByName looks a category up by its exact name.
func (t *Table) ByName(name string) (domain.Category, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, cat := range t.categories {
		if cat.Name == name {
			return cat, true
		}
	}
	return domain.Category{}, false
}
