package domain

// Reserved category names. These are never selected by keyword scoring: the
// first two are assigned directly by transfer operations, the last one is the
// no-match fallback.
const (
	CategorySavings   = "Poupança"
	CategoryEmergency = "Emergência"
	CategoryFallback  = "Outros"
)

// Category groups transactions and carries the ordered keyword list used by
// the classifier.
type Category struct {
	ID       int64
	Name     string
	Emoji    string
	Keywords []string
}

// Reserved reports whether the category must be skipped by keyword scoring.
func (c *Category) Reserved() bool {
	switch c.Name {
	case CategorySavings, CategoryEmergency, CategoryFallback:
		return true
	}
	return false
}
