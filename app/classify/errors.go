package classify

import "fmt"

// InsufficientTaxonomyError means discovery produced fewer than the
// minimum number of usable categories after cleaning; proceeding with a
// degenerate taxonomy would poison every later assignment.
type InsufficientTaxonomyError struct {
	Got int
}

func (e *InsufficientTaxonomyError) Error() string {
	return fmt.Sprintf("claude returned too few categories (%d); expected %d-%d", e.Got, MinCategories, MaxCategories)
}
