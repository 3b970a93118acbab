package aggregates

import "slices"

// Contract names an aggregate and the tables it alone writes. Every write to
// an owned table runs inside one of the aggregate's own transactions.
type Contract struct {
	Name       string
	Tables     []string
	Invariants []string
}

// Aggregate is implemented by every write boundary.
type Aggregate interface {
	Contract() Contract
}

// Op labels one aggregate method in errors, logs and metrics.
func (c Contract) Op(method string) string {
	return c.Name + "." + method
}

// Owns reports whether table is written only through this aggregate.
func (c Contract) Owns(table string) bool {
	return slices.Contains(c.Tables, table)
}
