// Package aggregates defines the write boundaries of the milestone engine.
//
// Contracts here carry no persistence details. Each write method is one atomic
// unit in which the ledger invariants hold.
package aggregates
