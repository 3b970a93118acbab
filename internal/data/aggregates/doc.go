// Package aggregates implements the milestone engine's transactional write
// boundaries on top of the table repos.
package aggregates
