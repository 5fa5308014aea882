// Package rewrite implements the uniform query/mutation surface over a
// single section of a Module: select, insert, delete, update, each driven
// by a partial-match descriptor. Insert/Delete on the type, import,
// function and global sections drive internal/indexfix so cross-section
// invariants hold on return; the export, data and table-entry rewriters
// shift no index space and do not call it.
package rewrite

import "github.com/wasmrw/wasmrw/internal/wasm"

// matches reports whether desc (a partial record, any field may be the
// zero value meaning "match any") selects row.
type matches[D, R any] func(desc D, row R) bool

// apply overwrites only the fields present in item onto row, returning the
// updated row.
type apply[D, R any] func(item D, row R) R

// selectIndices returns the indices of every row matching desc.
func selectIndices[D, R any](rows []R, desc D, m matches[D, R]) []int {
	var out []int
	for i, row := range rows {
		if m(desc, row) {
			out = append(out, i)
		}
	}
	return out
}

// selectOne requires desc to match exactly one row and returns its index.
func selectOne[D, R any](rows []R, desc D, m matches[D, R]) (int, error) {
	idx := selectIndices(rows, desc, m)
	switch len(idx) {
	case 0:
		return 0, wasm.ErrNoMatch
	case 1:
		return idx[0], nil
	default:
		return 0, wasm.ErrAmbiguousSelector
	}
}

// insertAt resolves the insertion position for desc: appended at the tail
// if desc is the zero value (isZero reports that), otherwise at the single
// matching row.
func insertAt[D, R any](rows []R, desc D, isZero func(D) bool, m matches[D, R]) (int, error) {
	if isZero(desc) {
		return len(rows), nil
	}
	return selectOne(rows, desc, m)
}
