// Package importer provisions accounts from a bulk list of usernames and
// passwords.
//
// An import runs in two phases. Planning parses and validates the whole
// source and renders a preview; it has no side effects, and any invalid row
// rejects the entire batch. Execution provisions an approved batch one row at
// a time in source order; a failing row is recorded and the rest continue.
//
// Source rows are space separated with '|' as the quote character. The first
// segment of a row is "username[,password]"; later segments are ignored.
package importer
