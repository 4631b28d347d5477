// Package record reads and writes colon-delimited account databases
// (passwd, group, shadow, gshadow).
//
// A record is kept as its ordered list of fields. Only field 0, the key, has
// meaning to this package; every other field is carried through untouched,
// so a file written back holds exactly the fields that were read.
package record
