package record

import (
	"os"
	"strings"
)

// Delim separates fields within a record.
const Delim = ":"

// Record is one line of an account database.
type Record []string

// Key returns field 0, or "" for an empty record.
func (r Record) Key() string {
	if len(r) == 0 {
		return ""
	}
	return r[0]
}

// Clone returns a copy that shares no backing array with r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	copy(out, r)
	return out
}

func (r Record) String() string {
	return strings.Join(r, Delim)
}

// Set is an ordered list of records loaded from one schema file.
type Set []Record

// Keys returns the set of non-empty keys.
func (s Set) Keys() map[string]struct{} {
	keys := make(map[string]struct{}, len(s))
	for _, r := range s {
		if k := r.Key(); k != "" {
			keys[k] = struct{}{}
		}
	}
	return keys
}

// Find returns the first record with the given key.
func (s Set) Find(key string) (Record, bool) {
	for _, r := range s {
		if r.Key() == key {
			return r, true
		}
	}
	return nil, false
}

// Schema describes one of the parallel account databases.
type Schema struct {
	Name   string
	Fields int
	Perm   os.FileMode
}

var (
	Passwd  = Schema{Name: "passwd", Fields: 7, Perm: 0o644}
	Group   = Schema{Name: "group", Fields: 4, Perm: 0o644}
	Shadow  = Schema{Name: "shadow", Fields: 9, Perm: 0o640}
	GShadow = Schema{Name: "gshadow", Fields: 4, Perm: 0o640}
)

// Schemas lists the account databases in the order they are processed.
var Schemas = []Schema{Passwd, Group, Shadow, GShadow}

// LookupSchema finds a schema by file name.
func LookupSchema(name string) (Schema, bool) {
	for _, s := range Schemas {
		if s.Name == name {
			return s, true
		}
	}
	return Schema{}, false
}

// FieldCountMismatches returns the keyed records whose field count differs
// from the schema. Nothing is rejected on that basis; callers only report it.
func (s Set) FieldCountMismatches(schema Schema) []Record {
	var out []Record
	for _, r := range s {
		if r.Key() != "" && len(r) != schema.Fields {
			out = append(out, r)
		}
	}
	return out
}
