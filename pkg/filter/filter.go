package filter

import (
	"sort"

	"github.com/papercomputeco/reportkit/pkg/record"
)

// Spec maps a metric ID to the single predicate applied to it.
type Spec map[string]Predicate

// Clone returns an independent copy of the spec.
func (s Spec) Clone() Spec {
	out := make(Spec, len(s))
	for k, p := range s {
		out[k] = p
	}
	return out
}

// Keys returns the filtered metric IDs in sorted order.
func (s Spec) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Apply returns the records that satisfy every predicate in spec. A record
// that lacks a filtered key entirely skips that predicate. An empty spec
// returns records unchanged.
func Apply(records record.Dataset, spec Spec) record.Dataset {
	if len(spec) == 0 {
		return records
	}

	out := make(record.Dataset, 0, len(records))
	for _, r := range records {
		if keep(r, spec) {
			out = append(out, r)
		}
	}
	return out
}

func keep(r record.Record, spec Spec) bool {
	for id, p := range spec {
		v, ok := r.Get(id)
		if !ok {
			continue
		}
		if !p.Match(v) {
			return false
		}
	}
	return true
}
