package record

import (
	"bytes"
	"encoding/json"
)

// IDKey is the synthetic identifier field every record starts with.
const IDKey = "id"

// Field is one key/value cell of a Record.
type Field struct {
	Key   string
	Value Value
}

// F is shorthand for building a Field.
func F(key string, v Value) Field {
	return Field{Key: key, Value: v}
}

// Record is an immutable, ordered set of fields. The first field is always
// the synthetic id. A key that is absent is different from a key holding
// Null.
type Record struct {
	fields []Field
}

// New builds a record with the given id followed by fields in order. A
// later field with a duplicate key replaces the earlier one in place.
func New(id string, fields ...Field) Record {
	out := make([]Field, 0, len(fields)+1)
	out = append(out, F(IDKey, String(id)))
	for _, f := range fields {
		if f.Key == IDKey {
			continue
		}
		replaced := false
		for i := range out {
			if out[i].Key == f.Key {
				out[i] = f
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, f)
		}
	}
	return Record{fields: out}
}

// ID returns the synthetic identifier.
func (r Record) ID() string {
	if len(r.fields) == 0 {
		return ""
	}
	return r.fields[0].Value.Raw()
}

// Get returns the value stored under key and whether the key is present.
func (r Record) Get(key string) (Value, bool) {
	for _, f := range r.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Has reports whether key is present, null or not.
func (r Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Keys returns the field keys in order.
func (r Record) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Key
	}
	return keys
}

// Fields returns a copy of the record's fields.
func (r Record) Fields() []Field {
	return append([]Field(nil), r.fields...)
}

func (r Record) Len() int { return len(r.fields) }

// MarshalJSON encodes the record as an object with keys in field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		val, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Dataset is an ordered sequence of records in generation order.
type Dataset []Record

// Clone returns a shallow copy of the slice. Records are immutable so
// sharing them is safe.
func (d Dataset) Clone() Dataset {
	if d == nil {
		return nil
	}
	return append(Dataset(nil), d...)
}
