package relay

import (
	"bytes"
	"encoding/json"
)

// Record is a GELF message under construction: a string-keyed mapping that
// remembers insertion order. Order matters because the conversion steps run in
// a fixed precedence (seeded fields, embedded-message expansion, residual
// pass-through) and a later step may overwrite an earlier key; keeping the
// original position reproduces ordinary mapping-assignment semantics.
//
// Reference layout, from the GELF 1.1 spec:
//
//	{
//	 "version": "1.1",
//	 "host": "example.org",
//	 "short_message": "A short message that helps you identify what is going on",
//	 "full_message": "Backtrace here\n\nmore stuff",
//	 "timestamp": 1385053862.3072,
//	 "level": 1,
//	 "_user_id": 9001,
//	 "_some_info": "foo"
//	}
type Record struct {
	keys   []string
	fields map[string]any
}

func NewRecord() *Record {
	return &Record{
		fields: make(map[string]any),
	}
}

// Set assigns a field. Overwriting an existing key keeps its original
// position; new keys append.
func (r *Record) Set(key string, value any) {
	if _, exists := r.fields[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = value
}

func (r *Record) Get(key string) (any, bool) {
	v, ok := r.fields[key]
	return v, ok
}

func (r *Record) Has(key string) bool {
	_, ok := r.fields[key]
	return ok
}

func (r *Record) Len() int {
	return len(r.keys)
}

// Keys returns the field names in insertion order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// MarshalJSON emits the fields in insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.fields[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
