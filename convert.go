package relay

import (
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fastjson"
)

// DefaultHost identifies this relay in records whose input carried no usable
// host field. Fixed and non-empty.
const DefaultHost = "gl-json-to-gelf"

// handledFields are the input keys consumed by the fixed mapping steps; every
// other key takes the residual pass-through. Case-sensitive: lowercase
// "message" feeds short_message while capital "Message" is the embedded JSON
// payload, and both are real conventions in the feeds this relay was built
// for.
var handledFields = map[string]struct{}{
	"host":         {},
	"message":      {},
	"timestamp":    {},
	"level":        {},
	"full_message": {},
	"Message":      {},
}

// Convert reshapes an arbitrary parsed JSON object into a GELF record.
//
// defaultShortMessage is a configuration precondition, not a per-request
// value; an empty one is a ConfigError.
//
// The steps run in a fixed order so that key collisions resolve the same way
// every time: seeded GELF fields, then expansion of an embedded "Message" JSON
// string under the _msg_ prefix, then level/full_message, then every remaining
// input field underscore-prefixed. Later writes win, including a residual
// input field that happens to collide with a derived key. That quirk is kept
// deliberately for compatibility with existing producers.
func Convert(input *fastjson.Value, defaultShortMessage string) (*Record, error) {
	if defaultShortMessage == "" {
		return nil, &ConfigError{Setting: "DEFAULT_SHORT_MESSAGE"}
	}
	obj, err := input.Object()
	if err != nil {
		return nil, fmt.Errorf("input is not a JSON object: %w", err)
	}

	rec := NewRecord()
	rec.Set("version", "1.1")

	if v := input.Get("host"); truthy(v) {
		rec.Set("host", decodeValue(v))
	} else {
		rec.Set("host", DefaultHost)
	}

	if v := input.Get("message"); truthy(v) {
		rec.Set("short_message", decodeValue(v))
	} else {
		rec.Set("short_message", defaultShortMessage)
	}

	if v := input.Get("timestamp"); truthy(v) {
		rec.Set("timestamp", decodeValue(v))
	} else {
		rec.Set("timestamp", float64(time.Now().Unix()))
	}

	// A "Message" field that is present but not a string is ignored
	// entirely: no expansion, no raw fallback.
	if v := input.Get("Message"); v != nil && v.Type() == fastjson.TypeString {
		expandEmbedded(rec, v)
	}

	if v := input.Get("level"); truthy(v) {
		rec.Set("level", decodeValue(v))
	}
	if v := input.Get("full_message"); truthy(v) {
		rec.Set("full_message", decodeValue(v))
	}

	// Residual pass-through, in document order. GELF reserves bare names for
	// itself, so every custom field gets an underscore unless it already has
	// one.
	obj.Visit(func(key []byte, v *fastjson.Value) {
		k := string(key)
		if _, handled := handledFields[k]; handled {
			return
		}
		if !strings.HasPrefix(k, "_") {
			k = "_" + k
		}
		rec.Set(k, decodeValue(v))
	})

	return rec, nil
}

// expandEmbedded parses the embedded "Message" string as JSON and flattens an
// object result into the record under the _msg_ prefix. A string that is not
// valid JSON degrades to _raw_message plus the parser's error text; the record
// as a whole still goes through. Valid JSON that is not an object contributes
// nothing.
func expandEmbedded(rec *Record, v *fastjson.Value) {
	sb, _ := v.StringBytes()
	raw := string(sb)

	var p fastjson.Parser
	parsed, err := p.Parse(raw)
	if err != nil {
		rec.Set("_raw_message", raw)
		rec.Set("_message_parse_error", err.Error())
		return
	}
	if obj, err := parsed.Object(); err == nil {
		flatten(rec, obj, "_msg_")
	}
}

// flatten walks a JSON object depth first, dot-joining nested object keys onto
// the prefix, so {"a":{"b":1}} under _msg_ lands as _msg_a.b = 1. Nulls are
// omitted. Arrays are stored as-is under their computed key, never recursed
// into, even when they contain objects.
func flatten(rec *Record, obj *fastjson.Object, prefix string) {
	obj.Visit(func(key []byte, v *fastjson.Value) {
		switch v.Type() {
		case fastjson.TypeNull:
			// skip
		case fastjson.TypeObject:
			inner, _ := v.Object()
			flatten(rec, inner, prefix+string(key)+".")
		default:
			rec.Set(prefix+string(key), decodeValue(v))
		}
	})
}
