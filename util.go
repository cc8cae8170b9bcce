package relay

import (
	"encoding/json"

	"github.com/valyala/fastjson"
)

// truthy reports whether a parsed JSON value counts as "present" for the
// fallback rules: absent, null, false, numeric zero, and the empty string all
// fall through to the default. Objects and arrays are always truthy. This is
// loose truthiness on purpose; a value can be present in the input and still
// not count.
func truthy(v *fastjson.Value) bool {
	if v == nil {
		return false
	}
	switch v.Type() {
	case fastjson.TypeNull, fastjson.TypeFalse:
		return false
	case fastjson.TypeString:
		sb, _ := v.StringBytes()
		return len(sb) > 0
	case fastjson.TypeNumber:
		f, _ := v.Float64()
		return f != 0
	default:
		return true
	}
}

// decodeValue copies a parsed JSON value out of the parser's buffer into a
// plain Go value. Scalars become string/float64/bool/nil; arrays and objects
// are kept as raw JSON so they re-serialize byte-for-byte.
func decodeValue(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeString:
		sb, _ := v.StringBytes()
		return string(sb)
	case fastjson.TypeNumber:
		f, _ := v.Float64()
		return f
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	case fastjson.TypeNull:
		return nil
	default:
		return json.RawMessage(v.MarshalTo(nil))
	}
}
