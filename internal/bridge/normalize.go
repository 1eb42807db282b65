package bridge

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// NormalizeID maps any request or response id onto its canonical string
// form: numeric ids get their decimal representation, so a request
// registered with id 42 resolves on an inbound id of "42" and vice versa.
// Both the correlation table and persisted agent state key on this form.
func NormalizeID(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return normalizeFloat(float64(v))
	case float64:
		// encoding/json decodes every JSON number to float64; integral
		// values must not pick up a trailing ".0".
		return normalizeFloat(v)
	default:
		return fmt.Sprint(v)
	}
}

func normalizeFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
