package documents

import (
	"encoding/json"
	"time"
)

// ToMillis normalises a loosely typed timestamp value to epoch milliseconds.
// Accepted shapes: epoch millis as any numeric type, an RFC3339 or plain date
// string, a time.Time, or a store-native timestamp object carried as a map
// with a "seconds" field (plus optional "nanoseconds"). Unresolvable or falsy
// input normalises to 0, which keeps it out of any rolling window.
func ToMillis(value any) int64 {
	switch v := value.(type) {
	case nil:
		return 0
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return int64(f)
	case time.Time:
		if v.IsZero() {
			return 0
		}
		return v.UnixMilli()
	case string:
		return parseTimeString(v)
	case map[string]any:
		return timestampObjectMillis(v)
	default:
		return 0
	}
}

func parseTimeString(s string) int64 {
	if s == "" {
		return 0
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

func timestampObjectMillis(obj map[string]any) int64 {
	seconds, ok := obj["seconds"]
	if !ok {
		return 0
	}
	secs := numberValue(seconds)
	nanos := numberValue(obj["nanoseconds"])
	return int64(secs)*1000 + int64(nanos)/1e6
}
