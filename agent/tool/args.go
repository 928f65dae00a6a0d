package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Args are the decoded JSON arguments of one tool call.
type Args map[string]any

// ParseArgs decodes the model's argument string. An empty string means no args.
func ParseArgs(raw string) (Args, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Args{}, nil
	}
	var out Args
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode tool arguments: %w", err)
	}
	if out == nil {
		out = Args{}
	}
	return out, nil
}

// String returns the trimmed value of key. Numbers are formatted without a
// fraction so a room number sent as 101 reads as "101".
func (a Args) String(key string) string {
	switch v := a[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<63 {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Int reads a positive id such as a ticket number. ok is false when the value
// is absent or zero; err is set when it is present but not a whole number
// or negative.
func (a Args) Int(key string) (n int64, ok bool, err error) {
	s := strings.TrimPrefix(a.String(key), "#")
	if s == "" {
		return 0, false, nil
	}
	n, err = strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be a whole number, got %q", key, s)
	}
	if n < 0 {
		return 0, false, fmt.Errorf("%s must not be negative, got %d", key, n)
	}
	if n == 0 {
		return 0, false, nil
	}
	return n, true, nil
}
