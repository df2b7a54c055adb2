package leandb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	MaxLimit     = 100
	DefaultLimit = 20
)

// IsNormalizedLimitMax clamps a user-supplied limit into [1, maxLimit] and
// reports whether it was already inside. The engine itself never clamps; this
// is for request boundaries.
func IsNormalizedLimitMax(limit int, maxLimit int) (int, bool) {
	if limit <= 0 {
		return DefaultLimit, false
	} else if limit > maxLimit {
		return maxLimit, false
	}

	return limit, true
}

func NormalizeLimitMax(limit int, maxLimit int) int {
	ret, _ := IsNormalizedLimitMax(limit, maxLimit)
	return ret
}

func NormalizeLimit(limit int) int {
	return NormalizeLimitMax(limit, MaxLimit)
}

// ParseLimit coerces a page size given as a number or a numeric string.
// Zero and negative values are returned as is.
func ParseLimit(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		if v > math.MaxInt || v < math.MinInt {
			return 0, contractViolation("limit '%d' is out of range", v)
		}

		return int(v), nil
	case uint:
		return parseUintLimit(uint64(v))
	case uint8:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint32:
		return parseUintLimit(uint64(v))
	case uint64:
		return parseUintLimit(v)
	case float32:
		return parseFloatLimit(float64(v))
	case float64:
		return parseFloatLimit(v)
	case json.Number:
		return parseStringLimit(v.String())
	case string:
		return parseStringLimit(v)
	default:
		return 0, contractViolation("limit of type %T is not numeric", value)
	}
}

func parseStringLimit(s string) (int, error) {
	s = strings.TrimSpace(s)

	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, contractViolation("limit '%s' is not numeric", s)
	}

	return parseFloatLimit(f)
}

func parseFloatLimit(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, contractViolation("limit '%v' is not an integer", f)
	}

	// float64(math.MaxInt) rounds up to 2^63, which is already out of range.
	if f >= float64(math.MaxInt) || f < float64(math.MinInt) {
		return 0, contractViolation("limit '%v' is out of range", f)
	}

	return int(f), nil
}

func parseUintLimit(v uint64) (int, error) {
	if v > math.MaxInt {
		return 0, contractViolation("limit '%d' is out of range", v)
	}

	return int(v), nil
}

// Limit is a page size that decodes from a JSON number or a numeric string.
type Limit int

func (l Limit) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(l))), nil
}

func (l *Limit) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*l = DefaultLimit
		return nil
	}

	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("failed to unmarshal limit: %w", err)
	}

	n, err := ParseLimit(raw)
	if err != nil {
		return err
	}

	*l = Limit(n)

	return nil
}
