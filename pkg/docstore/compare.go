package docstore

import (
	"strings"
	"time"
)

// Compare orders two field values the way Firestore does within a type:
// numbers numerically, strings lexically, times chronologically, false
// before true. Mixed or unknown types order by a fixed type rank.
func Compare(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ra {
	case rankNull:
		return 0
	case rankBool:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case rankNumber:
		af, bf := toFloat(a), toFloat(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	case rankTime:
		at, bt := toTime(a), toTime(b)
		return at.Compare(bt)
	case rankString:
		return strings.Compare(a.(string), b.(string))
	default:
		return 0
	}
}

// SameKind reports whether a and b belong to the same comparable type family.
// Range filters only match values of the operand's kind.
func SameKind(a, b any) bool {
	ra := rank(a)
	return ra != rankOther && ra == rank(b)
}

const (
	rankNull = iota
	rankBool
	rankNumber
	rankTime
	rankString
	rankOther
)

func rank(v any) int {
	switch t := v.(type) {
	case nil:
		return rankNull
	case bool:
		return rankBool
	case int, int32, int64, float32, float64:
		return rankNumber
	case time.Time:
		return rankTime
	case *time.Time:
		if t == nil {
			return rankNull
		}
		return rankTime
	case string:
		return rankString
	default:
		return rankOther
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		return *t
	}
	return time.Time{}
}
