package attrsync

import (
	"fmt"
	"math"
	"slices"
)

// normalize checks v against the descriptor and returns the canonical stored
// form: bool, int, float64, string, [3]bool, [3]float64, [4]float64,
// map[string][2]int, map[string]any, or nil for cleared nullable slots.
// Numeric and slice forms produced by JSON or YAML decoding are coerced.
func (d Descriptor) normalize(v any) (any, error) {
	v = deref(v)
	if v == nil {
		if d.Nullable {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s does not accept nil", ErrInvalidValue, d.Name)
	}

	switch d.Kind {
	case KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case KindInt:
		if n, ok := toInt(v); ok {
			return n, nil
		}
	case KindFloat:
		if f, ok := toFloat(v); ok {
			return f, nil
		}
	case KindString:
		s, ok := v.(string)
		if !ok {
			break
		}
		if len(d.Enum) > 0 && !slices.Contains(d.Enum, s) {
			return nil, fmt.Errorf("%w: %s must be one of %v, got %q",
				ErrInvalidValue, d.Name, d.Enum, s)
		}
		return s, nil
	case KindBool3:
		bs, ok := toBoolSlice(v)
		if !ok {
			break
		}
		if len(bs) != 3 {
			return nil, fmt.Errorf("%w: %s expects 3 elements, got %d",
				ErrInvalidValue, d.Name, len(bs))
		}
		return [3]bool{bs[0], bs[1], bs[2]}, nil
	case KindFloat3:
		fs, ok := toFloatSlice(v)
		if !ok {
			break
		}
		if len(fs) != 3 {
			return nil, fmt.Errorf("%w: %s expects 3 elements, got %d",
				ErrInvalidValue, d.Name, len(fs))
		}
		return [3]float64{fs[0], fs[1], fs[2]}, nil
	case KindFloat4:
		fs, ok := toFloatSlice(v)
		if !ok {
			break
		}
		if len(fs) != 4 {
			return nil, fmt.Errorf("%w: %s expects 4 elements, got %d",
				ErrInvalidValue, d.Name, len(fs))
		}
		return [4]float64{fs[0], fs[1], fs[2], fs[3]}, nil
	case KindStateMap:
		if m, ok := toStateMap(v); ok {
			return m, nil
		}
	case KindAnyMap:
		if m, ok := v.(map[string]any); ok {
			out := make(map[string]any, len(m))
			for k, e := range m {
				out[k] = e
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s expects %s, got %T (%v)",
		ErrInvalidValue, d.Name, d.Kind, v, v)
}

// deref collapses the pointer forms callers use for nullable slots. A typed
// nil pointer becomes untyped nil.
func deref(v any) any {
	switch p := v.(type) {
	case *float64:
		if p == nil {
			return nil
		}
		return *p
	case *[3]float64:
		if p == nil {
			return nil
		}
		return *p
	case *[4]float64:
		if p == nil {
			return nil
		}
		return *p
	case map[string][2]int:
		if p == nil {
			return nil
		}
		return p
	case map[string]any:
		if p == nil {
			return nil
		}
		return p
	default:
		return v
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int(n), true
		}
	case float32:
		f := float64(n)
		if f == math.Trunc(f) && !math.IsInf(f, 0) {
			return int(f), true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	}
	return 0, false
}

func toFloatSlice(v any) ([]float64, bool) {
	switch t := v.(type) {
	case [3]float64:
		return t[:], true
	case [4]float64:
		return t[:], true
	case []float64:
		return t, true
	case []int:
		out := make([]float64, len(t))
		for i, n := range t {
			out[i] = float64(n)
		}
		return out, true
	case []any:
		out := make([]float64, 0, len(t))
		for _, e := range t {
			f, ok := toFloat(e)
			if !ok {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	}
	return nil, false
}

func toBoolSlice(v any) ([]bool, bool) {
	switch t := v.(type) {
	case [3]bool:
		return t[:], true
	case []bool:
		return t, true
	case []any:
		out := make([]bool, 0, len(t))
		for _, e := range t {
			b, ok := e.(bool)
			if !ok {
				return nil, false
			}
			out = append(out, b)
		}
		return out, true
	}
	return nil, false
}

func toStateMap(v any) (map[string][2]int, bool) {
	switch m := v.(type) {
	case map[string][2]int:
		out := make(map[string][2]int, len(m))
		for k, e := range m {
			out[k] = e
		}
		return out, true
	case map[string][]int:
		out := make(map[string][2]int, len(m))
		for k, e := range m {
			if len(e) != 2 {
				return nil, false
			}
			out[k] = [2]int{e[0], e[1]}
		}
		return out, true
	case map[string]any:
		out := make(map[string][2]int, len(m))
		for k, e := range m {
			pair, ok := toIntPair(e)
			if !ok {
				return nil, false
			}
			out[k] = pair
		}
		return out, true
	}
	return nil, false
}

func toIntPair(v any) ([2]int, bool) {
	switch e := v.(type) {
	case [2]int:
		return e, true
	case []int:
		if len(e) != 2 {
			return [2]int{}, false
		}
		return [2]int{e[0], e[1]}, true
	case []any:
		if len(e) != 2 {
			return [2]int{}, false
		}
		a, okA := toInt(e[0])
		b, okB := toInt(e[1])
		if !okA || !okB {
			return [2]int{}, false
		}
		return [2]int{a, b}, true
	}
	return [2]int{}, false
}
