package op

import "fmt"

// Attrs holds operator-specific configuration constants, keyed by name.
type Attrs map[string]any

// Float returns the float32 attribute under key, or def if absent.
// Panics if the attribute exists with a non-float type.
func (a Attrs) Float(key string, def float32) float32 {
	v, ok := a[key]
	if !ok {
		return def
	}
	switch f := v.(type) {
	case float32:
		return f
	case float64:
		return float32(f)
	default:
		panic(fmt.Sprintf("attrs: %q is %T, not a float", key, v))
	}
}

// Int returns the int attribute under key, or def if absent.
// Panics if the attribute exists with a non-int type.
func (a Attrs) Int(key string, def int) int {
	v, ok := a[key]
	if !ok {
		return def
	}
	i, ok := v.(int)
	if !ok {
		panic(fmt.Sprintf("attrs: %q is %T, not an int", key, v))
	}
	return i
}
