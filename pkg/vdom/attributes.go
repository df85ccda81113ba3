package vdom

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Attr represents a single attribute as it was built.
type Attr struct {
	Namespace string // e.g. "xlink"; empty for plain attributes
	Name      string
	Value     any // string, bool, integer, float or Callback
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Name == ""
}

// IsCallback reports whether the attribute carries an event handler.
func (a Attr) IsCallback() bool {
	return IsCallback(a.Value)
}

// QualifiedName returns "ns:name" for namespaced attributes and the bare
// name otherwise.
func (a Attr) QualifiedName() string {
	if a.Namespace == "" {
		return a.Name
	}
	return a.Namespace + ":" + a.Name
}

// String returns name="value" for debugging.
func (a Attr) String() string {
	if a.IsCallback() {
		return a.QualifiedName() + "={callback}"
	}
	return fmt.Sprintf("%s=%q", a.QualifiedName(), fmt.Sprint(a.Value))
}

// MergedAttr is the logical attribute formed by every attribute of one
// element that shares a name.
type MergedAttr struct {
	Namespace string
	Name      string
	Values    []any
	// Index holds the positions of the merged attributes in the element's
	// Attrs slice, in build order.
	Index []int
}

// MergeAttrs groups attrs by (namespace, name). Groups are ordered by the
// first appearance of each name; values keep build order.
func MergeAttrs(attrs []Attr) []MergedAttr {
	if len(attrs) == 0 {
		return nil
	}
	var merged []MergedAttr
	pos := make(map[attrName]int, len(attrs))
	for i, a := range attrs {
		if a.IsEmpty() {
			continue
		}
		n := attrName{a.Namespace, a.Name}
		if j, ok := pos[n]; ok {
			merged[j].Values = append(merged[j].Values, a.Value)
			merged[j].Index = append(merged[j].Index, i)
			continue
		}
		pos[n] = len(merged)
		merged = append(merged, MergedAttr{
			Namespace: a.Namespace,
			Name:      a.Name,
			Values:    []any{a.Value},
			Index:     []int{i},
		})
	}
	return merged
}

type attrName struct {
	ns, name string
}

func (m MergedAttr) key() attrName {
	return attrName{m.Namespace, m.Name}
}

// Equal reports whether m and o carry the same name and equal value lists.
func (m MergedAttr) Equal(o MergedAttr) bool {
	if m.key() != o.key() || len(m.Values) != len(o.Values) {
		return false
	}
	for i := range m.Values {
		if !ValuesEqual(m.Values[i], o.Values[i]) {
			return false
		}
	}
	return true
}

// ValuesEqual compares two attribute values. Callbacks compare by lineage,
// everything else by value with the type taken into account. A value always
// equals itself: NaN matches NaN and functions match by identity.
func ValuesEqual(a, b any) bool {
	// Callbacks
	switch av := a.(type) {
	case Callback:
		return sameCallback(av, b)
	case *Callback:
		if av == nil {
			return b == nil
		}
		return sameCallback(*av, b)
	}
	if IsCallback(b) {
		return false
	}

	// Fast path for common types
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && sameFloat(av, bv)
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	if b == nil {
		return false
	}
	return deepEqual(reflect.ValueOf(a), reflect.ValueOf(b))
}

func sameFloat(a, b float64) bool {
	return a == b || (a != a && b != b)
}

var callbackType = reflect.TypeFor[Callback]()

// deepEqual is reflect.DeepEqual with the equality rules of ValuesEqual
// applied at every level. Unexported fields are read through Kind getters.
func deepEqual(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	if a.Type() != b.Type() {
		return false
	}
	if a.Type() == callbackType {
		// Lineage is the identity of the handler pointer.
		return a.Field(0).Pointer() == b.Field(0).Pointer()
	}

	switch a.Kind() {
	case reflect.Bool:
		return a.Bool() == b.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() == b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return a.Uint() == b.Uint()
	case reflect.Float32, reflect.Float64:
		return sameFloat(a.Float(), b.Float())
	case reflect.Complex64, reflect.Complex128:
		ac, bc := a.Complex(), b.Complex()
		return sameFloat(real(ac), real(bc)) && sameFloat(imag(ac), imag(bc))
	case reflect.String:
		return a.String() == b.String()
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Pointer:
		if a.Pointer() == b.Pointer() {
			return true
		}
		if a.IsNil() || b.IsNil() {
			return false
		}
		return deepEqual(a.Elem(), b.Elem())
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() == b.IsNil()
		}
		return deepEqual(a.Elem(), b.Elem())
	case reflect.Slice:
		if a.IsNil() != b.IsNil() || a.Len() != b.Len() {
			return false
		}
		if a.Len() == 0 || a.Pointer() == b.Pointer() {
			return true
		}
		fallthrough
	case reflect.Array:
		for i := range a.Len() {
			if !deepEqual(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Struct:
		for i := range a.NumField() {
			if !deepEqual(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Map:
		if a.IsNil() != b.IsNil() || a.Len() != b.Len() {
			return false
		}
		if a.Pointer() == b.Pointer() {
			return true
		}
		iter := a.MapRange()
		for iter.Next() {
			bv := b.MapIndex(iter.Key())
			if !bv.IsValid() || !deepEqual(iter.Value(), bv) {
				return false
			}
		}
		return true
	}
	return false
}

func sameCallback(c Callback, b any) bool {
	switch bv := b.(type) {
	case Callback:
		return c.Same(bv)
	case *Callback:
		return bv != nil && c.Same(*bv)
	}
	return false
}

// ValueString converts a plain attribute value to its DOM string form.
// Callbacks and values with no string form report false.
func ValueString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		if val {
			return "true", true
		}
		return "false", true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case Callback, *Callback, nil:
		return "", false
	default:
		return fmt.Sprintf("%v", v), true
	}
}

// keyString renders a key value. Keys built with Key are already strings.
func keyString(v any) string {
	if s, ok := ValueString(v); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

var booleanAttrs = map[string]bool{
	"allowfullscreen": true,
	"async":           true,
	"autofocus":       true,
	"autoplay":        true,
	"checked":         true,
	"controls":        true,
	"default":         true,
	"defer":           true,
	"disabled":        true,
	"formnovalidate":  true,
	"hidden":          true,
	"inert":           true,
	"ismap":           true,
	"loop":            true,
	"multiple":        true,
	"muted":           true,
	"novalidate":      true,
	"open":            true,
	"playsinline":     true,
	"readonly":        true,
	"required":        true,
	"reversed":        true,
	"selected":        true,
}

// IsBooleanAttr reports whether name is an HTML boolean attribute, rendered
// by presence rather than value.
func IsBooleanAttr(name string) bool {
	return booleanAttrs[strings.ToLower(name)]
}

// JoinValues renders the values of a merged attribute as one DOM string.
// Style declarations are joined with "; ", everything else with a space.
// Callbacks are skipped.
func JoinValues(m MergedAttr) string {
	sep := " "
	if m.Name == "style" {
		sep = "; "
	}
	parts := make([]string, 0, len(m.Values))
	for _, v := range m.Values {
		s, ok := ValueString(v)
		if !ok || s == "" {
			continue
		}
		if m.Name == "style" {
			s = strings.TrimRight(strings.TrimSpace(s), ";")
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, sep)
}
