package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// SegmentSerializer reduces an arbitrary scoping value (an id, a filter
// descriptor, a sort spec) to a single deterministic key segment. Two values
// with the same content must always produce the same segment, regardless of
// map iteration order or object identity.
type SegmentSerializer interface {
	Segment(v any) string
}

// defaultSegmentSerializer implements SegmentSerializer using reflection.
// Maps are serialized with sorted keys so that filter descriptors built in
// different field orders still land on the same cache entry.
type defaultSegmentSerializer struct{}

// NewSegmentSerializer creates the default segment serializer.
func NewSegmentSerializer() SegmentSerializer {
	return &defaultSegmentSerializer{}
}

// Segment builds a deterministic string for a single scoping value.
func (s *defaultSegmentSerializer) Segment(v any) string {
	return s.serializeValue(v)
}

func (s *defaultSegmentSerializer) serializeValue(v any) string {
	if v == nil {
		return "nil"
	}

	rv := reflect.ValueOf(v)
	rt := reflect.TypeOf(v)

	switch rt.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem().Interface())

	case reflect.Slice:
		if rv.IsNil() {
			return "slice:nil"
		}
		return s.serializeList("slice", rv)

	case reflect.Array:
		return s.serializeList("array", rv)

	case reflect.Map:
		if rv.IsNil() {
			return "map:nil"
		}
		return s.serializeMap(rv)

	case reflect.Struct:
		return s.serializeStruct(rv, rt)

	case reflect.Func, reflect.Chan:
		// No stable content representation; pointer identity is the best we
		// can do and is stable within a process.
		return fmt.Sprintf("%s:%p", rt.Kind(), v)

	case reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem().Interface())
	}

	if isBasicKind(rt.Kind()) {
		return fmt.Sprintf("%v", v)
	}

	return s.jsonFallback(v)
}

func (s *defaultSegmentSerializer) serializeList(label string, rv reflect.Value) string {
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = s.serializeValue(rv.Index(i).Interface())
	}
	return fmt.Sprintf("%s[%d]:{%s}", label, len(parts), strings.Join(parts, ","))
}

// serializeMap emits key=value pairs ordered by the serialized key so the
// output is independent of Go's randomized map iteration.
func (s *defaultSegmentSerializer) serializeMap(rv reflect.Value) string {
	type pair struct {
		key   string
		value string
	}

	pairs := make([]pair, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		pairs = append(pairs, pair{
			key:   s.serializeValue(iter.Key().Interface()),
			value: s.serializeValue(iter.Value().Interface()),
		})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.key + "=" + p.value
	}
	return fmt.Sprintf("map[%d]:{%s}", len(parts), strings.Join(parts, ","))
}

func (s *defaultSegmentSerializer) serializeStruct(rv reflect.Value, rt reflect.Type) string {
	parts := make([]string, 0, rv.NumField())
	for i := 0; i < rv.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		fv := rv.Field(i)
		if !fv.CanInterface() {
			continue
		}
		parts = append(parts, field.Name+":"+s.serializeValue(fv.Interface()))
	}
	return fmt.Sprintf("struct:{%s}", strings.Join(parts, ","))
}

func isBasicKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	default:
		return false
	}
}

// jsonFallback covers types the reflective walk does not handle. Stability
// matters more than fidelity here: on marshal failure we degrade to type
// information rather than panicking mid-invalidation.
func (s *defaultSegmentSerializer) jsonFallback(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "fallback:" + reflect.TypeOf(v).String()
	}
	return "json:" + string(data)
}
