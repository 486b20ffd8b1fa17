package resolve

// ValueKind discriminates the variant stored in a Value.
type ValueKind uint8

const (
	KindNil ValueKind = iota
	KindString
	KindInt
	KindBool
	KindList
	KindMap
)

// Value is a canonical, gob-encodable tagged union used for anything that
// crosses the cache boundary as opaque payload: the extra fields of a
// VariantHandle, a VariantStateHandle, and resolve graph node attributes.
//
// It exists so that opaque solver/repository payloads are modeled as a
// tagged structure with deterministic serialization rather than as a
// language-specific object graph (see the "Opaque handle transport" design
// note).
type Value struct {
	Kind ValueKind
	S    string
	I    int64
	B    bool
	List []Value
	Map  map[string]Value
}

func StringValue(s string) Value { return Value{Kind: KindString, S: s} }
func IntValue(i int64) Value     { return Value{Kind: KindInt, I: i} }
func BoolValue(b bool) Value     { return Value{Kind: KindBool, B: b} }

func ListValue(vs ...Value) Value {
	return Value{Kind: KindList, List: append([]Value(nil), vs...)}
}

func MapValue(m map[string]Value) Value {
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{Kind: KindMap, Map: cp}
}

// Equal reports whether two Values represent the same data. It is used by
// the cache-invalidation predicates to detect disagreement between a cached
// VariantStateHandle and the one currently reported by a RepoGateway.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNil:
		return true
	case KindString:
		return v.S == o.S
	case KindInt:
		return v.I == o.I
	case KindBool:
		return v.B == o.B
	case KindList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.Map) != len(o.Map) {
			return false
		}
		for k, mv := range v.Map {
			ov, ok := o.Map[k]
			if !ok || !mv.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// StateHandle is a value that changes iff a variant's on-disk definition
// changes; it is a plain alias of Value so that repository gateways can
// return scalars (a mtime, a digest string) or structured composites
// without a separate type.
type StateHandle = Value
