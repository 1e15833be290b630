package docstore

type transformKind int

const (
	transformUnion transformKind = iota + 1
	transformRemove
)

// Transform is an array mutation applied server-side by Update, so that
// concurrent back-reference edits to the same document do not clobber each
// other.
type Transform struct {
	kind   transformKind
	values []any
}

// ArrayUnion adds values not already present.
func ArrayUnion(values ...any) Transform {
	return Transform{kind: transformUnion, values: values}
}

// ArrayRemove drops every occurrence of values.
func ArrayRemove(values ...any) Transform {
	return Transform{kind: transformRemove, values: values}
}

func (t Transform) IsUnion() bool  { return t.kind == transformUnion }
func (t Transform) IsRemove() bool { return t.kind == transformRemove }
func (t Transform) Values() []any  { return append([]any(nil), t.values...) }

// Apply evaluates the transform against the current array value.
func (t Transform) Apply(current any) []any {
	var base []any
	switch c := current.(type) {
	case []any:
		base = append(base, c...)
	case []string:
		for _, s := range c {
			base = append(base, s)
		}
	}

	switch t.kind {
	case transformUnion:
		for _, v := range t.values {
			if !containsValue(base, v) {
				base = append(base, v)
			}
		}
		return nonNil(base)
	case transformRemove:
		out := base[:0]
		for _, v := range base {
			if !containsValue(t.values, v) {
				out = append(out, v)
			}
		}
		return nonNil(out)
	default:
		return nonNil(base)
	}
}

// ResolveTransforms replaces every Transform in fields with its result
// against the given existing document (nil for a fresh document).
func ResolveTransforms(fields, existing Fields) Fields {
	out := make(Fields, len(fields))
	for k, v := range fields {
		if t, ok := v.(Transform); ok {
			out[k] = t.Apply(existing[k])
			continue
		}
		out[k] = v
	}
	return out
}

func containsValue(list []any, v any) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func nonNil(list []any) []any {
	if list == nil {
		return []any{}
	}
	return list
}
