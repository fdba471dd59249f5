package session

// Patch is a partial session document.
type Patch map[string]any

// mergeable lists the fields whose object values merge key by key.
var mergeable = map[string]bool{
	FieldLibrary:   true,
	FieldAssistant: true,
}

// Clean drops undefined (nil) values.
func Clean(p Patch) Patch {
	out := make(Patch, len(p))
	for k, v := range p {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

// Merge applies next over prev and returns a new patch. For the sub-object
// fields, when both sides are plain objects the keys of next win one by one
// and the remaining keys of prev survive; everything else is replaced.
func Merge(prev, next Patch) Patch {
	out := make(Patch, len(prev)+len(next))
	for k, v := range prev {
		out[k] = cloneValue(v)
	}
	for k, v := range next {
		if mergeable[k] {
			incoming, ok1 := asObject(v)
			existing, ok2 := asObject(out[k])
			if ok1 && ok2 {
				merged := make(map[string]any, len(existing)+len(incoming))
				for kk, vv := range existing {
					merged[kk] = vv
				}
				for kk, vv := range incoming {
					merged[kk] = cloneValue(vv)
				}
				out[k] = merged
				continue
			}
		}
		out[k] = cloneValue(v)
	}
	return out
}

func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, m != nil
	case Patch:
		return map[string]any(m), m != nil
	}
	return nil, false
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return t
		}
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = cloneValue(vv)
		}
		return out
	case Patch:
		return cloneValue(map[string]any(t))
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = cloneValue(vv)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	}
	return v
}
