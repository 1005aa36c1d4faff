package conversation

import (
	"time"

	"github.com/reflective-ai/reflective-server/internal/model"
)

// MergeFacts folds a fact delta into an existing profile. List values merge
// as a deduplicated set union (an existing non-list value is treated as
// empty); scalars overwrite unconditionally. The result is always the full
// profile document, never a sparse patch, and is stamped with last_updated.
func MergeFacts(existing model.Profile, delta model.FactDelta) model.Profile {
	merged := make(model.Profile, len(existing)+len(delta)+1)
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range delta {
		if items, ok := asStringList(v); ok {
			merged[k] = unionStrings(asExistingList(merged[k]), items)
		} else {
			merged[k] = v
		}
	}
	merged["last_updated"] = time.Now().UTC().Format(time.RFC3339)
	return merged
}

func asStringList(v interface{}) ([]string, bool) {
	switch vv := v.(type) {
	case []string:
		return vv, true
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, it := range vv {
			s, ok := it.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// asExistingList reads the current value of a list field; anything that is
// not a list of strings counts as empty.
func asExistingList(v interface{}) []string {
	if items, ok := asStringList(v); ok {
		return items
	}
	return nil
}

// unionStrings returns the deduplicated union preserving first-seen order.
// Callers treat list fields as unordered fact sets.
func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
