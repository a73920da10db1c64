package utils

import (
	"sort"

	"barangay/pkg/types"
)

// MergeFields overlays patch onto a copy of base. Every patch key must
// already exist in base and must not be listed in locked.
func MergeFields(base, patch map[string]string, locked ...string) (map[string]string, error) {
	out := make(map[string]string, len(base))
	for k, v := range base {
		out[k] = v
	}

	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, l := range locked {
			if k == l {
				return nil, types.NewValidationError(k, "cannot be changed")
			}
		}

		if _, ok := base[k]; !ok {
			return nil, types.NewValidationError(k, "unknown field")
		}

		out[k] = patch[k]
	}

	return out, nil
}
