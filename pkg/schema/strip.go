package schema

// strippedExtensions are OpenAPI vendor extensions that have no JSON Schema
// equivalent and are removed at every depth during normalization.
var strippedExtensions = map[string]struct{}{
	"x-kubernetes-preserve-unknown-fields": {},
	"x-kubernetes-int-or-string":           {},
	"x-kubernetes-embedded-resource":       {},
	"x-kubernetes-list-map-keys":           {},
	"x-kubernetes-list-type":               {},
	"x-kubernetes-map-type":                {},
	"x-kubernetes-group-version-kind":      {},
	"x-kubernetes-validations":             {},
}

// Strip recursively removes Kubernetes OpenAPI vendor extensions from v.
// `nullable: true` entries are dropped as well; the union with null is not
// representable without restructuring the schema. Non-container values are
// returned unchanged.
func Strip(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))

		for k, item := range val {
			if _, drop := strippedExtensions[k]; drop {
				continue
			}

			if k == "nullable" && item == true {
				continue
			}

			result[k] = Strip(item)
		}

		return result

	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = Strip(item)
		}

		return result

	default:
		return v
	}
}
