package schema

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// HashLength is the number of hex characters in a content hash.
const HashLength = 16

// Hash computes the content hash of the schema: SHA-256 over a canonical
// serialization (sorted keys, compact separators), truncated to [HashLength]
// hex characters. The top-level $id and provenance metadata are excluded so
// that identical content from different sources hashes equal. The exclusion
// is intentionally shallow; nested occurrences of those keys are content.
func (s Schema) Hash() (string, error) {
	c := make(map[string]any, len(s))

	for k, v := range s {
		if k == MetadataKey || k == "$id" {
			continue
		}

		c[k] = v
	}

	data, err := marshalCanonical(c)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:])[:HashLength], nil
}

// marshalCanonical serializes v deterministically: object keys sorted, no
// insignificant whitespace, no HTML escaping.
func marshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	err := enc.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("canonical marshal: %w", err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
