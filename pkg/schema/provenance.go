package schema

import "time"

// Provenance records where and when a schema was extracted. Backfilled
// provenance carries only the source fields; extraction stamps all four.
type Provenance struct {
	SourceName    string `json:"sourceName,omitempty"`
	SourceVersion string `json:"sourceVersion,omitempty"`
	ExtractedAt   string `json:"extractedAt,omitempty"`
	Generator     string `json:"generator,omitempty"`
}

// NewProvenance creates extraction provenance stamped with the current UTC
// time and the catalog generator name.
func NewProvenance(sourceName, sourceVersion string) Provenance {
	return Provenance{
		SourceName:    sourceName,
		SourceVersion: sourceVersion,
		ExtractedAt:   time.Now().UTC().Format(time.RFC3339),
		Generator:     GeneratorName,
	}
}

// IsZero reports whether no provenance field is set.
func (p Provenance) IsZero() bool {
	return p == Provenance{}
}

func (p Provenance) toMap() map[string]any {
	m := map[string]any{}

	if p.SourceName != "" {
		m["sourceName"] = p.SourceName
	}

	if p.SourceVersion != "" {
		m["sourceVersion"] = p.SourceVersion
	}

	if p.ExtractedAt != "" {
		m["extractedAt"] = p.ExtractedAt
	}

	if p.Generator != "" {
		m["generator"] = p.Generator
	}

	return m
}

// Provenance returns the provenance metadata of the schema. ok is false when
// the schema carries no metadata block.
func (s Schema) Provenance() (Provenance, bool) {
	m, ok := s[MetadataKey].(map[string]any)
	if !ok {
		return Provenance{}, false
	}

	p := Provenance{}

	if v, ok := m["sourceName"].(string); ok {
		p.SourceName = v
	}

	if v, ok := m["sourceVersion"].(string); ok {
		p.SourceVersion = v
	}

	if v, ok := m["extractedAt"].(string); ok {
		p.ExtractedAt = v
	}

	if v, ok := m["generator"].(string); ok {
		p.Generator = v
	}

	return p, true
}

// SetProvenance replaces the provenance metadata of the schema.
func (s Schema) SetProvenance(p Provenance) {
	s[MetadataKey] = p.toMap()
}

// EnsureProvenance sets provenance metadata only when the schema has none,
// reporting whether it was added. Existing metadata is never overwritten.
func (s Schema) EnsureProvenance(p Provenance) bool {
	if _, ok := s[MetadataKey]; ok {
		return false
	}

	s.SetProvenance(p)

	return true
}
