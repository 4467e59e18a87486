// Package wire defines the JSON wire format structures for entity records
// as they arrive from external sources. These types mirror the Wikibase
// statement serialization and must remain stable as they define the
// ingestion contract.
package wire

import (
	"encoding/json"
	"fmt"
	"io"
)

// EntityRecord maps an external property id (e.g. "P31") to the raw JSON
// of its statement list. The value is kept raw so a malformed (non-list)
// entry can be reported instead of failing the whole record.
type EntityRecord map[string]json.RawMessage

// Statement is one property/value assertion with optional qualifiers and
// references.
type Statement struct {
	Mainsnak   Snak              `json:"mainsnak"`
	Qualifiers map[string][]Snak `json:"qualifiers,omitempty"`
	References []Reference       `json:"references,omitempty"`
	Rank       string            `json:"rank,omitempty"`
}

// Reference is a provenance attachment: a set of property/value snaks.
type Reference struct {
	Snaks map[string][]Snak `json:"snaks"`
}

// Snak is a single property/value assertion unit. A SnakType other than
// "value" (e.g. "novalue", "somevalue") carries no data value.
type Snak struct {
	SnakType  string     `json:"snaktype"`
	Property  string     `json:"property,omitempty"`
	Datatype  string     `json:"datatype,omitempty"`
	DataValue *DataValue `json:"datavalue,omitempty"`
}

// SnakTypeValue is the only snak type that carries a data value.
const SnakTypeValue = "value"

// HasValue returns true if the snak carries a data value.
func (s Snak) HasValue() bool {
	return s.SnakType == SnakTypeValue && s.DataValue != nil
}

// DataValue is the typed payload of a snak. Value decodes to a string,
// a number, or a map depending on Type.
type DataValue struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// ParseRecord decodes an entity record from JSON bytes.
func ParseRecord(data []byte) (EntityRecord, error) {
	var record EntityRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse entity record: %w", err)
	}
	return record, nil
}

// ReadRecord decodes an entity record from an io.Reader.
func ReadRecord(r io.Reader) (EntityRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read entity record: %w", err)
	}
	return ParseRecord(data)
}

// Statements decodes the statement list for a property. The boolean is
// false when the property is present but its value is not a statement list.
func (r EntityRecord) Statements(property string) ([]Statement, bool) {
	raw, ok := r[property]
	if !ok {
		return nil, true
	}
	var statements []Statement
	if err := json.Unmarshal(raw, &statements); err != nil {
		return nil, false
	}
	return statements, true
}
