// Package normalize converts wire-format entity records into the typed
// runtime representation consumed by profile validation. Normalization is
// forgiving: unparseable snaks are dropped with a warning issue, never a
// failure.
package normalize

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/wbcheck-dev/wbcheck/internal/schema"
	"github.com/wbcheck-dev/wbcheck/internal/wire"
)

// unitlessMarker is the Wikibase encoding for a quantity without a unit.
const unitlessMarker = "1"

// StatementValue is one parsed snak value. Value holds a scalar (string or
// float64) or a structured map for quantity-with-unit, time, monolingual
// text, and coordinates. Immutable once created.
type StatementValue struct {
	Value any              `json:"value"`
	Type  schema.ValueType `json:"type"`
}

// Scalar returns the comparable scalar for constraint evaluation:
// quantity-with-unit structures unwrap to their amount, everything else
// is returned as-is.
func (v StatementValue) Scalar() any {
	if v.Type == schema.ValueQuantity {
		if m, ok := v.Value.(map[string]any); ok {
			if amount, ok := m["amount"]; ok {
				return amount
			}
		}
	}
	return v.Value
}

// EqualsScalar reports whether the value's comparable scalar equals the
// given scalar (e.g. a profile's fixed value). Numeric values compare
// numerically regardless of their Go representation.
func (v StatementValue) EqualsScalar(other any) bool {
	return scalarEqual(v.Scalar(), other)
}

// SnakValue parses a wire snak into a typed value. It returns nil when the
// snak carries no usable value: non-"value" snak types, missing payloads,
// and shape violations all parse to nil.
func SnakValue(snak wire.Snak) *StatementValue {
	if !snak.HasValue() {
		return nil
	}

	switch snak.DataValue.Type {
	case "wikibase-entityid":
		return itemValue(snak.DataValue.Value)
	case "string":
		return stringValue(snak)
	case "quantity":
		return quantityValue(snak.DataValue.Value)
	case "time":
		return timeValue(snak.DataValue.Value)
	case "monolingualtext":
		return monolingualValue(snak.DataValue.Value)
	case "globecoordinate":
		return coordinateValue(snak.DataValue.Value)
	default:
		return nil
	}
}

// itemValue reads an entity identifier, falling back to synthesizing one
// from the numeric id.
func itemValue(raw any) *StatementValue {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	if id, ok := m["id"].(string); ok && id != "" {
		return &StatementValue{Value: id, Type: schema.ValueItem}
	}
	if numeric, ok := toFloat(m["numeric-id"]); ok {
		return &StatementValue{Value: fmt.Sprintf("Q%d", int64(numeric)), Type: schema.ValueItem}
	}
	return nil
}

// stringValue disambiguates string vs url via the snak's datatype tag.
func stringValue(snak wire.Snak) *StatementValue {
	s, ok := snak.DataValue.Value.(string)
	if !ok {
		return nil
	}
	valueType := schema.ValueString
	if snak.Datatype == "url" {
		valueType = schema.ValueURL
	}
	return &StatementValue{Value: s, Type: valueType}
}

// quantityValue parses the amount and, when a real unit is encoded,
// produces a structured {amount, unit} value. Unitless quantities yield
// the bare numeric amount.
func quantityValue(raw any) *StatementValue {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	amount, ok := parseAmount(m["amount"])
	if !ok {
		return nil
	}
	if unit, ok := m["unit"].(string); ok && unit != "" && unit != unitlessMarker {
		return &StatementValue{
			Value: map[string]any{"amount": amount, "unit": unit},
			Type:  schema.ValueQuantity,
		}
	}
	return &StatementValue{Value: amount, Type: schema.ValueQuantity}
}

// timeValue requires a time string and carries precision and calendar
// when present.
func timeValue(raw any) *StatementValue {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	t, ok := m["time"].(string)
	if !ok || t == "" {
		return nil
	}
	value := map[string]any{"time": t}
	if precision, ok := toFloat(m["precision"]); ok {
		value["precision"] = int(precision)
	}
	if calendar, ok := m["calendarmodel"].(string); ok && calendar != "" {
		value["calendarmodel"] = calendar
	}
	return &StatementValue{Value: value, Type: schema.ValueTime}
}

// monolingualValue requires both a text and a language tag.
func monolingualValue(raw any) *StatementValue {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	text, textOK := m["text"].(string)
	language, langOK := m["language"].(string)
	if !textOK || !langOK || text == "" || language == "" {
		return nil
	}
	return &StatementValue{
		Value: map[string]any{"text": text, "language": language},
		Type:  schema.ValueMonolingual,
	}
}

// coordinateValue requires both latitude and longitude.
func coordinateValue(raw any) *StatementValue {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	latitude, latOK := toFloat(m["latitude"])
	longitude, lonOK := toFloat(m["longitude"])
	if !latOK || !lonOK {
		return nil
	}
	value := map[string]any{"latitude": latitude, "longitude": longitude}
	if precision, ok := toFloat(m["precision"]); ok {
		value["precision"] = precision
	}
	if globe, ok := m["globe"].(string); ok && globe != "" {
		value["globe"] = globe
	}
	return &StatementValue{Value: value, Type: schema.ValueGlobeCoord}
}

// parseAmount parses a Wikibase amount, which arrives as a signed decimal
// string ("+12", "-3.5") or occasionally as a bare number.
func parseAmount(raw any) (float64, bool) {
	switch v := raw.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimPrefix(v, "+"), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return toFloat(raw)
	}
}

// toFloat converts any numeric representation to float64.
func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// scalarEqual compares two scalars, treating all numeric representations
// as equivalent. Structured values fall back to deep equality.
func scalarEqual(a, b any) bool {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		return ok && as == bs
	}
	return reflect.DeepEqual(a, b)
}
