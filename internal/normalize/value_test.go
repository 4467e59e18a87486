package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbcheck-dev/wbcheck/internal/schema"
	"github.com/wbcheck-dev/wbcheck/internal/wire"
)

func valueSnak(datatype, valueType string, value any) wire.Snak {
	return wire.Snak{
		SnakType:  "value",
		Datatype:  datatype,
		DataValue: &wire.DataValue{Type: valueType, Value: value},
	}
}

func TestSnakValue_NonValueSnakTypes(t *testing.T) {
	assert.Nil(t, SnakValue(wire.Snak{SnakType: "novalue"}))
	assert.Nil(t, SnakValue(wire.Snak{SnakType: "somevalue"}))
	assert.Nil(t, SnakValue(wire.Snak{SnakType: "value"})) // no payload
}

func TestSnakValue_Item(t *testing.T) {
	v := SnakValue(valueSnak("wikibase-item", "wikibase-entityid", map[string]any{"id": "Q42"}))
	require.NotNil(t, v)
	assert.Equal(t, schema.ValueItem, v.Type)
	assert.Equal(t, "Q42", v.Value)

	// Fallback to numeric id
	v = SnakValue(valueSnak("wikibase-item", "wikibase-entityid", map[string]any{"numeric-id": float64(42)}))
	require.NotNil(t, v)
	assert.Equal(t, "Q42", v.Value)

	// Neither present
	assert.Nil(t, SnakValue(valueSnak("wikibase-item", "wikibase-entityid", map[string]any{"entity-type": "item"})))
}

func TestSnakValue_StringAndURL(t *testing.T) {
	v := SnakValue(valueSnak("string", "string", "hello"))
	require.NotNil(t, v)
	assert.Equal(t, schema.ValueString, v.Type)
	assert.Equal(t, "hello", v.Value)

	v = SnakValue(valueSnak("url", "string", "https://example.org"))
	require.NotNil(t, v)
	assert.Equal(t, schema.ValueURL, v.Type)

	assert.Nil(t, SnakValue(valueSnak("string", "string", 12)))
}

func TestSnakValue_Quantity(t *testing.T) {
	// Unitless yields bare amount
	v := SnakValue(valueSnak("quantity", "quantity", map[string]any{"amount": "+12", "unit": "1"}))
	require.NotNil(t, v)
	assert.Equal(t, schema.ValueQuantity, v.Type)
	assert.Equal(t, float64(12), v.Value)

	// Real unit yields a structured value
	v = SnakValue(valueSnak("quantity", "quantity", map[string]any{
		"amount": "-3.5",
		"unit":   "http://www.wikidata.org/entity/Q11573",
	}))
	require.NotNil(t, v)
	structured, ok := v.Value.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(-3.5), structured["amount"])
	assert.Equal(t, "http://www.wikidata.org/entity/Q11573", structured["unit"])

	// Scalar unwraps the amount
	assert.Equal(t, float64(-3.5), v.Scalar())

	// Unparseable amount
	assert.Nil(t, SnakValue(valueSnak("quantity", "quantity", map[string]any{"amount": "twelve"})))
}

func TestSnakValue_Time(t *testing.T) {
	v := SnakValue(valueSnak("time", "time", map[string]any{
		"time":          "+2023-01-01T00:00:00Z",
		"precision":     float64(11),
		"calendarmodel": "http://www.wikidata.org/entity/Q1985727",
	}))
	require.NotNil(t, v)
	assert.Equal(t, schema.ValueTime, v.Type)
	structured := v.Value.(map[string]any)
	assert.Equal(t, "+2023-01-01T00:00:00Z", structured["time"])
	assert.Equal(t, 11, structured["precision"])

	// Missing time string
	assert.Nil(t, SnakValue(valueSnak("time", "time", map[string]any{"precision": float64(11)})))
}

func TestSnakValue_Monolingual(t *testing.T) {
	v := SnakValue(valueSnak("monolingualtext", "monolingualtext", map[string]any{"text": "Bonn", "language": "de"}))
	require.NotNil(t, v)
	assert.Equal(t, schema.ValueMonolingual, v.Type)

	assert.Nil(t, SnakValue(valueSnak("monolingualtext", "monolingualtext", map[string]any{"text": "Bonn"})))
	assert.Nil(t, SnakValue(valueSnak("monolingualtext", "monolingualtext", map[string]any{"language": "de"})))
}

func TestSnakValue_Coordinate(t *testing.T) {
	v := SnakValue(valueSnak("globe-coordinate", "globecoordinate", map[string]any{
		"latitude":  float64(50.73),
		"longitude": float64(7.09),
	}))
	require.NotNil(t, v)
	assert.Equal(t, schema.ValueGlobeCoord, v.Type)

	assert.Nil(t, SnakValue(valueSnak("globe-coordinate", "globecoordinate", map[string]any{"latitude": float64(50.73)})))
}

func TestSnakValue_UnknownType(t *testing.T) {
	assert.Nil(t, SnakValue(valueSnak("musical-notation", "musical-notation", "do re mi")))
}

func TestStatementValue_EqualsScalar(t *testing.T) {
	item := StatementValue{Value: "Q42", Type: schema.ValueItem}
	assert.True(t, item.EqualsScalar("Q42"))
	assert.False(t, item.EqualsScalar("Q43"))

	// Numeric representations compare numerically
	quantity := StatementValue{Value: float64(12), Type: schema.ValueQuantity}
	assert.True(t, quantity.EqualsScalar(12))
	assert.True(t, quantity.EqualsScalar(uint64(12)))
	assert.False(t, quantity.EqualsScalar("12"))

	// Structured quantities compare by amount
	structured := StatementValue{
		Value: map[string]any{"amount": float64(12), "unit": "Q11573"},
		Type:  schema.ValueQuantity,
	}
	assert.True(t, structured.EqualsScalar(12))
}
