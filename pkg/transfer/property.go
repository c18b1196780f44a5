package transfer

import (
	"encoding/json"
	"math"

	"github.com/matzehuels/blueprint/pkg/document"
	"github.com/matzehuels/blueprint/pkg/model"
)

// exportProperties writes props as {key, value, type} records in key order.
func exportProperties(props model.Properties) *document.Array {
	out := document.NewArray()
	for _, key := range props.Keys() {
		v := props[key]
		if v == nil {
			continue
		}
		rec := document.Object{}
		rec.Put(KeyKey, key)
		rec.Put(KeyValue, wireValue(v))
		rec.Put(KeyType, string(v.Type()))
		out.Append(rec)
	}
	return out
}

// wireValue returns the JSON form of v. Numbers keep their canonical text
// so that 64-bit integers and 32-bit floats are not widened to float64.
func wireValue(v model.Value) any {
	switch t := v.(type) {
	case model.Boolean:
		return bool(t)
	case model.Text:
		return string(t)
	case model.TextArray:
		items := make([]any, len(t))
		for i, s := range t {
			items[i] = s
		}
		return document.NewArray(items...)
	case model.Float:
		return number(float64(t), t.String())
	case model.Double:
		return number(float64(t), t.String())
	default:
		return json.Number(v.String())
	}
}

// number returns text as a JSON number, or as a string when f has no JSON
// number form (NaN and the infinities).
func number(f float64, text string) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return text
	}
	return json.Number(text)
}

// importProperties parses property records into props. The value is read as
// text and converted according to the type tag; an unknown or missing tag
// keeps the text. Values that do not parse are recorded and skipped.
func importProperties(s *Session, props model.Properties, records *document.Array) {
	for i := range records.Len() {
		rec, ok := records.Object(i)
		if !ok {
			s.addErrorf(`Property value invalid [key="", type="", value="%s"]`, document.Text(records.At(i)))
			continue
		}
		key := rec.String(KeyKey)
		typ := rec.String(KeyType)
		text := rec.Text(KeyValue)

		v, err := model.ParseValue(model.ValueType(typ), text)
		if err != nil {
			s.addErrorf(`Property value invalid [key="%s", type="%s", value="%s"]`, key, typ, text)
			continue
		}
		props[key] = v
	}
}
