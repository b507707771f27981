package render

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/hclgraph/internal/objmodel"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// JSON renders v as indented JSON with the same shape as YAML. References
// are written as {"$ref": "name"}.
func JSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, nil, v); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("failed to indent JSON: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// writeJSON writes compact JSON. Objects are written by hand so members
// keep their document order.
func writeJSON(buf *bytes.Buffer, parent *objmodel.Object, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case cty.Value:
		if val == cty.NilVal || val.IsNull() {
			buf.WriteString("null")
			return nil
		}
		data, err := ctyjson.SimpleJSONValue{Value: val}.MarshalJSON()
		if err != nil {
			return fmt.Errorf("failed to encode value: %w", err)
		}
		buf.Write(data)
	case []any:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, parent, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *objmodel.Object:
		if parent != nil && !owned(parent, val) {
			buf.WriteString(`{"$ref":`)
			writeString(buf, refName(val))
			buf.WriteByte('}')
			return nil
		}
		return writeJSONObject(buf, val)
	default:
		return fmt.Errorf("cannot render %T", v)
	}
	return nil
}

func writeJSONObject(buf *bytes.Buffer, obj *objmodel.Object) error {
	buf.WriteString(`{"type":`)
	writeString(buf, obj.Type)
	if obj.Name != "" {
		buf.WriteString(`,"name":`)
		writeString(buf, obj.Name)
	}
	if obj.HasValue() {
		buf.WriteString(`,"value":`)
		if err := writeJSON(buf, obj, obj.Value); err != nil {
			return err
		}
	}
	if members := obj.Members(); len(members) > 0 {
		buf.WriteString(`,"members":{`)
		for i, member := range members {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, member)
			buf.WriteByte(':')
			v, _ := obj.Get(member)
			if err := writeJSON(buf, obj, v); err != nil {
				return fmt.Errorf("%s.%s: %w", obj, member, err)
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return nil
}

func writeString(buf *bytes.Buffer, s string) {
	data, _ := json.Marshal(s)
	buf.Write(data)
}
