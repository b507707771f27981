package render

import (
	"bytes"
	"fmt"

	"github.com/specialistvlad/hclgraph/internal/objmodel"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// refTag marks a scalar naming a referenced object.
const refTag = "!ref"

// YAML renders v as a YAML document. Objects become mappings with type,
// name, value and members keys; members keep their document order.
// References are scalars tagged !ref.
func YAML(v any) ([]byte, error) {
	node, err := yamlNode(nil, v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

func yamlNode(parent *objmodel.Object, v any) (*yaml.Node, error) {
	switch val := v.(type) {
	case *objmodel.Object:
		if parent != nil && !owned(parent, val) {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: refTag, Value: refName(val)}, nil
		}
		return yamlObject(val)
	case []any:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range val {
			n, err := yamlNode(parent, item)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, n)
		}
		return seq, nil
	case cty.Value:
		return yamlValue(objmodel.CtyToNative(val))
	case nil:
		return yamlValue(nil)
	default:
		return nil, fmt.Errorf("cannot render %T", v)
	}
}

func yamlObject(obj *objmodel.Object) (*yaml.Node, error) {
	m := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value *yaml.Node) {
		m.Content = append(m.Content, str(key), value)
	}

	add("type", str(obj.Type))
	if obj.Name != "" {
		add("name", str(obj.Name))
	}
	if obj.HasValue() {
		n, err := yamlValue(objmodel.CtyToNative(obj.Value))
		if err != nil {
			return nil, err
		}
		add("value", n)
	}

	members := &yaml.Node{Kind: yaml.MappingNode}
	for _, member := range obj.Members() {
		v, _ := obj.Get(member)
		n, err := yamlNode(obj, v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", obj, member, err)
		}
		members.Content = append(members.Content, str(member), n)
	}
	if len(members.Content) > 0 {
		add("members", members)
	}
	return m, nil
}

func yamlValue(v any) (*yaml.Node, error) {
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	return n, nil
}

func str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
