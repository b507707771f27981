package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/hclgraph/internal/objmodel"
)

// Format selects an output encoding.
type Format string

const (
	FormatHCL  Format = "hcl"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatHCL, FormatYAML, FormatJSON}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q, expected one of hcl, yaml, json", s)
}

// Write renders v in format f to out.
func Write(out io.Writer, f Format, v any) error {
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatHCL:
		data, err = HCL(v)
	case FormatYAML:
		data, err = YAML(v)
	case FormatJSON:
		data, err = JSON(v)
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

// owned reports whether child is nested under parent rather than referenced.
func owned(parent, child *objmodel.Object) bool {
	return child.Owner == parent
}

// refName is how a referenced object is written.
func refName(obj *objmodel.Object) string {
	if obj.Name != "" {
		return obj.Name
	}
	return obj.Path.String()
}
