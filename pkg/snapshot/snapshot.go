package snapshot

import (
	_ "embed"
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/xeipuuv/gojsonschema"

	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

//go:embed schema.json
var schemaJSON []byte

var schema = mustCompileSchema()

// maxReportedViolations caps the schema violations listed in an error.
const maxReportedViolations = 5

func mustCompileSchema() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("snapshot: embedded schema: %v", err))
	}
	return s
}

// Schema returns the JSON schema snapshot documents are validated against.
func Schema() []byte {
	return append([]byte(nil), schemaJSON...)
}

// Decode parses a YAML or JSON snapshot into a tree.
//
// Handler references are resolved through reg; a nil reg rejects documents
// that reference handlers. Integers decode as int64 and other numbers as
// float64.
func Decode(data []byte, reg *Registry) (*vdom.VNode, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.New("E201").
			WithDetail(yaml.FormatError(err, false, true)).
			Wrap(err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, errors.New("E202").Wrap(err)
	}
	if !result.Valid() {
		return nil, schemaError(result.Errors())
	}

	d := decoder{reg: reg}
	return d.node(doc, "")
}

func schemaError(violations []gojsonschema.ResultError) *errors.Error {
	lines := make([]string, 0, min(len(violations), maxReportedViolations)+1)
	for i, v := range violations {
		if i == maxReportedViolations {
			lines = append(lines, fmt.Sprintf("... and %d more", len(violations)-i))
			break
		}
		lines = append(lines, fmt.Sprintf("%s: %s", v.Field(), v.Description()))
	}
	return errors.New("E202").
		WithDetail(strings.Join(lines, "\n")).
		WithSuggestion("Element nodes need a non-empty tag; text nodes need only text.")
}

type decoder struct {
	reg *Registry
}

func (d *decoder) node(v any, path string) (*vdom.VNode, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("E202").WithDetailf("%s: expected a mapping, got %T", pathOrRoot(path), v)
	}

	if text, ok := m["text"]; ok {
		s, _ := text.(string)
		return vdom.Text(s), nil
	}

	tag, _ := m["tag"].(string)
	ns, _ := m["ns"].(string)
	n := &vdom.VNode{Kind: vdom.KindElement, Namespace: ns, Tag: tag}

	if raw, ok := m["attrs"].([]any); ok && len(raw) > 0 {
		n.Attrs = make([]vdom.Attr, 0, len(raw))
		for i, a := range raw {
			attr, err := d.attr(a, fmt.Sprintf("%sattrs[%d]", prefix(path), i))
			if err != nil {
				return nil, err
			}
			n.Attrs = append(n.Attrs, attr)
		}
	}

	if raw, ok := m["children"].([]any); ok && len(raw) > 0 {
		n.Children = make([]*vdom.VNode, 0, len(raw))
		for i, c := range raw {
			child, err := d.node(c, fmt.Sprintf("%schildren[%d]", prefix(path), i))
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		}
	}
	return n, nil
}

func (d *decoder) attr(v any, path string) (vdom.Attr, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return vdom.Attr{}, errors.New("E202").WithDetailf("%s: expected a mapping, got %T", path, v)
	}
	name, _ := m["name"].(string)
	ns, _ := m["ns"].(string)

	if h, ok := m["handler"].(string); ok {
		if d.reg == nil {
			return vdom.Attr{}, errors.New("E203").
				WithDetailf("%s: handler %q referenced without a registry", path, h)
		}
		cb, ok := d.reg.resolve(h)
		if !ok {
			return vdom.Attr{}, errors.New("E203").
				WithDetailf("%s: handler %q is not registered", path, h)
		}
		return vdom.Attr{Namespace: ns, Name: name, Value: cb}, nil
	}

	value, err := normalize(m["value"])
	if err != nil {
		return vdom.Attr{}, errors.New("E202").WithDetailf("%s: %v", path, err)
	}
	return vdom.Attr{Namespace: ns, Name: name, Value: value}, nil
}

// normalize maps decoded scalars onto string, bool, int64 and float64.
func normalize(v any) (any, error) {
	switch x := v.(type) {
	case string, bool, int64, float64:
		return x, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint:
		return uintValue(uint64(x))
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		return uintValue(x)
	case float32:
		return float64(x), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func uintValue(u uint64) (any, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("integer %d overflows int64", u)
	}
	return int64(u), nil
}

func prefix(path string) string {
	if path == "" {
		return ""
	}
	return path + "."
}

func pathOrRoot(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}

// Encode writes n as a YAML snapshot. Callbacks are written as handler
// references named by reg.
func Encode(n *vdom.VNode, reg *Registry) ([]byte, error) {
	if n == nil {
		return nil, errors.New("E204").WithDetail("The tree is empty.")
	}
	e := encoder{reg: reg}
	doc, err := e.node(n, "")
	if err != nil {
		return nil, err
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, errors.New("E204").Wrap(err)
	}
	return out, nil
}

type encoder struct {
	reg *Registry
}

func (e *encoder) node(n *vdom.VNode, path string) (yaml.MapSlice, error) {
	if n == nil {
		return nil, errors.New("E204").WithDetailf("%s: nil child", pathOrRoot(path))
	}
	if n.IsText() {
		return yaml.MapSlice{{Key: "text", Value: n.Text}}, nil
	}

	doc := yaml.MapSlice{{Key: "tag", Value: n.Tag}}
	if n.Namespace != "" {
		doc = append(doc, yaml.MapItem{Key: "ns", Value: n.Namespace})
	}

	if len(n.Attrs) > 0 {
		attrs := make([]yaml.MapSlice, 0, len(n.Attrs))
		for i, a := range n.Attrs {
			if a.IsEmpty() {
				continue
			}
			item, err := e.attr(a, fmt.Sprintf("%sattrs[%d]", prefix(path), i))
			if err != nil {
				return nil, err
			}
			attrs = append(attrs, item)
		}
		doc = append(doc, yaml.MapItem{Key: "attrs", Value: attrs})
	}

	if len(n.Children) > 0 {
		children := make([]yaml.MapSlice, 0, len(n.Children))
		for i, c := range n.Children {
			child, err := e.node(c, fmt.Sprintf("%schildren[%d]", prefix(path), i))
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		doc = append(doc, yaml.MapItem{Key: "children", Value: children})
	}
	return doc, nil
}

func (e *encoder) attr(a vdom.Attr, path string) (yaml.MapSlice, error) {
	item := yaml.MapSlice{{Key: "name", Value: a.Name}}
	if a.Namespace != "" {
		item = append(item, yaml.MapItem{Key: "ns", Value: a.Namespace})
	}

	var cb vdom.Callback
	switch v := a.Value.(type) {
	case vdom.Callback:
		cb = v
	case *vdom.Callback:
		if v != nil {
			cb = *v
		}
	default:
		value, err := normalize(a.Value)
		if err != nil {
			return nil, errors.New("E204").WithDetailf("%s: %v", path, err)
		}
		return append(item, yaml.MapItem{Key: "value", Value: value}), nil
	}

	if e.reg == nil {
		return nil, errors.New("E204").WithDetailf("%s: callback cannot be named without a registry", path)
	}
	name, ok := e.reg.Name(cb)
	if !ok {
		return nil, errors.New("E204").
			WithDetailf("%s: callback is not registered", path).
			WithSuggestion("Register the handler with Registry.Register before encoding.")
	}
	return append(item, yaml.MapItem{Key: "handler", Value: name}), nil
}
