package render

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/vango-dev/vdiff/pkg/vdom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables indented output, one block element per line.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string

	// ShowIndices adds data-vidx="N" to every element, N being its preorder
	// traversal index.
	ShowIndices bool
}

// Renderer renders VNode trees to HTML. A Renderer holds no per-render
// state and may be shared.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders a VNode tree to an HTML string.
func (r *Renderer) RenderToString(node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a VNode tree to the given writer.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.VNode) error {
	rs := renderState{Renderer: r, w: w}
	rs.node(node, 0, "", true)
	return rs.err
}

// renderState carries one render call. The first write error sticks and
// turns later writes into no-ops.
type renderState struct {
	*Renderer
	w    io.Writer
	err  error
	next int // traversal index of the next node
}

func (s *renderState) write(str string) {
	if s.err != nil {
		return
	}
	_, s.err = io.WriteString(s.w, str)
}

// node renders n. With Pretty, flow marks nodes laid out on their own line:
// the root and children of block elements.
func (s *renderState) node(n *vdom.VNode, depth int, parentNS string, flow bool) {
	if n == nil || s.err != nil {
		return
	}
	idx := s.next
	s.next++

	switch n.Kind {
	case vdom.KindElement:
		s.element(n, idx, depth, parentNS, flow)
	case vdom.KindText:
		s.write(escapeHTML(n.Text))
	default:
		s.err = fmt.Errorf("render: unknown node kind %d at index %d", n.Kind, idx)
	}
}

func (s *renderState) element(n *vdom.VNode, idx, depth int, parentNS string, flow bool) {
	tag := n.Tag
	flow = flow && s.config.Pretty
	if flow {
		s.indent(depth)
	}

	s.write("<" + tag)
	if n.Namespace != "" && n.Namespace != parentNS {
		s.write(` xmlns="` + escapeAttr(n.Namespace) + `"`)
	}
	s.attributes(n)
	if s.config.ShowIndices {
		s.write(` data-vidx="` + strconv.Itoa(idx) + `"`)
	}
	s.write(">")

	if vdom.IsVoidElement(tag) && n.Namespace == "" {
		// Children of a void element cannot be rendered but still occupy
		// traversal indices.
		for _, c := range n.Children {
			s.next += c.Size()
		}
		if flow {
			s.write("\n")
		}
		return
	}

	block := flow && len(n.Children) > 0 && !isInlineElement(tag)
	if block {
		s.write("\n")
	}
	for _, c := range n.Children {
		if block && c.IsText() {
			s.indent(depth + 1)
			s.node(c, depth+1, n.Namespace, false)
			s.write("\n")
			continue
		}
		s.node(c, depth+1, n.Namespace, block)
	}
	if block {
		s.indent(depth)
	}

	s.write("</" + tag + ">")
	if flow {
		s.write("\n")
	}
}

// attributes renders the merged attributes of n in first-appearance order.
func (s *renderState) attributes(n *vdom.VNode) {
	for _, m := range n.MergedAttrs() {
		if m.Namespace == "" && m.Name == vdom.KeyAttr {
			continue
		}
		name := m.Name
		if m.Namespace != "" {
			name = m.Namespace + ":" + m.Name
		}

		if vdom.IsBooleanAttr(m.Name) {
			if on, ok := booleanValue(m.Values); ok {
				if on {
					s.write(" " + name)
				}
				continue
			}
		}

		value := vdom.JoinValues(m)
		if value == "" {
			continue
		}
		s.write(" " + name + `="` + escapeAttr(value) + `"`)
	}
}

// booleanValue reports whether every value is a bool, and if so whether any
// is true.
func booleanValue(values []any) (on, ok bool) {
	for _, v := range values {
		b, isBool := v.(bool)
		if !isBool {
			return false, false
		}
		on = on || b
	}
	return on, true
}

// indent writes indentation for pretty printing.
func (s *renderState) indent(depth int) {
	for range depth {
		s.write(s.config.Indent)
	}
}
