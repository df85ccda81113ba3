package render

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vdiff/pkg/vdom"
)

func render(t *testing.T, cfg RendererConfig, n *vdom.VNode) string {
	t.Helper()
	html, err := NewRenderer(cfg).RenderToString(n)
	require.NoError(t, err)
	return html
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		node *vdom.VNode
		want string
	}{
		{
			name: "nil",
			node: nil,
			want: "",
		},
		{
			name: "text",
			node: vdom.Text("Hello, World!"),
			want: "Hello, World!",
		},
		{
			name: "text escaping",
			node: vdom.Text("<script>alert('xss')</script>"),
			want: "&lt;script&gt;alert(&#39;xss&#39;)&lt;/script&gt;",
		},
		{
			name: "nested elements",
			node: vdom.Div(vdom.Class("container"), vdom.H1(vdom.Text("Title")), vdom.P("Content")),
			want: `<div class="container"><h1>Title</h1><p>Content</p></div>`,
		},
		{
			name: "void element keeps build order",
			node: vdom.Input(vdom.Type("text"), vdom.Attribute("name", "email")),
			want: `<input type="text" name="email">`,
		},
		{
			name: "boolean attribute on",
			node: vdom.Input(vdom.Disabled(true)),
			want: `<input disabled>`,
		},
		{
			name: "boolean attribute off",
			node: vdom.Input(vdom.Disabled(false)),
			want: `<input>`,
		},
		{
			name: "boolean attribute with string value",
			node: vdom.Div(vdom.Attribute("hidden", "until-found")),
			want: `<div hidden="until-found"></div>`,
		},
		{
			name: "merged class and style",
			node: vdom.Div(vdom.Class("a"), vdom.Class("b"), vdom.Style("color: red;"), vdom.Style("margin: 0")),
			want: `<div class="a b" style="color: red; margin: 0"></div>`,
		},
		{
			name: "callbacks and key dropped",
			node: vdom.Button(vdom.Key("k"), vdom.OnClick(func() {}), vdom.Type("button"), "Go"),
			want: `<button type="button">Go</button>`,
		},
		{
			name: "numbers",
			node: vdom.Div(vdom.Attribute("tabindex", 3), vdom.Attribute("data-ratio", 0.5)),
			want: `<div tabindex="3" data-ratio="0.5"></div>`,
		},
		{
			name: "attribute escaping",
			node: vdom.Div(vdom.Attribute("title", `a"b<c>`)),
			want: `<div title="a&quot;b&lt;c&gt;"></div>`,
		},
		{
			name: "empty value skipped",
			node: vdom.Div(vdom.Class()),
			want: `<div></div>`,
		},
		{
			name: "namespaces",
			node: vdom.Div(vdom.Svg(vdom.NSElem(vdom.NamespaceSVG, "circle", vdom.NSAttribute("xlink", "href", "#a")))),
			want: `<div><svg xmlns="http://www.w3.org/2000/svg"><circle xlink:href="#a"></circle></svg></div>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, RendererConfig{}, tt.node))
		})
	}
}

func TestRenderIndices(t *testing.T) {
	tree := vdom.Div(vdom.Ul(vdom.Li("a"), vdom.Li("b")), vdom.P("x"))
	got := render(t, RendererConfig{ShowIndices: true}, tree)
	assert.Equal(t,
		`<div data-vidx="0"><ul data-vidx="1"><li data-vidx="2">a</li><li data-vidx="4">b</li></ul><p data-vidx="6">x</p></div>`,
		got)
}

func TestRenderIndicesSkipVoidChildren(t *testing.T) {
	input := &vdom.VNode{Kind: vdom.KindElement, Tag: "input", Children: []*vdom.VNode{vdom.Text("x")}}
	tree := vdom.Div(input, vdom.Span())
	got := render(t, RendererConfig{ShowIndices: true}, tree)
	assert.Equal(t, `<div data-vidx="0"><input data-vidx="1"><span data-vidx="3"></span></div>`, got)
}

func TestRenderIndicesMatchPatches(t *testing.T) {
	prev := vdom.Div(vdom.P(vdom.B("x"), vdom.I("y")), vdom.Span("z"))
	next := vdom.Div(vdom.P(vdom.B("x"), vdom.I("y")), vdom.Span(vdom.Class("hot"), "z"))
	patches := vdom.Diff(prev, next)
	require.Len(t, patches, 1)
	require.Equal(t, vdom.PatchAddAttributes, patches[0].Op)

	html := render(t, RendererConfig{ShowIndices: true}, prev)
	assert.Contains(t, html, `<span data-vidx="6">`)
	assert.Equal(t, 6, patches[0].OldIdx)
}

func TestRenderPretty(t *testing.T) {
	tree := vdom.Div(vdom.Class("app"),
		vdom.H1("Title"),
		vdom.Ul(vdom.Li("a"), vdom.Li(vdom.B("b"))),
		vdom.Input(vdom.Type("text")),
	)
	want := `<div class="app">
  <h1>
    Title
  </h1>
  <ul>
    <li>
      a
    </li>
    <li>
      <b>b</b>
    </li>
  </ul>
  <input type="text">
</div>
`
	assert.Equal(t, want, render(t, RendererConfig{Pretty: true}, tree))
}

func TestRenderPrettyIndent(t *testing.T) {
	got := render(t, RendererConfig{Pretty: true, Indent: "\t"}, vdom.Div(vdom.P("x")))
	assert.Equal(t, "<div>\n\t<p>\n\t\tx\n\t</p>\n</div>\n", got)
}

type failingWriter struct{ n int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n == 0 {
		return 0, stderrors.New("disk full")
	}
	w.n--
	return len(p), nil
}

func TestRenderWriteError(t *testing.T) {
	r := NewRenderer(RendererConfig{})
	err := r.RenderToWriter(&failingWriter{n: 2}, vdom.Div(vdom.P("a"), vdom.P("b")))
	assert.EqualError(t, err, "disk full")
}

func TestRenderUnknownKind(t *testing.T) {
	_, err := NewRenderer(RendererConfig{}).RenderToString(vdom.Div(&vdom.VNode{Kind: 9}))
	assert.ErrorContains(t, err, "unknown node kind")
}
