package vdom

import (
	"fmt"
	"strings"
)

// Namespaces for foreign elements.
const (
	NamespaceSVG    = "http://www.w3.org/2000/svg"
	NamespaceMathML = "http://www.w3.org/1998/Math/MathML"
)

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// Elem creates an element with the given tag.
// Arguments can be: nil, Attr, []Attr, *VNode, []*VNode, string.
// Strings become text children.
func Elem(tag string, args ...any) *VNode {
	return createElement("", tag, args)
}

// NSElem creates an element in the given namespace.
func NSElem(namespace, tag string, args ...any) *VNode {
	return createElement(namespace, tag, args)
}

// createElement creates a new VNode with the given tag and arguments.
func createElement(namespace, tag string, args []any) *VNode {
	node := &VNode{
		Kind:      KindElement,
		Namespace: namespace,
		Tag:       tag,
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue
		case Attr:
			if !v.IsEmpty() {
				node.Attrs = append(node.Attrs, v)
			}
		case []Attr:
			for _, a := range v {
				if !a.IsEmpty() {
					node.Attrs = append(node.Attrs, a)
				}
			}
		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}
		case []*VNode:
			for _, c := range v {
				if c != nil {
					node.Children = append(node.Children, c)
				}
			}
		case string:
			node.Children = append(node.Children, Text(v))
		default:
			panic(fmt.Sprintf("vdom: unsupported element argument %T", arg))
		}
	}

	return node
}

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Common elements

func Div(args ...any) *VNode    { return Elem("div", args...) }
func Span(args ...any) *VNode   { return Elem("span", args...) }
func P(args ...any) *VNode      { return Elem("p", args...) }
func B(args ...any) *VNode      { return Elem("b", args...) }
func I(args ...any) *VNode      { return Elem("i", args...) }
func Strong(args ...any) *VNode { return Elem("strong", args...) }
func H1(args ...any) *VNode     { return Elem("h1", args...) }
func H2(args ...any) *VNode     { return Elem("h2", args...) }
func Ul(args ...any) *VNode     { return Elem("ul", args...) }
func Li(args ...any) *VNode     { return Elem("li", args...) }
func Button(args ...any) *VNode { return Elem("button", args...) }
func Input(args ...any) *VNode  { return Elem("input", args...) }

// Svg creates an <svg> element in the SVG namespace.
func Svg(args ...any) *VNode { return NSElem(NamespaceSVG, "svg", args...) }

// Attributes

// Attribute creates an attribute with the given name and value.
func Attribute(name string, value any) Attr {
	return Attr{Name: name, Value: value}
}

// NSAttribute creates a namespaced attribute such as xlink:href.
func NSAttribute(namespace, name string, value any) Attr {
	return Attr{Namespace: namespace, Name: name, Value: value}
}

// ID sets the id attribute.
func ID(id string) Attr { return Attribute("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
// Several Class attributes on one element are merged when diffed.
func Class(classes ...string) Attr { return Attribute("class", strings.Join(classes, " ")) }

// Style sets the style attribute.
func Style(style string) Attr { return Attribute("style", style) }

// Href sets the href attribute.
func Href(url string) Attr { return Attribute("href", url) }

// Type sets the type attribute.
func Type(t string) Attr { return Attribute("type", t) }

// Value sets the value attribute.
func Value(v any) Attr { return Attribute("value", v) }

// Disabled sets the disabled attribute.
func Disabled(disabled bool) Attr { return Attribute("disabled", disabled) }

// Data creates a data-* attribute.
func Data(key, value string) Attr { return Attribute("data-"+key, value) }

// Key creates a key attribute for reconciliation.
// The key is converted to a string using fmt.Sprintf.
func Key(key any) Attr {
	return Attribute(KeyAttr, fmt.Sprintf("%v", key))
}

// Events

// On attaches handler to the named event ("click" becomes "onclick").
// Pass a Callback to reuse an existing lineage; a func(Event) starts a new one.
func On(event string, handler any) Attr {
	switch h := handler.(type) {
	case Callback:
		return Attribute("on"+event, h)
	case func(Event):
		return Attribute("on"+event, NewCallback(h))
	case func():
		return Attribute("on"+event, NewCallback(func(Event) { h() }))
	default:
		panic(fmt.Sprintf("vdom: unsupported handler type %T", handler))
	}
}

// OnClick handles click events.
func OnClick(handler any) Attr { return On("click", handler) }

// OnInput handles input events.
func OnInput(handler any) Attr { return On("input", handler) }

// OnChange handles change events.
func OnChange(handler any) Attr { return On("change", handler) }

// OnSubmit handles form submit events.
func OnSubmit(handler any) Attr { return On("submit", handler) }
