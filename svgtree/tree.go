// Package svgtree parses SVG documents into a tree of
// elements, whose attributes are already resolved:
// the `style` attribute is expanded and inheritable
// attributes are copied from parents to children.
//
// The tree is read only once built: renderers never
// modify it.
package svgtree

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"
)

// ErrNoElement is returned when the input has no element at all.
var ErrNoElement = errors.New("invalid svg document: no element found")

// Node is one element of an SVG document.
type Node struct {
	Tag      string            // local name, such as "rect"
	Attrs    map[string]string // own and inherited attributes
	Own      map[string]string // attributes set on the element
	Children []*Node

	// Root is true for the top-level elements of the document.
	Root bool
}

// Get returns the attribute value for `key`, or the empty string.
func (n *Node) Get(key string) string { return n.Attrs[key] }

// Has returns true if the attribute is present (even empty).
func (n *Node) Has(key string) bool {
	_, ok := n.Attrs[key]
	return ok
}

// ID returns the id attribute.
func (n *Node) ID() string { return n.Attrs["id"] }

// attributes which are never copied from parent to children
var notInherited = map[string]bool{
	"clip":         true,
	"clip-path":    true,
	"filter":       true,
	"height":       true,
	"id":           true,
	"mask":         true,
	"opacity":      true,
	"overflow":     true,
	"rotate":       true,
	"stop-color":   true,
	"stop-opacity": true,
	"style":        true,
	"transform":    true,
	"viewBox":      true,
	"width":        true,
	"x":            true,
	"y":            true,
	"dx":           true,
	"dy":           true,
	"href":         true,
}

// Inherited reports whether `attr` is propagated to children.
func Inherited(attr string) bool { return !notInherited[attr] }

// Inherit returns the attributes a child of `parent`
// receives before its own ones are applied.
func Inherit(parent map[string]string) map[string]string {
	out := make(map[string]string, len(parent))
	for k, v := range parent {
		if Inherited(k) {
			out[k] = v
		}
	}
	return out
}

// ParseStyle splits a `k1: v1; k2: v2` declaration list.
// Malformed declarations are ignored.
func ParseStyle(style string) map[string]string {
	out := make(map[string]string)
	for _, decl := range strings.Split(style, ";") {
		kv := strings.SplitN(decl, ":", 2)
		if len(kv) != 2 {
			continue
		}
		k, v := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])
		if k == "" {
			continue
		}
		out[k] = v
	}
	return out
}

func newNode(se xml.StartElement, parent *Node) *Node {
	node := &Node{Tag: se.Name.Local, Own: make(map[string]string, len(se.Attr))}
	var style string
	for _, attr := range se.Attr {
		if attr.Name.Space == "xmlns" || (attr.Name.Local == "xmlns" && attr.Name.Space == "") {
			continue
		}
		switch attr.Name.Local {
		case "style":
			style = attr.Value
		case "href": // both xlink:href and href
			node.Own["href"] = strings.TrimSpace(attr.Value)
		default:
			node.Own[attr.Name.Local] = attr.Value
		}
	}
	// style declarations take precedence over presentation attributes
	for k, v := range ParseStyle(style) {
		node.Own[k] = v
	}

	var inherited map[string]string
	if parent != nil {
		inherited = parent.Attrs
	}
	node.Attrs = resolve(inherited, node.Own)
	return node
}

func resolve(inherited, own map[string]string) map[string]string {
	out := Inherit(inherited)
	for k, v := range own {
		out[k] = v
	}
	return out
}

// Clone returns a deep copy of `n`, whose attributes
// are inherited from `parentAttrs` instead of its
// original ancestors.
func (n *Node) Clone(parentAttrs map[string]string) *Node {
	out := &Node{
		Tag:   n.Tag,
		Attrs: resolve(parentAttrs, n.Own),
		Own:   n.Own,
		Root:  n.Root,
	}
	out.Children = make([]*Node, len(n.Children))
	for i, child := range n.Children {
		out.Children[i] = child.Clone(out.Attrs)
	}
	return out
}

// Parse reads an SVG document.
// When the input contains several top-level elements,
// the following ones are appended to the children of the first,
// and all of them are marked as root.
func Parse(r io.Reader) (*Node, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel
	decoder.Entity = xml.HTMLEntity

	var (
		root  *Node
		stack []*Node
	)
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrap(err, "invalid svg document")
		}
		switch se := t.(type) {
		case xml.StartElement:
			var parent *Node
			if len(stack) != 0 {
				parent = stack[len(stack)-1]
			}
			node := newNode(se, parent)
			switch {
			case parent != nil:
				parent.Children = append(parent.Children, node)
			case root == nil:
				node.Root = true
				root = node
			default:
				node.Root = true
				root.Children = append(root.Children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) != 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if root == nil {
		return nil, ErrNoElement
	}
	return root, nil
}

// ParseBytes is a convenience wrapper for Parse.
func ParseBytes(b []byte) (*Node, error) { return Parse(bytes.NewReader(b)) }

// ParseFile reads the SVG document at `filename`.
func ParseFile(filename string) (*Node, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "opening svg document")
	}
	defer f.Close()
	return Parse(f)
}
