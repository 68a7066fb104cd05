// Package cfgtree loads the hierarchical documents that describe a chassis:
// the entity list and the device settings.
//
// A document is a tree of named nodes. Each node carries string attributes
// and ordered children. Two encodings are accepted.
//
// XML, where the element name is the node name and element attributes are
// node attributes:
//
//	<entity_list>
//	  <fan_tray instance="1" type="SDI_ENTITY_FAN_TRAY" presence="fixed">
//	    <resource reference="fan1" name="Fan 1" type="SDI_RESOURCE_FAN"/>
//	  </fan_tray>
//	</entity_list>
//
// YAML, where the node key names the node, scalar keys are attributes and
// children is a sequence of nodes:
//
//	node: entity_list
//	children:
//	  - node: fan_tray
//	    instance: 1
//	    type: SDI_ENTITY_FAN_TRAY
//	    presence: fixed
package cfgtree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format names a document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatXML  Format = "xml"
)

var (
	// ErrUnknownFormat is returned when the encoding cannot be determined.
	ErrUnknownFormat = errors.New("cfgtree: unknown document format")

	// ErrEmptyDocument is returned when a document has no root node.
	ErrEmptyDocument = errors.New("cfgtree: empty document")
)

const (
	nodeKey     = "node"
	childrenKey = "children"
)

// Node is one element of a configuration tree.
type Node struct {
	Name     string
	Attrs    map[string]string
	Children []*Node
}

// Attr returns the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil || n.Attrs == nil {
		return "", false
	}
	v, ok := n.Attrs[name]
	return v, ok
}

// Child returns the first child whose name attribute equals name.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if v, ok := c.Attr("name"); ok && v == name {
			return c
		}
	}
	return nil
}

// ChildByElement returns the first child with the given node name.
func (n *Node) ChildByElement(element string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == element {
			return c
		}
	}
	return nil
}

// FirstChild returns the first child or nil.
func (n *Node) FirstChild() *Node {
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// Load reads a document, choosing the decoder from the file extension.
func Load(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var format Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	case ".xml":
		format = FormatXML
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	root, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return root, nil
}

// Parse decodes an in-memory document.
func Parse(data []byte, format Format) (*Node, error) {
	switch format {
	case FormatYAML:
		return parseYAML(data)
	case FormatXML:
		return parseXML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func parseYAML(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrEmptyDocument
	}
	return fromYAML(doc.Content[0])
}

func fromYAML(y *yaml.Node) (*Node, error) {
	if y.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: node must be a mapping", y.Line)
	}

	n := &Node{Attrs: make(map[string]string)}
	for i := 0; i+1 < len(y.Content); i += 2 {
		key, val := y.Content[i].Value, y.Content[i+1]

		switch {
		case key == nodeKey:
			n.Name = val.Value
		case key == childrenKey:
			if val.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("line %d: children must be a sequence", val.Line)
			}
			for _, c := range val.Content {
				child, err := fromYAML(c)
				if err != nil {
					return nil, err
				}
				n.Children = append(n.Children, child)
			}
		case val.Kind == yaml.ScalarNode:
			n.Attrs[key] = val.Value
		default:
			return nil, fmt.Errorf("line %d: attribute %q must be a scalar", val.Line, key)
		}
	}

	if n.Name == "" {
		return nil, fmt.Errorf("line %d: missing %q key", y.Line, nodeKey)
	}
	return n, nil
}

func parseXML(data []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var stack []*Node
	var root *Node
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local, Attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				n.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			} else if root == nil {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if root == nil {
		return nil, ErrEmptyDocument
	}
	return root, nil
}
