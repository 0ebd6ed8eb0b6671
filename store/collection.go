// Package store defines the collection data model and the Storage interface
// implemented by the persistence backends.
package store

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Collection is the root entity: an ordered mapping from list name to an
// ordered sequence of item strings. Keys are case-preserved as first created;
// iteration follows insertion order.
type Collection struct {
	names []string
	items map[string][]string
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{
		items: make(map[string][]string),
	}
}

// Names returns the list names in insertion order.
func (c *Collection) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of lists.
func (c *Collection) Len() int {
	return len(c.names)
}

// Has reports whether a list with the exact name exists.
func (c *Collection) Has(name string) bool {
	_, ok := c.items[name]
	return ok
}

// Items returns a copy of the items of the named list.
func (c *Collection) Items(name string) []string {
	items, ok := c.items[name]
	if !ok {
		return nil
	}
	out := make([]string, len(items))
	copy(out, items)
	return out
}

// ItemCount returns the number of items in the named list.
func (c *Collection) ItemCount(name string) int {
	return len(c.items[name])
}

// Resolve maps a possibly differently-cased name to the stored key.
// Returns the stored key and true, or "" and false if no list matches.
func (c *Collection) Resolve(name string) (string, bool) {
	for _, n := range c.names {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return "", false
}

// CreateList inserts an empty list keyed by name. The caller is responsible
// for collision and limit checks.
func (c *Collection) CreateList(name string) {
	if _, ok := c.items[name]; ok {
		return
	}
	c.names = append(c.names, name)
	c.items[name] = []string{}
}

// DeleteList removes the named list. Returns false if it does not exist.
func (c *Collection) DeleteList(name string) bool {
	if _, ok := c.items[name]; !ok {
		return false
	}
	delete(c.items, name)
	for i, n := range c.names {
		if n == name {
			c.names = append(c.names[:i], c.names[i+1:]...)
			break
		}
	}
	return true
}

// Append adds an item to the end of the named list.
func (c *Collection) Append(name, item string) {
	if _, ok := c.items[name]; !ok {
		return
	}
	c.items[name] = append(c.items[name], item)
}

// Contains reports whether the named list holds the item (exact match).
func (c *Collection) Contains(name, item string) bool {
	for _, it := range c.items[name] {
		if it == item {
			return true
		}
	}
	return false
}

// RemoveItem removes the first occurrence of item from the named list.
// Returns false if the item is not present.
func (c *Collection) RemoveItem(name, item string) bool {
	items, ok := c.items[name]
	if !ok {
		return false
	}
	for i, it := range items {
		if it == item {
			c.items[name] = append(items[:i], items[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the collection.
func (c *Collection) Clone() *Collection {
	out := NewCollection()
	for _, name := range c.names {
		out.names = append(out.names, name)
		items := make([]string, len(c.items[name]))
		copy(items, c.items[name])
		out.items[name] = items
	}
	return out
}

// Equal reports whether two collections hold the same lists in the same
// order with the same ordered items.
func (c *Collection) Equal(other *Collection) bool {
	if len(c.names) != len(other.names) {
		return false
	}
	for i, name := range c.names {
		if other.names[i] != name {
			return false
		}
		a, b := c.items[name], other.items[name]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	return true
}

// MarshalYAML serializes the collection as a mapping from list name to item
// sequence, preserving insertion order.
func (c *Collection) MarshalYAML() (interface{}, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range c.names {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}
		seqNode := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range c.items[name] {
			seqNode.Content = append(seqNode.Content, &yaml.Node{
				Kind:  yaml.ScalarNode,
				Tag:   "!!str",
				Value: item,
			})
		}
		root.Content = append(root.Content, keyNode, seqNode)
	}
	return root, nil
}

// CollectionFromNode converts a decoded YAML document into a collection.
// It returns an error if the document root is not a mapping from string to
// sequence of strings; that error indicates a shape problem, not corruption,
// since the input already parsed.
func CollectionFromNode(doc *yaml.Node) (*Collection, error) {
	node := doc
	if node.Kind == 0 {
		// Zero-byte input decodes to an unset node.
		return NewCollection(), nil
	}
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			// Empty document, e.g. a zero-byte file.
			return NewCollection(), nil
		}
		node = node.Content[0]
	}
	if node.Tag == "!!null" {
		return NewCollection(), nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("root is %s, want a mapping of list name to items", nodeKind(node))
	}

	col := NewCollection()
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("list name is %s, want a string", nodeKind(keyNode))
		}
		if valNode.Kind != yaml.SequenceNode && valNode.Tag != "!!null" {
			return nil, fmt.Errorf("list %q holds %s, want a sequence of items", keyNode.Value, nodeKind(valNode))
		}
		col.CreateList(keyNode.Value)
		for _, itemNode := range valNode.Content {
			if itemNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("list %q contains %s, want a string item", keyNode.Value, nodeKind(itemNode))
			}
			col.Append(keyNode.Value, itemNode.Value)
		}
	}
	return col, nil
}

// nodeKind returns a readable name for a YAML node kind.
func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.DocumentNode:
		return "a document"
	case yaml.MappingNode:
		return "a mapping"
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.AliasNode:
		return "an alias"
	}
	return "an unknown node"
}
