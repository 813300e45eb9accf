package core

import (
	"fmt"
	"strings"
)

// Attr is a single attribute of a markup element. Order of attributes on a
// Node is the order in which they appear in the document.
type Attr struct {
	Name  string
	Value string
}

// Node is an element of a parsed markup document.
type Node struct {
	Name     string
	Attrs    []Attr
	Children []*Node
	// Text is the element's character data, concatenated and trimmed.
	Text   string
	Line   int
	Parent *Node
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasChildren reports whether the node has child elements.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// Append adds child as the last child of n and returns child.
func (n *Node) Append(child *Node) *Node {
	child.Parent = n
	n.Children = append(n.Children, child)
	return child
}

// Path renders the position of the node in its document, e.g. "records/set/Task[2]".
// The index is 1-based among siblings sharing the same name and is omitted when unique.
func (n *Node) Path() string {
	var parts []string
	for cur := n; cur != nil; cur = cur.Parent {
		parts = append(parts, cur.segment())
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

func (n *Node) segment() string {
	if n.Parent == nil {
		return n.Name
	}
	index, count := 0, 0
	for _, sib := range n.Parent.Children {
		if sib.Name != n.Name {
			continue
		}
		count++
		if sib == n {
			index = count
		}
	}
	if count <= 1 {
		return n.Name
	}
	return fmt.Sprintf("%s[%d]", n.Name, index)
}

// String returns a short diagnostic form of the node.
func (n *Node) String() string {
	if n.Line > 0 {
		return fmt.Sprintf("<%s> at line %d", n.Path(), n.Line)
	}
	return fmt.Sprintf("<%s>", n.Path())
}
