package domain

import (
	"fmt"
	"sort"
)

// MaxCategoryDepth is the number of levels below the root (main, sub, subsub).
const MaxCategoryDepth = 3

// CategoryNode is a node of the category tree. The root has an empty name and
// holds the main categories as children.
type CategoryNode struct {
	Name     string                   `json:"name_en"`
	NameKR   string                   `json:"name_kr,omitempty"`
	Children map[string]*CategoryNode `json:"subcategories,omitempty"`
}

// NewRootCategory returns an empty tree root.
func NewRootCategory() *CategoryNode {
	return &CategoryNode{Children: make(map[string]*CategoryNode)}
}

// Child returns the named child.
func (n *CategoryNode) Child(name string) (*CategoryNode, bool) {
	if n == nil || n.Children == nil {
		return nil, false
	}
	child, ok := n.Children[name]
	return child, ok
}

// EnsureChild returns the named child, creating it when missing.
func (n *CategoryNode) EnsureChild(name, nameKR string) *CategoryNode {
	if n.Children == nil {
		n.Children = make(map[string]*CategoryNode)
	}
	child, ok := n.Children[name]
	if !ok {
		child = &CategoryNode{Name: name, NameKR: nameKR}
		n.Children[name] = child
	}
	if child.NameKR == "" {
		child.NameKR = nameKR
	}
	return child
}

// DisplayName returns the Korean name when lang asks for it and one is known.
func (n *CategoryNode) DisplayName(lang Language) string {
	if lang == LanguageKR && n.NameKR != "" {
		return n.NameKR
	}
	return n.Name
}

// ChildNames returns child names in sorted order.
func (n *CategoryNode) ChildNames() []string {
	if n == nil {
		return nil
	}
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasChildren reports whether the node has at least one child.
func (n *CategoryNode) HasChildren() bool {
	return n != nil && len(n.Children) > 0
}

// Find walks the tree along path starting at n.
func (n *CategoryNode) Find(path CategoryPath) (*CategoryNode, bool) {
	node := n
	for _, name := range path {
		child, ok := node.Child(name)
		if !ok {
			return nil, false
		}
		node = child
	}
	return node, node != nil
}

// Validate checks depth and naming constraints for a root node.
func (n *CategoryNode) Validate() error {
	if n == nil {
		return fmt.Errorf("category tree is missing")
	}
	return n.validate(0, "")
}

func (n *CategoryNode) validate(depth int, trail string) error {
	if depth > MaxCategoryDepth {
		return fmt.Errorf("category %q exceeds maximum depth of %d", trail, MaxCategoryDepth)
	}
	for key, child := range n.Children {
		location := key
		if trail != "" {
			location = trail + " > " + key
		}
		if child == nil {
			return fmt.Errorf("category %q is empty", location)
		}
		if key == "" || child.Name == "" {
			return fmt.Errorf("category %q has no name", location)
		}
		if child.Name != key {
			return fmt.Errorf("category %q is stored under key %q", child.Name, location)
		}
		if err := child.validate(depth+1, location); err != nil {
			return err
		}
	}
	return nil
}
