package widgets

import (
	"github.com/odvcencio/elevation/runtime"
)

// Widget is a node that can draw itself.
type Widget interface {
	runtime.Node
	Draw(c Canvas, bounds Rect)
}

// Component is the base of every widget: a lifecycle scope plus children.
// Host services bind through the embedded instance.
type Component struct {
	*runtime.Instance
	children []Widget
}

// NewComponent creates a component named name.
func NewComponent(name string) Component {
	return Component{Instance: runtime.NewInstance(name)}
}

// Add appends children. Add them before the tree is mounted.
func (c *Component) Add(children ...Widget) {
	for _, child := range children {
		if child != nil {
			c.children = append(c.children, child)
		}
	}
}

// Children returns the component's children.
func (c *Component) Children() []Widget {
	return c.children
}

// ChildNodes returns the children for lifecycle traversal.
func (c *Component) ChildNodes() []runtime.Node {
	nodes := make([]runtime.Node, len(c.children))
	for i, child := range c.children {
		nodes[i] = child
	}
	return nodes
}

// Stack lays its children out top to bottom, one row each.
type Stack struct {
	Component
}

// NewStack creates a vertical stack of children.
func NewStack(children ...Widget) *Stack {
	s := &Stack{Component: NewComponent("stack")}
	s.Add(children...)
	return s
}

// Draw draws each child on its own row until the bounds run out.
func (s *Stack) Draw(c Canvas, bounds Rect) {
	for i, child := range s.children {
		row := bounds.Row(i)
		if row.Empty() {
			return
		}
		child.Draw(c, row)
	}
}
