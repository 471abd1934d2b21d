package runtime

// ChildProvider is implemented by nodes with children.
type ChildProvider interface {
	ChildNodes() []Node
}

// MountTree attaches root and then its descendants.
func MountTree(root Node) {
	mountNode(root)
}

// UnmountTree detaches the descendants of root and then root itself.
func UnmountTree(root Node) {
	unmountNode(root)
}

// UpdateTree runs an update pass over root and its descendants.
func UpdateTree(root Node) {
	walk(root, func(n Node) {
		n.Scope().Update()
	})
}

func mountNode(n Node) {
	if isNil(n) {
		return
	}
	n.Scope().Attach()
	if children, ok := n.(ChildProvider); ok {
		for _, child := range children.ChildNodes() {
			mountNode(child)
		}
	}
}

func unmountNode(n Node) {
	if isNil(n) {
		return
	}
	// A panicking child must not leave its parent attached.
	defer n.Scope().Detach()
	if children, ok := n.(ChildProvider); ok {
		for _, child := range children.ChildNodes() {
			unmountNode(child)
		}
	}
}

func walk(n Node, fn func(Node)) {
	if isNil(n) {
		return
	}
	fn(n)
	if children, ok := n.(ChildProvider); ok {
		for _, child := range children.ChildNodes() {
			walk(child, fn)
		}
	}
}

func isNil(n Node) bool {
	return n == nil || n.Scope() == nil
}
