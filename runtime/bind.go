package runtime

// Bindable nodes receive host services when mounted into a host.
type Bindable interface {
	Bind(services Services)
}

// Unbindable nodes release host services when removed.
type Unbindable interface {
	Unbind()
}

// BindTree calls Bind on nodes that implement Bindable.
func BindTree(root Node, services Services) {
	if services.isZero() {
		return
	}
	walk(root, func(n Node) {
		if b, ok := n.(Bindable); ok {
			b.Bind(services)
		}
	})
}

// UnbindTree calls Unbind on nodes that implement Unbindable.
func UnbindTree(root Node) {
	walk(root, func(n Node) {
		if u, ok := n.(Unbindable); ok {
			u.Unbind()
		}
	})
}
