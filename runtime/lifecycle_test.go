package runtime

import "testing"

type treeNode struct {
	*Instance
	children []Node
	log      *[]string
}

func newTreeNode(name string, log *[]string, children ...Node) *treeNode {
	n := &treeNode{Instance: NewInstance(name), children: children, log: log}
	n.OnAttach(func() { *log = append(*log, "attach:"+name) })
	n.OnDetach(func() { *log = append(*log, "detach:"+name) })
	n.OnUpdate(func() { *log = append(*log, "update:"+name) })
	return n
}

func (n *treeNode) ChildNodes() []Node {
	return n.children
}

func TestMountTree_Order(t *testing.T) {
	var log []string
	child := newTreeNode("child", &log)
	root := newTreeNode("root", &log, child)

	MountTree(root)
	UpdateTree(root)
	UnmountTree(root)

	want := []string{
		"attach:root", "attach:child",
		"update:root", "update:child",
		"detach:child", "detach:root",
	}
	if len(log) != len(want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, log)
		}
	}
}

func TestUnmountTree_DetachesParentWhenChildPanics(t *testing.T) {
	var log []string
	child := newTreeNode("child", &log)
	child.OnDetach(func() { panic("child cleanup") })
	root := newTreeNode("root", &log, child)
	MountTree(root)

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected child panic to propagate")
			}
		}()
		UnmountTree(root)
	}()

	if root.Phase() != Detached || child.Phase() != Detached {
		t.Fatalf("expected both detached, got root=%s child=%s", root.Phase(), child.Phase())
	}
	found := 0
	for _, entry := range log {
		if entry == "detach:child" || entry == "detach:root" {
			found++
		}
	}
	if found != 2 {
		t.Fatalf("expected both detach hooks to run, got %v", log)
	}
}

func TestTree_NilNodes(t *testing.T) {
	MountTree(nil)
	UpdateTree(nil)
	UnmountTree(nil)
}
