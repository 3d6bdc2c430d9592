package tree

import (
	"reflect"
	"regexp"
	"slices"
)

// Node is a single entry in the tree: either a *Dir or a Leaf.
type Node interface {
	isNode()
}

// Leaf holds an opaque value. Lookups never traverse into a Leaf.
type Leaf struct {
	Value any
}

func (Leaf) isNode() {}

// Dir maps names to child nodes. Children keep the order in which they
// were added; listings report that order, not a sorted one.
//
// A Dir is never mutated once it is reachable from a root. All updates go
// through With/Without, which copy the Dir (and only the Dirs along the
// affected path) and share every untouched child.
type Dir struct {
	names   []string
	entries map[string]Node
}

func (*Dir) isNode() {}

// Entry is a named child, used to construct directories.
type Entry struct {
	Name string
	Node Node
}

// nameRE admits the atomic names a directory key may carry: the subset of
// keyword syntax that survives the persisted literal and the shell's path
// grammar. No delimiters, no whitespace, no leading digit, dot, or dash.
var nameRE = regexp.MustCompile(`^[A-Za-z_*+!?$%&=<>][A-Za-z0-9_*+!?$%&=<>.-]*$`)

// ValidName reports whether name may be used as a directory key.
func ValidName(name string) bool {
	return nameRE.MatchString(name)
}

func NewDir(entries ...Entry) *Dir {
	d := &Dir{entries: make(map[string]Node, len(entries))}
	for _, e := range entries {
		if _, ok := d.entries[e.Name]; !ok {
			d.names = append(d.names, e.Name)
		}
		d.entries[e.Name] = e.Node
	}
	return d
}

func (d *Dir) Len() int {
	return len(d.names)
}

// Names returns the child names in directory order.
func (d *Dir) Names() []string {
	return slices.Clone(d.names)
}

func (d *Dir) Child(name string) (Node, bool) {
	n, ok := d.entries[name]
	return n, ok
}

// With returns a copy of d with name bound to node. The receiver is unchanged.
func (d *Dir) With(name string, node Node) *Dir {
	next := d.clone()
	if _, ok := next.entries[name]; !ok {
		next.names = append(next.names, name)
	}
	next.entries[name] = node
	return next
}

// Without returns a copy of d with name removed. The receiver is unchanged.
func (d *Dir) Without(name string) *Dir {
	if _, ok := d.entries[name]; !ok {
		return d
	}
	next := d.clone()
	next.names = slices.DeleteFunc(next.names, func(n string) bool { return n == name })
	delete(next.entries, name)
	return next
}

func (d *Dir) clone() *Dir {
	next := &Dir{
		names:   slices.Clone(d.names),
		entries: make(map[string]Node, len(d.entries)),
	}
	for name, node := range d.entries {
		next.entries[name] = node
	}
	return next
}

// Get walks path from root. It reports false when any segment is missing
// or when it would have to traverse into a Leaf.
func Get(root *Dir, path []string) (Node, bool) {
	if root == nil {
		return nil, false
	}
	var node Node = root
	for _, name := range path {
		dir, ok := node.(*Dir)
		if !ok {
			return nil, false
		}
		node, ok = dir.Child(name)
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// With returns a new root with node bound at path, rebuilding only the
// directories along path and creating any that are missing. An existing
// Leaf in an intermediate position is replaced by a fresh Dir, matching
// the silent-overwrite behavior of mkdir.
func With(root *Dir, path []string, node Node) *Dir {
	if len(path) == 0 {
		if dir, ok := node.(*Dir); ok {
			return dir
		}
		return root
	}
	if root == nil {
		root = NewDir()
	}
	child, ok := root.Child(path[0])
	if len(path) == 1 {
		return root.With(path[0], node)
	}
	sub, isDir := child.(*Dir)
	if !ok || !isDir {
		sub = NewDir()
	}
	return root.With(path[0], With(sub, path[1:], node))
}

// Without returns a new root with the entry at path removed from its true
// parent. It reports false, returning root unchanged, when the path does
// not lead to an existing entry.
func Without(root *Dir, path []string) (*Dir, bool) {
	if root == nil || len(path) == 0 {
		return root, false
	}
	if len(path) == 1 {
		if _, ok := root.Child(path[0]); !ok {
			return root, false
		}
		return root.Without(path[0]), true
	}
	sub, ok := root.Child(path[0])
	if !ok {
		return root, false
	}
	dir, ok := sub.(*Dir)
	if !ok {
		return root, false
	}
	next, ok := Without(dir, path[1:])
	if !ok {
		return root, false
	}
	return root.With(path[0], next), true
}

// Equal reports structural equality: same names, same shape, and deeply
// equal leaf values. Child order is not part of the structure; a decoded
// tree compares equal to the one it was encoded from even when the literal
// format forgets the order.
func Equal(a, b Node) bool {
	switch an := a.(type) {
	case Leaf:
		bn, ok := b.(Leaf)
		return ok && leafValueEqual(an.Value, bn.Value)
	case *Dir:
		bn, ok := b.(*Dir)
		if !ok || an.Len() != bn.Len() {
			return false
		}
		for _, name := range an.names {
			bc, ok := bn.Child(name)
			if !ok {
				return false
			}
			ac, _ := an.Child(name)
			if !Equal(ac, bc) {
				return false
			}
		}
		return true
	}
	return a == nil && b == nil
}

func leafValueEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
