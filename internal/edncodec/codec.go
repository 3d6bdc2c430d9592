// Package edncodec round-trips a tree through its persisted form: one EDN
// literal of nested maps with keyword keys. Maps are directories, everything
// else is a leaf. A leaf whose value is itself map-shaped is written as
// {:leaf! value} so the decoder can tell it apart from a directory.
package edncodec

import (
	"bytes"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"olympos.io/encoding/edn"

	"github.com/ednfs/ednfs-cli/internal/errors"
	"github.com/ednfs/ednfs-cli/internal/tree"
)

// LeafTag is the reserved key marking a map-shaped opaque value.
const LeafTag = edn.Keyword("leaf!")

// Encode renders root as its canonical literal text. Directory entries are
// written in directory order, so the output is deterministic.
func Encode(root *tree.Dir) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeDir(&buf, root); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func encodeDir(buf *bytes.Buffer, d *tree.Dir) error {
	buf.WriteByte('{')
	for i, name := range d.Names() {
		if !tree.ValidName(name) {
			return errors.Errorf("unable to serialize: %q is not a valid directory key", name)
		}
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteByte(':')
		buf.WriteString(name)
		buf.WriteByte(' ')

		child, _ := d.Child(name)
		if err := encodeNode(buf, child); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func encodeNode(buf *bytes.Buffer, node tree.Node) error {
	switch n := node.(type) {
	case *tree.Dir:
		return encodeDir(buf, n)
	case tree.Leaf:
		return encodeLeaf(buf, n.Value)
	}
	return errors.Errorf("unknown node type %T", node)
}

func encodeLeaf(buf *bytes.Buffer, value any) error {
	mapShaped := value != nil && reflect.ValueOf(value).Kind() == reflect.Map

	if mapShaped {
		buf.WriteByte('{')
		buf.WriteByte(':')
		buf.WriteString(string(LeafTag))
		buf.WriteByte(' ')
	}

	data, err := edn.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "unable to serialize leaf value")
	}
	buf.Write(data)

	if mapShaped {
		buf.WriteByte('}')
	}
	return nil
}

// Decode parses a whole persisted literal back into a directory tree.
// Directory keys are recorded sorted, keeping loads deterministic; EDN map
// literals carry no order of their own.
func Decode(data []byte) (*tree.Dir, error) {
	var raw any
	if err := edn.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "malformed literal")
	}

	if !isMap(raw) {
		return nil, errors.New("top-level literal is not a map")
	}

	node, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}

	dir, ok := node.(*tree.Dir)
	if !ok {
		return nil, errors.New("top-level literal is not a directory")
	}
	return dir, nil
}

func decodeNode(raw any) (tree.Node, error) {
	if !isMap(raw) {
		return tree.Leaf{Value: raw}, nil
	}

	// The tag check runs before key validation: a tagged leaf may hold a
	// map with keys that would be illegal as directory names.
	if value, ok := taggedLeaf(raw); ok {
		return tree.Leaf{Value: value}, nil
	}

	entries, err := mapEntries(raw)
	if err != nil {
		return nil, err
	}

	dirEntries := make([]tree.Entry, 0, len(entries))
	for _, e := range entries {
		child, err := decodeNode(e.value)
		if err != nil {
			return nil, err
		}
		dirEntries = append(dirEntries, tree.Entry{Name: e.name, Node: child})
	}
	return tree.NewDir(dirEntries...), nil
}

func taggedLeaf(raw any) (any, bool) {
	v := reflect.ValueOf(raw)
	if v.Len() != 1 {
		return nil, false
	}

	iter := v.MapRange()
	iter.Next()
	if k, ok := iter.Key().Interface().(edn.Keyword); ok && k == LeafTag {
		return iter.Value().Interface(), true
	}
	return nil, false
}

type rawEntry struct {
	name  string
	value any
}

func mapEntries(raw any) ([]rawEntry, error) {
	v := reflect.ValueOf(raw)
	entries := make([]rawEntry, 0, v.Len())

	iter := v.MapRange()
	for iter.Next() {
		name, err := keyName(iter.Key().Interface())
		if err != nil {
			return nil, err
		}
		entries = append(entries, rawEntry{name: name, value: iter.Value().Interface()})
	}

	slices.SortFunc(entries, func(a, b rawEntry) int {
		return strings.Compare(a.name, b.name)
	})
	return entries, nil
}

func keyName(key any) (string, error) {
	var name string
	switch k := key.(type) {
	case edn.Keyword:
		name = string(k)
	case edn.Symbol:
		name = string(k)
	case string:
		name = k
	default:
		return "", errors.Errorf("unsupported key %v (%T); keys must be atomic names", key, key)
	}

	if !tree.ValidName(name) {
		return "", errors.Errorf("%q is not a valid directory key", name)
	}
	return name, nil
}

func isMap(v any) bool {
	return v != nil && reflect.ValueOf(v).Kind() == reflect.Map
}

// ToPlain converts a tree to nested map[string]any / plain values, the form
// the yaml and json encoders take.
func ToPlain(node tree.Node) any {
	switch n := node.(type) {
	case *tree.Dir:
		out := make(map[string]any, n.Len())
		for _, name := range n.Names() {
			child, _ := n.Child(name)
			out[name] = ToPlain(child)
		}
		return out
	case tree.Leaf:
		return plainValue(n.Value)
	}
	return nil
}

// plainValue rewrites EDN-specific types into ones every encoder handles.
func plainValue(v any) any {
	switch val := v.(type) {
	case edn.Keyword:
		return ":" + string(val)
	case edn.Symbol:
		return string(val)
	}

	rv := reflect.ValueOf(v)
	if v == nil {
		return nil
	}

	switch rv.Kind() {
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(plainValue(iter.Key().Interface()))] = plainValue(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = plainValue(rv.Index(i).Interface())
		}
		return out
	}

	return v
}
