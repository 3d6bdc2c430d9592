package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/ednfs/ednfs-cli/internal/edncodec"
	"github.com/ednfs/ednfs-cli/internal/errors"
	"github.com/ednfs/ednfs-cli/internal/tree"
)

// Service holds the live session: the tree's root, the current directory,
// and the filename bound by the last load or save-as. Every mutation builds
// a new root and swaps the reference; routine conditions (missing paths,
// wrong node kinds, nothing loaded) come back as descriptive strings, never
// as errors. Only file I/O and path resolution fail with an error.
type Service struct {
	Config

	root  *tree.Dir
	cwd   []string
	bound string
	dirty bool
}

func NewService(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	return &Service{Config: cfg, root: tree.NewDir()}, nil
}

// Mount replaces the whole tree and resets the session to its root. The
// bound filename is kept, so a later save still targets the same file;
// binding is set by load and save-as and never cleared.
func (s *Service) Mount(root *tree.Dir) {
	if root == nil {
		root = tree.NewDir()
	}
	s.root = root
	s.cwd = nil
	s.dirty = false
}

// Root returns the current root. Roots are never mutated in place, so a
// held reference stays a complete snapshot across later operations.
func (s *Service) Root() *tree.Dir {
	return s.root
}

func (s *Service) Pwd() string {
	return tree.JoinPath(s.cwd)
}

func (s *Service) BoundFilename() string {
	return s.bound
}

// Dirty reports whether the tree has changed since the last load or save.
func (s *Service) Dirty() bool {
	return s.dirty
}

// Cd moves the current directory without checking that the destination
// exists or is a directory. Operations against a stale location simply
// report not found.
func (s *Service) Cd(path ...string) error {
	resolved, err := tree.Resolve(s.cwd, path)
	if err != nil {
		return err
	}
	s.cwd = resolved
	return nil
}

// Ls lists the directory at path (default: the current directory), one
// child per line, prefixed "D" for directories and "-" for leaves. A
// missing or non-directory node lists as nothing.
func (s *Service) Ls(path ...string) (string, error) {
	resolved, err := tree.Resolve(s.cwd, path)
	if err != nil {
		return "", err
	}

	node, ok := tree.Get(s.root, resolved)
	if !ok {
		return "", nil
	}
	dir, ok := node.(*tree.Dir)
	if !ok {
		return "", nil
	}

	lines := make([]string, 0, dir.Len())
	for _, name := range dir.Names() {
		child, _ := dir.Child(name)
		marker := "-"
		if _, isDir := child.(*tree.Dir); isDir {
			marker = "D"
		}
		lines = append(lines, marker+" "+name)
	}

	return strings.Join(lines, "\n"), nil
}

// Cat reads the single child key of the current directory and returns its
// raw value. Key is a plain name, not a path.
func (s *Service) Cat(key string) (any, bool) {
	node, ok := tree.Get(s.root, s.cwd)
	if !ok {
		return nil, false
	}
	dir, ok := node.(*tree.Dir)
	if !ok {
		return nil, false
	}

	child, ok := dir.Child(key)
	if !ok {
		return nil, false
	}
	if leaf, isLeaf := child.(tree.Leaf); isLeaf {
		return leaf.Value, true
	}
	return child, true
}

// Put binds value under the single child key of the current directory,
// silently overwriting an existing entry and creating the directory chain
// when the current directory does not exist yet.
func (s *Service) Put(key string, value any) string {
	if !tree.ValidName(key) {
		return fmt.Sprintf("%q is not a valid name", key)
	}
	s.root = tree.With(s.root, append(slices.Clone(s.cwd), key), tree.Leaf{Value: value})
	s.dirty = true
	return fmt.Sprintf("wrote %q", key)
}

// Mkdir creates an empty directory under the current directory, silently
// overwriting any entry of that name.
func (s *Service) Mkdir(key string) string {
	if !tree.ValidName(key) {
		return fmt.Sprintf("%q is not a valid name", key)
	}
	s.root = tree.With(s.root, append(slices.Clone(s.cwd), key), tree.NewDir())
	s.dirty = true
	return fmt.Sprintf("created directory %q", key)
}

// Cp copies the node at src to dest, creating missing intermediate
// directories along dest. The copy shares structure with the source, so a
// later mutation at src never changes it.
func (s *Service) Cp(src, dest []string) (string, error) {
	srcPath, err := tree.Resolve(s.cwd, src)
	if err != nil {
		return "", err
	}
	destPath, err := tree.Resolve(s.cwd, dest)
	if err != nil {
		return "", err
	}

	node, ok := tree.Get(s.root, srcPath)
	if !ok {
		return fmt.Sprintf("%q not found", tree.JoinPath(srcPath)), nil
	}
	if len(destPath) == 0 {
		return "cannot copy over the root", nil
	}

	s.root = tree.With(s.root, destPath, node)
	s.dirty = true
	return fmt.Sprintf("copied %q to %q", tree.JoinPath(srcPath), tree.JoinPath(destPath)), nil
}

// Rename copies src to dest and removes src from the true parent of its
// resolved path, not from the current directory, which may differ.
func (s *Service) Rename(src, dest []string) (string, error) {
	srcPath, err := tree.Resolve(s.cwd, src)
	if err != nil {
		return "", err
	}
	destPath, err := tree.Resolve(s.cwd, dest)
	if err != nil {
		return "", err
	}

	if slices.Equal(srcPath, destPath) {
		return fmt.Sprintf("%q already has that name", tree.JoinPath(srcPath)), nil
	}

	node, ok := tree.Get(s.root, srcPath)
	if !ok {
		return fmt.Sprintf("%q not found", tree.JoinPath(srcPath)), nil
	}
	if len(srcPath) == 0 {
		return "cannot move the root", nil
	}
	if len(destPath) == 0 {
		return "cannot move over the root", nil
	}

	next := tree.With(s.root, destPath, node)
	next, _ = tree.Without(next, srcPath)
	s.root = next
	s.dirty = true
	return fmt.Sprintf("renamed %q to %q", tree.JoinPath(srcPath), tree.JoinPath(destPath)), nil
}

// Rmdir removes the directory at path from its true parent. Removing a
// leaf this way is a soft type mismatch and leaves the tree unchanged.
func (s *Service) Rmdir(path ...string) (string, error) {
	return s.remove(path, true)
}

// Rm removes the leaf at path from its true parent. Removing a directory
// this way is a soft type mismatch and leaves the tree unchanged.
func (s *Service) Rm(path ...string) (string, error) {
	return s.remove(path, false)
}

func (s *Service) remove(path []string, wantDir bool) (string, error) {
	resolved, err := tree.Resolve(s.cwd, path)
	if err != nil {
		return "", err
	}
	if len(resolved) == 0 {
		return "cannot remove the root", nil
	}

	node, ok := tree.Get(s.root, resolved)
	if !ok {
		return fmt.Sprintf("%q not found", tree.JoinPath(resolved)), nil
	}

	_, isDir := node.(*tree.Dir)
	if wantDir && !isDir {
		return fmt.Sprintf("%q is not a directory", tree.JoinPath(resolved)), nil
	}
	if !wantDir && isDir {
		return fmt.Sprintf("%q is a directory", tree.JoinPath(resolved)), nil
	}

	s.root, _ = tree.Without(s.root, resolved)
	s.dirty = true

	kind := "directory "
	if !wantDir {
		kind = ""
	}
	return fmt.Sprintf("removed %s%q", kind, tree.JoinPath(resolved)), nil
}

// Load parses filename as one whole literal, swaps in the decoded tree,
// resets the current directory, and binds filename for later saves. A
// missing file is a hard failure and leaves the session untouched.
func (s *Service) Load(filename string) error {
	exists, err := s.FileSystem.Exists(filename)
	if err != nil {
		return errors.Wrapf(err, "unable to stat %q", filename)
	}
	if !exists {
		return errors.Wrapf(errors.ErrFileNotExists, "unable to load %q", filename)
	}

	fd, err := s.FileSystem.Open(filename)
	if err != nil {
		return err
	}
	defer fd.Close()

	contents, err := io.ReadAll(fd)
	if err != nil {
		return errors.Wrapf(err, "unable to read %q", filename)
	}

	root, err := edncodec.Decode(contents)
	if err != nil {
		return errors.Wrapf(err, "unable to parse %q", filename)
	}

	s.root = root
	s.cwd = nil
	s.bound = filename
	s.dirty = false
	return nil
}

// Save writes the tree back to the bound filename. With nothing bound it
// reports so as a routine result rather than failing.
func (s *Service) Save() (string, error) {
	if s.bound == "" {
		return "no file bound; load a file or use save-as first", nil
	}
	return s.SaveAs(s.bound)
}

// SaveAs serializes the whole tree to filename, overwriting it, and binds
// filename for later saves.
func (s *Service) SaveAs(filename string) (string, error) {
	contents, err := edncodec.Encode(s.root)
	if err != nil {
		return "", err
	}

	fd, err := s.FileSystem.Create(filename)
	if err != nil {
		return "", err
	}
	if _, err := fd.Write(contents); err != nil {
		_ = fd.Close()
		return "", errors.Wrapf(err, "unable to write %q", filename)
	}
	if err := fd.Close(); err != nil {
		return "", errors.Wrapf(err, "unable to write %q", filename)
	}

	s.bound = filename
	s.dirty = false
	return fmt.Sprintf("saved %q", filename), nil
}

// Complete returns the child names of the current directory starting with
// prefix; the empty prefix matches every child. This is the whole contract
// the line-editing front end consumes.
func (s *Service) Complete(prefix string) []string {
	node, ok := tree.Get(s.root, s.cwd)
	if !ok {
		return nil
	}
	dir, ok := node.(*tree.Dir)
	if !ok {
		return nil
	}

	matches := make([]string, 0, dir.Len())
	for _, name := range dir.Names() {
		if strings.HasPrefix(name, prefix) {
			matches = append(matches, name)
		}
	}
	return matches
}
