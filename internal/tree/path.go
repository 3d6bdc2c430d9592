package tree

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ednfs/ednfs-cli/internal/errors"
)

// Up is the path segment that discards the segment before it.
const Up = ".."

// PathError reports a path that cannot be resolved.
type PathError struct {
	Base     []string
	Segments []string
	Reason   string
}

func (e *PathError) Error() string {
	return "cannot resolve " + strings.Join(e.Segments, "/") + ": " + e.Reason
}

// Resolve applies segments to base and returns the new absolute path.
// Each segment is appended; Up removes the last segment built so far.
// Popping above the root fails with a PathError rather than clamping,
// so a stray ".." is reported instead of silently retargeting the root.
// Segments that are not valid names fail the same way, keeping illegal
// keys out of the tree before they can corrupt a later save.
func Resolve(base []string, segments []string) ([]string, error) {
	path := slices.Clone(base)
	for _, seg := range segments {
		if seg == Up {
			if len(path) == 0 {
				return nil, errors.WithStack(&PathError{Base: base, Segments: segments, Reason: "popped above the root"})
			}
			path = path[:len(path)-1]
			continue
		}
		if !ValidName(seg) {
			return nil, errors.WithStack(&PathError{
				Base:     base,
				Segments: segments,
				Reason:   fmt.Sprintf("%q is not a valid name", seg),
			})
		}
		path = append(path, seg)
	}
	return path, nil
}

// JoinPath renders an absolute path for display. The empty path is the root.
func JoinPath(path []string) string {
	if len(path) == 0 {
		return "/"
	}
	return "/" + strings.Join(path, "/")
}
