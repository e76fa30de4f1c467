package filesystem

import (
	"errors"
	"fmt"
	"path"
	"sync/atomic"
	"time"

	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/treefs-io/treefs/config"
	"github.com/treefs-io/treefs/internal/util"
)

// RootIno is the inode of every Tree's root directory.
const RootIno uint64 = 1

var (
	// ErrNotFound is returned by resolution when a path segment names a
	// missing child or descends through a non-directory.
	ErrNotFound = errors.New("no such node")

	// ErrNotDirectory is returned when a creation call targets a parent
	// that is not a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrEmptyName is returned when a creation call passes an empty child name.
	ErrEmptyName = errors.New("empty node name")

	// ErrExists is returned by WriteFile when the leaf name is already taken.
	ErrExists = errors.New("node already exists")
)

// Tree is an in-memory hierarchy of directory and file nodes indexed by
// inode. It is a passive structure: any number of goroutines may drive it
// concurrently, contending only on individual node locks.
type Tree struct {
	cfg     *config.Config
	root    *Node
	lastIno atomic.Uint64             // last inode assigned; incremented when new nodes are created
	nodes   *xsync.Map[uint64, *Node] // maps inodes to nodes, detached ones included
}

// New creates a Tree holding only a root directory with inode [RootIno].
// The next allocated inode is RootIno+1.
func New(cfg *config.Config) *Tree {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	t := &Tree{cfg: cfg, nodes: xsync.NewMap[uint64, *Node]()}
	t.lastIno.Store(RootIno)
	t.root = newDirNode(t.newAttr(RootIno, cfg.DirPerm))
	t.nodes.Store(RootIno, t.root)
	return t
}

// Root returns the tree's root directory handle.
func (t *Tree) Root() *Node {
	return t.root
}

// ByInode returns the node allocated under the given inode, if any. Detached
// nodes remain registered; inodes are never reused.
func (t *Tree) ByInode(ino uint64) (*Node, bool) {
	return t.nodes.Load(ino)
}

// CreateFile builds a file node holding data and inserts it under name in
// parent's child map, displacing any existing entry. The displaced node is
// not invalidated; it stays alive through handles held elsewhere.
// Returns a handle to the created node.
func (t *Tree) CreateFile(parent *Node, name string, data []byte) (*Node, error) {
	node := newFileNode(t.newAttr(t.lastIno.Add(1), t.cfg.FilePerm), data)
	if err := t.insert(parent, name, node); err != nil {
		return nil, err
	}

	logger := util.GetLogger("Tree.CreateFile")
	logger.Debug().Str("name", name).Uint64("ino", node.Ino()).Int("size", len(data)).Msg("Created file node")
	return node, nil
}

// CreateDir builds an empty directory node and inserts it under name in
// parent's child map, with the same displacement contract as [Tree.CreateFile].
// Returns a handle to the created node.
func (t *Tree) CreateDir(parent *Node, name string) (*Node, error) {
	node := newDirNode(t.newAttr(t.lastIno.Add(1), t.cfg.DirPerm))
	if err := t.insert(parent, name, node); err != nil {
		return nil, err
	}

	logger := util.GetLogger("Tree.CreateDir")
	logger.Debug().Str("name", name).Uint64("ino", node.Ino()).Msg("Created dir node")
	return node, nil
}

// insert links a freshly allocated node under parent. The parent lock is held
// only for the duration of the insert.
func (t *Tree) insert(parent *Node, name string, node *Node) error {
	if name == "" {
		return ErrEmptyName
	}

	parent.mu.Lock()
	if !parent.isDirLocked() {
		parent.mu.Unlock()
		return fmt.Errorf("insert %q: %w", name, ErrNotDirectory)
	}
	prev, displaced := parent.addChildLocked(name, node)
	parent.mu.Unlock()

	t.nodes.Store(node.Ino(), node)
	if displaced {
		logger := util.GetLogger("Tree.insert")
		logger.Debug().Str("name", name).Uint64("ino", prev.Ino()).Msg("Displaced existing child; node detached")
	}
	return nil
}

// Resolve splits rawPath on '/' (empty segments are dropped, so a leading
// slash has no anchoring meaning) and resolves the segments from start.
// See [Tree.ResolveSegments].
func (t *Tree) Resolve(start *Node, rawPath string) (*Node, error) {
	return t.ResolveSegments(start, SplitPath(rawPath))
}

// ResolveSegments walks the tree from start, one segment at a time. "."
// leaves the position unchanged, ".." ascends at most as far as the call's
// own starting point (ancestry is tracked by a stack local to this call, not
// by parent pointers), and any other segment is looked up as a child name.
// Descending through a non-directory or a missing name fails with
// [ErrNotFound]. An empty segment list resolves to start.
//
// At most one node is locked at any instant, and the lock is released before
// the next is taken, so concurrent resolutions never deadlock. A concurrent
// create elsewhere in the tree may or may not be visible to an in-flight
// walk; resolution itself is always safe and terminates.
func (t *Tree) ResolveSegments(start *Node, segments []string) (*Node, error) {
	logger := util.GetLogger("Tree.Resolve")
	logger.Trace().Strs("segments", segments).Msg("Resolving path")

	cur := start
	var parents []*Node // call-local; never shared
	for _, seg := range segments {
		if seg == "" {
			continue
		}

		cur.mu.RLock()
		if !cur.isDirLocked() {
			cur.mu.RUnlock()
			logger.Trace().Str("segment", seg).Msg("Cannot descend through non-directory")
			return nil, fmt.Errorf("resolve %q: %w", seg, ErrNotFound)
		}

		switch seg {
		case ".":
			cur.mu.RUnlock()
		case "..":
			cur.mu.RUnlock()
			// Bounded by this call's own traversal history: an empty
			// stack means ".." stays put rather than ascending above start.
			if n := len(parents); n > 0 {
				cur = parents[n-1]
				parents = parents[:n-1]
			}
		default:
			child, ok := cur.children.Load(seg)
			cur.mu.RUnlock()
			if !ok {
				logger.Trace().Str("segment", seg).Msg("Segment not found")
				return nil, fmt.Errorf("resolve %q: %w", seg, ErrNotFound)
			}
			parents = append(parents, cur)
			cur = child
		}
	}
	return cur, nil
}

// MkdirAll resolves rawPath from the root, creating any missing directories
// along the way, and returns the leaf. Existing directories are reused; an
// existing non-directory anywhere on the path is an error.
func (t *Tree) MkdirAll(rawPath string) (*Node, error) {
	cur := t.root
	for _, name := range SplitPath(rawPath) {
		if child, ok := cur.GetChild(name); ok {
			if !child.IsDir() {
				return nil, fmt.Errorf("mkdir %q: %w", name, ErrNotDirectory)
			}
			cur = child
			continue
		}
		node, err := t.CreateDir(cur, name)
		if err != nil {
			return nil, err
		}
		cur = node
	}
	return cur, nil
}

// WriteFile creates a file node holding data at rawPath, creating missing
// ancestor directories. Unlike [Tree.CreateFile] it refuses to displace an
// existing entry at the leaf.
func (t *Tree) WriteFile(rawPath string, data []byte) (*Node, error) {
	dirPath, name := path.Split(rawPath)
	parent, err := t.MkdirAll(dirPath)
	if err != nil {
		return nil, err
	}
	if _, ok := parent.GetChild(name); ok {
		return nil, fmt.Errorf("write %q: %w", rawPath, ErrExists)
	}
	return t.CreateFile(parent, name, data)
}

// newAttr stamps the fixed static metadata every node carries: owner
// identity, permission bits, and creation timestamps. These never mutate
// after creation.
func (t *Tree) newAttr(ino uint64, perm uint32) fuse.Attr {
	now := time.Now()
	return fuse.Attr{
		Ino:  ino,
		Mode: perm,
		Owner: fuse.Owner{
			Uid: t.cfg.OwnerUID,
			Gid: t.cfg.OwnerGID,
		},
		Atime:     uint64(now.Unix()),
		Mtime:     uint64(now.Unix()),
		Ctime:     uint64(now.Unix()),
		Atimensec: uint32(now.Nanosecond()),
		Mtimensec: uint32(now.Nanosecond()),
		Ctimensec: uint32(now.Nanosecond()),
		Blksize:   t.cfg.BlockSize,
	}
}
