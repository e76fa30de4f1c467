package filesystem

import (
	"sync"

	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/puzpuzpuz/xsync/v4"
)

// Node is a single element of the tree, either a directory or a regular
// file. Handles (*Node) are shared: any number of holders may retain one, and
// a node stays alive and mutable through its handles even after being
// displaced from its parent's child map. There is no parent pointer; ancestry
// is known only to an in-flight resolve call.
//
// The mutex protects the node's own state (kind check, payload). The children
// map is safe for concurrent use on its own, but structural inserts still take
// the parent's lock so creation and resolution see a consistent node.
type Node struct {
	mu       sync.RWMutex
	attr     fuse.Attr                 // fixed at creation apart from Size bookkeeping
	children *xsync.Map[string, *Node] // nil for files
	data     []byte                    // file payload; nil for directories
}

func newDirNode(attr fuse.Attr) *Node {
	attr.Mode |= fuse.S_IFDIR
	attr.Nlink = 2
	return &Node{
		attr:     attr,
		children: xsync.NewMap[string, *Node](),
	}
}

func newFileNode(attr fuse.Attr, data []byte) *Node {
	attr.Mode |= fuse.S_IFREG
	attr.Nlink = 1
	attr.Size = uint64(len(data))
	return &Node{
		attr: attr,
		data: data,
	}
}

// Ino returns the node's inode number. Inodes are immutable and unique for
// the lifetime of the owning Tree.
func (n *Node) Ino() uint64 {
	return n.attr.Ino
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.isDirLocked()
}

func (n *Node) isDirLocked() bool {
	return n.attr.Mode&fuse.S_IFDIR != 0
}

// IsFile reports whether the node is a regular file.
func (n *Node) IsFile() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.attr.Mode&fuse.S_IFREG != 0
}

// Attr returns a snapshot of the node's attributes. The caller owns the copy
// and may translate it into whatever OS-level structure it needs.
func (n *Node) Attr() fuse.Attr {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.attr
}

// Data returns a copy of a file node's payload. Directories return nil.
func (n *Node) Data() []byte {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.data == nil {
		return nil
	}
	out := make([]byte, len(n.data))
	copy(out, n.data)
	return out
}

// GetChild returns a child node by name. Returns false for files and for
// missing names.
func (n *Node) GetChild(name string) (child *Node, ok bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.children == nil {
		return nil, false
	}
	return n.children.Load(name)
}

// NumChildren returns the number of entries in a directory's child map.
// Files report 0.
func (n *Node) NumChildren() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.children == nil {
		return 0
	}
	return n.children.Size()
}

// IterChildren calls fn for each (name, child) entry of a directory. The
// iteration order is unspecified. Files are a no-op.
func (n *Node) IterChildren(fn func(name string, child *Node) bool) {
	n.mu.RLock()
	children := n.children
	n.mu.RUnlock()
	if children == nil {
		return
	}
	children.Range(fn)
}

// addChildLocked inserts child under name, displacing any existing entry.
// Caller must hold n.mu and have verified n is a directory. The displaced
// node is returned so callers can log the detach; it remains valid through
// any handle still referencing it.
func (n *Node) addChildLocked(name string, child *Node) (prev *Node, displaced bool) {
	prev, displaced = n.children.LoadAndStore(name, child)
	return prev, displaced
}
