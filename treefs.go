// Package treefs provides an in-memory, hierarchical namespace of directory
// and file nodes intended to back a user-space filesystem front end, plus a
// per-request transaction buffer that separates inbound argument accumulation
// from outbound response streaming. The two components are independent and
// never share state; the surrounding system wires them into actual
// filesystem callbacks.
package treefs

// NodeType identifies the kind of node a definition creates.
// Valid types are FileNodeType and DirNodeType.
type NodeType string

const (
	FileNodeType NodeType = "file"
	DirNodeType  NodeType = "dir"
)

// NodeDef declares a node to create when populating a tree from a
// definition file. Missing ancestor directories are created implicitly.
type NodeDef struct {
	Path string   `json:"path" yaml:"path"`
	Type NodeType `json:"type" yaml:"type"`
	// Data is the file payload; ignored for directories.
	Data string `json:"data,omitempty" yaml:"data,omitempty"`
}
