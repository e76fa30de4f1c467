package requests

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treefs-io/treefs"
	"github.com/treefs-io/treefs/config"
	"github.com/treefs-io/treefs/filesystem"
)

func TestGetNodeType(t *testing.T) {
	typ, err := GetNodeType([]byte(`{"type": "file", "path": "a/b"}`))
	require.NoError(t, err)
	assert.Equal(t, treefs.FileNodeType, typ)

	_, err = GetNodeType([]byte(`not json`))
	assert.Error(t, err)
}

func TestUnmarshalDefs_YAML(t *testing.T) {
	data := []byte(`
- path: dir1
  type: dir
- path: dir1/f1
  type: file
  data: HELLO
`)
	defs, err := UnmarshalDefs(data, "yaml")
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, treefs.NodeDef{Path: "dir1", Type: treefs.DirNodeType}, defs[0])
	assert.Equal(t, treefs.NodeDef{Path: "dir1/f1", Type: treefs.FileNodeType, Data: "HELLO"}, defs[1])
}

func TestUnmarshalDefs_JSON(t *testing.T) {
	data := []byte(`[{"path": "dir2", "type": "dir"}]`)
	defs, err := UnmarshalDefs(data, "json")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, treefs.DirNodeType, defs[0].Type)
}

func TestUnmarshalDefs_Invalid(t *testing.T) {
	_, err := UnmarshalDefs([]byte(`[{"path": "", "type": "dir"}]`), "json")
	assert.Error(t, err, "empty path must be rejected")

	_, err = UnmarshalDefs([]byte(`[{"path": "x", "type": "symlink"}]`), "json")
	assert.Error(t, err, "unknown node type must be rejected")

	_, err = UnmarshalDefs([]byte(`{}`), "toml")
	assert.Error(t, err, "unknown format must be rejected")
}

func TestLoadDefsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.yaml")
	data := "- path: dir1/f1\n  type: file\n  data: HELLO\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	defs, err := LoadDefsFile(path)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "dir1/f1", defs[0].Path)
}

func TestLoadDefsFile_Missing(t *testing.T) {
	_, err := LoadDefsFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	tree := filesystem.New(config.NewDefaultConfig())

	defs := []treefs.NodeDef{
		{Path: "dir1/f1", Type: treefs.FileNodeType, Data: "HELLO"},
		{Path: "dir2", Type: treefs.DirNodeType},
	}
	added := Apply(tree, defs)
	assert.Equal(t, 2, added)

	got, err := tree.Resolve(tree.Root(), "dir1/f1")
	require.NoError(t, err)
	assert.True(t, got.IsFile())
	assert.Equal(t, []byte("HELLO"), got.Data())

	got, err = tree.Resolve(tree.Root(), "dir2")
	require.NoError(t, err)
	assert.True(t, got.IsDir())
}

func TestApply_DirsBeforeFiles(t *testing.T) {
	tree := filesystem.New(config.NewDefaultConfig())

	// The file def appears first but its ancestor dir def still applies first
	defs := []treefs.NodeDef{
		{Path: "a/b/f", Type: treefs.FileNodeType, Data: "x"},
		{Path: "a/b", Type: treefs.DirNodeType},
	}
	added := Apply(tree, defs)
	assert.Equal(t, 2, added)

	got, err := tree.Resolve(tree.Root(), "a/b/f")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got.Data())
}

func TestApply_SkipsFailingDefs(t *testing.T) {
	tree := filesystem.New(config.NewDefaultConfig())

	defs := []treefs.NodeDef{
		{Path: "f", Type: treefs.FileNodeType, Data: "one"},
		{Path: "f", Type: treefs.FileNodeType, Data: "two"}, // duplicate leaf
	}
	added := Apply(tree, defs)
	assert.Equal(t, 1, added)

	got, err := tree.Resolve(tree.Root(), "f")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got.Data(), "first def wins; failures are skipped")

	// A later batch cannot tunnel a directory through the existing file
	added = Apply(tree, []treefs.NodeDef{{Path: "f/sub", Type: treefs.DirNodeType}})
	assert.Equal(t, 0, added)
}
