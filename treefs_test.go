package treefs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treefs-io/treefs"
	"github.com/treefs-io/treefs/filesystem"
)

// End-to-end walk through both components the way a filesystem front end
// would drive them: populate a tree, resolve handles for lookups, and run a
// request/response cycle through a transaction.
func TestTreeAndTransaction(t *testing.T) {
	tree := treefs.New(nil)

	dir1, err := tree.CreateDir(tree.Root(), "dir1")
	require.NoError(t, err)
	f1, err := tree.CreateFile(dir1, "f1", []byte("HELLO"))
	require.NoError(t, err)

	got, err := tree.Resolve(tree.Root(), "dir1/f1")
	require.NoError(t, err)
	require.Same(t, f1, got)
	assert.Equal(t, []byte("HELLO"), got.Data())

	got, err = tree.Resolve(tree.Root(), "dir1/../dir1/f1")
	require.NoError(t, err)
	assert.Same(t, f1, got)

	_, err = tree.Resolve(tree.Root(), "bogus")
	assert.ErrorIs(t, err, filesystem.ErrNotFound)
	_, err = tree.Resolve(tree.Root(), "dir1/f1/bogus")
	assert.ErrorIs(t, err, filesystem.ErrNotFound)

	// Response streaming for the resolved payload
	tr := treefs.NewTransaction()
	require.NoError(t, tr.AddArg([]byte("dir1/f1")))
	args, ok := tr.TakeArgs(1)
	require.True(t, ok)

	node, err := tree.Resolve(tree.Root(), string(args[0]))
	require.NoError(t, err)
	require.NoError(t, tr.SetResp(node.Data()))
	assert.False(t, tr.ArgMode())

	assert.Equal(t, []byte("HEL"), tr.ReadResp(3))
	assert.Equal(t, []byte("LO"), tr.ReadResp(3))
	assert.Empty(t, tr.ReadResp(3))
	assert.True(t, tr.ArgMode())
}
