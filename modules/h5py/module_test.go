package h5py

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/resprobe/internal/registry"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	weights := filepath.Join(dir, "eye.h5")

	t.Run("read missing file", func(t *testing.T) {
		_, err := Open(weights, "r")
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("create then read", func(t *testing.T) {
		f, err := Open(weights, "w")
		require.NoError(t, err)
		require.EqualValues(t, len(Signature), f.Size)

		f, err = Open(weights, "r")
		require.NoError(t, err)
		require.Equal(t, &File{Filename: weights, Mode: "r", Size: int64(len(Signature))}, f)
	})

	t.Run("exclusive create fails when present", func(t *testing.T) {
		_, err := Open(weights, "x")
		require.ErrorIs(t, err, os.ErrExist)
	})

	t.Run("append keeps existing file", func(t *testing.T) {
		f, err := Open(weights, "a")
		require.NoError(t, err)
		require.EqualValues(t, len(Signature), f.Size)
	})

	t.Run("not an HDF5 file", func(t *testing.T) {
		text := filepath.Join(dir, "notes.txt")
		require.NoError(t, os.WriteFile(text, []byte("just some text, long enough to read"), 0644))
		_, err := Open(text, "r")
		require.ErrorIs(t, err, ErrNotHDF5)
	})

	t.Run("signature after user block", func(t *testing.T) {
		blocked := filepath.Join(dir, "blocked.h5")
		data := make([]byte, 1024+len(Signature))
		copy(data[1024:], Signature)
		require.NoError(t, os.WriteFile(blocked, data, 0644))
		_, err := Open(blocked, "r")
		require.NoError(t, err)
	})

	t.Run("invalid mode", func(t *testing.T) {
		_, err := Open(weights, "rw")
		require.ErrorContains(t, err, "invalid mode")
	})
}

func TestFileFunction(t *testing.T) {
	reg := registry.New(&Module{})
	entry, ok := reg.Lookup(Name)
	require.True(t, ok)
	dep, err := entry.Build(t.Context(), &registry.Env{})
	require.NoError(t, err)

	file, ok := dep.Function("File")
	require.True(t, ok)

	path := filepath.Join(t.TempDir(), "retina.h5")
	v, err := file.Call([]cty.Value{cty.StringVal(path), cty.StringVal("w")})
	require.NoError(t, err)
	require.Equal(t, path, v.GetAttr("filename").AsString())
	require.Equal(t, "w", v.GetAttr("mode").AsString())

	v, err = file.Call([]cty.Value{cty.StringVal(path)})
	require.NoError(t, err)
	require.Equal(t, "r", v.GetAttr("mode").AsString())

	isHDF5, ok := dep.Function("is_hdf5")
	require.True(t, ok)
	v, err = isHDF5.Call([]cty.Value{cty.StringVal(path)})
	require.NoError(t, err)
	require.True(t, v.True())
}
