package probe

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBasename(t *testing.T) {
	testCases := []struct {
		path string
		want string
	}{
		{path: "data/models/eye.h5", want: "eye.h5"},
		{path: "/abs/path/brain_model.h5", want: "brain_model.h5"},
		{path: `C:\models\eye.h5`, want: "eye.h5"},
		{path: `mixed/dir\retina.h5`, want: "retina.h5"},
		{path: `models\eye.h5`, want: "eye.h5"},
		{path: "eye.h5", want: "eye.h5"},
		{path: "models/", want: ""},
		{path: "", want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			require.Equal(t, tc.want, Basename(tc.path))
		})
	}
}

func TestEmit(t *testing.T) {
	t.Run("writes basename without newline", func(t *testing.T) {
		var w bytes.Buffer
		require.NoError(t, Emit(&w, &Result{Captured: true, Path: "data/models/eye.h5"}))
		require.Equal(t, "eye.h5", w.String())
	})

	t.Run("nothing captured", func(t *testing.T) {
		var w bytes.Buffer
		require.ErrorIs(t, Emit(&w, &Result{}), ErrResourceNotFound)
		require.ErrorIs(t, Emit(&w, nil), ErrResourceNotFound)
		require.Zero(t, w.Len())
	})

	t.Run("captured path without a final segment", func(t *testing.T) {
		var w bytes.Buffer
		require.ErrorIs(t, Emit(&w, &Result{Captured: true, Path: "models/"}), ErrResourceNotFound)
		require.Zero(t, w.Len())
	})

	t.Run("write failure", func(t *testing.T) {
		err := Emit(failingWriter{}, &Result{Captured: true, Path: "eye.h5"})
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrResourceNotFound)
	})
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("closed")
}

func TestRecorder_OnlyEntryExists(t *testing.T) {
	rec := NewRecorder("h5py", "File", func(error) {})
	_, ok := rec.Function("File")
	require.True(t, ok)
	_, ok = rec.Function("Dataset")
	require.False(t, ok)
	require.True(t, rec.Value().Type().IsObjectType())
	require.Equal(t, "h5py", rec.Name())
}

func TestInterceptor_Allowed(t *testing.T) {
	i := NewInterceptor("brain", "h5py", NewRecorder("h5py", "File", func(error) {}))
	require.True(t, i.Allowed("os"))
	require.True(t, i.Allowed("brain"))
	require.True(t, i.Allowed("h5py"))
	require.False(t, i.Allowed("os.path"))
	require.False(t, i.Allowed("brain.eye"))
	require.False(t, i.Allowed("numpy"))
}

func TestState_String(t *testing.T) {
	require.Equal(t, "intercepting", StateIntercepting.String())
	require.Equal(t, "State(42)", State(42).String())
}
