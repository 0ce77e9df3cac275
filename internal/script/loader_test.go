package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, path, src string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
}

func TestLocate(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeScript(t, filepath.Join(first, "retina.hcl"), "")
	writeScript(t, filepath.Join(second, "retina.hcl"), "")
	writeScript(t, filepath.Join(second, "brain", "eye.hcl"), "")
	writeScript(t, filepath.Join(second, "brain", "parts", "a.hcl"), "")
	writeScript(t, filepath.Join(second, "brain", "parts", "b.hcl"), "")

	t.Run("first root wins", func(t *testing.T) {
		files, err := Locate("retina", []string{first, second})
		require.NoError(t, err)
		require.Equal(t, []string{filepath.Join(first, "retina.hcl")}, files)
	})

	t.Run("dotted name maps to nested file", func(t *testing.T) {
		files, err := Locate("brain.eye", []string{first, second})
		require.NoError(t, err)
		require.Equal(t, []string{filepath.Join(second, "brain", "eye.hcl")}, files)
	})

	t.Run("package directory", func(t *testing.T) {
		files, err := Locate("brain.parts", []string{second})
		require.NoError(t, err)
		require.Equal(t, []string{
			filepath.Join(second, "brain", "parts", "a.hcl"),
			filepath.Join(second, "brain", "parts", "b.hcl"),
		}, files)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Locate("cortex", []string{first, second})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("invalid name", func(t *testing.T) {
		_, err := Locate("../etc", []string{first})
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestParseSource_Statements(t *testing.T) {
	src := `
import "hbp_nrp_cle.brainsim.simulator" { as = "sim" }
import "h5py" {}

function "twice" {
  params = [x]
  result = x * 2
}

let "size" {
  value = twice(21)
}

do "load" {
  second = print("b")
  first  = print("a")
}
`
	mod, err := ParseSource("brain", "brain.hcl", []byte(src))
	require.NoError(t, err)
	require.Len(t, mod.Statements, 4)

	require.Equal(t, KindImport, mod.Statements[0].Kind)
	require.Equal(t, "hbp_nrp_cle.brainsim.simulator", mod.Statements[0].Name)
	require.Equal(t, "sim", mod.Statements[0].Alias)
	require.Equal(t, "h5py", mod.Statements[1].Alias)

	require.Equal(t, KindLet, mod.Statements[2].Kind)
	require.Equal(t, "size", mod.Statements[2].Name)

	do := mod.Statements[3]
	require.Equal(t, KindDo, do.Kind)
	require.Len(t, do.Attrs, 2)
	require.Equal(t, "second", do.Attrs[0].Name, "do attributes keep source order")
	require.Equal(t, "first", do.Attrs[1].Name)

	require.Equal(t, []string{"hbp_nrp_cle.brainsim.simulator", "h5py"}, mod.Imports())
	require.Contains(t, mod.CalledFunctions(), "twice")
	require.Contains(t, mod.CalledFunctions(), "print")
}

func TestParseSource_DefaultAliasIsLastSegment(t *testing.T) {
	mod, err := ParseSource("m", "m.hcl", []byte(`import "os.path" {}`))
	require.NoError(t, err)
	require.Equal(t, "path", mod.Statements[0].Alias)
}

func TestParseSource_Errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{name: "syntax", src: `import "os" {`},
		{name: "unknown block", src: `resource "x" {}`},
		{name: "invalid import name", src: `import "os..path" {}`},
		{name: "alias not a string", src: `import "os" { as = 1 }`},
		{name: "alias not an identifier", src: `import "os" { as = "not-valid" }`},
		{name: "let without value", src: `let "x" {}`},
		{name: "let with bad name", src: `let "a-b" { value = 1 }`},
		{name: "unexpected import attribute", src: `import "os" { version = "1" }`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSource("m", "m.hcl", []byte(tc.src))
			require.Error(t, err)
		})
	}
}

func TestLoad_PackageDirectory(t *testing.T) {
	root := t.TempDir()
	writeScript(t, filepath.Join(root, "brain", "a.hcl"), `import "os" {}`)
	writeScript(t, filepath.Join(root, "brain", "b.hcl"), `import "h5py" {}`)

	mod, err := Load(t.Context(), "brain", []string{root})
	require.NoError(t, err)
	require.Equal(t, "brain", mod.Name)
	require.Equal(t, []string{"os", "h5py"}, mod.Imports())
}

func TestModuleNames(t *testing.T) {
	root := t.TempDir()
	writeScript(t, filepath.Join(root, "retina.hcl"), "")
	writeScript(t, filepath.Join(root, "brain", "eye.hcl"), "")
	writeScript(t, filepath.Join(root, "brain", "parts", "a.hcl"), "")
	writeScript(t, filepath.Join(root, "not-a-module.hcl"), "")
	writeScript(t, filepath.Join(root, "README.md"), "")

	names, err := ModuleNames(root)
	require.NoError(t, err)
	require.Equal(t, []string{
		"brain",
		"brain.eye",
		"brain.parts",
		"brain.parts.a",
		"retina",
	}, names)
}
