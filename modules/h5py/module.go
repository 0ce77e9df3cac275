// Package h5py provides the "h5py" dependency, the real HDF5 file opener
// brain models load their weights with. During a probe it is replaced by a
// recording stand-in and never runs.
package h5py

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/resprobe/internal/ctxlog"
	"github.com/specialistvlad/resprobe/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Name is the import name of the dependency.
const Name = "h5py"

// Signature is the HDF5 format signature. It sits at offset 0 or at the
// end of a user block (512, 1024, 2048, ... bytes).
var Signature = []byte{0x89, 'H', 'D', 'F', '\r', '\n', 0x1a, '\n'}

// ErrNotHDF5 is returned when a file opened for reading has no HDF5
// signature.
var ErrNotHDF5 = errors.New("file signature not found")

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the dependency with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterDependency(Name, &registry.RegisteredDependency{
		Description: "Opens and creates HDF5 files.",
		Build:       build,
	})
}

// File describes an opened HDF5 file as returned to scripts.
type File struct {
	Filename string `cty:"filename"`
	Mode     string `cty:"mode"`
	Size     int64  `cty:"size"`
}

func build(ctx context.Context, env *registry.Env) (registry.Dependency, error) {
	return &registry.Native{
		DepName: Name,
		Funcs: map[string]function.Function{
			"File":    fileFunc(ctx),
			"is_hdf5": isHDF5Func,
		},
	}, nil
}

// fileFunc implements File(name, mode = "r"). Modes follow h5py: r, r+
// (must exist), w (truncate), w- or x (must not exist) and a (open or
// create).
func fileFunc(ctx context.Context) function.Function {
	return function.New(&function.Spec{
		Description: "Opens or creates an HDF5 file.",
		Params: []function.Parameter{
			{Name: "name", Type: cty.String},
		},
		VarParam: &function.Parameter{Name: "mode", Type: cty.String},
		Type:     function.StaticReturnType(cty.Object(map[string]cty.Type{"filename": cty.String, "mode": cty.String, "size": cty.Number})),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			name := args[0].AsString()
			mode := "r"
			if len(args) > 1 {
				mode = args[1].AsString()
			}
			ctxlog.FromContext(ctx).Debug("Opening HDF5 file.", "name", name, "mode", mode)

			f, err := Open(name, mode)
			if err != nil {
				return cty.NilVal, err
			}
			return registry.ToValue(f)
		},
	})
}

var isHDF5Func = function.New(&function.Spec{
	Description: "Reports whether the file carries an HDF5 signature.",
	Params:      []function.Parameter{{Name: "name", Type: cty.String}},
	Type:        function.StaticReturnType(cty.Bool),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		f, err := os.Open(args[0].AsString())
		if err != nil {
			return cty.False, nil
		}
		defer f.Close()
		ok, err := hasSignature(f)
		if err != nil {
			return cty.False, nil
		}
		return cty.BoolVal(ok), nil
	},
})

// Open opens or creates name according to mode and returns its
// description. Files created here hold only the signature.
func Open(name, mode string) (*File, error) {
	var (
		flag   int
		verify bool
	)
	switch mode {
	case "r":
		flag, verify = os.O_RDONLY, true
	case "r+":
		flag, verify = os.O_RDWR, true
	case "w":
		flag = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	case "w-", "x":
		flag = os.O_RDWR | os.O_CREATE | os.O_EXCL
	case "a":
		flag = os.O_RDWR | os.O_CREATE
	default:
		return nil, fmt.Errorf("invalid mode %q (valid: r, r+, w, w-, x, a)", mode)
	}

	f, err := os.OpenFile(name, flag, 0644)
	if err != nil {
		return nil, fmt.Errorf("unable to open file %s: %w", name, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("unable to stat file %s: %w", name, err)
	}

	if stat.Size() == 0 && flag&os.O_CREATE != 0 {
		if _, err := f.Write(Signature); err != nil {
			return nil, fmt.Errorf("unable to create file %s: %w", name, err)
		}
		stat, err = f.Stat()
		if err != nil {
			return nil, err
		}
	} else {
		verify = true
	}

	if verify {
		ok, err := hasSignature(f)
		if err != nil {
			return nil, fmt.Errorf("unable to read file %s: %w", name, err)
		}
		if !ok {
			return nil, fmt.Errorf("unable to open file %s: %w", name, ErrNotHDF5)
		}
	}

	return &File{Filename: name, Mode: mode, Size: stat.Size()}, nil
}

// hasSignature looks for the HDF5 signature at offset 0 and at every power
// of two from 512 inside the file.
func hasSignature(r io.ReaderAt) (bool, error) {
	buf := make([]byte, len(Signature))
	for offset := int64(0); ; {
		n, err := r.ReadAt(buf, offset)
		if n == len(buf) && bytes.Equal(buf, Signature) {
			return true, nil
		}
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if offset == 0 {
			offset = 512
		} else {
			offset *= 2
		}
	}
}
