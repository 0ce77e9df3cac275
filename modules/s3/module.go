// Package s3 provides the "s3" dependency: transfers to and from
// pre-signed object storage URLs.
package s3

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/specialistvlad/resprobe/internal/ctxlog"
	"github.com/specialistvlad/resprobe/internal/registry"
	"github.com/specialistvlad/resprobe/modules/http_client"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Name is the import name of the dependency.
const Name = "s3"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the dependency with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterDependency(Name, &registry.RegisteredDependency{
		Description: "Uploads and downloads files through pre-signed URLs.",
		Build:       build,
	})
}

// Transfer is what upload and download return to scripts.
type Transfer struct {
	Success bool   `cty:"success"`
	Status  string `cty:"status"`
	Bytes   int64  `cty:"bytes"`
}

var transferType = cty.Object(map[string]cty.Type{
	"success": cty.Bool,
	"status":  cty.String,
	"bytes":   cty.Number,
})

func build(ctx context.Context, env *registry.Env) (registry.Dependency, error) {
	client := http_client.NewClient(http_client.DefaultTimeout)
	return &registry.Native{
		DepName: Name,
		Funcs: map[string]function.Function{
			"upload":   transferFunc(ctx, client, Upload),
			"download": transferFunc(ctx, client, Download),
		},
	}, nil
}

func transferFunc(ctx context.Context, client *http.Client, fn func(context.Context, *http.Client, string, string) (*Transfer, error)) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "first", Type: cty.String},
			{Name: "second", Type: cty.String},
		},
		Type: function.StaticReturnType(transferType),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			res, err := fn(ctx, client, args[0].AsString(), args[1].AsString())
			if err != nil {
				return cty.NilVal, err
			}
			return registry.ToValue(res)
		},
	})
}

// Upload PUTs the file at sourcePath to a pre-signed uploadURL.
func Upload(ctx context.Context, client *http.Client, sourcePath, uploadURL string) (*Transfer, error) {
	logger := ctxlog.FromContext(ctx).With("action", "upload")

	file, err := os.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file '%s': %w", sourcePath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file stats for '%s': %w", sourcePath, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, file)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 upload request: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(sourcePath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = stat.Size()

	logger.Info("Uploading file to S3", "source", sourcePath, "size", stat.Size(), "contentType", contentType)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute S3 upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("S3 upload failed with status: %s", resp.Status)
	}

	logger.Info("Successfully uploaded file", "status", resp.Status)
	return &Transfer{Success: true, Status: resp.Status, Bytes: stat.Size()}, nil
}

// Download GETs a pre-signed downloadURL into destPath, creating parent
// directories. A failed download leaves no file behind.
func Download(ctx context.Context, client *http.Client, downloadURL, destPath string) (*Transfer, error) {
	logger := ctxlog.FromContext(ctx).With("action", "download")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 download request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute S3 download request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("S3 download failed with status: %s", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for '%s': %w", destPath, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".download-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write '%s': %w", destPath, err)
	}
	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return nil, fmt.Errorf("failed to move download into place: %w", err)
	}

	logger.Info("Successfully downloaded file", "dest", destPath, "bytes", n)
	return &Transfer{Success: true, Status: resp.Status, Bytes: n}, nil
}
