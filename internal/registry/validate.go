package registry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/specialistvlad/resprobe/internal/ctxlog"
)

var moduleNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// ValidName reports whether name is a dotted module name such as
// "hbp_nrp_cle.brainsim". Anything else (slashes, "..", empty segments)
// is rejected so that names can never escape a search root.
func ValidName(name string) bool {
	return moduleNamePattern.MatchString(name)
}

// ValidateRegistry checks that every registered name is a valid module name
// and that each builder produces a dependency that reports the same name
// and exposes an object value. Builders must be free of side effects, so
// building them here with a discarding Env is safe.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	env := &Env{Stdout: io.Discard, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	for _, name := range r.Names() {
		if !ValidName(name) {
			errs = append(errs, fmt.Sprintf("dependency '%s': not a valid module name", name))
			continue
		}

		dep, err := r.deps[name].Build(ctx, env)
		if err != nil {
			errs = append(errs, fmt.Sprintf("dependency '%s': builder failed: %v", name, err))
			continue
		}
		if dep.Name() != name {
			errs = append(errs, fmt.Sprintf("dependency '%s': builder reports name '%s'", name, dep.Name()))
		}
		if ty := dep.Value().Type(); !ty.IsObjectType() {
			errs = append(errs, fmt.Sprintf("dependency '%s': value must be an object, got %s", name, ty.FriendlyName()))
		}
		logger.Debug("Dependency validated.", "name", name)
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}
