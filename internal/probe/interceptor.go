package probe

import (
	"context"

	"github.com/specialistvlad/resprobe/internal/ctxlog"
	"github.com/specialistvlad/resprobe/internal/importer"
	"github.com/specialistvlad/resprobe/internal/registry"
)

// Interceptor is the import hook of a probe run.
type Interceptor struct {
	allowed  map[string]struct{}
	probed   string
	recorder *Recorder

	substituted []string
}

// NewInterceptor allows the system facility, the target and the probed
// dependency. The probed dependency resolves to rec.
func NewInterceptor(target, probed string, rec *Recorder) *Interceptor {
	return &Interceptor{
		allowed: map[string]struct{}{
			SystemFacility: {},
			target:         {},
			probed:         {},
		},
		probed:   probed,
		recorder: rec,
	}
}

// Allowed reports whether name is exempt from placeholder substitution.
// Membership is an exact match: "os" does not allow "os.path".
func (i *Interceptor) Allowed(name string) bool {
	_, ok := i.allowed[name]
	return ok
}

// Resolve implements importer.Hook. The cache is never consulted for a
// substituted name, so a module imported for real earlier in the process
// cannot run again through the probe.
func (i *Interceptor) Resolve(ctx context.Context, name string, next importer.Resolver) (registry.Dependency, error) {
	logger := ctxlog.FromContext(ctx)

	switch {
	case name == i.probed:
		logger.Debug("Import replaced by recording stand-in.", "module", name)
		return i.recorder, nil
	case i.Allowed(name):
		return next(ctx, name)
	default:
		logger.Debug("Import replaced by placeholder.", "module", name)
		i.substituted = append(i.substituted, name)
		return &placeholder{name: name}, nil
	}
}

// Substituted returns the names replaced by placeholders, in import order.
func (i *Interceptor) Substituted() []string {
	return i.substituted
}
