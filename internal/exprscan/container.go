// Package exprscan collects HCL expressions from a module and reports which
// root names they reference and which functions they call. The interpreter
// uses the result to build the function table for a module before any of
// its statements run.
package exprscan

import (
	"sync"

	"github.com/hashicorp/hcl/v2"
)

// Container gathers HCL expressions and caches the analysis of them.
type Container struct {
	mu          sync.Mutex
	analyzed    bool
	expressions []hcl.Expression

	roots           []string
	calledFunctions []string
}

// NewContainer creates a new, empty expression container.
func NewContainer() *Container {
	return &Container{}
}

// Add adds expressions to the container. Nil expressions are ignored.
// Adding invalidates any cached analysis.
func (c *Container) Add(exprs ...hcl.Expression) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, expr := range exprs {
		if expr != nil {
			c.expressions = append(c.expressions, expr)
		}
	}
	c.analyzed = false
}

func (c *Container) analyze() {
	if c.analyzed {
		return
	}
	c.roots, c.calledFunctions = extractRootsAndFunctions(c.expressions...)
	c.analyzed = true
}

// RootNames returns the unique root variable names referenced.
func (c *Container) RootNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.analyze()
	return c.roots
}

// CalledFunctions returns the unique names of all called functions,
// including namespaced ones such as "sim::Population".
func (c *Container) CalledFunctions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.analyze()
	return c.calledFunctions
}

// Namespaces returns the unique roots of namespaced function calls.
func (c *Container) Namespaces() []string {
	seen := make(map[string]struct{})
	for _, name := range c.CalledFunctions() {
		if root, _ := SplitFunctionName(name); root != "" {
			seen[root] = struct{}{}
		}
	}
	return sortedKeys(seen)
}
