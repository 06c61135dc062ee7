// Package checkconfig holds the small set of knobs that tune the resolver
// and checker without changing their semantics: how strict redefinition
// diagnostics are, how many row-rewrite steps to tolerate before giving up,
// and whether to normalize generated names for golden-file comparisons.
package checkconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TestMode is a package-level mode flag: when set, Type and Row rendering
// prints unification variables as t<N>/ρ<N> (their counter id only,
// without the @level suffix), so golden output does not depend on
// generalization levels. It is flipped once by test setup, never read concurrently with a
// write.
var TestMode = false

// Config is the checker's tunable surface. Zero value is a usable default.
type Config struct {
	// StrictRedefine turns "redefined value"/"redefined type" into errors
	// instead of warnings. The resolver always inserts the new binding
	// either way (§4.3.2); this only changes diagnostic severity.
	StrictRedefine bool `yaml:"strict_redefine"`

	// MaxRowRewriteSteps bounds the row-rewrite recursion in unification
	// as a defense against a malformed row never reaching Empty or a
	// shared tail. Zero means "use the built-in default".
	MaxRowRewriteSteps int `yaml:"max_row_rewrite_steps"`

	// TraceUnification, when set, makes front.Compile wire the checker's
	// Solver.Trace to log.Printf, one line per
	// unify/row-rewrite step. Off by default; there is no steady-state
	// logging surface otherwise (§4.5).
	TraceUnification bool `yaml:"trace_unification"`
}

// Default returns the config used when a host does not supply one.
func Default() Config {
	return Config{MaxRowRewriteSteps: 10_000}
}

// Load reads a YAML config file from path, filling in defaults for any
// field the document omits.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("checkconfig: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("checkconfig: parse %s: %w", path, err)
	}

	if cfg.MaxRowRewriteSteps == 0 {
		cfg.MaxRowRewriteSteps = Default().MaxRowRewriteSteps
	}

	return cfg, nil
}
