// Package options holds the evaluator's tunable configuration, loaded
// from a YAML file via goccy/go-yaml (spec.md §6 "Evaluator
// configuration").
//
// Grounded on internal/interp/options.go's Config/DefaultConfig pattern
// (a plain struct of tunables with a package-level default constructor,
// consulted by the evaluator's dispatch core at the points named in
// their doc comments).
package options

import (
	"github.com/goccy/go-yaml"
)

// Options configures one Evaluator/Realm instance.
type Options struct {
	// MaxCallDepth bounds the call stack before a RangeError
	// (spec.md §4.5 "Call"). Grounded on Config's analogous recursion
	// limit.
	MaxCallDepth int `yaml:"maxCallDepth"`

	// StrictByDefault controls whether top-level program code starts in
	// strict mode absent a "use strict" directive (spec.md §4.1 Annex-B
	// gating: sloppy mode enables implicit-global assignment and
	// block-scoped function hoisting).
	StrictByDefault bool `yaml:"strictByDefault"`

	// EnableConstantFolding toggles the internal/fold pre-pass
	// (spec.md §4.10).
	EnableConstantFolding bool `yaml:"enableConstantFolding"`

	// MaxArrayLength is loaded and saved with the other options, but the
	// evaluator does not read it: array growth via SetElement/length
	// writes is not bounded by it.
	MaxArrayLength uint32 `yaml:"maxArrayLength"`
}

// Default returns the evaluator's out-of-the-box configuration.
func Default() *Options {
	return &Options{
		MaxCallDepth:          2000,
		StrictByDefault:       false,
		EnableConstantFolding: true,
		MaxArrayLength:        1 << 32 - 1,
	}
}

// Load parses YAML config text into an Options, starting from Default()
// so an embedder's config file only needs to name the fields it wants
// to override.
func Load(yamlText []byte) (*Options, error) {
	opts := Default()
	if err := yaml.Unmarshal(yamlText, opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// Marshal serializes opts back to YAML, used by the `ecmawalk options`
// CLI subcommand to print the effective configuration.
func Marshal(opts *Options) ([]byte, error) {
	return yaml.Marshal(opts)
}
