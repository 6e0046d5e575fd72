package config

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Loader is the interface for a format-specific manifest loader.
type Loader interface {
	// Load reads every manifest found under the given files or directories
	// and translates them into the format-agnostic model. Paths that do not
	// exist are skipped.
	Load(ctx context.Context, paths ...string) (*Model, error)

	// Parse translates a single in-memory manifest. The filename is only
	// used for diagnostics.
	Parse(ctx context.Context, filename string, src []byte) (*Model, error)
}

// Converter translates manifest values into the plain Go values handed to
// the host.
type Converter interface {
	// ConstantsToGo converts an evaluated constants block. A nil block
	// converts to a nil map.
	ConstantsToGo(constants map[string]cty.Value) (map[string]any, error)
}
