package config

import "github.com/zclconf/go-cty/cty"

// Model is the unified, format-agnostic representation of a set of module
// manifests. Modules keep the order they were loaded in, since a later
// definition may override an earlier one of the same name.
type Model struct {
	Modules []*ModuleDefinition
}

// Append adds the definitions of other after those already in m.
func (m *Model) Append(other *Model) {
	if other == nil {
		return
	}
	m.Modules = append(m.Modules, other.Modules...)
}

// ModuleDefinition is the format-agnostic representation of a `module` block.
type ModuleDefinition struct {
	Name                string
	ClassName           string
	CanOverrideExisting bool
	NeedsEagerInit      bool
	HasConstants        bool
	Dispatch            string
	// Constants holds the evaluated `constants` block. It is nil when the
	// module declares no constants.
	Constants map[string]cty.Value
	// Source is the manifest file the definition was read from.
	Source string
}
