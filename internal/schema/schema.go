package schema

import "github.com/hashicorp/hcl/v2"

// --- Module Manifest Schemas ---

// ConstantsBlock holds the raw attributes of a module's `constants` block.
// Attributes are evaluated without variables or functions.
type ConstantsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// ModuleDefinition represents a `module` block. The label is the name the
// host asks for when it resolves the module.
type ModuleDefinition struct {
	Name                string          `hcl:"name,label"`
	ClassName           string          `hcl:"class_name,optional"`
	CanOverrideExisting bool            `hcl:"can_override_existing,optional"`
	NeedsEagerInit      bool            `hcl:"needs_eager_init,optional"`
	HasConstants        bool            `hcl:"has_constants,optional"`
	Dispatch            *string         `hcl:"dispatch,optional"`
	Constants           *ConstantsBlock `hcl:"constants,block"`
}

// ManifestFile represents the top-level structure of a manifest file.
type ManifestFile struct {
	Modules []*ModuleDefinition `hcl:"module,block"`
}
