package app

import (
	"github.com/vk/perfbridge/internal/registry"
	"github.com/vk/perfbridge/modules/performance"
)

// packageName names the bridge package built from coreModules.
const packageName = "perfbridge"

// coreModules is the definitive list of all native modules compiled into
// the perfbridge binary.
func coreModules() []registry.Module {
	return []registry.Module{
		&performance.Module{},
	}
}
