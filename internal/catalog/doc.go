// Package catalog holds the static metadata the host reads before it
// constructs any native module.
//
// A Catalog maps each module name to a Descriptor describing how the host
// should treat the module: whether it is initialized at start-up, whether it
// may replace a module of the same name registered earlier, whether it
// exposes a constants block, and which calling convention the host uses to
// dispatch into it. A Catalog is built once and never mutated afterwards.
package catalog
