// Package schema contains the gohcl decoding targets for module manifests.
package schema
