package app

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/vk/perfbridge/internal/catalog"
)

// printCatalog writes the catalog in the configured output format.
func printCatalog(w io.Writer, format string, cat *catalog.Catalog) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cat.ListDescriptors())
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCLASS\tDISPATCH\tEAGER\tOVERRIDE\tCONSTANTS")
	for _, name := range cat.Names() {
		d, _ := cat.Lookup(name)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\t%t\n", d.Name, d.ClassName, d.Dispatch, d.NeedsEagerInit, d.CanOverrideExisting, d.HasConstants)
	}
	return tw.Flush()
}
