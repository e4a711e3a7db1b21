// Package main provides the gnfacet CLI application.
// gnfacet manages the faceted taxon catalog: schema lifecycle,
// ingestion from the external taxonomy source, popularity rollups and
// the HTTP search API.
package main

import (
	"os"
)

func main() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
