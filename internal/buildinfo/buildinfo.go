// Package buildinfo exposes values stamped at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/regsync/internal/buildinfo.Version=v1.2.0 \
//	  -X github.com/dmitrijs2005/regsync/internal/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	  -X 'github.com/dmitrijs2005/regsync/internal/buildinfo.Date=$(date -u)'"
package buildinfo

import (
	"fmt"
	"io"
)

var (
	Version = "N/A"
	Commit  = "N/A"
	Date    = "N/A"
)

// PrintBuildData writes the build stamp to w, one value per line.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", Version)
	fmt.Fprintf(w, "Build date: %s\n", Date)
	fmt.Fprintf(w, "Build commit: %s\n", Commit)
}
