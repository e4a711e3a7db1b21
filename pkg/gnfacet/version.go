package gnfacet

// Version and Build are set by ldflags at release time.
var (
	Version = "v0.1.0"
	Build   = "n/a"
)
