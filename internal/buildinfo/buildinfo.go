package buildinfo

// Build metadata, overridable at link time:
//
//	go build -ldflags "-X .../internal/buildinfo.Version=v1.2.3"
var (
	Version   = "dev"
	Revision  = "unknown"
	BuildDate = "unknown"
)
