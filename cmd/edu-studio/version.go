package main

// Build-time version identity, injected via -ldflags:
//
//	go build -ldflags="-X main.commitHash=$(git rev-parse --short HEAD) -X main.buildTime=$(date -u +%Y%m%dT%H%M%SZ)"
//
// In development (go run), the defaults "dev" and "unknown" are used.
var (
	commitHash = "dev"
	buildTime  = "unknown"
)

func version() string {
	return commitHash + " (" + buildTime + ")"
}
