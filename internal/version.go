package internal

// Version is set at build time via -ldflags.
var Version = "unknown"
