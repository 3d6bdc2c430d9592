package config

// Version is overridden at build time through ldflags.
var Version = "development"
