// Package config provides configuration structures and utilities for uidiff.
// It defines the options of a CLI run, the .uidiff configuration file with
// per-screen engine overrides, and the XDG directories used for the
// comparison history.
package config
