// Package main provides the entry point for the uidiff CLI.
//
// uidiff compares Android UI hierarchy captures (uiautomator XML dumps)
// and reports structural, textual and layout changes between them.
//
// Usage:
//
//	uidiff compare <base.xml> <candidate.xml>
//	uidiff batch <base-dir> <candidate-dir>
//
// See --help for all available options.
package main

// main is the entry point for uidiff.
func main() {
	Execute()
}
