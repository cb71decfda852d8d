// Package hierarchy reads Android UI hierarchy captures.
//
// Parse converts a uiautomator dump_hierarchy XML document into a model.Node
// tree and enforces the tree invariants while doing so. Captures are
// obtained through the Capturer interface; DirCapturer reads the on-disk
// layout written by the capture tooling (xmls/<label>.xml and
// screenshots/<label>.png) and CapturerFor picks it for paths in that layout.
package hierarchy
