// Package templates holds the reply templates devices receive after a
// heartbeat.
//
// Templates are read from a YAML file with a default template and optional
// per-device overrides:
//
//	default: "Alive Device: #alives() / #devices()"
//	devices:
//	  GPU480: "#report(GPU480)"
//
// Every template is linted when the file is loaded. A file that fails to
// parse or lint is rejected as a whole and the previously loaded set stays in
// effect. FileWatcher reloads the store when the file changes on disk.
package templates
