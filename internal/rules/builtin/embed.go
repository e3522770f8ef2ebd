// Package builtin embeds the YAML detector definitions via go:embed.
package builtin

import "embed"

//go:embed *.yaml
var builtinRules embed.FS

// FS returns the embedded filesystem containing built-in detectors.
func FS() embed.FS {
	return builtinRules
}
