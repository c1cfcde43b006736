package identity

import (
	"path/filepath"
	"strings"
)

const (
	// CLIName is the canonical binary name of the demo application.
	CLIName = "clidemo"
	// AppSlug names on-disk state: config and log directories.
	AppSlug = "clidemo"

	ConfigEnv        = "CLIDEMO_CONFIG"
	GlobalConfigFile = "config.yml"
)

var InputAliases = []string{"cdemo"}

// ResolveBinaryName returns the name the binary was invoked under when it is
// a known alias, otherwise CLIName.
func ResolveBinaryName(args []string) string {
	if len(args) == 0 {
		return CLIName
	}
	return NormalizeCLIName(filepath.Base(args[0]))
}

// NormalizeCLIName maps a binary or alias name onto the name shown in help
// and error output.
func NormalizeCLIName(name string) string {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	trimmed = strings.TrimSuffix(trimmed, ".exe")
	for _, alias := range InputAliases {
		if trimmed == alias {
			return alias
		}
	}
	return CLIName
}
