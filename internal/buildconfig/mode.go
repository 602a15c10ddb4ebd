// Package buildconfig resolves front-end build configuration from a build mode.
//
// Every function in this package is pure: the same Mode and Options always
// produce structurally identical values, and nothing here touches the
// filesystem. Executing the resolved configuration is the job of the assets
// package.
package buildconfig

import "fmt"

// EnvVar is the environment variable the build mode is read from.
const EnvVar = "NODE_ENV"

// Mode selects between development and production builds.
type Mode int

const (
	// Production is the default when the environment does not ask for development.
	Production Mode = iota
	Development
)

// ParseMode maps the value of EnvVar to a Mode. Only the exact token
// "development" selects Development.
func ParseMode(value string) Mode {
	if value == "development" {
		return Development
	}
	return Production
}

func (m Mode) IsDevelopment() bool {
	return m == Development
}

func (m Mode) String() string {
	switch m {
	case Development:
		return "development"
	case Production:
		return "production"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// MarshalText renders the mode by name so it reads well in YAML output.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
