package commands

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigCmd prints the resolved configuration as YAML.
type ConfigCmd struct {
	out io.Writer
}

func (c *ConfigCmd) Run(globals *Globals) error {
	cfg, err := globals.compose()
	if err != nil {
		return err
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return wrap("failed to encode configuration", err)
	}
	return enc.Close()
}
