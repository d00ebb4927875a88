package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	fe "git.home.luguber.info/inful/distbuilder/internal/foundation/errors"
)

// Init writes an example configuration file holding the defaults.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fe.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).Build()
	}

	example := Default()
	example.Events = EventsConfig{}

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	header := "# distbuilder configuration\n# Paths are relative to the working directory.\n"
	if err := os.WriteFile(configPath, append([]byte(header), data...), 0o644); err != nil {
		return fe.ConfigError("failed to write config file").WithCause(err).Build()
	}
	return nil
}
