package project

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadFile reads a YAML project file. The figures may sit at the top level or
// under a `project` key.
func LoadFile(path string) (Input, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return Input{}, fmt.Errorf("error reading project file %s: %w", path, err)
	}

	source := v
	if sub := v.Sub("project"); sub != nil {
		source = sub
	}

	var in Input
	if err := source.Unmarshal(&in); err != nil {
		return Input{}, fmt.Errorf("unable to decode project file %s: %w", path, err)
	}
	return in, nil
}
