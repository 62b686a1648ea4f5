// Package config loads the runtime configuration for the Oaf compiler
// pipeline and VM: the counted-parallel-loop worker budget and the
// fast-path per-function cache capacity, both ambient concerns spec.md
// leaves to the surrounding implementation.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/naoina/toml"
)

// Config is the top-level TOML document.
type Config struct {
	VM VMConfig
}

// VMConfig controls lang/vm's resource usage (§5: "shared resources").
type VMConfig struct {
	ParallelWorkers   int `toml:",omitempty"`
	FastPathCacheSize int `toml:",omitempty"`
}

// Default mirrors the package-level defaults lang/vm falls back to when no
// configuration file is supplied.
func Default() Config {
	return Config{VM: VMConfig{ParallelWorkers: 8, FastPathCacheSize: 256}}
}

// tomlSettings keeps TOML keys identical to the Go struct field names.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// Load reads a TOML configuration file into cfg, starting from Default()
// values for any field the file omits.
func Load(file string) (Config, error) {
	cfg := Default()
	f, err := os.Open(file)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&cfg)
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return cfg, err
}
