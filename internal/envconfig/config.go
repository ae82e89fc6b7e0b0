// Package envconfig reads convlab settings from the process environment.
package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// Set via CONVLAB_DEBUG in the environment
	Debug bool
	// Set via CONVLAB_HOME in the environment
	Home string
	// Set via CONVLAB_SEED in the environment
	Seed int64
	// True when CONVLAB_SEED holds a valid integer
	HasSeed bool
)

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"CONVLAB_DEBUG": {"CONVLAB_DEBUG", Debug, "Show additional debug information (e.g. CONVLAB_DEBUG=1)"},
		"CONVLAB_HOME":  {"CONVLAB_HOME", Home, "Directory holding the saved layer configuration (default ~/.convlab)"},
		"CONVLAB_SEED":  {"CONVLAB_SEED", Seed, "Seed for reproducible input and filter generation"},
	}
}

func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}

// Clean quotes and spaces from the value
func clean(key string) string {
	return strings.Trim(os.Getenv(key), "\"' ")
}

func init() {
	LoadConfig()
}

func LoadConfig() {
	Debug = false
	if debug := clean("CONVLAB_DEBUG"); debug != "" {
		d, err := strconv.ParseBool(debug)
		if err == nil {
			Debug = d
		} else {
			Debug = true
		}
	}

	Home = clean("CONVLAB_HOME")
	if Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			slog.Error("failed to lookup home directory", "error", err)
			home = "."
		}
		Home = filepath.Join(home, ".convlab")
	}

	Seed, HasSeed = 0, false
	if seed := clean("CONVLAB_SEED"); seed != "" {
		s, err := strconv.ParseInt(seed, 10, 64)
		if err != nil {
			slog.Error("invalid setting", "CONVLAB_SEED", seed, "error", err)
		} else {
			Seed, HasSeed = s, true
		}
	}
}
