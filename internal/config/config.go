// Package config loads the CLI settings from TOML files, a .env file and
// GOTOAST_* environment variables, in increasing priority.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ezchuang/gotoast/internal/logging"
)

const (
	appDir   = "gotoast"
	fileName = "config.toml"
	// LocalFile is read from the working directory and wins over the user file.
	LocalFile = "gotoast.toml"
	envPrefix = "GOTOAST_"
)

// Toaster variants.
const (
	ToasterBasic        = "basic"
	ToasterInteractable = "interactable"
)

// Backend names. BackendAuto picks one for the running OS.
const (
	BackendAuto       = "auto"
	BackendPowerShell = "powershell"
	BackendDBus       = "dbus"
	BackendBeeep      = "beeep"
	BackendMemory     = "memory"
)

type Config struct {
	AppName        string         `koanf:"app_name"`
	AUMID          string         `koanf:"aumid"`
	Toaster        string         `koanf:"toaster"`
	Backend        string         `koanf:"backend"`
	PowerShellPath string         `koanf:"powershell_path"`
	Log            logging.Config `koanf:"log"`
}

func Default() Config {
	return Config{
		AppName:        "gotoast",
		Toaster:        ToasterInteractable,
		Backend:        BackendAuto,
		PowerShellPath: "powershell.exe",
		Log:            logging.DefaultConfig(),
	}
}

// envKeys maps environment variables (without prefix) to config keys.
var envKeys = map[string]string{
	"APP_NAME":        "app_name",
	"AUMID":           "aumid",
	"TOASTER":         "toaster",
	"BACKEND":         "backend",
	"POWERSHELL_PATH": "powershell_path",
	"LOG_LEVEL":       "log.level",
	"LOG_FORMAT":      "log.format",
	"LOG_OUTPUT":      "log.output",
}

// Load reads .env, the user and local config files and the environment.
func Load() (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()
	return LoadFrom(Paths())
}

// Paths lists the config files to try, lowest priority first.
func Paths() []string {
	var paths []string
	if p, err := xdg.SearchConfigFile(filepath.Join(appDir, fileName)); err == nil {
		paths = append(paths, p)
	}
	return append(paths, LocalFile)
}

// LoadFrom loads the files that exist in paths, then the GOTOAST_*
// environment.
func LoadFrom(paths []string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.PowerShellPath = expandPath(cfg.PowerShellPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps GOTOAST_LOG_LEVEL to log.level. Unknown and empty variables
// map to "", which the provider skips.
func envKey(name, value string) (string, any) {
	if value == "" {
		return "", nil
	}
	return envKeys[strings.TrimPrefix(name, envPrefix)], value
}

func (c *Config) Validate() error {
	if !slices.Contains([]string{ToasterBasic, ToasterInteractable}, c.Toaster) {
		return fmt.Errorf("invalid toaster %q: want %s or %s", c.Toaster, ToasterBasic, ToasterInteractable)
	}
	backends := []string{BackendAuto, BackendPowerShell, BackendDBus, BackendBeeep, BackendMemory}
	if !slices.Contains(backends, c.Backend) {
		return fmt.Errorf("invalid backend %q: want one of %s", c.Backend, strings.Join(backends, ", "))
	}
	if strings.TrimSpace(c.AppName) == "" {
		return fmt.Errorf("app_name must not be empty")
	}
	return nil
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
