package config

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/rename"
)

// Dir returns the configuration directory (~/.config/floorplan/ unless
// XDG_CONFIG_HOME is set).
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// Path returns the default configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the configuration at path over Defaults and validates it.
// With an empty path the default location is used, and a missing default
// file simply yields Defaults.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return Defaults(), nil
		}
		path = p
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) && !explicit {
		return Defaults(), nil
	}
	if os.IsNotExist(err) {
		return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open config")
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return cfg, nil
}

// Decode parses TOML from r over Defaults. Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Defaults()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse toml")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return err
	}
	if _, err := rename.ParsePolicy(c.Rename.Policy); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "rename.policy")
	}
	switch c.Server.Cache {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Server.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "server.redis_url is required when server.cache = %q", CacheRedis)
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "server.cache: invalid backend %q (must be one of: none, file, redis)", c.Server.Cache)
	}
	if c.Server.CacheTTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.cache_ttl must not be negative")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "logging.level: invalid level %q", c.Logging.Level)
	}
	return nil
}

// Validate checks the rule set.
func (r Rules) Validate() error {
	required := []struct{ key, value string }{
		{"rules.element", r.Element},
		{"rules.id_attr", r.IDAttr},
		{"rules.name_attr", r.NameAttr},
		{"rules.options_id", r.OptionsID},
		{"rules.hide_property", r.HideProperty},
		{"rules.hide_value", r.HideValue},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must not be empty", f.key)
		}
		if strings.ContainsAny(f.value, " \t\r\n<>\"'") {
			return errors.New(errors.ErrCodeInvalidConfig, "%s: invalid value %q", f.key, f.value)
		}
	}
	for i, rule := range r.Reclass {
		if rule.Match == "" || rule.Class == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "rules.reclass[%d]: match and class are required", i)
		}
		if strings.ContainsAny(rule.Class, " \t\r\n<>\"'") {
			return errors.New(errors.ErrCodeInvalidConfig, "rules.reclass[%d]: class %q must be a single token", i, rule.Class)
		}
	}
	for _, name := range r.KeepDataAttrs {
		if !strings.HasPrefix(strings.ToLower(name), "data-") {
			return errors.New(errors.ErrCodeInvalidConfig, "rules.keep_data_attrs: %q is not a data attribute", name)
		}
	}
	return nil
}
