// Package config holds the rule set and runtime settings of floorplan.
//
// Settings are read from a TOML file (by default
// $XDG_CONFIG_HOME/floorplan/config.toml) decoded on top of [Defaults], so a
// file only needs the keys it changes. The defaults reproduce the tool's
// historical behaviour exactly:
//
//	[rules]
//	element = "g"
//	options_id = "options"
//
//	[[rules.reclass]]
//	match = "furniture"
//	class = "furniture"
//
//	[[rules.reclass]]
//	match = "label"
//	class = "labels"
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

const appName = "floorplan"

// Config is the complete, read-only configuration of one process.
type Config struct {
	Rules   Rules   `toml:"rules"`
	Rename  Rename  `toml:"rename"`
	Output  Output  `toml:"output"`
	Server  Server  `toml:"server"`
	Logging Logging `toml:"logging"`
}

// Rules drive the document transform.
type Rules struct {
	// Element is the element kind every stage works on.
	Element   string `toml:"element" json:"element"`
	IDAttr    string `toml:"id_attr" json:"id_attr"`
	NameAttr  string `toml:"name_attr" json:"name_attr"`
	OptionsID string `toml:"options_id" json:"options_id"`

	// Reclass rules run in order; each converts elements whose id contains
	// Match into members of Class.
	Reclass []ReclassRule `toml:"reclass" json:"reclass"`

	StripElements []string `toml:"strip_elements" json:"strip_elements"`
	KeepDataAttrs []string `toml:"keep_data_attrs" json:"keep_data_attrs"`

	// HideProperty:HideValue is merged into the style of every option.
	HideProperty string `toml:"hide_property" json:"hide_property"`
	HideValue    string `toml:"hide_value" json:"hide_value"`
}

type ReclassRule struct {
	Match string `toml:"match" json:"match"`
	Class string `toml:"class" json:"class"`
}

type Rename struct {
	// Policy is "verbatim" or "slug".
	Policy string `toml:"policy"`
}

type Output struct {
	// Suffix is inserted before the extension of the default output path.
	Suffix string `toml:"suffix"`
}

type Server struct {
	Addr string `toml:"addr"`
	// Cache is "none", "file" or "redis".
	Cache     string        `toml:"cache"`
	RedisURL  string        `toml:"redis_url"`
	KeyPrefix string        `toml:"key_prefix"`
	CacheTTL  time.Duration `toml:"cache_ttl"`
	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes int64 `toml:"max_body_bytes"`
}

type Logging struct {
	Level string `toml:"level"`
}

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Rules:  DefaultRules(),
		Rename: Rename{Policy: "verbatim"},
		Output: Output{Suffix: "-web"},
		Server: Server{
			Addr:         "127.0.0.1:8080",
			Cache:        CacheFile,
			RedisURL:     "redis://localhost:6379/0",
			KeyPrefix:    appName + ":",
			CacheTTL:     24 * time.Hour,
			MaxBodyBytes: 8 << 20,
		},
		Logging: Logging{Level: "info"},
	}
}

// DefaultRules returns the historical rule set.
func DefaultRules() Rules {
	return Rules{
		Element:   "g",
		IDAttr:    "id",
		NameAttr:  "data-name",
		OptionsID: "options",
		Reclass: []ReclassRule{
			{Match: "furniture", Class: "furniture"},
			{Match: "label", Class: "labels"},
		},
		StripElements: []string{"title", "desc"},
		KeepDataAttrs: []string{"data-name"},
		HideProperty:  "visibility",
		HideValue:     "hidden",
	}
}

// Hash identifies the rule set, for cache keys.
func (r Rules) Hash() string {
	data, _ := json.Marshal(r)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
