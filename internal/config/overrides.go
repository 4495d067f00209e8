package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vvka-141/zclload/pkg/zclload"
)

// ParseOverrides converts "key=value" strings from --set flags into a map.
// A repeated key keeps its last value.
func ParseOverrides(pairs []string) (map[string]string, error) {
	result := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("override %q is not in key=value format (example: --set load.workers=8): %w", pair, zclload.ErrInvalidConfig)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("override has empty key: %q: %w", pair, zclload.ErrInvalidConfig)
		}
		result[key] = value
	}
	return result, nil
}

type setter func(c *ProjectConfig, value string) error

var overrideKeys = map[string]setter{
	"store.driver": func(c *ProjectConfig, v string) error { c.Store.Driver = v; return nil },
	"store.dsn":    func(c *ProjectConfig, v string) error { c.Store.DSN = v; return nil },
	"load.workers": func(c *ProjectConfig, v string) error { return setInt(&c.Load.Workers, v) },
	"load.timeout": func(c *ProjectConfig, v string) error { c.Load.Timeout = v; return nil },
	"load.ignore_formatting": func(c *ProjectConfig, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.Load.IgnoreFormatting = b
		return nil
	},
	"load.strings.constrained_category": func(c *ProjectConfig, v string) error {
		c.Load.Strings.ConstrainedCategory = v
		return nil
	},
	"load.strings.constrained_long": func(c *ProjectConfig, v string) error {
		return setInt(&c.Load.Strings.ConstrainedLong, v)
	},
	"load.strings.relaxed_long": func(c *ProjectConfig, v string) error { return setInt(&c.Load.Strings.RelaxedLong, v) },
	"load.strings.short":        func(c *ProjectConfig, v string) error { return setInt(&c.Load.Strings.Short, v) },
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

// OverrideKeys lists the keys ApplyOverrides accepts, sorted.
func OverrideKeys() []string {
	keys := make([]string, 0, len(overrideKeys))
	for k := range overrideKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ApplyOverrides sets config values by dotted key. Keys are applied in
// sorted order so the first reported error is stable.
func (c *ProjectConfig) ApplyOverrides(values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		set, ok := overrideKeys[k]
		if !ok {
			return fmt.Errorf("unknown config key %q (known: %s): %w", k, strings.Join(OverrideKeys(), ", "), zclload.ErrInvalidConfig)
		}
		if err := set(c, values[k]); err != nil {
			return fmt.Errorf("invalid value %q for %s: %w", values[k], k, zclload.ErrInvalidConfig)
		}
	}
	return nil
}
