package config

import (
	"fmt"
	"strings"

	"github.com/xplshn/tacc/pkg/cli"
)

type Feature int

const (
	FeatCComments Feature = iota
	FeatRealLiterals
	FeatRedeclare
	FeatCount
)

type Warning int

const (
	WarnRedeclare Warning = iota
	WarnShadow
	WarnUnreachableCode
	WarnNarrowing
	WarnEmptyBody
	WarnPedantic
	WarnCount
)

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

type Config struct {
	Features   map[Feature]Info
	Warnings   map[Warning]Info
	FeatureMap map[string]Feature
	WarningMap map[string]Warning
	StdName    string
}

func NewConfig() *Config {
	cfg := &Config{
		Features:   make(map[Feature]Info),
		Warnings:   make(map[Warning]Info),
		FeatureMap: make(map[string]Feature),
		WarningMap: make(map[string]Warning),
		StdName:    "ext",
	}

	features := map[Feature]Info{
		FeatCComments:    {"c-comments", true, "Recognize C-style '//' and '/* */' comments."},
		FeatRealLiterals: {"reals", true, "Allow floating-point literals such as '3.14'."},
		FeatRedeclare:    {"redeclare", true, "Allow a name to be declared twice in the same block; the later declaration wins."},
	}

	warnings := map[Warning]Info{
		WarnRedeclare:       {"redeclare", true, "Warn when a declaration replaces one in the same block."},
		WarnShadow:          {"shadow", false, "Warn when a declaration hides a name from an enclosing block."},
		WarnUnreachableCode: {"unreachable-code", true, "Warn about statements following 'break'."},
		WarnNarrowing:       {"narrowing", false, "Warn when a wider numeric value is assigned to a narrower variable."},
		WarnEmptyBody:       {"empty-body", true, "Warn about 'if' or 'while' statements whose body is ';'."},
		WarnPedantic:        {"pedantic", false, "Issue all warnings demanded by the current std."},
	}

	cfg.Features, cfg.Warnings = features, warnings
	for ft, info := range features {
		cfg.FeatureMap[info.Name] = ft
	}
	for wt, info := range warnings {
		cfg.WarningMap[info.Name] = wt
	}

	return cfg
}

func (c *Config) SetFeature(ft Feature, enabled bool) {
	if info, ok := c.Features[ft]; ok {
		info.Enabled = enabled
		c.Features[ft] = info
	}
}

func (c *Config) IsFeatureEnabled(ft Feature) bool { return c.Features[ft].Enabled }

func (c *Config) SetWarning(wt Warning, enabled bool) {
	if info, ok := c.Warnings[wt]; ok {
		info.Enabled = enabled
		c.Warnings[wt] = info
	}
}

func (c *Config) IsWarningEnabled(wt Warning) bool { return c.Warnings[wt].Enabled }

// ApplyStd switches the dialect. "dragon" is the textbook language; "ext" adds comments.
func (c *Config) ApplyStd(stdName string) error {
	isPedantic := c.IsWarningEnabled(WarnPedantic)

	type stdSettings struct {
		feature     Feature
		dragonValue bool
		extValue    bool
	}

	settings := []stdSettings{
		{FeatCComments, false, true},
		{FeatRealLiterals, true, true},
		{FeatRedeclare, true, !isPedantic},
	}

	switch stdName {
	case "dragon":
		for _, s := range settings {
			c.SetFeature(s.feature, s.dragonValue)
		}
	case "ext":
		for _, s := range settings {
			c.SetFeature(s.feature, s.extValue)
		}
	default:
		return fmt.Errorf("unsupported standard '%s'. Supported: 'dragon', 'ext'", stdName)
	}
	c.StdName = stdName

	if isPedantic {
		for i := Warning(0); i < WarnCount; i++ {
			c.SetWarning(i, true)
		}
	}
	return nil
}

func (c *Config) applyFlag(flag string) {
	trimmed := strings.TrimPrefix(flag, "-")
	isNo := strings.HasPrefix(trimmed, "Wno-") || strings.HasPrefix(trimmed, "Fno-")
	enable := !isNo

	var name string
	var isWarning bool

	switch {
	case strings.HasPrefix(trimmed, "W"):
		name = strings.TrimPrefix(trimmed, "W")
		if isNo {
			name = strings.TrimPrefix(name, "no-")
		}
		isWarning = true
	case strings.HasPrefix(trimmed, "F"):
		name = strings.TrimPrefix(trimmed, "F")
		if isNo {
			name = strings.TrimPrefix(name, "no-")
		}
	default:
		name = trimmed
		isWarning = true
	}

	if name == "all" && isWarning {
		for i := Warning(0); i < WarnCount; i++ {
			if i != WarnPedantic {
				c.SetWarning(i, enable)
			}
		}
		return
	}

	if isWarning {
		if w, ok := c.WarningMap[name]; ok {
			c.SetWarning(w, enable)
		}
	} else {
		if f, ok := c.FeatureMap[name]; ok {
			c.SetFeature(f, enable)
		}
	}
}

// ProcessFlags applies -W/-F style flags in order; -Wall and -Wno-all go first so that
// individual flags can override them.
func (c *Config) ProcessFlags(flags []string) {
	for _, f := range flags {
		if f == "-Wall" || f == "-Wno-all" {
			c.applyFlag(f)
		}
	}
	for _, f := range flags {
		if f != "-Wall" && f != "-Wno-all" {
			c.applyFlag(f)
		}
	}
}

// SetupFlagGroups registers -W<name>/-Wno-<name> and -F<name>/-Fno-<name> flags on fs.
// The returned entries are indexed by Warning and Feature respectively.
func (c *Config) SetupFlagGroups(fs *cli.FlagSet) (warnings, features []cli.FlagGroupEntry) {
	warnings = make([]cli.FlagGroupEntry, WarnCount)
	for i := Warning(0); i < WarnCount; i++ {
		info := c.Warnings[i]
		warnings[i] = cli.FlagGroupEntry{
			Name: info.Name, Prefix: "W", Usage: info.Description,
			Enabled: new(bool), Disabled: new(bool), Default: info.Enabled,
		}
	}
	features = make([]cli.FlagGroupEntry, FeatCount)
	for i := Feature(0); i < FeatCount; i++ {
		info := c.Features[i]
		features[i] = cli.FlagGroupEntry{
			Name: info.Name, Prefix: "F", Usage: info.Description,
			Enabled: new(bool), Disabled: new(bool), Default: info.Enabled,
		}
	}
	fs.AddFlagGroup("Warning Flags", "Enable or disable specific warnings", "warning", "Available Warnings:", warnings)
	fs.AddFlagGroup("Feature Flags", "Enable or disable language features", "feature", "Available Features:", features)
	return warnings, features
}

// ApplyFlagGroups copies parsed group entries back into the configuration.
func (c *Config) ApplyFlagGroups(warnings, features []cli.FlagGroupEntry) {
	for i, entry := range warnings {
		if *entry.Enabled {
			c.SetWarning(Warning(i), true)
		}
		if *entry.Disabled {
			c.SetWarning(Warning(i), false)
		}
	}
	for i, entry := range features {
		if *entry.Enabled {
			c.SetFeature(Feature(i), true)
		}
		if *entry.Disabled {
			c.SetFeature(Feature(i), false)
		}
	}
}
