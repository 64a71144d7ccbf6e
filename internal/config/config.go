package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	Spec           string         `koanf:"spec"`
	Templates      TemplateConfig `koanf:"templates"`
	ExcludeSchemas []string       `koanf:"exclude-schemas"`
	IncludeTags    []string       `koanf:"include-tags"`
	ExcludeTags    []string       `koanf:"exclude-tags"`
	Go             GoConfig       `koanf:"go"`
}

type GoConfig struct {
	OutputDir     string        `koanf:"output-dir"`
	Package       string        `koanf:"package"`
	Types         TypesConfig   `koanf:"types"`
	OutputOptions OutputOptions `koanf:"output-options"`
	Targets       []string      `koanf:"targets"`
}

type TemplateConfig struct {
	Dir string `koanf:"dir"`
}

type TypesConfig struct {
	UUIDPackage string `koanf:"uuid-package"`
}

type OutputOptions struct {
	EnableYAMLTags        bool     `koanf:"enable-yaml-tags"`
	AdditionalInitialisms []string `koanf:"additional-initialisms"`
}

// DefaultFile is read when no --config flag is given and it exists in the
// working directory.
const DefaultFile = "irgen.yaml"

// Targets lists the Go targets in generation order.
var Targets = []string{"types", "client", "spec"}

// BindCommonFlags binds language-agnostic flags to the generate command
func BindCommonFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "Config file path (default: "+DefaultFile+")")
	flags.StringP("spec", "s", "", "OpenAPI spec file path")
	flags.String("templates", "", "Custom templates directory")
	flags.StringSlice("exclude-schemas", nil, "Schemas to exclude")
	flags.StringSlice("include-tags", nil, "Tags to include (exclusive)")
	flags.StringSlice("exclude-tags", nil, "Tags to exclude")
	flags.Bool("dry-run", false, "Print output without writing files")
}

func Load(cmd *cobra.Command, targets []string) (*Config, error) {
	k := koanf.New(".")

	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		configFile, _ = cmd.PersistentFlags().GetString("config")
	}
	if configFile == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			configFile = DefaultFile
		}
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	flagsMap := buildFlagsMap(cmd)
	if len(flagsMap) > 0 {
		if err := k.Load(confmap.Provider(flagsMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// CLI targets override config file targets
	if len(targets) > 0 {
		cfg.Go.Targets = targets
	}

	// Expand "all" target
	cfg.Go.Targets = expandTargets(cfg.Go.Targets)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func expandTargets(targets []string) []string {
	var result []string
	for _, t := range targets {
		if t == "all" {
			result = append(result, Targets...)
		} else {
			result = append(result, t)
		}
	}
	slices.Sort(result)
	return slices.Compact(result)
}

type flagKind int

const (
	stringFlag flagKind = iota
	sliceFlag
	boolFlag
)

// flagBindings maps command-line flags onto config keys. String and slice
// flags apply when non-empty; bool flags apply only when set explicitly, so
// a false default never hides a true from the file.
var flagBindings = []struct {
	flag string
	key  string
	kind flagKind
}{
	{"spec", "spec", stringFlag},
	{"templates", "templates.dir", stringFlag},
	{"exclude-schemas", "exclude-schemas", sliceFlag},
	{"include-tags", "include-tags", sliceFlag},
	{"exclude-tags", "exclude-tags", sliceFlag},
	{"output-dir", "go.output-dir", stringFlag},
	{"package", "go.package", stringFlag},
	{"uuid-package", "go.types.uuid-package", stringFlag},
	{"enable-yaml-tags", "go.output-options.enable-yaml-tags", boolFlag},
	{"additional-initialisms", "go.output-options.additional-initialisms", sliceFlag},
}

// buildFlagsMap collects the flags given on the command line, keyed by
// their config path, for the confmap provider.
func buildFlagsMap(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)
	for _, b := range flagBindings {
		// Persistent flags only join Flags() once cobra parses the command line.
		flags := cmd.Flags()
		if flags.Lookup(b.flag) == nil {
			flags = cmd.PersistentFlags()
		}
		if flags.Lookup(b.flag) == nil {
			continue
		}
		switch b.kind {
		case stringFlag:
			if v, err := flags.GetString(b.flag); err == nil && v != "" {
				m[b.key] = v
			}
		case sliceFlag:
			if v, err := flags.GetStringSlice(b.flag); err == nil && len(v) > 0 {
				m[b.key] = v
			}
		case boolFlag:
			if v, err := flags.GetBool(b.flag); err == nil && flags.Changed(b.flag) {
				m[b.key] = v
			}
		}
	}
	return m
}

func (c *Config) Validate() error {
	if c.Spec == "" {
		return fmt.Errorf("spec file is required")
	}
	if c.Go.Package == "" {
		return fmt.Errorf("package name is required")
	}
	if c.Go.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}

	validUUIDPackages := map[string]bool{"": true, "string": true, "google": true, "gofrs": true}
	if !validUUIDPackages[c.Go.Types.UUIDPackage] {
		return fmt.Errorf("invalid uuid package: %s (valid: string, google, gofrs)", c.Go.Types.UUIDPackage)
	}

	for _, t := range c.Go.Targets {
		if !slices.Contains(Targets, t) {
			return fmt.Errorf("invalid target: %s (valid: %s)", t, strings.Join(Targets, ", "))
		}
	}

	for _, tag := range c.IncludeTags {
		if slices.Contains(c.ExcludeTags, tag) {
			return fmt.Errorf("tag %q is both included and excluded", tag)
		}
	}

	return nil
}

// HasTarget checks if a specific target should be generated
func (c *Config) HasTarget(target string) bool {
	return slices.Contains(c.Go.Targets, target)
}
