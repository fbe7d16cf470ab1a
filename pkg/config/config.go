// Package config merges command line flags, ADAPTERMIGRATE_* environment
// variables and an optional YAML file into the settings of a run.
package config

import (
	"io"
	"strconv"
	"strings"

	"github.com/enabletech/adaptermigrate/pkg/fileset"
	"github.com/enabletech/adaptermigrate/pkg/legacycall"
	"github.com/enabletech/adaptermigrate/pkg/logging"
	"github.com/enabletech/adaptermigrate/pkg/rewrite"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix prefixes environment variables overriding configuration keys,
	// e.g. ADAPTERMIGRATE_ADAPTER_IMPORT.
	EnvPrefix = "ADAPTERMIGRATE"
	// DefaultFile is read from the working directory when --config is not given.
	DefaultFile = ".adaptermigrate.yaml"

	// AdapterPlaceholder is expanded to the adapter class name in extra rules.
	AdapterPlaceholder = "${adapter}"

	PipelineMigrate = "migrate"
	PipelineCleanup = "cleanup"
)

var log = logging.LoggerForModule()

// ExtraRule is a user supplied regular expression rule appended to a pipeline.
type ExtraRule struct {
	Name    string `mapstructure:"name" yaml:"name"`
	Pattern string `mapstructure:"pattern" yaml:"pattern"`
	Replace string `mapstructure:"replace" yaml:"replace"`
	// Pipeline is migrate, cleanup, or empty for both.
	Pipeline string `mapstructure:"pipeline" yaml:"pipeline,omitempty"`
}

// Config is the effective configuration of a run.
type Config struct {
	Extension     string      `mapstructure:"ext" yaml:"ext"`
	Exclude       []string    `mapstructure:"exclude" yaml:"exclude"`
	DryRun        bool        `mapstructure:"dry-run" yaml:"dry-run"`
	Diff          bool        `mapstructure:"diff" yaml:"diff"`
	BackupSuffix  string      `mapstructure:"backup-suffix" yaml:"backup-suffix"`
	Marker        string      `mapstructure:"marker" yaml:"marker"`
	Strict        bool        `mapstructure:"strict" yaml:"strict"`
	Adapter       string      `mapstructure:"adapter" yaml:"adapter"`
	AdapterImport string      `mapstructure:"adapter-import" yaml:"adapter-import"`
	ImportStyle   string      `mapstructure:"import-style" yaml:"import-style"`
	Endpoint      string      `mapstructure:"endpoint" yaml:"endpoint"`
	LegacyCall    string      `mapstructure:"legacy-call" yaml:"legacy-call"`
	HTTPImport    string      `mapstructure:"http-import" yaml:"http-import"`
	ExtraRules    []ExtraRule `mapstructure:"extra-rules" yaml:"extra-rules,omitempty"`

	// File is the configuration file that was read, if any.
	File string `mapstructure:"-" yaml:"-"`
}

// AddFlags registers the flags that map onto configuration keys.
func AddFlags(flags *pflag.FlagSet) {
	defaults := legacycall.DefaultOptions()

	flags.String("config", "", "configuration file (default "+DefaultFile+" if present)")
	flags.String("ext", fileset.DefaultExtension, "extension of files picked up from directories")
	flags.StringSlice("exclude", nil, "glob patterns of paths to skip, may be repeated")
	flags.Bool("dry-run", false, "report what would change without writing files")
	flags.Bool("diff", false, "print a unified diff for every changed file")
	flags.String("backup-suffix", "", "copy each file to <file><suffix> before overwriting it")
	flags.String("marker", defaults.LegacyCall, "residual marker counted in every file after rewriting")
	flags.Bool("strict", false, "exit non-zero when a file failed or residual markers remain")
	flags.String("adapter", defaults.Adapter, "class name of the backend adapter")
	flags.String("adapter-import", defaults.AdapterImport, "import path of the backend adapter")
	flags.String("import-style", string(defaults.ImportStyle), "how the adapter import is written: absolute or relative")
}

// Load builds the configuration from flags, environment and the config file
// named by --config, reading files from fs.
func Load(fs afero.Fs, flags *pflag.FlagSet) (*Config, error) {
	defaults := legacycall.DefaultOptions()

	v := viper.New()
	v.SetFs(fs)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("endpoint", defaults.Endpoint)
	v.SetDefault("legacy-call", defaults.LegacyCall)
	v.SetDefault("http-import", defaults.HTTPImport)
	if err := v.BindPFlags(flags); err != nil {
		return nil, errors.Wrap(err, "binding flags")
	}

	path := v.GetString("config")
	switch {
	case path != "":
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", path)
		}
	default:
		if ok, _ := afero.Exists(fs, DefaultFile); ok {
			v.SetConfigFile(DefaultFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.Wrapf(err, "reading config file %s", DefaultFile)
			}
		}
	}
	if v.ConfigFileUsed() != "" {
		log.Debugf("Using config file %s", v.ConfigFileUsed())
	}

	if raw := v.Get("extra-rules"); raw != nil {
		if rewrite.RewriteStrings(raw, AdapterPlaceholder, v.GetString("adapter")) {
			v.Set("extra-rules", raw)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding configuration")
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Options returns the migration options described by the configuration.
func (c *Config) Options() legacycall.Options {
	return legacycall.Options{
		Adapter:       c.Adapter,
		AdapterImport: c.AdapterImport,
		ImportStyle:   legacycall.ImportStyle(c.ImportStyle),
		Endpoint:      c.Endpoint,
		LegacyCall:    c.LegacyCall,
		HTTPImport:    c.HTTPImport,
	}
}

// Selection returns the file selection for the given targets.
func (c *Config) Selection(targets []string) fileset.Spec {
	return fileset.Spec{
		Targets:   targets,
		Extension: c.Extension,
		Exclude:   c.Exclude,
	}
}

// Validate reports settings the rules cannot work with.
func (c *Config) Validate() error {
	if err := c.Options().Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	if c.Marker == "" {
		return errors.New("invalid configuration: marker must not be empty")
	}
	if c.Extension != "" && !strings.HasPrefix(c.Extension, ".") {
		return errors.Errorf("invalid configuration: extension %q must start with a dot", c.Extension)
	}
	for i, r := range c.ExtraRules {
		switch r.Pipeline {
		case "", PipelineMigrate, PipelineCleanup:
		default:
			return errors.Errorf("invalid configuration: extra rule %d has unknown pipeline %q", i, r.Pipeline)
		}
		if _, err := r.rule(i); err != nil {
			return errors.Wrap(err, "invalid configuration")
		}
	}
	return nil
}

// RulesFor returns the user supplied rules for the named pipeline, in
// configuration order.
func (c *Config) RulesFor(pipeline string) ([]rewrite.Rule, error) {
	var rules []rewrite.Rule
	for i, r := range c.ExtraRules {
		if r.Pipeline != "" && r.Pipeline != pipeline {
			continue
		}
		rule, err := r.rule(i)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func (r ExtraRule) rule(i int) (rewrite.Rule, error) {
	name := r.Name
	if name == "" {
		name = "extra-" + strconv.Itoa(i+1)
	}
	if r.Pattern == "" {
		return nil, errors.Errorf("extra rule %s has no pattern", name)
	}
	return rewrite.Regexp(name, r.Pattern, r.Replace)
}

// WriteYAML writes the configuration in the format accepted by --config.
func (c *Config) WriteYAML(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(c); err != nil {
		return errors.Wrap(err, "encoding configuration")
	}
	return errors.Wrap(encoder.Close(), "closing encoder")
}
