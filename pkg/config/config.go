// Package config loads the optional .liquidtags.yaml or .liquidtags.hcl file of a
// workspace.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/walteh/liquidtags/pkg/finder"
	"github.com/walteh/liquidtags/pkg/manifest"
	"github.com/walteh/liquidtags/pkg/telemetry"
)

// FileNames are looked up in order by Find.
var FileNames = []string{".liquidtags.yaml", ".liquidtags.yml", ".liquidtags.hcl"}

type Config struct {
	Manifest  *ManifestBlock  `json:"manifest,omitempty" yaml:"manifest,omitempty" hcl:"manifest,block"`
	Scan      *ScanBlock      `json:"scan,omitempty" yaml:"scan,omitempty" hcl:"scan,block"`
	Telemetry *TelemetryBlock `json:"telemetry,omitempty" yaml:"telemetry,omitempty" hcl:"telemetry,block"`
	LogLevel  string          `json:"log_level,omitempty" yaml:"log_level,omitempty" hcl:"log_level,optional"`
}

type ManifestBlock struct {
	FolderName  string `json:"folder_name,omitempty" yaml:"folder_name,omitempty" hcl:"folder_name,optional"`
	FilePattern string `json:"file_pattern,omitempty" yaml:"file_pattern,omitempty" hcl:"file_pattern,optional"`
}

type ScanBlock struct {
	Include []string `json:"include,omitempty" yaml:"include,omitempty" hcl:"include,optional"`
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty" hcl:"exclude,optional"`
}

type TelemetryBlock struct {
	Exporter    string `json:"exporter,omitempty" yaml:"exporter,omitempty" hcl:"exporter,optional"`
	ServiceName string `json:"service_name,omitempty" yaml:"service_name,omitempty" hcl:"service_name,optional"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return (&Config{}).withDefaults()
}

func (cfg *Config) withDefaults() *Config {
	if cfg.Manifest == nil {
		cfg.Manifest = &ManifestBlock{}
	}
	if cfg.Manifest.FolderName == "" {
		cfg.Manifest.FolderName = manifest.DefaultFolderName
	}
	if cfg.Manifest.FilePattern == "" {
		cfg.Manifest.FilePattern = manifest.DefaultFilePattern
	}

	if cfg.Scan == nil {
		cfg.Scan = &ScanBlock{}
	}
	if len(cfg.Scan.Include) == 0 {
		cfg.Scan.Include = finder.DefaultInclude
	}
	if len(cfg.Scan.Exclude) == 0 {
		cfg.Scan.Exclude = finder.DefaultExclude
	}

	def := telemetry.DefaultConfig()
	if cfg.Telemetry == nil {
		cfg.Telemetry = &TelemetryBlock{}
	}
	if cfg.Telemetry.Exporter == "" {
		cfg.Telemetry.Exporter = def.Exporter
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = def.ServiceName
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = zerolog.InfoLevel.String()
	}
	return cfg
}

// Load reads a config file (supports YAML and HCL). HCL files may read environment
// variables through env, e.g. env.HOME.
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Errorf("parsing YAML: %w", err)
		}
	} else {
		parser := hclparse.NewParser()
		hclFile, diags := parser.ParseHCL(data, path)
		if diags.HasErrors() {
			return nil, errors.Errorf("parsing HCL: %s", diags.Error())
		}

		ctx := &hcl.EvalContext{
			Variables: map[string]cty.Value{
				"env": environment(),
			},
		}

		diags = gohcl.DecodeBody(hclFile.Body, ctx, &cfg)
		if diags.HasErrors() {
			return nil, errors.Errorf("decoding HCL: %s", diags.Error())
		}
	}

	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return nil, errors.Errorf("log_level %q: %w", cfg.LogLevel, err)
	}

	return cfg.withDefaults(), nil
}

// Find loads the first config file present in dir, or the defaults when there is none.
func Find(fs afero.Fs, dir string) (*Config, string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		exists, err := afero.Exists(fs, path)
		if err != nil {
			return nil, "", errors.Errorf("checking %s: %w", path, err)
		}
		if !exists {
			continue
		}
		cfg, err := Load(fs, path)
		if err != nil {
			return nil, "", errors.Errorf("loading %s: %w", path, err)
		}
		return cfg, path, nil
	}
	return Default(), "", nil
}

func environment() cty.Value {
	vars := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !hclsyntax.ValidIdentifier(k) {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	if len(vars) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vars)
}

// ResolverOptions configures a manifest resolver.
func (cfg *Config) ResolverOptions() []manifest.ResolverOption {
	return []manifest.ResolverOption{
		manifest.WithFolderName(cfg.Manifest.FolderName),
		manifest.WithFilePattern(cfg.Manifest.FilePattern),
	}
}

func (cfg *Config) FinderOptions() finder.Options {
	return finder.Options{Include: cfg.Scan.Include, Exclude: cfg.Scan.Exclude}
}

func (cfg *Config) TelemetryConfig() telemetry.Config {
	out := telemetry.DefaultConfig()
	out.Exporter = cfg.Telemetry.Exporter
	out.ServiceName = cfg.Telemetry.ServiceName
	return out
}

// Level returns the configured log level, info when unset.
func (cfg *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
