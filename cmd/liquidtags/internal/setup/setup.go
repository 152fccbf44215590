// Package setup builds what every liquidtags command needs from the command line flags:
// configuration, telemetry, the manifest resolver and the engine.
package setup

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/liquidtags/pkg/analyzer"
	"github.com/walteh/liquidtags/pkg/config"
	"github.com/walteh/liquidtags/pkg/manifest"
	"github.com/walteh/liquidtags/pkg/telemetry"
)

const (
	FlagConfig    = "config"
	FlagWorkspace = "workspace"
	FlagDebug     = "debug"
)

// Env is the per-invocation state shared by the commands.
type Env struct {
	FS       afero.Fs
	Config   *config.Config
	Sink     telemetry.Sink
	Resolver *manifest.Resolver

	shutdown func(context.Context) error
}

// AddFlags registers the flags Load reads.
func AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String(FlagConfig, "", "path to a .liquidtags.yaml or .liquidtags.hcl file")
	cmd.PersistentFlags().String(FlagWorkspace, ".", "workspace folder searched for a config file")
	cmd.PersistentFlags().Bool(FlagDebug, false, "enable debug logging")
}

// Load reads the config named by the flags, or the one found in the workspace folder.
func Load(ctx context.Context, fs afero.Fs, flags Flags) (*Env, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.Config != "" {
		cfg, err = config.Load(fs, flags.Config)
	} else {
		cfg, _, err = config.Find(fs, flags.Workspace)
	}
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}

	sink, shutdown, err := telemetry.Init(ctx, cfg.TelemetryConfig())
	if err != nil {
		return nil, errors.Errorf("initializing telemetry: %w", err)
	}

	return &Env{
		FS:       fs,
		Config:   cfg,
		Sink:     sink,
		Resolver: manifest.NewResolver(fs, cfg.ResolverOptions()...),
		shutdown: shutdown,
	}, nil
}

// Flags are the persistent flag values of a command.
type Flags struct {
	Config    string
	Workspace string
	Debug     bool
}

func FlagsOf(cmd *cobra.Command) Flags {
	f := cmd.Flags()
	cfg, _ := f.GetString(FlagConfig)
	ws, _ := f.GetString(FlagWorkspace)
	dbg, _ := f.GetBool(FlagDebug)
	if ws == "" {
		ws = "."
	}
	return Flags{Config: cfg, Workspace: ws, Debug: dbg}
}

func (e *Env) Engine(opts ...analyzer.Option) *analyzer.Engine {
	return analyzer.New(append([]analyzer.Option{
		analyzer.WithFS(e.FS),
		analyzer.WithManifests(e.Resolver),
		analyzer.WithSink(e.Sink),
	}, opts...)...)
}

// Close flushes telemetry. Failures are logged, not returned.
func (e *Env) Close(ctx context.Context) {
	if e.shutdown == nil {
		return
	}
	if err := e.shutdown(ctx); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("flushing telemetry")
	}
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	if w == nil {
		w = os.Stdout
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return errors.Errorf("encoding output: %w", err)
	}
	return nil
}

type envKey struct{}

func WithEnv(ctx context.Context, env *Env) context.Context {
	return context.WithValue(ctx, envKey{}, env)
}

// EnvFrom returns the Env stored by WithEnv.
func EnvFrom(ctx context.Context) (*Env, error) {
	env, ok := ctx.Value(envKey{}).(*Env)
	if !ok || env == nil {
		return nil, errors.New("command environment not initialized")
	}
	return env, nil
}

// Level is debug when the flag asks for it, the configured level otherwise.
func (e *Env) Level(flags Flags) zerolog.Level {
	if flags.Debug {
		return zerolog.DebugLevel
	}
	return e.Config.Level()
}
