package find_unused

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/liquidtags/cmd/liquidtags/internal/setup"
	"github.com/walteh/liquidtags/pkg/diagnostic"
	"github.com/walteh/liquidtags/pkg/finder"
	"github.com/walteh/liquidtags/pkg/usage"
)

type Handler struct {
	siteDir string
	include []string
	exclude []string
	format  string // json, vscode
}

func NewFindUnusedCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "find-unused [site-dir]",
		Short: "report manifest records no document references and references to missing records",
	}

	cmd.Flags().StringSliceVar(&me.include, "include", nil, "globs of documents to scan (overrides the config file)")
	cmd.Flags().StringSliceVar(&me.exclude, "exclude", nil, "globs of documents to skip (overrides the config file)")
	cmd.Flags().StringVar(&me.format, "format", "json", "the output format: json or vscode")

	cmd.Args = cobra.ExactArgs(1)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.siteDir = args[0]
		env, err := setup.EnvFrom(cmd.Context())
		if err != nil {
			return err
		}
		return me.Run(cmd.Context(), env, cmd.OutOrStdout())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, env *setup.Env, out io.Writer) error {
	opts := env.Config.FinderOptions()
	if len(me.include) > 0 {
		opts.Include = me.include
	}
	if len(me.exclude) > 0 {
		opts.Exclude = me.exclude
	}

	scanner := usage.NewScanner(env.Engine(), env.Resolver, finder.NewDefaultFinder(env.FS))
	report, err := scanner.Scan(ctx, me.siteDir, opts)
	if report == nil {
		return errors.Errorf("scanning %s: %w", me.siteDir, err)
	}
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("scan finished with errors")
	}

	switch me.format {
	case "json":
		return setup.WriteJSON(out, report)
	case "vscode":
		diags, err := diagnostic.FromReport(report)
		if err != nil {
			return errors.Errorf("building diagnostics: %w", err)
		}
		data, err := diagnostic.NewVSCodeFormatter().Format(diags)
		if err != nil {
			return errors.Errorf("formatting diagnostics: %w", err)
		}
		if _, err := out.Write(append(data, '\n')); err != nil {
			return errors.Errorf("writing diagnostics: %w", err)
		}
		return nil
	default:
		return errors.Errorf("unknown format %q", me.format)
	}
}
