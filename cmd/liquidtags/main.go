package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	attribute_offsets "github.com/walteh/liquidtags/cmd/liquidtags/attribute-offsets"
	find_unused "github.com/walteh/liquidtags/cmd/liquidtags/find-unused"
	get_completions "github.com/walteh/liquidtags/cmd/liquidtags/get-completions"
	get_dependencies "github.com/walteh/liquidtags/cmd/liquidtags/get-dependencies"
	"github.com/walteh/liquidtags/cmd/liquidtags/internal/setup"
	pkgdebug "github.com/walteh/liquidtags/pkg/debug"
)

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:           "liquidtags",
		Short:         "Find and complete the site components referenced from Liquid templates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	setup.AddFlags(rootCmd)

	var env *setup.Env
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		flags := setup.FlagsOf(cmd)

		var err error
		env, err = setup.Load(cmd.Context(), afero.NewOsFs(), flags)
		if err != nil {
			return err
		}

		logger := pkgdebug.NewLogger(os.Stderr, env.Level(flags), isatty.IsTerminal(os.Stderr.Fd()))
		ctx := logger.WithContext(cmd.Context())
		cmd.SetContext(setup.WithEnv(ctx, env))
		return nil
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if env != nil {
			env.Close(cmd.Context())
		}
	}

	cmdVersion := &cobra.Command{
		Use: "raw-version",
		Run: func(cmdz *cobra.Command, args []string) {
			cmdz.Println(rootCmd.Version)
		},
		Hidden: true,
	}

	rootCmd.AddCommand(cmdVersion)
	rootCmd.AddCommand(get_completions.NewGetCompletionsCommand())
	rootCmd.AddCommand(get_dependencies.NewGetDependenciesCommand())
	rootCmd.AddCommand(find_unused.NewFindUnusedCommand())
	rootCmd.AddCommand(attribute_offsets.NewAttributeOffsetsCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}
