package get_dependencies

import (
	"context"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/liquidtags/cmd/liquidtags/internal/setup"
	"github.com/walteh/liquidtags/pkg/rules"
)

type Handler struct {
	filePaths []string
}

// Dependency is an extracted entity with its 1-based line and column.
type Dependency struct {
	rules.ExtractedEntity
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func NewGetDependenciesCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "get-dependencies [file-path...]",
		Short: "list the site components referenced by documents",
	}

	cmd.Args = cobra.MinimumNArgs(1)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.filePaths = args
		env, err := setup.EnvFrom(cmd.Context())
		if err != nil {
			return err
		}
		return me.Run(cmd.Context(), env, cmd.OutOrStdout())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, env *setup.Env, out io.Writer) error {
	engine := env.Engine()

	deps := []Dependency{}
	for _, path := range me.filePaths {
		content, err := afero.ReadFile(env.FS, path)
		if err != nil {
			return errors.Errorf("failed to read document: %w", err)
		}

		text := string(content)
		for _, entity := range engine.ExtractDependencies(ctx, text) {
			line, col := entity.Position.GetLineAndColumn(text)
			deps = append(deps, Dependency{ExtractedEntity: entity, File: path, Line: line, Column: col})
		}
	}

	return setup.WriteJSON(out, deps)
}
