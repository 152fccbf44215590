package get_completions

import (
	"context"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/liquidtags/cmd/liquidtags/internal/setup"
	"github.com/walteh/liquidtags/pkg/analyzer"
	"github.com/walteh/liquidtags/pkg/completion/providers"
	"github.com/walteh/liquidtags/pkg/position"
)

type Handler struct {
	filePath   string
	line       int
	character  int
	roots      []string
	grammar    bool
	byteColumn bool
}

func NewGetCompletionsCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "get-completions [file-path] [line] [character]",
		Short: "get completions for a 0-based line and character in a site document",
		Long: "get completions for a 0-based line and character in a site document.\n\n" +
			"The character is counted in UTF-16 code units, as editors report it. Pass --byte-column\n" +
			"when the character is a byte offset into the line instead.",
	}

	cmd.Flags().StringSliceVar(&me.roots, "root", nil, "workspace root folders (defaults to the workspace flag)")
	cmd.Flags().BoolVar(&me.byteColumn, "byte-column", false, "treat the character as a byte offset instead of UTF-16 code units")
	cmd.Flags().BoolVar(&me.grammar, "grammar", false, "locate the attribute with the tag grammar instead of the token rules")

	cmd.Args = cobra.ExactArgs(3)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.filePath = args[0]
		var err error
		me.line, err = strconv.Atoi(args[1])
		if err != nil {
			return errors.Errorf("invalid line number: %w", err)
		}
		me.character, err = strconv.Atoi(args[2])
		if err != nil {
			return errors.Errorf("invalid character number: %w", err)
		}
		if len(me.roots) == 0 {
			me.roots = []string{setup.FlagsOf(cmd).Workspace}
		}

		env, err := setup.EnvFrom(cmd.Context())
		if err != nil {
			return err
		}
		return me.Run(cmd.Context(), env, cmd.OutOrStdout())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, env *setup.Env, out io.Writer) error {
	file, err := filepath.Abs(me.filePath)
	if err != nil {
		return errors.Errorf("resolving file path: %w", err)
	}

	roots := make([]string, 0, len(me.roots))
	for _, root := range me.roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return errors.Errorf("resolving root %s: %w", root, err)
		}
		roots = append(roots, abs)
	}

	content, err := afero.ReadFile(env.FS, file)
	if err != nil {
		return errors.Errorf("failed to read document: %w", err)
	}

	lines := strings.Split(string(content), "\n")
	if me.line < 0 || me.line >= len(lines) {
		return setup.WriteJSON(out, []providers.CompletionCandidate{})
	}

	line := strings.TrimSuffix(lines[me.line], "\r")
	column := me.character
	if !me.byteColumn {
		column = position.ByteColumn(line, me.character)
	}

	req := analyzer.CompletionRequest{
		LineText:       line,
		Row:            me.line,
		Column:         column,
		FilePath:       file,
		WorkspaceRoots: roots,
	}

	engine := env.Engine()
	var completions []providers.CompletionCandidate
	if me.grammar {
		completions = engine.CompleteAtOffset(ctx, req)
	} else {
		completions = engine.Complete(ctx, req)
	}

	return setup.WriteJSON(out, completions)
}
