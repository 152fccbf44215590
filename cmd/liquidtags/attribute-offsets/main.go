package attribute_offsets

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/liquidtags/cmd/liquidtags/internal/setup"
	"github.com/walteh/liquidtags/pkg/grammar"
)

type Handler struct {
	expression string
}

func NewAttributeOffsetsCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "attribute-offsets [expression]",
		Short: "print where each id/name/key value of an entity tag starts",
	}

	cmd.Args = cobra.ExactArgs(1)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.expression = args[0]
		return me.Run(cmd.Context(), cmd.OutOrStdout())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, out io.Writer) error {
	offsets, err := grammar.Offsets(ctx, me.expression)
	if err != nil && !errors.Is(err, grammar.ErrNoAttributes) {
		return err
	}
	if offsets == nil {
		offsets = map[int]string{}
	}
	return setup.WriteJSON(out, offsets)
}
