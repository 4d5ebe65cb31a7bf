package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type deleteCMD struct {
	ctx *RSContext
}

func newDeleteCMD(ctx *RSContext) *deleteCMD {
	return &deleteCMD{
		ctx: ctx,
	}
}

func (d *deleteCMD) CMD() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <stream>",
		Short: "delete a stream",
		Args:  cobra.ExactArgs(1),
		RunE:  d.run,
	}
}

func (d *deleteCMD) run(cmd *cobra.Command, args []string) error {
	client, err := d.ctx.dial()
	if err != nil {
		return err
	}
	reqCtx, cancel := d.ctx.requestContext()
	defer cancel()
	defer client.Close(reqCtx)

	if err := client.DeleteStream(reqCtx, args[0]); err != nil {
		return err
	}
	color.Green("stream %s deleted", args[0])
	return nil
}
