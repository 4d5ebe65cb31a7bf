package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

type offsetCMD struct {
	ctx *RSContext

	store string
}

func newOffsetCMD(ctx *RSContext) *offsetCMD {
	return &offsetCMD{
		ctx: ctx,
	}
}

func (o *offsetCMD) CMD() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offset <reference> <stream>",
		Short: "query or store a consumer offset",
		Args:  cobra.ExactArgs(2),
		RunE:  o.run,
	}
	cmd.Flags().StringVar(&o.store, "store", "", "store this offset instead of querying")
	return cmd
}

func (o *offsetCMD) run(cmd *cobra.Command, args []string) error {
	client, err := o.ctx.dial()
	if err != nil {
		return err
	}
	reqCtx, cancel := o.ctx.requestContext()
	defer cancel()
	defer client.Close(reqCtx)

	reference, streamName := args[0], args[1]

	if o.store != "" {
		offset := cast.ToUint64(o.store)
		if err := client.StoreOffset(reqCtx, reference, streamName, offset); err != nil {
			return err
		}
		color.Green("stored offset %d for %s on %s", offset, reference, streamName)
		return nil
	}

	offset, err := client.QueryOffset(reqCtx, reference, streamName)
	if err != nil {
		return err
	}
	color.Cyan("offset for %s on %s: %d", reference, streamName, offset)
	return nil
}
