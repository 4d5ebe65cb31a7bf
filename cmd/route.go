package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type routeCMD struct {
	ctx *RSContext

	routingKey string
}

func newRouteCMD(ctx *RSContext) *routeCMD {
	return &routeCMD{
		ctx: ctx,
	}
}

func (r *routeCMD) CMD() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route <super-stream>",
		Short: "list partitions of a super stream, or resolve a routing key",
		Args:  cobra.ExactArgs(1),
		RunE:  r.run,
	}
	cmd.Flags().StringVar(&r.routingKey, "key", "", "routing key to resolve")
	return cmd
}

func (r *routeCMD) run(cmd *cobra.Command, args []string) error {
	client, err := r.ctx.dial()
	if err != nil {
		return err
	}
	reqCtx, cancel := r.ctx.requestContext()
	defer cancel()
	defer client.Close(reqCtx)

	var streams []string
	if r.routingKey != "" {
		streams, err = client.Route(reqCtx, r.routingKey, args[0])
	} else {
		streams, err = client.Partitions(reqCtx, args[0])
	}
	if err != nil {
		return err
	}

	color.Cyan("%s", args[0])
	for _, s := range streams {
		fmt.Printf("  %s\n", s)
	}
	return nil
}
