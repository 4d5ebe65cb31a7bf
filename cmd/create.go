package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

type createCMD struct {
	ctx *RSContext

	maxLengthBytes string
	maxAge         string
}

func newCreateCMD(ctx *RSContext) *createCMD {
	return &createCMD{
		ctx: ctx,
	}
}

func (c *createCMD) CMD() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <stream>",
		Short: "create a stream",
		Args:  cobra.ExactArgs(1),
		RunE:  c.run,
	}
	cmd.Flags().StringVar(&c.maxLengthBytes, "max-length-bytes", "", "retention limit in bytes")
	cmd.Flags().StringVar(&c.maxAge, "max-age", "", "retention limit as a duration, e.g. 72h")
	return cmd
}

func (c *createCMD) run(cmd *cobra.Command, args []string) error {
	client, err := c.ctx.dial()
	if err != nil {
		return err
	}
	reqCtx, cancel := c.ctx.requestContext()
	defer cancel()
	defer client.Close(reqCtx)

	arguments := map[string]string{}
	if c.maxLengthBytes != "" {
		// accept plain byte counts only, the broker does its own unit parsing
		arguments["max-length-bytes"] = cast.ToString(cast.ToInt64(c.maxLengthBytes))
	}
	if c.maxAge != "" {
		arguments["max-age"] = c.maxAge
	}

	if err := client.CreateStream(reqCtx, args[0], arguments); err != nil {
		return err
	}
	color.Green("stream %s created", args[0])
	return nil
}
