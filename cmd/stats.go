package cmd

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type statsCMD struct {
	ctx *RSContext
}

func newStatsCMD(ctx *RSContext) *statsCMD {
	return &statsCMD{
		ctx: ctx,
	}
}

func (s *statsCMD) CMD() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <stream>",
		Short: "show stream offsets",
		Args:  cobra.ExactArgs(1),
		RunE:  s.run,
	}
}

func (s *statsCMD) run(cmd *cobra.Command, args []string) error {
	client, err := s.ctx.dial()
	if err != nil {
		return err
	}
	reqCtx, cancel := s.ctx.requestContext()
	defer cancel()
	defer client.Close(reqCtx)

	stats, err := client.StreamStats(reqCtx, args[0])
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	color.Cyan("stream %s", args[0])
	for _, k := range keys {
		fmt.Printf("  %-24s %d\n", k, stats[k])
	}
	return nil
}
