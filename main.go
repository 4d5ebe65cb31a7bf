package main

import (
	"github.com/rabbitstream-io/rabbitstream/cmd"
	"github.com/rabbitstream-io/rabbitstream/pkg/rslog"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
)

// go ldflags
var Version string
var Commit string

func main() {

	undo, err := maxprocs.Set()
	defer undo()
	if err != nil {
		rslog.Warn("maxprocs set error", zap.Error(err))
	}

	cmd.Execute()

}
