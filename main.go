// Package main is the entry point of the timesheet CLI.
package main

import (
	"os"

	"github.com/huangsam/timesheet/cmd"
	"github.com/huangsam/timesheet/internal/contract"
	"github.com/huangsam/timesheet/internal/iocache"
)

func main() {
	cmd.SetStoreManager(iocache.Manager)

	err := cmd.Execute()

	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Cannot stop profiling", perr)
	}
	iocache.CloseStores()

	if err != nil {
		contract.LogFatal("Cannot run timesheet", err)
	}
	os.Exit(0)
}
