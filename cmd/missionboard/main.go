// Package main runs one missionboard command against the mission board API.
//
// Reads keep working offline: listings fall back to local data and joined
// missions and the friend graph persist in the local cache.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	missionboardcmd "github.com/louisbranch/missionboard/internal/cmd/missionboard"
	"github.com/louisbranch/missionboard/internal/platform/config"
)

func main() {
	cfg, err := missionboardcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.ExitWithCode(config.ExitUsage, "parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := missionboardcmd.Run(ctx, cfg, os.Stdout); err != nil {
		stop()
		if missionboardcmd.IsUsage(err) {
			config.ExitWithCode(config.ExitUsage, "%v", err)
		}
		config.Exitf("%v", err)
	}
}
