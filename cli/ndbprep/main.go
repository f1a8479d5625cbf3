package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	ndbprepcmder "github.com/papercomputeco/ndbprep/cmd/ndbprep"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := ndbprepcmder.NewNdbprepCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
