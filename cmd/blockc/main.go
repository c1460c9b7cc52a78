// Command blockc compiles block-program documents to script and converts
// them between interchange schemas.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/roach88/blockc/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	cli.ReportError(os.Stderr, err)
	stop()
	os.Exit(cli.GetExitCode(err))
}
