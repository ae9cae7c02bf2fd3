// grcon - a console client for JSON-reply RCON game servers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"grcon/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "grcon: %v\n", err)
		os.Exit(1)
	}
}
