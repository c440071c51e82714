// Command refundctl is the operator CLI for refund settlement: retries,
// status overrides, statistics, quotes, schema migration and test tokens.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var Version = "dev"

type globalFlags struct {
	actor string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "refundctl",
		Short:         "Operate the refund settlement engine",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.actor, "actor", "", "administrator user id recorded in audit entries")

	root.AddCommand(
		newRetryCmd(g),
		newStatusCmd(g),
		newStatsCmd(g),
		newQuoteCmd(g),
		newMigrateCmd(),
		newTokenCmd(),
	)
	return root
}

func (g *globalFlags) actorID() (uuid.UUID, error) {
	if g.actor == "" {
		return uuid.Nil, fmt.Errorf("--actor is required")
	}
	id, err := uuid.Parse(g.actor)
	if err != nil {
		return uuid.Nil, fmt.Errorf("--actor: %w", err)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
