package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"refund-settlement-engine/internal/domain/refund"
	"refund-settlement-engine/internal/pkg/errs"
	"refund-settlement-engine/internal/usecase/commands"
	"refund-settlement-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newRetryCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <refundId>",
		Short: "Retry settlement of a FAILED refund",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("refund id: %w", err)
			}
			actor, err := g.adminActor()
			if err != nil {
				return err
			}

			return withEngine(cmd.Context(), func(ctx context.Context, e engine) error {
				res, err := e.refunds.RetryRefund(ctx, id, actor)
				if res != nil {
					if perr := printJSON(cmd.OutOrStdout(), res); perr != nil {
						return perr
					}
				}
				return err
			})
		},
	}
}

func newStatusCmd(g *globalFlags) *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "status <refundId> <PENDING|PROCESSING|COMPLETED|FAILED>",
		Short: "Override the status of a refund",
		Long: `Override the status of a refund after manual reconciliation.

Allowed: PENDING -> COMPLETED|FAILED, PROCESSING -> COMPLETED|FAILED,
FAILED -> COMPLETED. COMPLETED refunds cannot be changed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("refund id: %w", err)
			}
			status, err := refund.ParseStatus(strings.ToUpper(args[1]))
			if err != nil {
				return err
			}
			actor, err := g.adminActor()
			if err != nil {
				return err
			}
			req := commands.UpdateStatusRequest{RefundID: id, Status: status, Actor: actor}
			if note != "" {
				req.Note = &note
			}

			return withEngine(cmd.Context(), func(ctx context.Context, e engine) error {
				res, err := e.refunds.UpdateStatus(ctx, req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "administrator note stored on the refund")
	return cmd
}

func newStatsCmd(g *globalFlags) *cobra.Command {
	var cafe, from, to string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print refund statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := statsFilter(cafe, from, to)
			if err != nil {
				return err
			}
			actor, err := g.adminActor()
			if err != nil {
				return err
			}

			return withEngine(cmd.Context(), func(ctx context.Context, e engine) error {
				stats, err := e.refundQueries.GetRefundStatistics(ctx, filter, actor)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), stats)
			})
		},
	}
	cmd.Flags().StringVar(&cafe, "cafe", "", "restrict to one cafe id")
	cmd.Flags().StringVar(&from, "from", "", "inclusive start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "inclusive end date (YYYY-MM-DD)")
	return cmd
}

func statsFilter(cafe, from, to string) (queries.StatisticsFilter, error) {
	var f queries.StatisticsFilter
	if cafe != "" {
		id, err := uuid.Parse(cafe)
		if err != nil {
			return f, errs.Wrap(err, "--cafe")
		}
		f.CafeID = &id
	}
	if from != "" {
		t, err := time.Parse(time.DateOnly, from)
		if err != nil {
			return f, errs.Wrap(err, "--from")
		}
		f.From = &t
	}
	if to != "" {
		t, err := time.Parse(time.DateOnly, to)
		if err != nil {
			return f, errs.Wrap(err, "--to")
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.To = &end
	}
	return f, nil
}

func newQuoteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "quote <reservationId>",
		Short: "Show what cancelling a reservation now would refund",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("reservation id: %w", err)
			}
			actor, err := g.adminActor()
			if err != nil {
				return err
			}

			return withEngine(cmd.Context(), func(ctx context.Context, e engine) error {
				view, err := e.cancellation.CanCancel(ctx, id, actor)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), view)
			})
		},
	}
}
