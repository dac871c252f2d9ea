package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	portssvc "github.com/SscSPs/fundraising_app/internal/core/ports/services"
	"github.com/SscSPs/fundraising_app/internal/core/services"
	"github.com/SscSPs/fundraising_app/internal/dto"
	"github.com/SscSPs/fundraising_app/internal/platform/bootstrap"
	"github.com/SscSPs/fundraising_app/internal/platform/config"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// withServices loads configuration, opens the mirror and the ledger, and runs fn. Detached
// ledger work is drained before the mirror closes.
func withServices(ctx context.Context, fn func(ctx context.Context, c *portssvc.ServiceContainer) error) error {
	logger := newLogger()
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	repos, closeMirror, err := bootstrap.OpenMirror(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open mirror: %w", err)
	}
	defer closeMirror()

	ledgerGateway, err := bootstrap.NewLedger(cfg, logger)
	if err != nil {
		return err
	}
	container := services.NewServiceContainer(cfg, repos, ledgerGateway, logger)
	defer container.Campaign.Wait()
	return fn(ctx, container)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending mirror migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := bootstrap.Migrate(cfg, newLogger()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [campaignID]",
		Short: "Roll up one campaign, or run a full reconciliation pass",
		Long: `Without arguments, rolls up every ACTIVE and FUNDED campaign and compares it
against the ledger, raising flags for anything that needs an operator.

With a campaign ID, only recomputes that campaign's amount from its donations.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, c *portssvc.ServiceContainer) error {
				if len(args) == 1 {
					result, err := c.Reconciler.RollUpCampaign(ctx, args[0])
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), result)
				}
				report, err := c.Reconciler.RunPass(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
}

func flagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flags",
		Short: "Inspect and resolve reconciliation flags",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List open reconciliation flags, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, c *portssvc.ServiceContainer) error {
				flags, err := c.Reconciler.ListOpenFlags(ctx, limit)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), flags)
			})
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 100, "Maximum flags to list")

	var note string
	resolve := &cobra.Command{
		Use:   "resolve <flagID>",
		Short: "Mark a flag resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, c *portssvc.ServiceContainer) error {
				if err := c.Reconciler.ResolveFlag(ctx, args[0], note); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "flag %s resolved\n", args[0])
				return nil
			})
		},
	}
	resolve.Flags().StringVar(&note, "note", "", "What was done to resolve the flag (required)")
	_ = resolve.MarkFlagRequired("note")

	cmd.AddCommand(list, resolve)
	return cmd
}

func applyReceiptCmd() *cobra.Command {
	var (
		campaignID string
		donor      string
		amount     string
		txHash     string
		timestamp  int64
	)
	cmd := &cobra.Command{
		Use:   "apply-receipt",
		Short: "Mirror a donation the ledger confirmed but the mirror never recorded",
		Example: `  fundraisingctl apply-receipt --campaign 3f0c... --donor 0xabc... \
    --amount 250 --tx-hash 0xdeadbeef...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			if timestamp == 0 {
				timestamp = time.Now().Unix()
			}
			return withServices(cmd.Context(), func(ctx context.Context, c *portssvc.ServiceContainer) error {
				donation, err := c.Campaign.ApplyDonationReceipt(ctx, campaignID, dto.DonationReceipt{
					DonorAddress:    donor,
					Amount:          value,
					TransactionHash: txHash,
					LedgerTimestamp: timestamp,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), dto.ToDonationResponse(donation))
			})
		},
	}
	cmd.Flags().StringVar(&campaignID, "campaign", "", "Campaign ID")
	cmd.Flags().StringVar(&donor, "donor", "", "Donor ledger address")
	cmd.Flags().StringVar(&amount, "amount", "", "Donation amount in the smallest unit")
	cmd.Flags().StringVar(&txHash, "tx-hash", "", "Ledger transaction hash")
	cmd.Flags().Int64Var(&timestamp, "timestamp", 0, "Ledger block timestamp (unix seconds); defaults to now")
	for _, name := range []string{"campaign", "donor", "amount", "tx-hash"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
