package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/energyledger/internal/adapter/export"
	"github.com/iho/energyledger/internal/adapter/http/dto"
	"github.com/iho/energyledger/internal/infrastructure/auth"
	"github.com/iho/energyledger/internal/usecase"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseAmount(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: must be a non-negative integer", s)
	}
	return v, nil
}

func commandContext(cmd *cobra.Command, opts *options) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), opts.timeout)
}

func registerCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "register prosumer|consumer",
		Short:     "Register the caller as a prosumer or consumer",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"prosumer", "consumer"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd, opts)
			defer cancel()

			var resp dto.RegisteredResponse
			if err := newAPIClient(opts).do(ctx, http.MethodPost, "/api/v1/participants/"+args[0], nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func energyCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "energy",
		Short: "Energy listing operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <amount>",
		Short: "List energy units for sale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd, opts)
			defer cancel()

			var resp dto.EnergyListedResponse
			if err := newAPIClient(opts).do(ctx, http.MethodPost, "/api/v1/energy", dto.AddEnergyRequest{Amount: amount}, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	})

	return cmd
}

func buyCmd(opts *options) *cobra.Command {
	var req dto.BuyEnergyRequest

	cmd := &cobra.Command{
		Use:   "buy",
		Short: "Buy energy from a prosumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd, opts)
			defer cancel()

			var resp dto.EnergyPurchasedResponse
			if err := newAPIClient(opts).do(ctx, http.MethodPost, "/api/v1/trades", req, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&req.Seller, "seller", "", "Seller identity")
	cmd.Flags().Uint64Var(&req.Amount, "amount", 0, "Energy units to buy")
	cmd.Flags().Uint64Var(&req.PricePerUnit, "price", 0, "Price per unit")
	cmd.Flags().Uint64Var(&req.PaymentValue, "payment", 0, "Value sent; the excess is refunded")
	_ = cmd.MarkFlagRequired("seller")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("price")
	_ = cmd.MarkFlagRequired("payment")

	return cmd
}

func accountCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "account <identity>",
		Short: "Show a participant's role and energy balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd, opts)
			defer cancel()

			var resp dto.AccountResponse
			if err := newAPIClient(opts).do(ctx, http.MethodGet, "/api/v1/participants/"+url.PathEscape(args[0]), nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func tradesCmd(opts *options) *cobra.Command {
	var (
		participant string
		format      string
		outPath     string
	)

	cmd := &cobra.Command{
		Use:   "trades",
		Short: "Show the trade history or export it as a statement",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd, opts)
			defer cancel()

			client := newAPIClient(opts)

			if format != "" {
				f, err := export.ParseFormat(format)
				if err != nil {
					return err
				}
				data, err := client.download(ctx, "/api/v1/trades/export?format="+string(f))
				if err != nil {
					return err
				}
				if outPath == "" {
					outPath = fmt.Sprintf("trades-%s.%s", time.Now().UTC().Format("20060102T150405Z"), f)
				}
				if err := os.WriteFile(outPath, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", outPath, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", len(data), outPath)
				return nil
			}

			path := "/api/v1/trades"
			if participant != "" {
				path = "/api/v1/participants/" + url.PathEscape(participant) + "/trades"
			}

			var resp dto.ListTradesResponse
			if err := client.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&participant, "participant", "", "Only trades this identity bought or sold")
	cmd.Flags().StringVar(&format, "export", "", "Export format: xlsx or pdf")
	cmd.Flags().StringVar(&outPath, "out", "", "Output file for --export")

	return cmd
}

func walletCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Wallet operations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "deposit <amount>",
			Short: "Credit the caller's wallet",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				amount, err := parseAmount(args[0])
				if err != nil {
					return err
				}

				ctx, cancel := commandContext(cmd, opts)
				defer cancel()

				var resp dto.WalletResponse
				if err := newAPIClient(opts).do(ctx, http.MethodPost, "/api/v1/wallets/deposit", dto.DepositRequest{Amount: amount}, &resp); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp)
			},
		},
		&cobra.Command{
			Use:   "show <identity>",
			Short: "Show a wallet balance",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := commandContext(cmd, opts)
				defer cancel()

				var resp dto.WalletResponse
				if err := newAPIClient(opts).do(ctx, http.MethodGet, "/api/v1/wallets/"+url.PathEscape(args[0]), nil, &resp); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp)
			},
		},
		&cobra.Command{
			Use:   "entries <identity>",
			Short: "List wallet movements, newest first",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := commandContext(cmd, opts)
				defer cancel()

				var resp dto.ListEntriesResponse
				if err := newAPIClient(opts).do(ctx, http.MethodGet, "/api/v1/wallets/"+url.PathEscape(args[0])+"/entries", nil, &resp); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp)
			},
		},
		&cobra.Command{
			Use:   "reconcile <identity>",
			Short: "Compare a wallet balance with its entries",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := commandContext(cmd, opts)
				defer cancel()

				var resp usecase.WalletReconciliation
				if err := newAPIClient(opts).do(ctx, http.MethodGet, "/api/v1/wallets/"+url.PathEscape(args[0])+"/reconcile", nil, &resp); err != nil {
					return err
				}
				if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
					return err
				}
				if !resp.Reconciled {
					return errors.New("wallet does not reconcile with its entries")
				}
				return nil
			},
		},
	)

	return cmd
}

func ledgerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd, opts)
			defer cancel()

			var report usecase.ConsistencyReport
			if err := newAPIClient(opts).do(ctx, http.MethodGet, "/api/v1/ledger/consistency", nil, &report); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !report.Consistent {
				fmt.Fprintln(out, "Consistency check FAILED")
				for _, v := range report.Violations {
					fmt.Fprintf(out, "  - %s\n", v)
				}
				return errors.New("ledger is inconsistent")
			}

			fmt.Fprintln(out, "Consistency check PASSED")
			fmt.Fprintf(out, "Accounts: %d\nTrades: %d\nEnergy: %s\nWallets: %s\n",
				report.Accounts, report.Trades, report.EnergyBalance, report.WalletBalance)
			return nil
		},
	})

	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Token operations",
	}

	var (
		secret string
		ttl    time.Duration
	)

	issue := &cobra.Command{
		Use:   "issue <identity>",
		Short: "Sign a bearer token for identity with the server's JWT secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("--secret is required")
			}
			token, err := auth.NewJWTManager(secret, ttl).Generate(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "JWT signing secret")
	issue.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	cmd.AddCommand(issue)
	return cmd
}
