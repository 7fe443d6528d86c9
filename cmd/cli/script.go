package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/iho/energyledger/internal/adapter/http/dto"
	"github.com/iho/energyledger/internal/infrastructure/auth"
)

// Script is an ordered list of ledger operations, each run as one caller.
//
//	steps:
//	  - as: X
//	    register: prosumer
//	  - as: X
//	    add_energy: 10
//	  - as: Y
//	    buy: {seller: X, amount: 5, price_per_unit: 3, payment_value: 20}
//	    expect_error: insufficient_payment
type Script struct {
	Steps []Step `yaml:"steps"`
}

// Step is one operation. Exactly one of Register, AddEnergy, Deposit and Buy is set.
type Step struct {
	As          string   `yaml:"as"`
	Register    string   `yaml:"register,omitempty"`
	AddEnergy   uint64   `yaml:"add_energy,omitempty"`
	Deposit     uint64   `yaml:"deposit,omitempty"`
	Buy         *BuyStep `yaml:"buy,omitempty"`
	ExpectError string   `yaml:"expect_error,omitempty"`
}

// BuyStep mirrors the buy request body.
type BuyStep struct {
	Seller       string `yaml:"seller"`
	Amount       uint64 `yaml:"amount"`
	PricePerUnit uint64 `yaml:"price_per_unit"`
	PaymentValue uint64 `yaml:"payment_value"`
}

// ParseScript decodes and validates a script.
func ParseScript(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}

	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return &s, nil
}

func (s Step) validate() error {
	if s.As == "" {
		return errors.New("missing caller (as)")
	}

	actions := 0
	if s.Register != "" {
		if s.Register != "prosumer" && s.Register != "consumer" {
			return fmt.Errorf("register must be prosumer or consumer, got %q", s.Register)
		}
		actions++
	}
	if s.AddEnergy != 0 {
		actions++
	}
	if s.Deposit != 0 {
		actions++
	}
	if s.Buy != nil {
		actions++
	}
	if actions != 1 {
		return fmt.Errorf("expected exactly one action, got %d", actions)
	}
	return nil
}

func (s Step) describe() string {
	switch {
	case s.Register != "":
		return "register " + s.Register
	case s.AddEnergy != 0:
		return fmt.Sprintf("add_energy %d", s.AddEnergy)
	case s.Deposit != 0:
		return fmt.Sprintf("deposit %d", s.Deposit)
	default:
		return fmt.Sprintf("buy %d from %s at %d", s.Buy.Amount, s.Buy.Seller, s.Buy.PricePerUnit)
	}
}

func (s Step) run(ctx context.Context, c *apiClient) error {
	switch {
	case s.Register != "":
		return c.do(ctx, http.MethodPost, "/api/v1/participants/"+s.Register, nil, nil)
	case s.AddEnergy != 0:
		return c.do(ctx, http.MethodPost, "/api/v1/energy", dto.AddEnergyRequest{Amount: s.AddEnergy}, nil)
	case s.Deposit != 0:
		return c.do(ctx, http.MethodPost, "/api/v1/wallets/deposit", dto.DepositRequest{Amount: s.Deposit}, nil)
	default:
		return c.do(ctx, http.MethodPost, "/api/v1/trades", dto.BuyEnergyRequest{
			Seller:       s.Buy.Seller,
			Amount:       s.Buy.Amount,
			PricePerUnit: s.Buy.PricePerUnit,
			PaymentValue: s.Buy.PaymentValue,
		}, nil)
	}
}

// runScript executes steps in order and stops at the first step whose
// outcome differs from its expectation.
func runScript(ctx context.Context, out io.Writer, base *apiClient, script *Script, jwt *auth.JWTManager) error {
	for i, step := range script.Steps {
		client := base.as(step.As, "")
		if jwt != nil {
			token, err := jwt.Generate(step.As)
			if err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
			client = base.as("", token)
		}

		err := step.run(ctx, client)

		var apiErr *apiError
		switch {
		case step.ExpectError == "" && err == nil:
			fmt.Fprintf(out, "step %d: %s as %s: ok\n", i+1, step.describe(), step.As)
		case step.ExpectError != "" && errors.As(err, &apiErr) && apiErr.Code == step.ExpectError:
			fmt.Fprintf(out, "step %d: %s as %s: rejected with %s as expected\n", i+1, step.describe(), step.As, apiErr.Code)
		case step.ExpectError != "" && err == nil:
			return fmt.Errorf("step %d: %s as %s: expected %s, got success", i+1, step.describe(), step.As, step.ExpectError)
		default:
			return fmt.Errorf("step %d: %s as %s: %w", i+1, step.describe(), step.As, err)
		}
	}
	return nil
}

func applyCmd(opts *options) *cobra.Command {
	var (
		file   string
		secret string
	)

	cmd := &cobra.Command{
		Use:   "apply -f script.yaml",
		Short: "Run an ordered script of ledger operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			script, err := ParseScript(r)
			if err != nil {
				return err
			}

			var jwt *auth.JWTManager
			if secret != "" {
				jwt = auth.NewJWTManager(secret, time.Hour)
			}

			// the timeout bounds each request, not the whole script
			return runScript(cmd.Context(), cmd.OutOrStdout(), newAPIClient(opts), script, jwt)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "Script file, - for stdin")
	cmd.Flags().StringVar(&secret, "secret", "", "Sign a token per step with this JWT secret instead of sending X-Participant-ID")

	return cmd
}
