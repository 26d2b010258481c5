package commands

import (
	"fmt"
	"math/big"
	"time"

	"github.com/spf13/cobra"

	"github.com/rovshanmuradov/hyperbet/internal/bet"
	"github.com/rovshanmuradov/hyperbet/internal/countdown"
	"github.com/rovshanmuradov/hyperbet/internal/market"
)

func statusCmd() *cobra.Command {
	var (
		sideFlag string
		amount   string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print totals, countdown and, with --side, the bet button state",
		RunE: func(cmd *cobra.Command, args []string) error {
			side := bet.SideNone
			if sideFlag != "" {
				parsed, err := bet.ParseSide(sideFlag)
				if err != nil {
					return err
				}
				side = parsed
			}

			r, _, cleanup, err := startRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			snap := r.Poller.Refresh(cmd.Context(), market.Query{})
			out := cmd.OutOrStdout()

			if snap.EndTime != nil {
				fmt.Fprintf(out, "Time left:             %s\n", countdown.Remaining(*snap.EndTime, time.Now()))
			}
			fmt.Fprintf(out, "Total Deposited USDC:  %s\n", baseUnits(snap.USDCTotal))
			fmt.Fprintf(out, "Total Deposited WBTC:  %s\n", baseUnits(snap.BTCTotal))
			if addr := r.WalletAddress(); addr != "" {
				fmt.Fprintf(out, "Wallet:                %s\n", addr)
			}
			if snap.Err != nil {
				fmt.Fprintf(out, "Warning:               %v\n", snap.Err)
			}

			if !side.Valid() {
				return nil
			}
			st, err := market.Evaluate(cmd.Context(), r.Poller, r.Engine, side, amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Side:                  bet on %s (deposit %s)\n", sideName(side), side.InputToken())
			fmt.Fprintf(out, "Amount:                %s base units\n", st.Amount)
			fmt.Fprintf(out, "Button:                %s (disabled: %t)\n", st.Button.Label, st.Button.Disabled)
			fmt.Fprintf(out, "Phase:                 %s\n", st.Phase)
			return nil
		},
	}

	cmd.Flags().StringVar(&sideFlag, "side", "", "btc or usdc")
	cmd.Flags().StringVar(&amount, "amount", "", "bet amount in the input token")
	return cmd
}

func baseUnits(v *big.Int) string {
	if v == nil {
		return "..."
	}
	return v.String()
}

func sideName(side bet.Side) string {
	if side == bet.SideBTC {
		return "Bitcoin"
	}
	return "USDC"
}
