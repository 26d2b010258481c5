package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hyperbet/internal/bet"
	"github.com/rovshanmuradov/hyperbet/internal/market"
)

func betCmd() *cobra.Command {
	var (
		sideFlag string
		amount   string
	)

	cmd := &cobra.Command{
		Use:   "bet",
		Short: "Approve if needed and place a bet without the TUI",
		RunE: func(cmd *cobra.Command, args []string) error {
			side, err := bet.ParseSide(sideFlag)
			if err != nil {
				return err
			}
			if !side.Valid() {
				return errors.New("--side must be btc or usdc")
			}

			r, log, cleanup, err := startRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if r.Actions() == nil {
				return errors.New("no private key configured: set HYPERBET_PRIVATE_KEY")
			}

			st, err := market.Place(cmd.Context(), r.Poller, r.Engine, r.Actions(), side, amount)
			if err != nil {
				return err
			}

			log.Info("Bet placed",
				zap.String("side", side.String()),
				zap.String("token", string(side.InputToken())),
				zap.String("amount", amount))
			fmt.Fprintf(cmd.OutOrStdout(), "Deposited %s %s (%s base units) on %s\n", amount, side.InputToken(), st.Amount, sideName(side))
			return nil
		},
	}

	cmd.Flags().StringVar(&sideFlag, "side", "", "btc (deposit USDC) or usdc (deposit WBTC)")
	cmd.Flags().StringVar(&amount, "amount", "", "bet amount in the input token, e.g. 2.5")
	_ = cmd.MarkFlagRequired("side")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
