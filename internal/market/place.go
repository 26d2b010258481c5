package market

import (
	"context"
	"errors"
	"fmt"

	"github.com/rovshanmuradov/hyperbet/internal/bet"
)

// ErrNotPlaced is returned when the evaluated form offers no action.
var ErrNotPlaced = errors.New("bet cannot be placed")

// Place drives one bet outside the TUI: it approves the input token when the
// allowance is short and then deposits, re-reading chain state before each
// step. It returns the state that produced the last action.
func Place(ctx context.Context, poller *Poller, engine *bet.Engine, actions bet.Actions, side bet.Side, raw string) (bet.State, error) {
	if !side.Valid() {
		return bet.State{}, fmt.Errorf("%w: no side selected", ErrNotPlaced)
	}
	if actions == nil {
		return bet.State{}, fmt.Errorf("%w: no wallet configured", ErrNotPlaced)
	}

	// approve, then deposit
	for step := 0; step < 2; step++ {
		st, err := Evaluate(ctx, poller, engine, side, raw)
		if err != nil {
			return st, err
		}

		action, err := engine.Submit(ctx, actions)
		if err != nil {
			return st, err
		}
		switch action {
		case bet.ActionNone:
			return st, fmt.Errorf("%w: %s", ErrNotPlaced, reason(st))
		case bet.ActionDeposit:
			return st, nil
		}
	}
	return engine.State(), fmt.Errorf("%w: allowance still short after approval", ErrNotPlaced)
}

// Evaluate refreshes chain state for side, normalizes raw with the token's
// decimals and evaluates the form. The deposit dry-run uses the normalized
// amount, so a second read is made once decimals are known.
func Evaluate(ctx context.Context, poller *Poller, engine *bet.Engine, side bet.Side, raw string) (bet.State, error) {
	snap := poller.Refresh(ctx, Query{Side: side})
	if snap.Precision == nil {
		return bet.State{}, fmt.Errorf("token decimals unavailable: %w", snap.Err)
	}
	amount := bet.NormalizeAmount(raw, snap.Precision)
	if amount.Sign() > 0 {
		snap = poller.Refresh(ctx, Query{Side: side, Amount: amount})
	}

	return engine.Evaluate(bet.Inputs{
		Side:       side,
		RawAmount:  raw,
		Precision:  snap.Precision,
		Balance:    snap.Balance,
		Allowance:  snap.Allowance,
		CanDeposit: snap.Connected && snap.CanDeposit,
	}), nil
}

func reason(st bet.State) string {
	switch {
	case st.Amount == nil || st.Amount.Sign() == 0:
		return "amount must be a positive number within token precision"
	case st.InsufficientBalance:
		return st.Button.Label
	default:
		return "deposit dry run failed"
	}
}
