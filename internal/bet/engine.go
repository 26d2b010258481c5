// internal/bet/engine.go
package bet

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"go.uber.org/zap"
)

// Button labels.
const (
	LabelInsufficientBalance = "Insufficient Balance"
	LabelPlaceBet            = "Place Bet"
	labelApprovePrefix       = "Approve "
)

// Inputs are the externally supplied values the engine derives state from.
// Nil Precision, Balance or Allowance mean "not fetched yet", which is
// different from zero.
type Inputs struct {
	Side      Side
	RawAmount string
	Precision *uint8
	Balance   *big.Int
	Allowance *big.Int

	ApprovePending bool
	DepositPending bool

	// CanDeposit is true when a deposit action is available (connected
	// account and a usable chain client).
	CanDeposit bool
}

// ButtonState is what the primary action button shows.
type ButtonState struct {
	Label    string
	Disabled bool
}

// ButtonConditions collects everything the button depends on.
type ButtonConditions struct {
	Side                Side
	Amount              *big.Int
	InsufficientBalance bool
	NeedsApproval       bool
	CanDeposit          bool
	Pending             bool
}

// State is the derived view of a bet form.
type State struct {
	Side                Side
	Amount              *big.Int
	InsufficientBalance bool
	NeedsApproval       bool
	Button              ButtonState
	Phase               Phase
}

// IsInsufficientBalance reports whether spending amount would leave the
// balance at or below zero. An exact match counts as insufficient.
func IsInsufficientBalance(balance, amount *big.Int) bool {
	if balance == nil || isZero(amount) {
		return false
	}
	return new(big.Int).Sub(balance, amount).Sign() <= 0
}

// NeedsApproval reports whether the allowance does not exceed amount. An
// allowance exactly equal to the amount still requires approval.
func NeedsApproval(allowance, amount *big.Int) bool {
	if allowance == nil || isZero(amount) {
		return false
	}
	return new(big.Int).Sub(amount, allowance).Sign() >= 0
}

// ButtonLabel picks the label; insufficient balance wins over approval.
func ButtonLabel(insufficient, needsApproval bool, side Side) string {
	switch {
	case insufficient:
		return LabelInsufficientBalance
	case needsApproval:
		return labelApprovePrefix + string(side.InputToken())
	default:
		return LabelPlaceBet
	}
}

// ComputeButtonState derives the label and the disabled flag.
func ComputeButtonState(c ButtonConditions) ButtonState {
	disabled := !c.Side.Valid() ||
		(!c.NeedsApproval && !c.CanDeposit) ||
		isZero(c.Amount) ||
		c.Pending ||
		c.InsufficientBalance

	return ButtonState{
		Label:    ButtonLabel(c.InsufficientBalance, c.NeedsApproval, c.Side),
		Disabled: disabled,
	}
}

// Evaluate computes the full state from scratch. It keeps nothing between
// calls, so a side or precision change can never leave a stale amount.
func Evaluate(in Inputs) State {
	amount := new(big.Int)
	if in.Side.Valid() {
		amount = NormalizeAmount(in.RawAmount, in.Precision)
	}

	insufficient := IsInsufficientBalance(in.Balance, amount)
	needsApproval := NeedsApproval(in.Allowance, amount)

	button := ComputeButtonState(ButtonConditions{
		Side:                in.Side,
		Amount:              amount,
		InsufficientBalance: insufficient,
		NeedsApproval:       needsApproval,
		CanDeposit:          in.CanDeposit,
		Pending:             in.ApprovePending || in.DepositPending,
	})

	st := State{
		Side:                in.Side,
		Amount:              amount,
		InsufficientBalance: insufficient,
		NeedsApproval:       needsApproval,
		Button:              button,
	}
	st.Phase = derivePhase(in, st)
	return st
}

// Action is the side effect chosen by Submit.
type Action int

const (
	ActionNone Action = iota
	ActionApprove
	ActionDeposit
)

// String returns the string representation of the action
func (a Action) String() string {
	switch a {
	case ActionApprove:
		return "approve"
	case ActionDeposit:
		return "deposit"
	default:
		return "none"
	}
}

// Decide maps a state to the action the button would trigger.
func Decide(st State) Action {
	if st.Button.Disabled {
		return ActionNone
	}
	if st.NeedsApproval {
		return ActionApprove
	}
	return ActionDeposit
}

// Actions are the externally owned side effects. Approval and deposit are
// separate transactions; after an approval the user submits again.
type Actions interface {
	Approve(ctx context.Context, side Side) error
	Deposit(ctx context.Context, side Side, amount *big.Int) error
}

// Engine keeps the last evaluated state for a UI session and logs phase
// transitions.
type Engine struct {
	mu     sync.Mutex
	last   State
	logger *zap.Logger
}

// NewEngine creates an engine with no side selected.
func NewEngine(logger *zap.Logger) *Engine {
	e := &Engine{logger: logger.Named("bet")}
	e.last = Evaluate(Inputs{})
	return e
}

// Evaluate recomputes the state from in and stores it.
func (e *Engine) Evaluate(in Inputs) State {
	st := Evaluate(in)

	e.mu.Lock()
	prev := e.last.Phase
	e.last = st
	e.mu.Unlock()

	if prev != st.Phase {
		e.logger.Debug("Bet phase changed",
			zap.String("from", prev.String()),
			zap.String("to", st.Phase.String()),
			zap.String("side", st.Side.String()),
			zap.String("amount", st.Amount.String()))
	}
	return st
}

// State returns the last evaluated state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Submit triggers the action for the last evaluated state. It is a no-op
// returning ActionNone when the button is disabled.
func (e *Engine) Submit(ctx context.Context, actions Actions) (Action, error) {
	st := e.State()
	action := Decide(st)

	switch action {
	case ActionApprove:
		e.logger.Info("Submitting approval", zap.String("token", string(st.Side.InputToken())))
		if err := actions.Approve(ctx, st.Side); err != nil {
			return action, fmt.Errorf("approve %s: %w", st.Side.InputToken(), err)
		}
	case ActionDeposit:
		e.logger.Info("Submitting deposit",
			zap.String("token", string(st.Side.InputToken())),
			zap.String("amount", st.Amount.String()))
		if err := actions.Deposit(ctx, st.Side, new(big.Int).Set(st.Amount)); err != nil {
			return action, fmt.Errorf("deposit %s: %w", st.Side.InputToken(), err)
		}
	}
	return action, nil
}
