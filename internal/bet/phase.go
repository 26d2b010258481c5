// internal/bet/phase.go
package bet

// Phase is the position of a UI session in the approve-then-deposit flow.
//
//	NoSideSelected -> AwaitingApproval -> ApprovalPending -> ReadyToDeposit -> DepositPending -> Idle
//
// Phases are derived on every evaluation; nothing is persisted.
type Phase int

const (
	PhaseNoSideSelected Phase = iota
	// PhaseIdle: a side is selected but no action is possible yet (zero
	// amount, insufficient balance, data still loading, or a deposit just
	// finished).
	PhaseIdle
	PhaseAwaitingApproval
	PhaseApprovalPending
	PhaseReadyToDeposit
	PhaseDepositPending
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseNoSideSelected:
		return "no_side_selected"
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingApproval:
		return "awaiting_approval"
	case PhaseApprovalPending:
		return "approval_pending"
	case PhaseReadyToDeposit:
		return "ready_to_deposit"
	case PhaseDepositPending:
		return "deposit_pending"
	default:
		return "unknown"
	}
}

func derivePhase(in Inputs, st State) Phase {
	switch {
	case !in.Side.Valid():
		return PhaseNoSideSelected
	case in.DepositPending:
		return PhaseDepositPending
	case in.ApprovePending:
		return PhaseApprovalPending
	case st.Button.Disabled:
		return PhaseIdle
	case st.NeedsApproval:
		return PhaseAwaitingApproval
	default:
		return PhaseReadyToDeposit
	}
}
