// internal/storage/models/transaction.go
package models

// Kind of a journaled transaction.
const (
	KindApprove = "approve"
	KindDeposit = "deposit"
)

// Status of a journaled transaction.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
)

// Transaction is one approve or deposit sent from this client.
type Transaction struct {
	BaseModel
	Hash          string
	WalletAddress string
	Kind          string
	Side          string
	Token         string
	// Amount in the token's base units, as a decimal string.
	Amount        string
	Status        string
	ErrorMessage  string
	BlockNumber   uint64
	ExecutionTime float64
}
