// internal/export/export.go
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hyperbet/internal/storage/models"
)

// Format represents the export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json".
func ParseFormat(raw string) (Format, error) {
	switch f := Format(raw); f {
	case FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", raw)
	}
}

// Options configures filtering and output.
type Options struct {
	Format    Format
	StartTime time.Time
	EndTime   time.Time
	Kind      string // approve / deposit
	Side      string // btc / usdc
	Status    string // pending / confirmed / failed
	OutputDir string
	// Decimals per token symbol. Tokens missing here are written in base units.
	Decimals map[string]uint8
}

// Record is the exported view of a journaled transaction.
type Record struct {
	Time          time.Time `json:"time"`
	Hash          string    `json:"hash"`
	Wallet        string    `json:"wallet"`
	Kind          string    `json:"kind"`
	Side          string    `json:"side"`
	Token         string    `json:"token"`
	Amount        string    `json:"amount"`
	Status        string    `json:"status"`
	BlockNumber   uint64    `json:"block_number,omitempty"`
	ExecutionTime float64   `json:"execution_time"`
	Error         string    `json:"error,omitempty"`
}

var csvHeaders = []string{"time", "hash", "wallet", "kind", "side", "token", "amount", "status", "block", "execution_time", "error"}

func (r Record) csvRow() []string {
	block := ""
	if r.BlockNumber > 0 {
		block = strconv.FormatUint(r.BlockNumber, 10)
	}
	return []string{
		r.Time.UTC().Format(time.RFC3339),
		r.Hash,
		r.Wallet,
		r.Kind,
		r.Side,
		r.Token,
		r.Amount,
		r.Status,
		block,
		strconv.FormatFloat(r.ExecutionTime, 'f', 2, 64),
		r.Error,
	}
}

// Summary contains totals for an export.
type Summary struct {
	Total     int `json:"total"`
	Confirmed int `json:"confirmed"`
	Failed    int `json:"failed"`
	Pending   int `json:"pending"`
	Approvals int `json:"approvals"`
	Deposits  int `json:"deposits"`
	// Confirmed deposit volume per token.
	Deposited map[string]string `json:"deposited"`
	StartDate time.Time         `json:"start_date"`
	EndDate   time.Time         `json:"end_date"`
}

// HistoryExporter writes the transaction journal to CSV or JSON.
type HistoryExporter struct {
	logger *zap.Logger
}

// NewHistoryExporter creates a new exporter
func NewHistoryExporter(logger *zap.Logger) *HistoryExporter {
	return &HistoryExporter{logger: logger}
}

// Export filters txs and writes them to a new file in options.OutputDir.
func (e *HistoryExporter) Export(txs []*models.Transaction, options Options) (string, error) {
	records := e.Records(txs, options)
	if len(records) == 0 {
		return "", fmt.Errorf("no transactions match the export criteria")
	}

	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(options.OutputDir, e.generateFilename(options))

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	if err := e.write(file, records, options); err != nil {
		return "", err
	}

	e.logger.Info("History exported",
		zap.String("file", outputPath),
		zap.Int("count", len(records)),
		zap.String("format", string(options.Format)))
	return outputPath, nil
}

// Write filters txs and encodes them to w.
func (e *HistoryExporter) Write(w io.Writer, txs []*models.Transaction, options Options) error {
	return e.write(w, e.Records(txs, options), options)
}

func (e *HistoryExporter) write(w io.Writer, records []Record, options Options) error {
	switch options.Format {
	case FormatCSV:
		return writeCSV(w, records)
	case FormatJSON:
		return writeJSON(w, records, options)
	default:
		return fmt.Errorf("unsupported format: %s", options.Format)
	}
}

// Records applies filters and returns matching records oldest first.
func (e *HistoryExporter) Records(txs []*models.Transaction, options Options) []Record {
	var records []Record
	for _, tx := range txs {
		if tx == nil || !matches(tx, options) {
			continue
		}
		records = append(records, Record{
			Time:          tx.CreatedAt,
			Hash:          tx.Hash,
			Wallet:        tx.WalletAddress,
			Kind:          tx.Kind,
			Side:          tx.Side,
			Token:         tx.Token,
			Amount:        formatAmount(tx, options.Decimals),
			Status:        tx.Status,
			BlockNumber:   tx.BlockNumber,
			ExecutionTime: tx.ExecutionTime,
			Error:         tx.ErrorMessage,
		})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Time.Before(records[j].Time)
	})
	return records
}

func matches(tx *models.Transaction, options Options) bool {
	if !options.StartTime.IsZero() && tx.CreatedAt.Before(options.StartTime) {
		return false
	}
	if !options.EndTime.IsZero() && tx.CreatedAt.After(options.EndTime) {
		return false
	}
	if options.Kind != "" && tx.Kind != options.Kind {
		return false
	}
	if options.Side != "" && tx.Side != options.Side {
		return false
	}
	if options.Status != "" && tx.Status != options.Status {
		return false
	}
	return true
}

// Approvals are for an unbounded allowance, shown as "max".
func formatAmount(tx *models.Transaction, decimals map[string]uint8) string {
	if tx.Kind == models.KindApprove {
		return "max"
	}
	amount, err := decimal.NewFromString(tx.Amount)
	if err != nil {
		return tx.Amount
	}
	if d, ok := decimals[tx.Token]; ok {
		return amount.Shift(-int32(d)).String()
	}
	return amount.String()
}

func (e *HistoryExporter) generateFilename(options Options) string {
	prefix := "history_all"
	if options.Kind != "" {
		prefix = "history_" + options.Kind
	}
	if options.Side != "" {
		prefix += "_" + options.Side
	}
	return fmt.Sprintf("%s_%s.%s", prefix, time.Now().Format("20060102_150405"), options.Format)
}

func writeCSV(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeaders); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, r := range records {
		if err := writer.Write(r.csvRow()); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeJSON(w io.Writer, records []Record, options Options) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime time.Time `json:"export_time"`
		Count      int       `json:"count"`
		Records    []Record  `json:"records"`
		Summary    Summary   `json:"summary"`
	}{
		ExportTime: time.Now(),
		Count:      len(records),
		Records:    records,
		Summary:    Summarize(records),
	}
	if exportData.Records == nil {
		exportData.Records = []Record{}
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// Summarize counts records by status and kind and totals confirmed deposits.
// Records must be sorted oldest first.
func Summarize(records []Record) Summary {
	summary := Summary{Total: len(records), Deposited: map[string]string{}}
	if len(records) == 0 {
		return summary
	}
	summary.StartDate = records[0].Time
	summary.EndDate = records[len(records)-1].Time

	totals := make(map[string]decimal.Decimal)
	for _, r := range records {
		switch r.Status {
		case models.StatusConfirmed:
			summary.Confirmed++
		case models.StatusFailed:
			summary.Failed++
		case models.StatusPending:
			summary.Pending++
		}

		switch r.Kind {
		case models.KindApprove:
			summary.Approvals++
		case models.KindDeposit:
			summary.Deposits++
			if r.Status != models.StatusConfirmed {
				continue
			}
			amount, err := decimal.NewFromString(r.Amount)
			if err != nil {
				continue
			}
			totals[r.Token] = totals[r.Token].Add(amount)
		}
	}
	for token, total := range totals {
		summary.Deposited[token] = total.String()
	}
	return summary
}
