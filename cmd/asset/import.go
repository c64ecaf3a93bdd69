package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/reginold/asset-management/internal/cli"
	"github.com/reginold/asset-management/internal/model"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import statement records into the transaction history",
		Long: `Import a normalized CSV statement (date, merchant, amount, and an
optional reference column) into the transaction history. Re-importing
the same file is safe; duplicate records are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transactions, err := parseTransactionsCSV(args[0])
			if err != nil {
				return err
			}

			history, err := openHistoryStore()
			if err != nil {
				return err
			}
			defer func() { _ = history.Close() }()

			before, err := history.Count(cmd.Context())
			if err != nil {
				return err
			}
			if err := history.SaveTransactions(cmd.Context(), transactions); err != nil {
				return err
			}
			after, err := history.Count(cmd.Context())
			if err != nil {
				return err
			}

			added := after - before
			skipped := len(transactions) - added
			msg := fmt.Sprintf("Imported %d transactions from %s", added, filepath.Base(args[0]))
			if skipped > 0 {
				msg += fmt.Sprintf(" (%d duplicates skipped)", skipped)
			}
			cmd.Println(cli.FormatSuccess(msg))
			return nil
		},
	}
}

var csvDateFormats = []string{"2006-01-02", "2006/01/02"}

// parseTransactionsCSV reads a normalized statement CSV. A header row is
// detected by its unparseable date and skipped.
func parseTransactionsCSV(path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	sourceFile := filepath.Base(path)
	var transactions []model.Transaction
	for i, record := range records {
		if len(record) < 3 {
			return nil, fmt.Errorf("%s row %d: want at least date, merchant, amount", path, i+1)
		}

		date, err := parseCSVDate(record[0])
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}

		merchant := strings.TrimSpace(record[1])
		if merchant == "" {
			return nil, fmt.Errorf("%s row %d: empty merchant", path, i+1)
		}

		amount, err := parseCSVAmount(record[2])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}

		t := model.Transaction{
			Date:       date,
			Merchant:   merchant,
			Amount:     amount,
			SourceFile: sourceFile,
		}
		if len(record) > 3 {
			t.Reference = strings.TrimSpace(record[3])
		}
		t.Hash = t.GenerateHash()
		transactions = append(transactions, t)
	}
	return transactions, nil
}

func parseCSVDate(field string) (time.Time, error) {
	field = strings.TrimSpace(field)
	for _, layout := range csvDateFormats {
		if date, err := time.Parse(layout, field); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", field)
}

func parseCSVAmount(field string) (float64, error) {
	cleaned := strings.TrimSpace(field)
	cleaned = strings.TrimPrefix(cleaned, "¥")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unrecognized amount %q", field)
	}
	return amount, nil
}
