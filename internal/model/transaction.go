package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Transaction is a single billing record from the transaction history.
// Only the merchant name, amount, and date matter to the categorization
// core; everything upstream (spreadsheet parsing, column normalization)
// happens before records reach this type.
type Transaction struct {
	Date       time.Time
	Merchant   string
	Reference  string
	SourceFile string
	Hash       string
	Amount     float64
}

// GenerateHash creates a stable hash for duplicate detection across imports.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Merchant)
	sum := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", sum)
}
