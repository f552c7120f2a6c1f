package entity

import (
	"github.com/shopspring/decimal"
)

// DefaultReason is the reason attached to every extracted record.
const DefaultReason = "pendência"

// ClientRecord is a validated overdue-client row.
type ClientRecord struct {
	ID          string          `json:"id" csv:"id"`
	Name        string          `json:"name" csv:"nome"`
	DebtAmount  decimal.Decimal `json:"debt_amount" csv:"-"`
	DebtDisplay string          `json:"debt_display" csv:"valor"`
	DueDate     string          `json:"due_date" csv:"vencimento"`
	Status      string          `json:"status" csv:"status"`
	Contact     string          `json:"contact" csv:"contato"`
	Mobile      bool            `json:"mobile" csv:"celular"`
	Reason      string          `json:"reason" csv:"motivo"`
}

// RecordKey is the composite identity (id, name, due_date).
type RecordKey struct {
	ID      string
	Name    string
	DueDate string
}
