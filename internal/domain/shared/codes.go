package shared

import (
	"context"
	"time"
)

// CodeKind is the prefix of a human-readable sequential code
type CodeKind string

const (
	CodePatient         CodeKind = "PAT"
	CodeCompany         CodeKind = "COM"
	CodeSale            CodeKind = "SAL"
	CodeRental          CodeKind = "RNT"
	CodePayment         CodeKind = "PAY"
	CodeDiagnostic      CodeKind = "DIAG"
	CodeAppointment     CodeKind = "RDV"
	CodeCNAMDossier     CodeKind = "CNAM"
	CodeTransferRequest CodeKind = "STR"
	CodeTask            CodeKind = "TASK"
	CodeDevice          CodeKind = "DEV"
)

// CodeGenerator hands out the next free code of a kind
type CodeGenerator interface {
	// Next returns PREFIX-NNNN, one above the highest code in use
	Next(ctx context.Context, kind CodeKind) (string, error)
	// NextInvoiceNumber returns FACTURE-YYYY-NNNN for the year of at
	NextInvoiceNumber(ctx context.Context, at time.Time) (string, error)
}
