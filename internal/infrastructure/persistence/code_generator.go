package persistence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/medrent/backend/internal/domain/shared"
	"gorm.io/gorm"
)

const maxCodeAttempts = 5

// ErrCodeGenerationFailed is returned when no free code was found
var ErrCodeGenerationFailed = shared.NewDomainError("CODE_GENERATION_FAILED", "Could not generate a unique code")

type codeColumn struct {
	table  string
	column string
}

var codeColumns = map[shared.CodeKind]codeColumn{
	shared.CodePatient:         {"patients", "patient_code"},
	shared.CodeCompany:         {"companies", "company_code"},
	shared.CodeSale:            {"sales", "sale_code"},
	shared.CodeRental:          {"rentals", "rental_code"},
	shared.CodePayment:         {"payments", "payment_code"},
	shared.CodeDiagnostic:      {"diagnostics", "diagnostic_code"},
	shared.CodeAppointment:     {"appointments", "appointment_code"},
	shared.CodeCNAMDossier:     {"cnam_dossiers", "dossier_number"},
	shared.CodeTransferRequest: {"stock_transfer_requests", "request_code"},
	shared.CodeTask:            {"tasks", "task_code"},
	shared.CodeDevice:          {"medical_devices", "device_code"},
}

// GormCodeGenerator derives the next PREFIX-NNNN code from the highest code
// stored in the owning table. A generator on the pool is stateless and safe
// for concurrent use. One bound to a transaction by GormTransactionScope also
// remembers the codes it handed out, so two calls before a save never
// collide; the memo dies with the transaction.
type GormCodeGenerator struct {
	db     *gorm.DB
	issued map[string]int
}

// NewGormCodeGenerator creates a stateless generator over db
func NewGormCodeGenerator(db *gorm.DB) *GormCodeGenerator {
	return &GormCodeGenerator{db: db}
}

// newTxCodeGenerator creates a generator for one transaction. It must not
// outlive tx or be shared between goroutines.
func newTxCodeGenerator(tx *gorm.DB) *GormCodeGenerator {
	return &GormCodeGenerator{db: tx, issued: make(map[string]int)}
}

// Next returns PREFIX-NNNN, one above the highest code in use
func (g *GormCodeGenerator) Next(ctx context.Context, kind shared.CodeKind) (string, error) {
	col, ok := codeColumns[kind]
	if !ok {
		return "", shared.NewDomainError("INVALID_CODE_KIND", fmt.Sprintf("Unknown code kind %q", kind))
	}
	return g.next(ctx, col, string(kind)+"-")
}

// NextInvoiceNumber returns FACTURE-YYYY-NNNN, the sequence restarting each year
func (g *GormCodeGenerator) NextInvoiceNumber(ctx context.Context, at time.Time) (string, error) {
	return g.next(ctx, codeColumn{"sales", "invoice_number"}, fmt.Sprintf("FACTURE-%d-", at.Year()))
}

func (g *GormCodeGenerator) next(ctx context.Context, col codeColumn, prefix string) (string, error) {
	highest, err := g.highest(ctx, col, prefix)
	if err != nil {
		return "", err
	}
	if issued := g.issued[prefix]; issued > highest {
		highest = issued
	}

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		seq := highest + attempt
		candidate := fmt.Sprintf("%s%04d", prefix, seq)
		var taken int64
		err := g.db.WithContext(ctx).Table(col.table).Where(col.column+" = ?", candidate).Count(&taken).Error
		if err != nil {
			return "", err
		}
		if taken == 0 {
			if g.issued != nil {
				g.issued[prefix] = seq
			}
			return candidate, nil
		}
	}
	return "", ErrCodeGenerationFailed
}

// highest reads the largest numeric suffix among codes carrying prefix.
// Ordering by length first keeps PAT-10000 above PAT-9999.
func (g *GormCodeGenerator) highest(ctx context.Context, col codeColumn, prefix string) (int, error) {
	var codes []string
	err := g.db.WithContext(ctx).Table(col.table).
		Where(col.column+" LIKE ?", prefix+"%").
		Order("LENGTH(" + col.column + ") DESC, " + col.column + " DESC").
		Limit(10).
		Pluck(col.column, &codes).Error
	if err != nil {
		return 0, err
	}
	best := 0
	for _, code := range codes {
		n, err := strconv.Atoi(strings.TrimPrefix(code, prefix))
		if err == nil && n > best {
			best = n
		}
	}
	return best, nil
}

var _ shared.CodeGenerator = (*GormCodeGenerator)(nil)
