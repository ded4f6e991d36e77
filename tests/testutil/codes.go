package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/medrent/backend/internal/domain/shared"
)

// SequenceCodes is an in-memory CodeGenerator numbering each kind from 1
type SequenceCodes struct {
	mu       sync.Mutex
	next     map[shared.CodeKind]int
	invoices int
	Err      error
}

// NewSequenceCodes creates a SequenceCodes
func NewSequenceCodes() *SequenceCodes {
	return &SequenceCodes{next: make(map[shared.CodeKind]int)}
}

// Next returns PREFIX-NNNN
func (s *SequenceCodes) Next(_ context.Context, kind shared.CodeKind) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	s.next[kind]++
	return fmt.Sprintf("%s-%04d", kind, s.next[kind]), nil
}

// NextInvoiceNumber returns FACTURE-YYYY-NNNN
func (s *SequenceCodes) NextInvoiceNumber(_ context.Context, at time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	s.invoices++
	return fmt.Sprintf("FACTURE-%d-%04d", at.Year(), s.invoices), nil
}

var _ shared.CodeGenerator = (*SequenceCodes)(nil)
