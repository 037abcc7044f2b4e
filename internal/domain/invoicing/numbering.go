package invoicing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultPrefix is used when a tenant has not configured a numbering prefix
const DefaultPrefix = "P-INV-"

// DefaultPadding is the default zero-padding width of the numeric suffix
const DefaultPadding = 5

// NumberingState is the versioned counter value that flows through a
// generation call. The generator returns an advanced copy and the caller
// writes it back with a compare-and-swap on Version.
type NumberingState struct {
	Prefix     string `json:"prefix"`
	NextNumber int64  `json:"next_number"`
	Padding    int    `json:"padding"`
	Version    int    `json:"version"`
}

// Validate checks the numbering invariants
func (s NumberingState) Validate() error {
	if strings.TrimSpace(s.Prefix) != s.Prefix {
		return shared.NewDomainError(CodeInvalidNumbering, "Prefix cannot have leading or trailing spaces")
	}
	if len(s.Prefix) > 20 {
		return shared.NewDomainError(CodeInvalidNumbering, "Prefix cannot exceed 20 characters")
	}
	if s.NextNumber < 0 {
		return shared.NewDomainError(CodeInvalidNumbering, "Next number cannot be negative")
	}
	if s.Padding < 0 || s.Padding > 18 {
		return shared.NewDomainError(CodeInvalidNumbering, "Padding must be between 0 and 18")
	}
	return nil
}

// Format renders the invoice number for seq
func (s NumberingState) Format(seq int64) string {
	return fmt.Sprintf("%s%0*d", s.Prefix, s.Padding, seq)
}

// SuffixOf returns the numeric suffix of number when it carries this prefix.
// Numbers whose remainder is not purely decimal digits are not part of the sequence.
func (s NumberingState) SuffixOf(number string) (int64, bool) {
	if !strings.HasPrefix(number, s.Prefix) {
		return 0, false
	}
	rest := number[len(s.Prefix):]
	if rest == "" {
		return 0, false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// StartSequence is the first sequence safe to issue given the stored
// counter and every existing invoice number.
func (s NumberingState) StartSequence(existing []string) int64 {
	start := s.NextNumber
	if start < 1 {
		start = 1
	}
	for _, number := range existing {
		if n, ok := s.SuffixOf(number); ok && n < math.MaxInt64 && n+1 > start {
			start = n + 1
		}
	}
	return start
}

// AdvancedTo returns a copy moved forward to cursor. The counter never moves backward.
func (s NumberingState) AdvancedTo(cursor int64) NumberingState {
	if cursor <= s.NextNumber {
		return s
	}
	s.NextNumber = cursor
	s.Version++
	return s
}

// InvoiceNumbering is the persisted numbering configuration of one prefix
type InvoiceNumbering struct {
	shared.TenantAggregateRoot
	Prefix     string `json:"prefix"`
	NextNumber int64  `json:"next_number"`
	Padding    int    `json:"padding"`
	IsDefault  bool   `json:"is_default"`
}

// NewInvoiceNumbering creates a numbering configuration
func NewInvoiceNumbering(tenantID uuid.UUID, prefix string, nextNumber int64, padding int) (*InvoiceNumbering, error) {
	if nextNumber < 1 {
		nextNumber = 1
	}
	state := NumberingState{Prefix: prefix, NextNumber: nextNumber, Padding: padding}
	if err := state.Validate(); err != nil {
		return nil, err
	}
	return &InvoiceNumbering{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Prefix:              prefix,
		NextNumber:          nextNumber,
		Padding:             padding,
	}, nil
}

// State returns the counter value passed to the generator
func (n *InvoiceNumbering) State() NumberingState {
	return NumberingState{
		Prefix:     n.Prefix,
		NextNumber: n.NextNumber,
		Padding:    n.Padding,
		Version:    n.Version,
	}
}

// Apply writes back an advanced state returned by the generator.
// It fails with a conflict when the state was read from a different version.
func (n *InvoiceNumbering) Apply(next NumberingState) (bool, error) {
	if next.Prefix != n.Prefix {
		return false, shared.NewDomainError(CodeInvalidNumbering, "Numbering prefix mismatch")
	}
	if next.NextNumber <= n.NextNumber {
		return false, nil
	}
	if next.Version != n.Version+1 {
		return false, shared.ErrConcurrencyConflict
	}
	n.NextNumber = next.NextNumber
	n.IncrementVersion()
	return true, nil
}

// Reconfigure changes the counter and padding. Lowering the counter is
// allowed here since generation re-scans existing numbers anyway.
func (n *InvoiceNumbering) Reconfigure(nextNumber int64, padding int) error {
	if nextNumber < 1 {
		return shared.NewDomainError(CodeInvalidNumbering, "Next number must be at least 1")
	}
	state := NumberingState{Prefix: n.Prefix, NextNumber: nextNumber, Padding: padding}
	if err := state.Validate(); err != nil {
		return err
	}
	n.NextNumber = nextNumber
	n.Padding = padding
	n.IncrementVersion()
	return nil
}

// MarkDefault flags this configuration as the tenant default
func (n *InvoiceNumbering) MarkDefault(isDefault bool) {
	n.IsDefault = isDefault
}
