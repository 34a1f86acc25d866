package invoice

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/billing/backend/internal/domain/shared"
)

const (
	// DefaultNumberPrefix is used when settings carry no prefix
	DefaultNumberPrefix = "INV-"
	// DefaultStartNumber is the first suffix issued under a fresh prefix
	DefaultStartNumber int64 = 500000
	// maxNumberProbes bounds the forward probe when a candidate is taken
	maxNumberProbes = 100
)

// ErrNumberSequenceCorrupt is returned when the latest number under the prefix
// cannot be parsed. Issuing the start number again would collide with history,
// so generation stops instead.
var ErrNumberSequenceCorrupt = shared.NewDomainError(
	"INVOICE_NUMBER_SEQUENCE_CORRUPT",
	"Last invoice number does not follow the configured prefix and numeric suffix",
)

// ErrNumberExhausted is returned when no further number can be issued under
// the prefix
var ErrNumberExhausted = shared.NewDomainError("INVOICE_NUMBER_EXHAUSTED", "Could not allocate a free invoice number")

// NextNumber returns the number following last. An empty last yields
// prefix + start.
func NextNumber(prefix string, start int64, last string) (string, error) {
	if last == "" {
		return prefix + strconv.FormatInt(start, 10), nil
	}

	suffix, ok := strings.CutPrefix(last, prefix)
	if !ok || suffix == "" {
		return "", ErrNumberSequenceCorrupt.WithDetail("last_number", last).WithDetail("prefix", prefix)
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return "", ErrNumberSequenceCorrupt.WithDetail("last_number", last).WithDetail("prefix", prefix)
		}
	}
	n, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return "", ErrNumberSequenceCorrupt.WithDetail("last_number", last).WithDetail("prefix", prefix)
	}

	if n == math.MaxInt64 {
		return "", ErrNumberExhausted.WithDetail("prefix", prefix)
	}

	return prefix + strconv.FormatInt(n+1, 10), nil
}

// IssuedUnder reports whether number belongs to the sequence of prefix, that
// is the prefix is directly followed by a digit
func IssuedUnder(number, prefix string) bool {
	suffix, ok := strings.CutPrefix(number, prefix)
	return ok && suffix != "" && suffix[0] >= '0' && suffix[0] <= '9'
}

// NumberSource is the persistence view the generator needs
type NumberSource interface {
	// LastNumberWithPrefix returns the number of the most recently created
	// invoice issued under prefix (see IssuedUnder), or "" when there is none
	LastNumberWithPrefix(ctx context.Context, prefix string) (string, error)

	// ExistsByNumber checks if an invoice number is already taken
	ExistsByNumber(ctx context.Context, number string) (bool, error)
}

// GenerateNumber issues the next invoice number, probing forward while the
// candidate is already taken. The unique index on invoice_number remains the
// final guard against concurrent creators.
func GenerateNumber(ctx context.Context, src NumberSource, prefix string, start int64) (string, error) {
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}

	last, err := src.LastNumberWithPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to read last invoice number: %w", err)
	}

	candidate, err := NextNumber(prefix, start, last)
	if err != nil {
		return "", err
	}

	for range maxNumberProbes {
		exists, err := src.ExistsByNumber(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check invoice number: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		if candidate, err = NextNumber(prefix, start, candidate); err != nil {
			return "", err
		}
	}

	return "", ErrNumberExhausted.WithDetail("prefix", prefix)
}
