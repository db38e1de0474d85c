// Package money parses and formats the loosely typed amounts users send in chat.
package money

import (
	"regexp"
	"strings"

	apperrors "github.com/gmsas95/finbot/internal/errors"
	"github.com/shopspring/decimal"
)

// MaxAmount is the sanity ceiling for any single amount (inclusive).
var MaxAmount = decimal.NewFromInt(1_000_000_000)

var (
	nonNumericRe   = regexp.MustCompile(`[^\d,.]`)
	separatorRe    = regexp.MustCompile(`[,.]`)
	wellFormedRe   = regexp.MustCompile(`^\d+\.?\d*$`)
	negativeSignRe = regexp.MustCompile(`^[^\d]*-\s*(?:r\$\s*)?\d`)
)

// ParseAmount converts strings such as "50", "50,00" or "R$50.00" into an
// exact decimal. Thousands grouping is not supported: "1.500,00" has two
// separators and is rejected rather than guessed.
func ParseAmount(raw string) (decimal.Decimal, error) {
	if negativeSignRe.MatchString(strings.ToLower(strings.TrimSpace(raw))) {
		return decimal.Zero, apperrors.WithDetail(apperrors.ErrNonPositiveAmount, "O valor deve ser maior que zero")
	}

	cleaned := nonNumericRe.ReplaceAllString(raw, "")

	if len(separatorRe.FindAllString(cleaned, -1)) > 1 {
		return decimal.Zero, apperrors.WithDetail(apperrors.ErrMultipleDecimalSeparators, "Valor inválido: múltiplos separadores decimais")
	}

	cleaned = strings.Replace(cleaned, ",", ".", 1)

	if !wellFormedRe.MatchString(cleaned) {
		return decimal.Zero, apperrors.WithDetail(apperrors.ErrMalformedNumber, "Valor inválido: use apenas números e um separador decimal")
	}

	// "50." is accepted by the shape check; decimal wants digits after the point.
	amount, err := decimal.NewFromString(strings.TrimSuffix(cleaned, "."))
	if err != nil {
		return decimal.Zero, apperrors.New(apperrors.ErrMalformedNumber.Code, "Valor inválido: formato incorreto", err)
	}

	if !amount.IsPositive() {
		return decimal.Zero, apperrors.WithDetail(apperrors.ErrNonPositiveAmount, "O valor deve ser maior que zero")
	}

	if amount.GreaterThan(MaxAmount) {
		return decimal.Zero, apperrors.WithDetail(apperrors.ErrAmountTooLarge, "Valor muito alto. Verifique se está correto")
	}

	return amount, nil
}

// Canonical renders an amount the way it is handed to the ledger: two places, period separator.
func Canonical(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatBRL renders an amount for chat replies, e.g. "R$1500.00".
func FormatBRL(d decimal.Decimal) string {
	return "R$" + d.StringFixed(2)
}

// Percent returns part/whole*100 rounded to one place, or zero when whole is not positive.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(1)
}
