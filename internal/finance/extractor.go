// Package finance turns free-text Portuguese sentences into expense and
// income transactions.
package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gmsas95/finbot/internal/category"
	"github.com/gmsas95/finbot/internal/dates"
	apperrors "github.com/gmsas95/finbot/internal/errors"
	"github.com/gmsas95/finbot/internal/ledger"
	"github.com/gmsas95/finbot/internal/money"
	"github.com/gmsas95/finbot/internal/textnorm"
)

// Extractor runs the pattern cascade for one kind of transaction.
type Extractor struct {
	resolver *dates.Resolver
	expense  []Pattern
	income   []Pattern
	// category, when set, replaces the classifier and must name a category
	// of the transaction's kind
	category string
}

// NewExtractor creates an extractor anchored at the current time
func NewExtractor() *Extractor {
	return &Extractor{
		resolver: dates.NewResolver(),
		expense:  ExpensePatterns,
		income:   IncomePatterns,
	}
}

// WithReference sets the reference time used for date resolution
func (e *Extractor) WithReference(now time.Time) *Extractor {
	e.resolver.WithReference(now)
	return e
}

// WithCategory makes the extractor use an explicitly supplied category
// instead of classifying the description. An empty name keeps classification.
func (e *Extractor) WithCategory(name string) *Extractor {
	e.category = strings.TrimSpace(name)
	return e
}

// ExtractExpense parses an expense sentence such as
// "gastei 50 reais com almoço ontem".
func (e *Extractor) ExtractExpense(message string) (*ledger.Transaction, error) {
	return e.extract(message, ledger.KindExpense, e.expense, category.Classify, category.ExpenseCategories)
}

// ExtractIncome parses an income sentence such as "recebi 3000 com salário".
func (e *Extractor) ExtractIncome(message string) (*ledger.Transaction, error) {
	return e.extract(message, ledger.KindIncome, e.income, category.ClassifyIncome, category.IncomeCategories)
}

// trailingPunct is cut from the message and the description
const trailingPunct = ".,;!? "

func (e *Extractor) extract(message string, kind ledger.Kind, patterns []Pattern, classify func(string) category.Category, allowed []category.Category) (*ledger.Transaction, error) {
	text := textnorm.FixCommonTypos(strings.TrimRight(textnorm.Normalize(message), trailingPunct))

	for _, p := range patterns {
		m := p.Regex.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		// A matched pattern owns the message: amount failures are final.
		amount, err := money.ParseAmount(m[p.AmountGroup])
		if err != nil {
			return nil, err
		}

		description := strings.TrimRight(strings.TrimSpace(m[p.DescriptionGroup]), trailingPunct)
		if description == "" {
			continue
		}

		cat := string(classify(description))
		if e.category != "" {
			cat, err = category.Validate(e.category, category.Names(allowed))
			if err != nil {
				return nil, err
			}
		}

		occurredAt, mentioned := e.resolveDate(m, p, text)

		return &ledger.Transaction{
			ID:            uuid.NewString(),
			Kind:          kind,
			Amount:        amount.Round(2),
			Description:   description,
			Category:      cat,
			OccurredAt:    occurredAt,
			DateMentioned: mentioned,
		}, nil
	}

	return nil, apperrors.ErrUnrecognizedFormat
}

func (e *Extractor) resolveDate(m []string, p Pattern, text string) (time.Time, bool) {
	if p.DateGroup > 0 && m[p.DateGroup] != "" {
		return e.resolver.ResolveMatch(m[p.DateGroup])
	}
	return e.resolver.ResolveMatch(text)
}

// Describe renders the confirmation line shown after a transaction is saved.
func Describe(tx *ledger.Transaction) string {
	label := "Gasto registrado"
	if tx.Kind == ledger.KindIncome {
		label = "Receita registrada"
	}
	when := ""
	if tx.DateMentioned {
		when = " em " + dates.FormatDate(tx.OccurredAt)
	}
	return fmt.Sprintf("✅ %s: %s com %s%s (categoria: %s)",
		label, money.FormatBRL(tx.Amount), tx.Description, when, tx.Category)
}

// Total sums transaction amounts.
func Total(txs []ledger.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range txs {
		sum = sum.Add(tx.Amount)
	}
	return sum
}
