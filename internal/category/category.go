// Package category infers transaction categories from free-text descriptions.
package category

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	apperrors "github.com/gmsas95/finbot/internal/errors"
	"github.com/gmsas95/finbot/internal/textnorm"
)

// Category is a human-facing category name as stored in the ledger.
type Category string

// Expense categories
const (
	Food      Category = "Alimentação"
	Transport Category = "Transporte"
	Housing   Category = "Moradia"
	Leisure   Category = "Lazer"
	Health    Category = "Saúde"
	Education Category = "Educação"
	Clothing  Category = "Vestuário"
	Other     Category = "Outros"
)

// Income categories
const (
	Salary      Category = "Salário"
	Freelance   Category = "Freelance"
	Investments Category = "Investimentos"
	Sales       Category = "Vendas"
	Gifts       Category = "Presentes"
)

// SimilarityThreshold is the minimum similarity (exclusive) for a fuzzy category match.
const SimilarityThreshold = 0.8

// ExpenseCategories lists the expense taxonomy in display order.
var ExpenseCategories = []Category{Food, Transport, Housing, Leisure, Health, Education, Clothing, Other}

// IncomeCategories lists the income taxonomy in display order.
var IncomeCategories = []Category{Salary, Freelance, Investments, Sales, Gifts, Other}

// Rule pairs a category with the keywords that select it.
type Rule struct {
	Category Category
	Keywords []string
}

// Classifier maps descriptions to categories using an ordered keyword table.
// The first rule with any keyword contained in the description wins.
type Classifier struct {
	rules    []Rule
	fallback Category
}

// NewClassifier builds a classifier; keywords are normalized once up front.
func NewClassifier(rules []Rule, fallback Category) *Classifier {
	normalized := make([]Rule, len(rules))
	for i, r := range rules {
		kws := make([]string, len(r.Keywords))
		for j, kw := range r.Keywords {
			kws[j] = textnorm.Normalize(kw)
		}
		normalized[i] = Rule{Category: r.Category, Keywords: kws}
	}
	return &Classifier{rules: normalized, fallback: fallback}
}

// Classify returns the first matching category or the fallback. Never fails.
func (c *Classifier) Classify(description string) Category {
	text := textnorm.Normalize(description)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(text, kw) {
				return r.Category
			}
		}
	}
	return c.fallback
}

var (
	expenseClassifier = NewClassifier(ExpenseRules, Other)
	incomeClassifier  = NewClassifier(IncomeRules, Other)
)

// Classify infers an expense category.
func Classify(description string) Category {
	return expenseClassifier.Classify(description)
}

// ClassifyIncome infers an income category.
func ClassifyIncome(description string) Category {
	return incomeClassifier.Classify(description)
}

// Similarity returns 1 - levenshtein(a, b)/max(len(a), len(b)) over runes.
func Similarity(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}

// Validate resolves an explicitly supplied category against the allowed list.
// An exact case-insensitive match wins; otherwise the most similar allowed
// category is accepted when its similarity exceeds SimilarityThreshold.
func Validate(candidate string, allowed []string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(candidate))

	for _, a := range allowed {
		if strings.ToLower(a) == c {
			return a, nil
		}
	}

	best, bestScore := "", 0.0
	for _, a := range allowed {
		if score := Similarity(c, strings.ToLower(a)); score > bestScore {
			best, bestScore = a, score
		}
	}
	if bestScore > SimilarityThreshold {
		return best, nil
	}

	return "", apperrors.WithDetail(apperrors.ErrInvalidCategory,
		fmt.Sprintf("Categoria inválida. Categorias válidas: %s", strings.Join(allowed, ", ")))
}

// Names converts a category list to plain strings.
func Names(cats []Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}

// IsExpense reports whether c belongs to the expense taxonomy.
func IsExpense(c Category) bool {
	return contains(ExpenseCategories, c)
}

// IsIncome reports whether c belongs to the income taxonomy.
func IsIncome(c Category) bool {
	return contains(IncomeCategories, c)
}

func contains(list []Category, c Category) bool {
	for _, x := range list {
		if x == c {
			return true
		}
	}
	return false
}
