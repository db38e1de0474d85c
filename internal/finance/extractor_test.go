package finance

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gmsas95/finbot/internal/errors"
	"github.com/gmsas95/finbot/internal/ledger"
)

var now = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestExtractor() *Extractor {
	return NewExtractor().WithReference(now)
}

func TestExtractExpense(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		input       string
		amount      string
		description string
		category    string
		date        time.Time
		mentioned   bool
	}{
		{"Gastei 50 reais com almoço", "50.00", "almoço", "Alimentação", now, false},
		{"Gastei 1500 com aluguel ontem", "1500.00", "aluguel", "Moradia", now.AddDate(0, 0, -1), true},
		{"gastei 30 no uber anteontem", "30.00", "uber", "Transporte", now.AddDate(0, 0, -2), true},
		{"Gastei R$ 45,90 com pizza", "45.90", "pizza", "Alimentação", now, false},
		{"gastou 20 real com almoco", "20.00", "almoço", "Alimentação", now, false},
		{"paguei 80 com farmacia em 10/06/2025", "80.00", "farmácia", "Saúde", time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC), true},
		{"paguei 120 na conta de luz semana passada", "120.00", "conta de luz", "Moradia", now.AddDate(0, 0, -7), true},
		{"comprei um tênis por 200 reais ontem", "200.00", "um tenis", "Vestuário", now.AddDate(0, 0, -1), true},
		{"desembolsei 15 com xyz123 obscure item", "15.00", "xyz123 obscure item", "Outros", now, false},
		{"gastei 50 com almoço no dia 10/06", "50.00", "almoço", "Alimentação", time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC), true},
		{"gastei 50 com almoço em 10/06/24", "50.00", "almoço", "Alimentação", time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC), true},
		{"gastei 50 reais com almoço.", "50.00", "almoço", "Alimentação", now, false},
		{"paguei 80 com farmacia ontem!", "80.00", "farmácia", "Saúde", now.AddDate(0, 0, -1), true},
	}

	for _, test := range tests {
		tx, err := e.ExtractExpense(test.input)
		require.NoError(t, err, "Input: %q", test.input)
		assert.Equal(t, ledger.KindExpense, tx.Kind)
		assert.Equal(t, test.amount, tx.Amount.StringFixed(2), "Input: %q", test.input)
		assert.Equal(t, test.description, tx.Description, "Input: %q", test.input)
		assert.Equal(t, test.category, tx.Category, "Input: %q", test.input)
		assert.Equal(t, test.date, tx.OccurredAt, "Input: %q", test.input)
		assert.Equal(t, test.mentioned, tx.DateMentioned, "Input: %q", test.input)
		assert.NotEmpty(t, tx.ID)
	}
}

func TestExtractExpense_AmountErrorsPropagate(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		input    string
		expected error
	}{
		{"gastei 1.500,00 com aluguel", apperrors.ErrMultipleDecimalSeparators},
		{"gastei -5 com lanche", apperrors.ErrNonPositiveAmount},
		{"gastei 0 com lanche", apperrors.ErrNonPositiveAmount},
		{"gastei 2000000000 com carro", apperrors.ErrAmountTooLarge},
	}

	for _, test := range tests {
		tx, err := e.ExtractExpense(test.input)
		assert.Nil(t, tx)
		assert.True(t, errors.Is(err, test.expected), "Input: %q, got %v", test.input, err)
	}
}

func TestExtractExpense_Unrecognized(t *testing.T) {
	e := newTestExtractor()

	for _, input := range []string{"olá, tudo bem?", "gastei muito ontem", "recebi 100 com freela"} {
		_, err := e.ExtractExpense(input)
		assert.True(t, errors.Is(err, apperrors.ErrUnrecognizedFormat), "Input: %q", input)
	}
}

func TestExtract_ExplicitCategory(t *testing.T) {
	tx, err := newTestExtractor().WithCategory("transporte").ExtractExpense("gastei 50 com almoço")
	require.NoError(t, err)
	assert.Equal(t, "Transporte", tx.Category)
	assert.Equal(t, "almoço", tx.Description)

	tx, err = newTestExtractor().WithCategory("Alimentacao").ExtractExpense("gastei 50 com almoço")
	require.NoError(t, err)
	assert.Equal(t, "Alimentação", tx.Category)

	_, err = newTestExtractor().WithCategory("Viagens").ExtractExpense("gastei 50 com almoço")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCategory), "got %v", err)

	// expense categories are not valid for income
	_, err = newTestExtractor().WithCategory("Moradia").ExtractIncome("recebi 3000 com salário")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCategory), "got %v", err)

	tx, err = newTestExtractor().WithCategory("").ExtractExpense("gastei 50 com almoço")
	require.NoError(t, err)
	assert.Equal(t, "Alimentação", tx.Category)
}

func TestExtractIncome(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		input       string
		amount      string
		description string
		category    string
	}{
		{"recebi 3000 reais com salário", "3000.00", "salario", "Salário"},
		{"ganhei 500 com freela de design", "500.00", "freela de design", "Freelance"},
		{"recebi 42,50 em dividendos hoje", "42.50", "dividendos", "Investimentos"},
		{"vendi a bicicleta por 800", "800.00", "a bicicleta", "Outros"},
		{"consegui 100 com um presente da vó", "100.00", "um presente da vo", "Presentes"},
	}

	for _, test := range tests {
		tx, err := e.ExtractIncome(test.input)
		require.NoError(t, err, "Input: %q", test.input)
		assert.Equal(t, ledger.KindIncome, tx.Kind)
		assert.Equal(t, test.amount, tx.Amount.StringFixed(2), "Input: %q", test.input)
		assert.Equal(t, test.description, tx.Description, "Input: %q", test.input)
		assert.Equal(t, test.category, tx.Category, "Input: %q", test.input)
	}

	_, err := e.ExtractIncome("gastei 50 reais com almoço")
	assert.True(t, errors.Is(err, apperrors.ErrUnrecognizedFormat))
}

func TestDescribe(t *testing.T) {
	tx := &ledger.Transaction{
		Kind:        ledger.KindExpense,
		Amount:      decimal.NewFromInt(50),
		Description: "almoço",
		Category:    "Alimentação",
		OccurredAt:  now,
	}
	assert.Equal(t, "✅ Gasto registrado: R$50.00 com almoço (categoria: Alimentação)", Describe(tx))

	tx.Kind = ledger.KindIncome
	tx.DateMentioned = true
	assert.Equal(t, "✅ Receita registrada: R$50.00 com almoço em 15/06/2025 (categoria: Alimentação)", Describe(tx))
}

func TestTotal(t *testing.T) {
	txs := []ledger.Transaction{
		{Amount: decimal.RequireFromString("10.50")},
		{Amount: decimal.RequireFromString("0.25")},
	}
	assert.Equal(t, "10.75", Total(txs).StringFixed(2))
	assert.True(t, Total(nil).IsZero())
}
