package agent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gmsas95/finbot/internal/category"
	apperrors "github.com/gmsas95/finbot/internal/errors"
)

// NotUnderstoodMessage is sent when no interpreter matched
const NotUnderstoodMessage = `🤔 Não entendi. Tente algo como:
• "gastei 50 reais com almoço"
• "ganhei 1200 com freela"
• "juntei 200 reais para a meta viagem"

Use /ajuda para ver todos os comandos.`

// HelpMessage lists what the bot understands
const HelpMessage = `📖 Como usar o FinBot

💸 Gastos: "gastei 50 reais com almoço ontem"
💰 Receitas: "recebi 3000 reais com salário"
🎯 Metas:
• "quero criar uma meta de viagem com 5000 reais até 31/12/2026"
• "juntei 200 reais para a meta viagem"
• "mostre minhas metas"

Comandos:
/resumo - resumo financeiro do mês
/metas - lista suas metas
/categorias - categorias disponíveis
/salario <valor> - atualiza seu salário
/cancelar <id> - cancela uma meta ativa
/ajuda - esta mensagem`

// userMessages holds one corrective hint per user-facing error code
var userMessages = map[string]string{
	apperrors.ErrMalformedNumber.Code:           "Use apenas números, por exemplo: 50 ou 50,00.",
	apperrors.ErrMultipleDecimalSeparators.Code: "Não use separador de milhar: escreva 1500,00 em vez de 1.500,00.",
	apperrors.ErrNonPositiveAmount.Code:         "Informe um valor maior que zero.",
	apperrors.ErrAmountTooLarge.Code:            "O valor máximo aceito é R$1000000000.00.",
	apperrors.ErrInvalidCategory.Code:           "Use /categorias para ver a lista.",
	apperrors.ErrGoalNotFound.Code:              "Use /metas para ver suas metas.",
	apperrors.ErrGoalNotActive.Code:             "Só é possível contribuir para metas ativas.",
	apperrors.ErrInvalidInput.Code:              "Tente novamente.",
	apperrors.ErrLedgerUnavailable.Code:         "Estou com problemas para acessar seus dados. Tente de novo em alguns instantes.",
}

// sentinelMessages are the internal default messages; they are never shown
var sentinelMessages = map[string]string{
	apperrors.ErrMalformedNumber.Code:           apperrors.ErrMalformedNumber.Message,
	apperrors.ErrMultipleDecimalSeparators.Code: apperrors.ErrMultipleDecimalSeparators.Message,
	apperrors.ErrNonPositiveAmount.Code:         apperrors.ErrNonPositiveAmount.Message,
	apperrors.ErrAmountTooLarge.Code:            apperrors.ErrAmountTooLarge.Message,
	apperrors.ErrInvalidCategory.Code:           apperrors.ErrInvalidCategory.Message,
	apperrors.ErrGoalNotFound.Code:              apperrors.ErrGoalNotFound.Message,
	apperrors.ErrGoalNotActive.Code:             apperrors.ErrGoalNotActive.Message,
	apperrors.ErrInvalidInput.Code:              apperrors.ErrInvalidInput.Message,
	apperrors.ErrLedgerUnavailable.Code:         "ledger temporarily unavailable",
}

// UserMessage renders a typed error as a Portuguese reply: the specific
// detail carried by the error, when there is one, followed by the hint for
// its code.
func UserMessage(err error) string {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return "❌ Algo deu errado. Tente novamente."
	}

	hint, ok := userMessages[appErr.Code]
	if !ok {
		return "❌ Algo deu errado. Tente novamente."
	}

	if appErr.Message == "" || appErr.Message == sentinelMessages[appErr.Code] {
		return "❌ " + hint
	}
	return fmt.Sprintf("❌ %s\n%s", appErr.Message, hint)
}

// CategoriesMessage lists both taxonomies
func CategoriesMessage() string {
	var b strings.Builder
	b.WriteString("📂 Categorias de gastos:\n")
	for _, c := range category.ExpenseCategories {
		fmt.Fprintf(&b, "• %s\n", c)
	}
	b.WriteString("\n💰 Categorias de receitas:\n")
	for _, c := range category.IncomeCategories {
		fmt.Fprintf(&b, "• %s\n", c)
	}
	return strings.TrimRight(b.String(), "\n")
}
