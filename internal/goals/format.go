package goals

import (
	"fmt"
	"strings"

	"github.com/gmsas95/finbot/internal/dates"
	"github.com/gmsas95/finbot/internal/ledger"
	"github.com/gmsas95/finbot/internal/money"
)

// FormatContribution renders the reply after a successful contribution.
func FormatContribution(r *ContributionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Contribuição registrada para a meta '%s':\n\n", r.Goal.Name)
	fmt.Fprintf(&b, "💰 Valor adicionado: %s\n", money.FormatBRL(r.Added))
	fmt.Fprintf(&b, "💵 Total acumulado: %s\n", money.FormatBRL(r.Goal.CurrentAmount))
	fmt.Fprintf(&b, "🎯 Meta: %s (%s%%)\n", money.FormatBRL(r.Goal.TargetAmount), r.Percent.StringFixed(1))
	if r.Completed {
		b.WriteString("\n🎉 Parabéns! Você atingiu sua meta!")
	} else {
		fmt.Fprintf(&b, "\n📈 Faltam %s para atingir sua meta.", money.FormatBRL(r.Goal.Remaining()))
	}
	return b.String()
}

// FormatCreated renders the reply after a goal is created.
func FormatCreated(g *ledger.Goal) string {
	deadline := "Não definida"
	if g.Deadline != nil {
		deadline = dates.FormatDate(*g.Deadline)
	}
	return fmt.Sprintf("✅ Meta '%s' criada com sucesso!\n💰 Valor: %s\n📅 Data limite: %s",
		g.Name, money.FormatBRL(g.TargetAmount), deadline)
}

// StatusEmoji is the list marker for a goal status.
func StatusEmoji(s ledger.GoalStatus) string {
	switch s {
	case ledger.GoalCompleted:
		return "✅"
	case ledger.GoalActive:
		return "⏳"
	default:
		return "❌"
	}
}

// FormatList renders the owner's goals with progress.
func FormatList(goals []ledger.Goal) string {
	if len(goals) == 0 {
		return "🎯 Você ainda não tem metas definidas. Diga, por exemplo: \"quero criar uma meta de viagem com 5000 reais\"."
	}

	var b strings.Builder
	b.WriteString("🎯 Suas Metas Financeiras:\n\n")
	for _, g := range goals {
		fmt.Fprintf(&b, "%s #%d %s:\n", StatusEmoji(g.Status), g.ID, g.Name)
		fmt.Fprintf(&b, "💰 Meta: %s\n", money.FormatBRL(g.TargetAmount))
		fmt.Fprintf(&b, "💵 Atual: %s (%s%%)\n", money.FormatBRL(g.CurrentAmount), g.Progress().StringFixed(1))
		if g.Deadline != nil {
			fmt.Fprintf(&b, "📅 Data limite: %s\n", dates.FormatDate(*g.Deadline))
		}
		if g.Description != "" {
			fmt.Fprintf(&b, "📝 %s\n", g.Description)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
