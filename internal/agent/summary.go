package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gmsas95/finbot/internal/dates"
	"github.com/gmsas95/finbot/internal/finance"
	"github.com/gmsas95/finbot/internal/goals"
	"github.com/gmsas95/finbot/internal/ledger"
	"github.com/gmsas95/finbot/internal/money"
)

// CategoryTotal is the spending in one category over the report period
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Percent  decimal.Decimal `json:"percent"`
}

// Report is the detailed financial summary of one owner over a period
type Report struct {
	Owner           string          `json:"owner"`
	UserName        string          `json:"user_name,omitempty"`
	From            time.Time       `json:"from"`
	To              time.Time       `json:"to"`
	Salary          decimal.Decimal `json:"salary"`
	Income          decimal.Decimal `json:"income"`
	Expenses        decimal.Decimal `json:"expenses"`
	Balance         decimal.Decimal `json:"balance"`
	SalarySpent     decimal.Decimal `json:"salary_spent_percent"`
	ByCategory      []CategoryTotal `json:"by_category"`
	ActiveGoals     []ledger.Goal   `json:"active_goals"`
	CompletedGoals  []ledger.Goal   `json:"completed_goals"`
	TransactionsLen int             `json:"transactions"`
}

// MonthRange returns the first and last instants of the month containing now
func MonthRange(now time.Time) (time.Time, time.Time) {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// Summary builds the owner's report for [from, to]. Balance is salary plus
// other income minus expenses.
func (a *Agent) Summary(ctx context.Context, owner string, from, to time.Time) (*Report, error) {
	txs, err := a.ledger.ListTransactions(ctx, owner, ledger.TransactionFilter{From: &from, To: &to})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	r := &Report{Owner: owner, From: from, To: to, TransactionsLen: len(txs)}

	if name, ok, err := a.ledger.GetSetting(ctx, owner, ledger.SettingUserName); err != nil {
		return nil, fmt.Errorf("failed to read user name: %w", err)
	} else if ok {
		r.UserName = name
	}

	if raw, ok, err := a.ledger.GetSetting(ctx, owner, ledger.SettingSalary); err != nil {
		return nil, fmt.Errorf("failed to read salary: %w", err)
	} else if ok {
		if salary, err := decimal.NewFromString(raw); err == nil {
			r.Salary = salary
		}
	}

	var expenses, income []ledger.Transaction
	for _, tx := range txs {
		if tx.Kind == ledger.KindIncome {
			income = append(income, tx)
		} else {
			expenses = append(expenses, tx)
		}
	}
	r.Income = finance.Total(income)
	r.Expenses = finance.Total(expenses)
	r.Balance = r.Salary.Add(r.Income).Sub(r.Expenses)
	r.SalarySpent = money.Percent(r.Expenses, r.Salary)

	perCategory := make(map[string]decimal.Decimal)
	for _, tx := range expenses {
		perCategory[tx.Category] = perCategory[tx.Category].Add(tx.Amount)
	}
	for cat, amount := range perCategory {
		r.ByCategory = append(r.ByCategory, CategoryTotal{
			Category: cat,
			Amount:   amount,
			Percent:  money.Percent(amount, r.Expenses),
		})
	}
	sort.Slice(r.ByCategory, func(i, j int) bool {
		if !r.ByCategory[i].Amount.Equal(r.ByCategory[j].Amount) {
			return r.ByCategory[i].Amount.GreaterThan(r.ByCategory[j].Amount)
		}
		return r.ByCategory[i].Category < r.ByCategory[j].Category
	})

	all, err := a.goals.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	for _, g := range all {
		switch g.Status {
		case ledger.GoalActive:
			r.ActiveGoals = append(r.ActiveGoals, g)
		case ledger.GoalCompleted:
			r.CompletedGoals = append(r.CompletedGoals, g)
		}
	}

	return r, nil
}

// FormatSummary renders a report for chat
func FormatSummary(r *Report) string {
	var b strings.Builder

	title := "📊 Resumo financeiro"
	if r.UserName != "" {
		title += " de " + r.UserName
	}
	fmt.Fprintf(&b, "%s\n📅 %s a %s\n\n", title, dates.FormatDate(r.From), dates.FormatDate(r.To))

	fmt.Fprintf(&b, "💼 Salário: %s\n", money.FormatBRL(r.Salary))
	fmt.Fprintf(&b, "💰 Outras receitas: %s\n", money.FormatBRL(r.Income))
	fmt.Fprintf(&b, "💸 Gastos: %s", money.FormatBRL(r.Expenses))
	if r.Salary.IsPositive() {
		fmt.Fprintf(&b, " (%s%% do salário)", r.SalarySpent.StringFixed(1))
	}
	b.WriteString("\n")

	if len(r.ByCategory) > 0 {
		b.WriteString("\n📂 Gastos por categoria:\n")
		for _, c := range r.ByCategory {
			fmt.Fprintf(&b, "• %s: %s (%s%%)\n", c.Category, money.FormatBRL(c.Amount), c.Percent.StringFixed(1))
		}
	}

	icon := "✅"
	if r.Balance.IsNegative() {
		icon = "⚠️"
	}
	fmt.Fprintf(&b, "\n%s Saldo: %s\n", icon, money.FormatBRL(r.Balance))

	if len(r.ActiveGoals)+len(r.CompletedGoals) > 0 {
		b.WriteString("\n🎯 Metas:\n")
		for _, g := range r.ActiveGoals {
			fmt.Fprintf(&b, "%s %s: %s de %s (%s%%)\n", goals.StatusEmoji(g.Status), g.Name,
				money.FormatBRL(g.CurrentAmount), money.FormatBRL(g.TargetAmount), g.Progress().StringFixed(1))
		}
		for _, g := range r.CompletedGoals {
			fmt.Fprintf(&b, "%s %s: concluída\n", goals.StatusEmoji(g.Status), g.Name)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// SetSalary parses raw and stores it as the owner's salary
func (a *Agent) SetSalary(ctx context.Context, owner, raw string) (string, error) {
	salary, err := money.ParseAmount(raw)
	if err != nil {
		return UserMessage(err), nil
	}
	if err := a.ledger.SetSetting(ctx, owner, ledger.SettingSalary, money.Canonical(salary)); err != nil {
		return "", fmt.Errorf("failed to save salary: %w", err)
	}
	return fmt.Sprintf("✅ Salário atualizado para %s", money.FormatBRL(salary)), nil
}

// GoalsMessage lists the owner's goals
func (a *Agent) GoalsMessage(ctx context.Context, owner string) (string, error) {
	list, err := a.goals.List(ctx, owner)
	if err != nil {
		return "", err
	}
	return goals.FormatList(list), nil
}

// CancelGoal cancels an active goal by id
func (a *Agent) CancelGoal(ctx context.Context, owner string, id uint) (string, error) {
	goal, err := a.goals.Cancel(ctx, owner, id)
	if err != nil {
		if IsUserError(err) {
			return UserMessage(err), nil
		}
		return "", err
	}
	a.metrics.RecordGoalEvent("cancelled")
	return fmt.Sprintf("❌ Meta '%s' cancelada.", goal.Name), nil
}

// Goals exposes the goal service
func (a *Agent) Goals() *goals.Service {
	return a.goals
}
