package onboarding

// Prompts sent at each stage. The salary and goal prompts are re-sent after
// a corrective message when the answer does not validate.
const (
	WelcomePrompt = `👋 Olá! Eu sou o FinBot, seu assistente financeiro.

Antes de começar, vamos nos conhecer. Como você gostaria de ser chamado?`

	SalaryPrompt = "Prazer, %s! 😊\n\nQual é o seu salário mensal? (ex: 3500 ou 3500,00)"

	FirstGoalNamePrompt = `Ótimo! Agora vamos criar sua primeira meta financeira. 🎯

Qual é o nome da meta? (ex: viagem, carro novo, reserva de emergência)`

	FirstGoalAmountPrompt = "Quanto você quer juntar para a meta '%s'? (ex: 5000)"

	FirstGoalDeadlinePrompt = `Até quando você quer atingir essa meta?

Envie a data no formato DD/MM/AAAA ou "sem data" para pular.`
)

// CompletionTemplate is rendered with the finished onboarding state
const CompletionTemplate = `🎉 Tudo pronto, {{.UserName}}!

{{.GoalSummary}}

Agora é só me contar seus gastos e receitas, por exemplo:
• "gastei 50 reais com almoço"
• "ganhei 1200 com freela ontem"
• "juntei 200 reais para a meta {{.GoalName}}"

Use /ajuda para ver tudo o que eu sei fazer.`
