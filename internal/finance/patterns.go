package finance

import "regexp"

// Pattern maps one regex onto transaction fields by capture group.
// DateGroup is zero when the pattern has no date clause.
type Pattern struct {
	Name             string
	Regex            *regexp.Regexp
	AmountGroup      int
	DescriptionGroup int
	DateGroup        int
}

const (
	amountExpr  = `(-?\s*\d[\d.,]*)`
	currency    = `(?:r\$\s*)?`
	reais       = `(?:\s+reais?)?`
	preposition = `(?:com|em|para|no|na)`

	// optional trailing date reference, stripped from the description
	dateClause = `(?:\s+(?:(?:em|no|na)\s+)?(?:dia\s+)?(anteontem|ontem|hoje|amanha|semana passada|mes passado|ano passado|\d{1,2}/\d{1,2}(?:/(?:\d{4}|\d{2}))?|\d{1,2} de [a-z]+(?: de \d{4})?))?$`
)

func verbAmountFirst(verbs string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|\s)(?:` + verbs + `)\s+` + currency + amountExpr + reais + `\s+` + preposition + `\s+(.+?)` + dateClause)
}

func verbAmountLast(verbs string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|\s)(?:` + verbs + `)\s+(.+?)\s+por\s+` + currency + amountExpr + reais + dateClause)
}

// ExpensePatterns are tried in order against normalized text.
var ExpensePatterns = []Pattern{
	{
		Name:             "verb_amount_description",
		Regex:            verbAmountFirst(`gastei|paguei|comprei|foi|custou|desembolsei`),
		AmountGroup:      1,
		DescriptionGroup: 2,
		DateGroup:        3,
	},
	{
		Name:             "verb_description_por_amount",
		Regex:            verbAmountLast(`comprei|paguei`),
		AmountGroup:      2,
		DescriptionGroup: 1,
		DateGroup:        3,
	},
}

// IncomePatterns are tried in order against normalized text.
var IncomePatterns = []Pattern{
	{
		Name:             "verb_amount_description",
		Regex:            verbAmountFirst(`ganhei|recebi|consegui|fiz|vendi`),
		AmountGroup:      1,
		DescriptionGroup: 2,
		DateGroup:        3,
	},
	{
		Name:             "verb_description_por_amount",
		Regex:            verbAmountLast(`vendi`),
		AmountGroup:      2,
		DescriptionGroup: 1,
		DateGroup:        3,
	},
}
