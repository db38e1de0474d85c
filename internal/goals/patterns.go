package goals

import "regexp"

// Pattern maps one goal regex onto intent fields by capture group.
// DeadlineGroup is zero when the pattern cannot carry a deadline.
type Pattern struct {
	Name          string
	Regex         *regexp.Regexp
	AmountGroup   int
	NameGroup     int
	DeadlineGroup int
}

const (
	amountExpr   = `(?:r\$\s*)?(-?\s*\d[\d.,]*)`
	reaisSuffix  = `(?:\s*(?:reais|r\$))?`
	saveVerbs    = `(?:juntei|adicionei|contribu[ií]|coloquei|depositei|reservei|guardei|economizei|poupei|salvei)`
	deadlineExpr = `(?:\s+(?:para\s+o\s+dia|at[eé]\s+o\s+dia|at[eé]|para)\s+(\d{1,2}/\d{1,2}/\d{4}))?`
)

// ContributionPatterns are tried first, in order.
var ContributionPatterns = []Pattern{
	{
		Name:        "verb_amount_meta_name",
		Regex:       regexp.MustCompile(saveVerbs + `\s+` + amountExpr + reaisSuffix + `\s+(?:para|na|pra)\s+(?:a\s+)?(?:minha\s+)?(?:meta|objetivo)\s+(?:de\s+|do\s+|da\s+)?(.+)`),
		AmountGroup: 1,
		NameGroup:   2,
	},
	{
		Name:        "amount_verb_meta_name",
		Regex:       regexp.MustCompile(`^` + amountExpr + reaisSuffix + `\s+` + saveVerbs + `\s+(?:para|na|pra)\s+(?:a\s+)?(?:minha\s+)?(?:meta|objetivo)\s+(?:de\s+|do\s+|da\s+)?(.+)`),
		AmountGroup: 1,
		NameGroup:   2,
	},
	{
		Name:        "meta_name_received_amount",
		Regex:       regexp.MustCompile(`(?:meta|objetivo)\s+(.+?)\s+(?:recebeu|ganhou|teve|obteve)\s+(?:mais\s+)?` + amountExpr),
		AmountGroup: 2,
		NameGroup:   1,
	},
	{
		Name:        "verb_amount_para_name",
		Regex:       regexp.MustCompile(saveVerbs + `\s+` + amountExpr + reaisSuffix + `\s+(?:para|pra)\s+(?:a\s+|o\s+)?(.+)`),
		AmountGroup: 1,
		NameGroup:   2,
	},
}

// CreationPatterns are tried when no contribution matched.
var CreationPatterns = []Pattern{
	{
		Name:          "want_create_meta_name_amount",
		Regex:         regexp.MustCompile(`(?:quero|vou|preciso|desejo|pretendo)\s+(?:criar|fazer|estabelecer|definir|ter)\s+(?:uma\s+)?(?:nova\s+)?meta\s+(?:de\s+|para\s+)?(.+?)\s+(?:com|de|no\s+valor\s+de)\s+` + amountExpr + reaisSuffix + deadlineExpr),
		AmountGroup:   2,
		NameGroup:     1,
		DeadlineGroup: 3,
	},
	{
		Name:          "meta_named_name_amount",
		Regex:         regexp.MustCompile(`(?:nova\s+)?meta\s+(?:chamada|nomeada|de\s+nome)\s+(.+?)\s+(?:com|de|no\s+valor\s+de)\s+` + amountExpr + reaisSuffix + deadlineExpr),
		AmountGroup:   2,
		NameGroup:     1,
		DeadlineGroup: 3,
	},
	{
		Name:          "want_save_amount_for_name",
		Regex:         regexp.MustCompile(`(?:vou|quero|preciso)\s+(?:guardar|economizar|poupar|juntar)\s+` + amountExpr + reaisSuffix + `\s+(?:para\s+a\s+meta\s+de|com\s+a\s+meta\s+de|para)\s+(.+?)` + deadlineExpr + `$`),
		AmountGroup:   1,
		NameGroup:     2,
		DeadlineGroup: 3,
	},
}

// ListingPatterns only need to be present somewhere in the message.
var ListingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:mostre|mostra|veja|ver|quero\s+ver|quero\s+saber)\s+(?:as\s+)?(?:minhas\s+)?(?:metas|objetivos)`),
	regexp.MustCompile(`(?:como\s+est[aã]o|qual\s+[eé]\s+o\s+progresso\s+das|progresso\s+das)\s+(?:minhas\s+)?(?:metas|objetivos)`),
	regexp.MustCompile(`(?:metas|objetivos)\s+(?:atual|atuais|atualizado|atualizada|atualizadas)`),
}
