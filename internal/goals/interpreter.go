package goals

import (
	"regexp"
	"strings"
	"time"

	"github.com/gmsas95/finbot/internal/dates"
	apperrors "github.com/gmsas95/finbot/internal/errors"
	"github.com/gmsas95/finbot/internal/money"
)

// Interpreter recognizes goal phrases embedded in free text.
type Interpreter struct {
	contributions []Pattern
	creations     []Pattern
	listings      []*regexp.Regexp
	location      *time.Location
}

// NewInterpreter creates an interpreter over the default pattern tables.
// Deadlines are interpreted in loc (time.Local when nil).
func NewInterpreter(loc *time.Location) *Interpreter {
	if loc == nil {
		loc = time.Local
	}
	return &Interpreter{
		contributions: ContributionPatterns,
		creations:     CreationPatterns,
		listings:      ListingPatterns,
		location:      loc,
	}
}

// Interpret classifies message as a goal intent. Contribution patterns are
// tried first, then creation, then listing.
func (i *Interpreter) Interpret(message string) Intent {
	text := strings.ToLower(strings.TrimSpace(message))

	for _, p := range i.contributions {
		m := p.Regex.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		name := cleanName(m[p.NameGroup])
		if name == "" {
			continue
		}
		amount, err := money.ParseAmount(m[p.AmountGroup])
		if err != nil {
			return InvalidIntent{Err: err}
		}
		return ContributeIntent{GoalName: name, Amount: amount}
	}

	for _, p := range i.creations {
		m := p.Regex.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		name := cleanName(m[p.NameGroup])
		if name == "" {
			continue
		}
		amount, err := money.ParseAmount(m[p.AmountGroup])
		if err != nil {
			return InvalidIntent{Err: err}
		}
		intent := CreateIntent{Name: name, Amount: amount}
		if p.DeadlineGroup > 0 && m[p.DeadlineGroup] != "" {
			deadline, err := dates.ParseDeadline(m[p.DeadlineGroup], i.location)
			if err != nil {
				return InvalidIntent{Err: apperrors.New(apperrors.ErrInvalidInput.Code, "Data inválida. Use o formato DD/MM/AAAA", err)}
			}
			intent.Deadline = &deadline
		}
		return intent
	}

	for _, re := range i.listings {
		if re.MatchString(text) {
			return ListIntent{}
		}
	}

	return UnrecognizedIntent{}
}

// cleanName trims whitespace and trailing punctuation from a captured name.
func cleanName(s string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ".,;!?"))
}
