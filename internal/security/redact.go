package security

import (
	"regexp"
	"sync"
)

type redactPattern struct {
	name       string
	regex      *regexp.Regexp
	redactWith string
}

// Order matters: tokens are scrubbed before the shorter numeric patterns
// could eat part of them.
var defaultRedactPatterns = []struct {
	name       string
	pattern    string
	redactWith string
}{
	{"Telegram Bot Token", `\b[0-9]{8,10}:[a-zA-Z0-9_-]{35}\b`, "****:****"},
	{"JWT", `eyJ[a-zA-Z0-9\-_]+\.eyJ[a-zA-Z0-9\-_]+\.[a-zA-Z0-9\-_]+`, "eyJ****"},
	{"Card Number", `\b(?:\d{4}[ -]?){3}\d{4}\b`, "****-****-****-****"},
	{"CPF", `\b\d{3}\.?\d{3}\.?\d{3}-?\d{2}\b`, "***.***.***-**"},
	{"CNPJ", `\b\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}\b`, "**.***.***/****-**"},
	{"Email", `\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`, "****@****"},
	{"Phone", `(?:\+55\s?)?\(?\b\d{2}\)?\s?9\d{4}-?\d{4}\b`, "(**) *****-****"},
}

type Redactor struct {
	patterns []*redactPattern
}

func NewRedactor() *Redactor {
	r := &Redactor{patterns: make([]*redactPattern, 0, len(defaultRedactPatterns))}
	for _, p := range defaultRedactPatterns {
		r.patterns = append(r.patterns, &redactPattern{
			name:       p.name,
			regex:      regexp.MustCompile(p.pattern),
			redactWith: p.redactWith,
		})
	}
	return r
}

func (r *Redactor) Redact(input string) string {
	result := input
	for _, p := range r.patterns {
		result = p.regex.ReplaceAllString(result, p.redactWith)
	}
	return result
}

var (
	defaultRedactor     *Redactor
	defaultRedactorOnce sync.Once
)

// Redact scrubs input with the default patterns
func Redact(input string) string {
	defaultRedactorOnce.Do(func() { defaultRedactor = NewRedactor() })
	return defaultRedactor.Redact(input)
}
