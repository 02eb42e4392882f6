// Package voice turns a free-form spoken transcript into draft expense fields.
package voice

import (
	_ "embed"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
)

//go:embed keywords.yaml
var keywordsYAML []byte

// Result holds the draft fields extracted from a transcript
type Result struct {
	Amount         string `json:"amount"`
	CategoryID     string `json:"categoryId"`
	Note           string `json:"note"`
	MatchedKeyword bool   `json:"matchedKeyword"`
}

type rule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// Interpreter applies the keyword table and the category set to a transcript.
// It is immutable and safe for concurrent use.
type Interpreter struct {
	rules []rule
}

// NewInterpreter loads the embedded keyword table
func NewInterpreter() (*Interpreter, error) {
	return ParseRules(keywordsYAML)
}

// ParseRules builds an interpreter from a YAML keyword table
func ParseRules(data []byte) (*Interpreter, error) {
	var rules []rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse keyword table: %w", err)
	}
	for i := range rules {
		if rules[i].Category == "" {
			return nil, fmt.Errorf("keyword rule %d has no category", i)
		}
		kept := rules[i].Keywords[:0]
		for _, k := range rules[i].Keywords {
			if k = fold(k); k != "" {
				kept = append(kept, k)
			}
		}
		rules[i].Keywords = kept
	}
	return &Interpreter{rules: rules}, nil
}

// Interpret extracts amount, category and note. It never fails: an empty
// transcript yields no amount and the Other category.
func (in *Interpreter) Interpret(text string, categories *domain.CategorySet) Result {
	res := Result{
		Amount:     firstDigitRun(text),
		CategoryID: domain.CategoryOther,
		Note:       text,
	}

	folded := fold(text)
	if folded == "" {
		return res
	}

	for _, r := range in.rules {
		for _, k := range r.Keywords {
			if strings.Contains(folded, k) {
				res.CategoryID = r.Category
				res.MatchedKeyword = true
				return res
			}
		}
	}

	if categories != nil {
		for _, c := range categories.All() {
			label := fold(c.Label)
			if label != "" && strings.Contains(folded, label) {
				res.CategoryID = c.ID
				return res
			}
		}
	}
	return res
}

// firstDigitRun returns the first maximal run of ASCII digits
func firstDigitRun(s string) string {
	start := -1
	for i := 0; i < len(s); i++ {
		isDigit := s[i] >= '0' && s[i] <= '9'
		switch {
		case isDigit && start < 0:
			start = i
		case !isDigit && start >= 0:
			return s[start:i]
		}
	}
	if start >= 0 {
		return s[start:]
	}
	return ""
}

// fold normalises to NFC and lowercases for containment checks
func fold(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}
