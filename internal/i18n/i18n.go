// Package i18n holds the bilingual message catalog used by reports, feedback strings
// and exports.
package i18n

import (
	_ "embed"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
)

// Lang is a supported display language code
type Lang string

const (
	English Lang = "en"
	Kannada Lang = "kn"
)

// Supported lists the catalog languages; the first one is the built-in default
var Supported = []Lang{English, Kannada}

// Key identifies a message in the catalog
type Key string

const (
	KeyIdentified       Key = "identified"
	KeySaved            Key = "saved"
	KeySaveError        Key = "saveError"
	KeyDeleted          Key = "deleted"
	KeyDeleteError      Key = "deleteError"
	KeyValidationError  Key = "validationError"
	KeyAmountRequired   Key = "amountRequired"
	KeyCategoryRequired Key = "categoryRequired"
	KeyCategoryAdded    Key = "categoryAdded"
	KeyEnterSalary      Key = "enterSalary"
	KeyPaymentSuccess   Key = "paymentSuccess"
	KeyWorkerAdded      Key = "workerAdded"
	KeyWorkerRequired   Key = "workerRequired"
	KeyNoData           Key = "noData"
	KeyTotal            Key = "total"
	KeyIncome           Key = "income"
	KeyExpense          Key = "expense"
	KeyProfit           Key = "profit"
	KeyDailyWage        Key = "dailyWage"
	KeyPayment          Key = "payment"
)

//go:embed messages.yaml
var messagesYAML []byte

// Catalog resolves (language, key) pairs. A missing language falls back to the
// catalog fallback, and a missing key falls back to the fallback language's text
// and finally to the key itself.
type Catalog struct {
	messages map[Lang]map[Key]string
	fallback Lang
	matcher  language.Matcher
	tags     []Lang
}

// New parses the embedded catalog. An unsupported fallback is replaced by English.
func New(fallback string) (*Catalog, error) {
	return Load(messagesYAML, fallback)
}

// Load parses a catalog document of the form lang -> key -> text
func Load(data []byte, fallback string) (*Catalog, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse message catalog: %w", err)
	}

	c := &Catalog{messages: make(map[Lang]map[Key]string, len(raw))}
	for lang, entries := range raw {
		m := make(map[Key]string, len(entries))
		for k, v := range entries {
			m[Key(k)] = v
		}
		c.messages[Lang(lang)] = m
	}

	tags := make([]language.Tag, 0, len(Supported))
	for _, l := range Supported {
		if _, ok := c.messages[l]; !ok {
			return nil, fmt.Errorf("message catalog is missing language %q", l)
		}
		tags = append(tags, language.Make(string(l)))
		c.tags = append(c.tags, l)
	}
	c.matcher = language.NewMatcher(tags)

	c.fallback = English
	if l, ok := c.lookupLang(fallback); ok {
		c.fallback = l
	}
	return c, nil
}

// Fallback returns the language used when none is requested or matched
func (c *Catalog) Fallback() Lang {
	return c.fallback
}

// Parse maps a requested language code to a supported one or the fallback
func (c *Catalog) Parse(code string) Lang {
	if l, ok := c.lookupLang(code); ok {
		return l
	}
	return c.fallback
}

// Match picks the best supported language for an Accept-Language header
func (c *Catalog) Match(acceptLanguage string) Lang {
	if strings.TrimSpace(acceptLanguage) == "" {
		return c.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return c.fallback
	}
	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No {
		return c.fallback
	}
	return c.tags[idx]
}

// Resolve prefers an explicit code and then the Accept-Language header
func (c *Catalog) Resolve(code, acceptLanguage string) Lang {
	if l, ok := c.lookupLang(code); ok {
		return l
	}
	return c.Match(acceptLanguage)
}

// T returns the message for key in lang
func (c *Catalog) T(lang Lang, key Key) string {
	if m, ok := c.messages[lang]; ok {
		if s, ok := m[key]; ok && s != "" {
			return s
		}
	}
	if s, ok := c.messages[c.fallback][key]; ok && s != "" {
		return s
	}
	if s, ok := c.messages[English][key]; ok && s != "" {
		return s
	}
	return string(key)
}

// CategoryLabel returns a label resolver for built-in categories in lang
func (c *Catalog) CategoryLabel(lang Lang) domain.LabelFunc {
	return func(id string) string {
		key := Key("cat_" + id)
		if s := c.T(lang, key); s != string(key) {
			return s
		}
		return id
	}
}

// ActivityLabel translates a stored activity key, returning the raw key when unknown
func (c *Catalog) ActivityLabel(lang Lang, activity string) string {
	lookup := activity
	if lookup == domain.StoredActivityOther {
		lookup = domain.ActivityOther
	}
	key := Key("act_" + lookup)
	if s := c.T(lang, key); s != string(key) {
		return s
	}
	return activity
}

func (c *Catalog) lookupLang(code string) (Lang, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "", false
	}
	for _, l := range c.tags {
		if string(l) == code {
			return l, true
		}
	}
	return "", false
}
