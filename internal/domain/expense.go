package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO date format used by every record
const DateLayout = "2006-01-02"

type Expense struct {
	ID        string          `json:"id,omitempty"`
	Property  string          `json:"property"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
	Note      string          `json:"note"`
	Date      string          `json:"date"`
	CreatedAt int64           `json:"createdAt"`
}

// SetDocumentID implements Record
func (e *Expense) SetDocumentID(id string) { e.ID = id }

// ExpenseInput carries the reviewed draft fields of a new expense
type ExpenseInput struct {
	Property   string
	Amount     decimal.Decimal
	Category   string
	Note       string
	Transcript string
	Date       string
}

// NewExpense validates the input and builds the record to persist
func NewExpense(in ExpenseInput, now time.Time) (*Expense, error) {
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return nil, ErrCategoryRequired
	}
	date, err := normalizeDate(in.Date, now)
	if err != nil {
		return nil, err
	}

	property := strings.TrimSpace(in.Property)
	if property == "" {
		property = DefaultProperty
	}

	note := in.Transcript
	if note == "" {
		note = in.Note
	}
	if note == "" {
		note = ManualEntryNote
	}
	if len([]rune(note)) > MaxNoteLength {
		note = string([]rune(note)[:MaxNoteLength])
	}

	return &Expense{
		Property:  property,
		Amount:    in.Amount,
		Category:  category,
		Note:      note,
		Date:      date,
		CreatedAt: now.UnixMilli(),
	}, nil
}

// Today formats t as a record date
func Today(t time.Time) string {
	return t.Format(DateLayout)
}

// normalizeDate defaults an empty date to today and rejects malformed ones
func normalizeDate(date string, now time.Time) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return Today(now), nil
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return "", ErrInvalidDate
	}
	return date, nil
}
