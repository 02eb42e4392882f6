package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PlantationType string

const (
	PlantationTypeExpense PlantationType = "Expense"
	PlantationTypeIncome  PlantationType = "Income"
)

// Activity keys offered by the entry form, in display order
const (
	ActivityPruning     = "pruning"
	ActivityHarvesting  = "harvesting"
	ActivityWeeding     = "weeding"
	ActivityFertilizing = "fertilizing"
	ActivitySpraying    = "spraying"
	ActivityIrrigation  = "irrigation"
	ActivityPlanting    = "planting"
	ActivityOther       = "other"

	// StoredActivityOther is how the "other" choice is persisted
	StoredActivityOther = "Other"
)

// ActivityKeys lists the selectable activities
var ActivityKeys = []string{
	ActivityPruning,
	ActivityHarvesting,
	ActivityWeeding,
	ActivityFertilizing,
	ActivitySpraying,
	ActivityIrrigation,
	ActivityPlanting,
	ActivityOther,
}

type PlantationRecord struct {
	ID            string          `json:"id,omitempty"`
	Type          PlantationType  `json:"type"`
	Activity      string          `json:"activity"`
	Date          string          `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	DurationDays  decimal.Decimal `json:"durationDays"`
	PeopleCount   decimal.Decimal `json:"peopleCount"`
	WagePerPerson decimal.Decimal `json:"wagePerPerson"`
	Note          string          `json:"note,omitempty"`
	CreatedAt     int64           `json:"createdAt"`
}

// SetDocumentID implements Record
func (r *PlantationRecord) SetDocumentID(id string) { r.ID = id }

// PlantationInput carries the entry form fields. A nil Amount means the user
// never typed one, so the labour product is used when available.
type PlantationInput struct {
	Type          PlantationType
	Activity      string
	Date          string
	Amount        *decimal.Decimal
	DurationDays  decimal.Decimal
	PeopleCount   decimal.Decimal
	WagePerPerson decimal.Decimal
	Note          string
}

// NewPlantationRecord validates the input and derives the amount where needed
func NewPlantationRecord(in PlantationInput, now time.Time) (*PlantationRecord, error) {
	if in.Type != PlantationTypeExpense && in.Type != PlantationTypeIncome {
		return nil, ErrInvalidType
	}
	activity, err := normalizeActivity(in.Activity)
	if err != nil {
		return nil, err
	}
	date, err := normalizeDate(in.Date, now)
	if err != nil {
		return nil, err
	}

	form := NewPlantationForm(in.Type)
	form.SetDurationDays(nonNegative(in.DurationDays))
	form.SetPeopleCount(nonNegative(in.PeopleCount))
	form.SetWagePerPerson(nonNegative(in.WagePerPerson))
	if in.Amount != nil && !in.Amount.IsZero() {
		form.SetAmount(*in.Amount)
	}
	if !form.Amount().IsPositive() {
		return nil, ErrInvalidAmount
	}

	return &PlantationRecord{
		Type:          in.Type,
		Activity:      activity,
		Date:          date,
		Amount:        form.Amount(),
		DurationDays:  form.durationDays,
		PeopleCount:   form.peopleCount,
		WagePerPerson: form.wagePerPerson,
		Note:          strings.TrimSpace(in.Note),
		CreatedAt:     now.UnixMilli(),
	}, nil
}

func normalizeActivity(activity string) (string, error) {
	activity = strings.TrimSpace(activity)
	if activity == "" {
		return "", ErrInvalidActivity
	}
	if activity == ActivityOther || activity == StoredActivityOther {
		return StoredActivityOther, nil
	}
	for _, key := range ActivityKeys {
		if key == activity {
			return activity, nil
		}
	}
	return "", ErrInvalidActivity
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// LabourAmount returns days × people × wage when all three are positive
func LabourAmount(days, people, wage decimal.Decimal) (decimal.Decimal, bool) {
	if !days.IsPositive() || !people.IsPositive() || !wage.IsPositive() {
		return decimal.Zero, false
	}
	return days.Mul(people).Mul(wage), true
}

// PlantationForm tracks the entry form amount. Changing duration, people or
// wage recomputes the amount for Expense entries until the user types an amount
// by hand; clearing the amount hands control back to the calculation.
type PlantationForm struct {
	recordType    PlantationType
	durationDays  decimal.Decimal
	peopleCount   decimal.Decimal
	wagePerPerson decimal.Decimal
	amount        decimal.Decimal
	manual        bool
}

// NewPlantationForm starts an empty form of the given type
func NewPlantationForm(recordType PlantationType) *PlantationForm {
	return &PlantationForm{recordType: recordType}
}

func (f *PlantationForm) SetType(t PlantationType) {
	f.recordType = t
	f.recalculate()
}

func (f *PlantationForm) SetDurationDays(v decimal.Decimal) {
	f.durationDays = v
	f.recalculate()
}

func (f *PlantationForm) SetPeopleCount(v decimal.Decimal) {
	f.peopleCount = v
	f.recalculate()
}

func (f *PlantationForm) SetWagePerPerson(v decimal.Decimal) {
	f.wagePerPerson = v
	f.recalculate()
}

// SetAmount records a hand-typed amount. A zero amount clears the override.
func (f *PlantationForm) SetAmount(v decimal.Decimal) {
	f.amount = v
	f.manual = !v.IsZero()
	if !f.manual {
		f.recalculate()
	}
}

// Amount returns the current total
func (f *PlantationForm) Amount() decimal.Decimal {
	return f.amount
}

func (f *PlantationForm) recalculate() {
	if f.manual || f.recordType != PlantationTypeExpense {
		return
	}
	if total, ok := LabourAmount(f.durationDays, f.peopleCount, f.wagePerPerson); ok {
		f.amount = total
	}
}
