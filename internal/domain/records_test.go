package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNewExpense_Defaults(t *testing.T) {
	e, err := NewExpense(ExpenseInput{Amount: d("500"), Category: CategoryFood}, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, DefaultProperty, e.Property)
	assert.Equal(t, ManualEntryNote, e.Note)
	assert.Equal(t, "2025-03-14", e.Date)
	assert.Equal(t, fixedNow.UnixMilli(), e.CreatedAt)
}

func TestNewExpense_NotePrecedence(t *testing.T) {
	tests := []struct {
		name       string
		note       string
		transcript string
		want       string
	}{
		{"transcript wins", "typed", "spoken", "spoken"},
		{"note when no transcript", "typed", "", "typed"},
		{"manual entry fallback", "", "", ManualEntryNote},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewExpense(ExpenseInput{
				Amount:     d("1"),
				Category:   CategoryOther,
				Note:       tt.note,
				Transcript: tt.transcript,
			}, fixedNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.Note)
		})
	}
}

func TestNewExpense_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   ExpenseInput
		wantErr error
	}{
		{"zero amount", ExpenseInput{Amount: decimal.Zero, Category: CategoryFood}, ErrInvalidAmount},
		{"negative amount", ExpenseInput{Amount: d("-5"), Category: CategoryFood}, ErrInvalidAmount},
		{"missing category", ExpenseInput{Amount: d("5"), Category: "  "}, ErrCategoryRequired},
		{"bad date", ExpenseInput{Amount: d("5"), Category: CategoryFood, Date: "14/03/2025"}, ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExpense(tt.input, fixedNow)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewExpense_TruncatesLongNote(t *testing.T) {
	e, err := NewExpense(ExpenseInput{
		Amount:   d("1"),
		Category: CategoryFood,
		Note:     strings.Repeat("ಊ", MaxNoteLength+20),
	}, fixedNow)
	require.NoError(t, err)
	assert.Len(t, []rune(e.Note), MaxNoteLength)
}

func TestNewPlantationRecord_DerivesLabourAmount(t *testing.T) {
	r, err := NewPlantationRecord(PlantationInput{
		Type:          PlantationTypeExpense,
		Activity:      ActivityWeeding,
		DurationDays:  d("2"),
		PeopleCount:   d("3"),
		WagePerPerson: d("400"),
	}, fixedNow)
	require.NoError(t, err)
	assert.True(t, d("2400").Equal(r.Amount))
	assert.Equal(t, "2025-03-14", r.Date)
}

func TestLabourAmount_ThreeDaysTwoPeople(t *testing.T) {
	f := NewPlantationForm(PlantationTypeExpense)
	f.SetDurationDays(d("3"))
	f.SetPeopleCount(d("2"))
	f.SetWagePerPerson(d("300"))
	assert.True(t, d("1800").Equal(f.Amount()), "got %s", f.Amount())

	r, err := NewPlantationRecord(PlantationInput{
		Type:          PlantationTypeExpense,
		Activity:      ActivityPruning,
		DurationDays:  d("3"),
		PeopleCount:   d("2"),
		WagePerPerson: d("300"),
	}, fixedNow)
	require.NoError(t, err)
	assert.True(t, d("1800").Equal(r.Amount))
}

func TestNewPlantationRecord_ExplicitAmountWins(t *testing.T) {
	amount := d("1000")
	r, err := NewPlantationRecord(PlantationInput{
		Type:          PlantationTypeExpense,
		Activity:      ActivityWeeding,
		Amount:        &amount,
		DurationDays:  d("2"),
		PeopleCount:   d("3"),
		WagePerPerson: d("400"),
	}, fixedNow)
	require.NoError(t, err)
	assert.True(t, amount.Equal(r.Amount))
}

func TestNewPlantationRecord_OtherActivityAndZeroDefaults(t *testing.T) {
	amount := d("9000")
	r, err := NewPlantationRecord(PlantationInput{
		Type:     PlantationTypeIncome,
		Activity: ActivityOther,
		Amount:   &amount,
		Date:     "2024-11-02",
	}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, StoredActivityOther, r.Activity)
	assert.True(t, r.DurationDays.IsZero())
	assert.True(t, r.PeopleCount.IsZero())
	assert.True(t, r.WagePerPerson.IsZero())
}

func TestNewPlantationRecord_Validation(t *testing.T) {
	zero := decimal.Zero
	tests := []struct {
		name    string
		input   PlantationInput
		wantErr error
	}{
		{"bad type", PlantationInput{Type: "Loan", Activity: ActivityWeeding}, ErrInvalidType},
		{"bad activity", PlantationInput{Type: PlantationTypeIncome, Activity: "dancing"}, ErrInvalidActivity},
		{"income without amount", PlantationInput{Type: PlantationTypeIncome, Activity: ActivityHarvesting, WagePerPerson: d("5"), PeopleCount: d("1"), DurationDays: d("1")}, ErrInvalidAmount},
		{"expense zero amount and no labour", PlantationInput{Type: PlantationTypeExpense, Activity: ActivitySpraying, Amount: &zero}, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlantationRecord(tt.input, fixedNow)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPlantationForm_AutoCalculation(t *testing.T) {
	f := NewPlantationForm(PlantationTypeExpense)
	f.SetDurationDays(d("2"))
	f.SetPeopleCount(d("5"))
	assert.True(t, f.Amount().IsZero(), "no amount until all three inputs are positive")

	f.SetWagePerPerson(d("300"))
	assert.True(t, d("3000").Equal(f.Amount()))
	assert.False(t, f.manual)

	f.SetPeopleCount(d("4"))
	assert.True(t, d("2400").Equal(f.Amount()))
}

func TestPlantationForm_ManualEditStopsRecalculation(t *testing.T) {
	f := NewPlantationForm(PlantationTypeExpense)
	f.SetDurationDays(d("1"))
	f.SetPeopleCount(d("1"))
	f.SetWagePerPerson(d("100"))

	f.SetAmount(d("150"))
	assert.True(t, f.manual)

	f.SetWagePerPerson(d("200"))
	assert.True(t, d("150").Equal(f.Amount()), "manual amount survives input changes")

	f.SetAmount(decimal.Zero)
	assert.False(t, f.manual)
	assert.True(t, d("200").Equal(f.Amount()), "clearing the amount resumes calculation")
}

func TestPlantationForm_IncomeNeverCalculates(t *testing.T) {
	f := NewPlantationForm(PlantationTypeIncome)
	f.SetDurationDays(d("1"))
	f.SetPeopleCount(d("1"))
	f.SetWagePerPerson(d("100"))
	assert.True(t, f.Amount().IsZero())

	f.SetType(PlantationTypeExpense)
	assert.True(t, d("100").Equal(f.Amount()))
}

func TestBuildWageEntries(t *testing.T) {
	workers := []*Worker{
		{ID: "w1", Name: "Ravi"},
		{ID: "w2", Name: "Shanta"},
		{ID: "w3", Name: "Manju"},
	}
	inputs := map[string]WageInput{
		"w3":      {Base: d("500"), Extra: d("50")},
		"w1":      {Base: d("400")},
		"w2":      {},
		"missing": {Base: d("100")},
	}

	entries, err := BuildWageEntries(workers, inputs, "2025-03-10", fixedNow)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "w1", entries[0].WorkerID)
	assert.Equal(t, "Ravi", entries[0].WorkerName)
	assert.True(t, d("400").Equal(entries[0].Total))

	assert.Equal(t, "w3", entries[1].WorkerID)
	assert.True(t, d("550").Equal(entries[1].Total))
	assert.Equal(t, "2025-03-10", entries[1].Date)
}

func TestBuildWageEntries_Errors(t *testing.T) {
	workers := []*Worker{{ID: "w1", Name: "Ravi"}}

	_, err := BuildWageEntries(workers, map[string]WageInput{"w1": {}}, "", fixedNow)
	assert.ErrorIs(t, err, ErrNoWageEntries)

	_, err = BuildWageEntries(workers, nil, "", fixedNow)
	assert.ErrorIs(t, err, ErrNoWageEntries)

	_, err = BuildWageEntries(workers, map[string]WageInput{"w1": {Base: d("-1")}}, "", fixedNow)
	assert.ErrorIs(t, err, ErrNegativeWage)
}

func TestNewPayment(t *testing.T) {
	w := &Worker{ID: "w1", Name: "Ravi"}

	p, err := NewPayment(w, d("250"), " advance ", "", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14", p.Date)
	assert.Equal(t, "advance", p.Note)
	assert.Equal(t, "Ravi", p.WorkerName)

	_, err = NewPayment(w, decimal.Zero, "", "", fixedNow)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewPayment(nil, d("1"), "", "", fixedNow)
	assert.ErrorIs(t, err, ErrWorkerRequired)
}

func TestNewWorker(t *testing.T) {
	w, err := NewWorker(" Ravi ", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", w.Name)
	assert.Equal(t, "2025-03-14T09:30:00Z", w.JoinedAt)

	_, err = NewWorker("", fixedNow)
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestTenantIDFor(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		email   string
		want    string
	}{
		{"email sanitised", "auth0|123", "farmer.joe+1@example.com", "farmer_joe_1_example_com"},
		{"subject when no email", "auth0|123", "", "auth0_123"},
		{"anonymous", "", "", AnonymousTenant},
		{"non ascii replaced per rune", "", "ರೈತ@x.in", "____x_in"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TenantIDFor(tt.subject, tt.email))
		})
	}
}

func TestCollectionKey(t *testing.T) {
	assert.Equal(t, "stay_payments_joe_example_com", CollectionKey(RecordTypeStayPayments, "joe_example_com"))
}
