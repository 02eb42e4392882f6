package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Worker is a seasonal worker tracked by the stay manager
type Worker struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	JoinedAt string `json:"joinedAt"`
}

// SetDocumentID implements Record
func (w *Worker) SetDocumentID(id string) { w.ID = id }

// NewWorker validates the name and stamps the join time
func NewWorker(name string, now time.Time) (*Worker, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if len([]rune(name)) > MaxWorkerNameLength {
		return nil, ErrNameTooLong
	}
	return &Worker{Name: name, JoinedAt: now.UTC().Format(time.RFC3339)}, nil
}

// WageEntry is one worker's earnings for one day
type WageEntry struct {
	ID         string          `json:"id,omitempty"`
	WorkerID   string          `json:"workerId"`
	WorkerName string          `json:"workerName"`
	Date       string          `json:"date"`
	Base       decimal.Decimal `json:"base"`
	Extra      decimal.Decimal `json:"extra"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  int64           `json:"createdAt"`
}

// SetDocumentID implements Record
func (e *WageEntry) SetDocumentID(id string) { e.ID = id }

// WageInput is the base/extra pair typed for a worker
type WageInput struct {
	Base  decimal.Decimal `json:"base"`
	Extra decimal.Decimal `json:"extra"`
}

// BuildWageEntries turns a day's inputs into entries, one per worker in worker
// order. Inputs for unknown workers are ignored and all-zero inputs are dropped.
func BuildWageEntries(workers []*Worker, inputs map[string]WageInput, date string, now time.Time) ([]*WageEntry, error) {
	date, err := normalizeDate(date, now)
	if err != nil {
		return nil, err
	}

	entries := make([]*WageEntry, 0, len(inputs))
	for _, w := range workers {
		in, ok := inputs[w.ID]
		if !ok {
			continue
		}
		if in.Base.IsNegative() || in.Extra.IsNegative() {
			return nil, ErrNegativeWage
		}
		if in.Base.IsZero() && in.Extra.IsZero() {
			continue
		}
		entries = append(entries, &WageEntry{
			WorkerID:   w.ID,
			WorkerName: w.Name,
			Date:       date,
			Base:       in.Base,
			Extra:      in.Extra,
			Total:      in.Base.Add(in.Extra),
			CreatedAt:  now.UnixMilli(),
		})
	}
	if len(entries) == 0 {
		return nil, ErrNoWageEntries
	}
	return entries, nil
}

// Payment is cash paid out against a worker's balance
type Payment struct {
	ID         string          `json:"id,omitempty"`
	WorkerID   string          `json:"workerId"`
	WorkerName string          `json:"workerName"`
	Date       string          `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note"`
	CreatedAt  int64           `json:"createdAt"`
}

// SetDocumentID implements Record
func (p *Payment) SetDocumentID(id string) { p.ID = id }

// NewPayment validates the amount and snapshots the worker name
func NewPayment(worker *Worker, amount decimal.Decimal, note, date string, now time.Time) (*Payment, error) {
	if worker == nil || worker.ID == "" {
		return nil, ErrWorkerRequired
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	date, err := normalizeDate(date, now)
	if err != nil {
		return nil, err
	}
	return &Payment{
		WorkerID:   worker.ID,
		WorkerName: worker.Name,
		Date:       date,
		Amount:     amount,
		Note:       strings.TrimSpace(note),
		CreatedAt:  now.UnixMilli(),
	}, nil
}
