package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
)

// WorkerBalance is what a worker has earned, been paid and is still owed
type WorkerBalance struct {
	WorkerID string          `json:"workerId"`
	Name     string          `json:"name"`
	Earned   decimal.Decimal `json:"earned"`
	Paid     decimal.Decimal `json:"paid"`
	Balance  decimal.Decimal `json:"balance"`
}

// Earned sums the wage totals of one worker
func Earned(workerID string, entries []*domain.WageEntry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		if e != nil && e.WorkerID == workerID {
			sum = sum.Add(e.Total)
		}
	}
	return sum
}

// Paid sums the payments made to one worker
func Paid(workerID string, payments []*domain.Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		if p != nil && p.WorkerID == workerID {
			sum = sum.Add(p.Amount)
		}
	}
	return sum
}

// Balance is earned minus paid. It is negative when the worker was overpaid.
func Balance(workerID string, entries []*domain.WageEntry, payments []*domain.Payment) decimal.Decimal {
	return Earned(workerID, entries).Sub(Paid(workerID, payments))
}

// Balances computes one row per worker, in worker order
func Balances(workers []*domain.Worker, entries []*domain.WageEntry, payments []*domain.Payment) []WorkerBalance {
	earned := make(map[string]decimal.Decimal, len(workers))
	for _, e := range entries {
		if e != nil {
			earned[e.WorkerID] = earned[e.WorkerID].Add(e.Total)
		}
	}
	paid := make(map[string]decimal.Decimal, len(workers))
	for _, p := range payments {
		if p != nil {
			paid[p.WorkerID] = paid[p.WorkerID].Add(p.Amount)
		}
	}

	rows := make([]WorkerBalance, 0, len(workers))
	for _, w := range workers {
		if w == nil {
			continue
		}
		e, p := earned[w.ID], paid[w.ID]
		rows = append(rows, WorkerBalance{
			WorkerID: w.ID,
			Name:     w.Name,
			Earned:   e,
			Paid:     p,
			Balance:  e.Sub(p),
		})
	}
	return rows
}

// WageHistory returns the wage entries newest first by creation time
func WageHistory(entries []*domain.WageEntry) []*domain.WageEntry {
	out := make([]*domain.WageEntry, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

// RecentPayments returns up to n payments from the end of the snapshot, newest first
func RecentPayments(payments []*domain.Payment, n int) []*domain.Payment {
	out := make([]*domain.Payment, 0, n)
	for i := len(payments) - 1; i >= 0 && len(out) < n; i-- {
		if payments[i] != nil {
			out = append(out, payments[i])
		}
	}
	return out
}
