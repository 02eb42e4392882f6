package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/i18n"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/ledger"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/websocket"
)

// ViewRequest selects a live view. Window is only read by windowed views; a zero
// Window on the expenses or plantation_records view means every record.
type ViewRequest struct {
	View   websocket.EntityType
	Window ledger.Window
	Lang   i18n.Lang
}

// computeFunc builds a view payload from the latest snapshot of each input
type computeFunc func(snaps []*domain.Snapshot) interface{}

// LiveService recomputes views whenever one of their collections changes
type LiveService struct {
	records    records
	categories *CategoryService
	expenses   *ExpenseService
	plantation *PlantationService
	logger     zerolog.Logger
}

// NewLiveService creates a new LiveService
func NewLiveService(store domain.DocumentStore, categories *CategoryService, expenses *ExpenseService, plantation *PlantationService, logger zerolog.Logger) *LiveService {
	logger = logger.With().Str("component", "live_service").Logger()
	return &LiveService{
		records:    records{store: store, logger: logger},
		categories: categories,
		expenses:   expenses,
		plantation: plantation,
		logger:     logger,
	}
}

// Watch streams the view's payload: once when every input has delivered its
// initial snapshot, then after each change. A reader that falls behind only
// gets the latest payload. The channel closes when ctx ends or an input
// subscription closes.
func (s *LiveService) Watch(ctx context.Context, tenantID string, req ViewRequest) (<-chan interface{}, error) {
	inputs, compute, err := s.view(tenantID, req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	chans := make([]<-chan *domain.Snapshot, 0, len(inputs))
	for _, rt := range inputs {
		ch, err := s.records.subscribe(ctx, rt, tenantID)
		if err != nil {
			cancel()
			return nil, err
		}
		chans = append(chans, ch)
	}

	out := make(chan interface{}, 1)
	go s.run(ctx, cancel, chans, compute, out)

	s.logger.Debug().
		Str("tenant_id", tenantID).
		Str("view", string(req.View)).
		Int("inputs", len(inputs)).
		Msg("Live view started")
	return out, nil
}

// Validate reports whether Watch would accept req, without subscribing
func (s *LiveService) Validate(tenantID string, req ViewRequest) error {
	if tenantID == "" {
		return domain.ErrTenantRequired
	}
	_, _, err := s.view(tenantID, req)
	return err
}

type viewUpdate struct {
	idx  int
	snap *domain.Snapshot
}

func (s *LiveService) run(ctx context.Context, cancel context.CancelFunc, chans []<-chan *domain.Snapshot, compute computeFunc, out chan interface{}) {
	defer close(out)
	defer cancel()

	merged := make(chan viewUpdate)
	var wg sync.WaitGroup
	for i, ch := range chans {
		wg.Add(1)
		go func(idx int, ch <-chan *domain.Snapshot) {
			defer wg.Done()
			// one input ending ends the view
			defer cancel()
			for snap := range ch {
				select {
				case merged <- viewUpdate{idx: idx, snap: snap}:
				case <-ctx.Done():
					return
				}
			}
		}(i, ch)
	}
	go func() {
		wg.Wait()
		close(merged)
	}()

	latest := make([]*domain.Snapshot, len(chans))
	ready := 0
	for u := range merged {
		if latest[u.idx] == nil {
			ready++
		}
		latest[u.idx] = u.snap
		if ready < len(latest) {
			continue
		}
		deliverLatest(out, compute(latest))
	}
}

// deliverLatest replaces an unread payload. Only the run goroutine sends on out.
func deliverLatest(out chan interface{}, payload interface{}) {
	select {
	case out <- payload:
		return
	default:
	}
	select {
	case <-out:
	default:
	}
	out <- payload
}

func (s *LiveService) view(tenantID string, req ViewRequest) ([]domain.RecordType, computeFunc, error) {
	logger := s.logger
	windowed := req.Window != (ledger.Window{})
	if windowed && !req.Window.Valid() {
		return nil, nil, domain.ErrInvalidWindow
	}

	switch req.View {
	case websocket.EntityTypeExpenses:
		return []domain.RecordType{domain.RecordTypeExpenses}, func(snaps []*domain.Snapshot) interface{} {
			expenses := decodeSnapshot[domain.Expense](logger, snaps[0])
			if windowed {
				expenses = ledger.FilterExpenses(expenses, req.Window)
			}
			sortExpenses(expenses)
			return expenses
		}, nil

	case websocket.EntityTypeCategories:
		return []domain.RecordType{domain.RecordTypeCategories}, func(snaps []*domain.Snapshot) interface{} {
			return s.categories.BuildSet(s.categories.decodeCategories(snaps[0]), req.Lang).All()
		}, nil

	case websocket.EntityTypeExpenseReport:
		if !windowed {
			return nil, nil, domain.ErrInvalidWindow
		}
		return []domain.RecordType{domain.RecordTypeExpenses, domain.RecordTypeCategories}, func(snaps []*domain.Snapshot) interface{} {
			return s.expenses.rollup(tenantID, snaps[0], snaps[1], req.Window, req.Lang)
		}, nil

	case websocket.EntityTypePlantationRecords:
		return []domain.RecordType{domain.RecordTypePlantationRecords}, func(snaps []*domain.Snapshot) interface{} {
			recs := decodeSnapshot[domain.PlantationRecord](logger, snaps[0])
			if windowed {
				return orderPlantation(recs, &req.Window)
			}
			return orderPlantation(recs, nil)
		}, nil

	case websocket.EntityTypePlantationReport:
		if !windowed {
			return nil, nil, domain.ErrInvalidWindow
		}
		year := ledger.YearWindow(req.Window.Year)
		return []domain.RecordType{domain.RecordTypePlantationRecords}, func(snaps []*domain.Snapshot) interface{} {
			return s.plantation.report(tenantID, snaps[0], year, req.Lang)
		}, nil

	case websocket.EntityTypeStayWorkers:
		return []domain.RecordType{domain.RecordTypeStayWorkers}, func(snaps []*domain.Snapshot) interface{} {
			return decodeSnapshot[domain.Worker](logger, snaps[0])
		}, nil

	case websocket.EntityTypeStayHistory:
		return []domain.RecordType{domain.RecordTypeStayRecords}, func(snaps []*domain.Snapshot) interface{} {
			return ledger.WageHistory(decodeSnapshot[domain.WageEntry](logger, snaps[0]))
		}, nil

	case websocket.EntityTypeStayBalances:
		return []domain.RecordType{domain.RecordTypeStayWorkers, domain.RecordTypeStayRecords, domain.RecordTypeStayPayments}, func(snaps []*domain.Snapshot) interface{} {
			return ledger.Balances(
				decodeSnapshot[domain.Worker](logger, snaps[0]),
				decodeSnapshot[domain.WageEntry](logger, snaps[1]),
				decodeSnapshot[domain.Payment](logger, snaps[2]),
			)
		}, nil
	}

	return nil, nil, domain.ErrInvalidInput
}
