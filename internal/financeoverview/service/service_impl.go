package service

import (
	"context"
	"encoding/json"
	"errors"

	accountdomain "github.com/smallbiznis/storeledger/internal/account/domain"
	"github.com/smallbiznis/storeledger/internal/cache"
	cashflowdomain "github.com/smallbiznis/storeledger/internal/cashflow/domain"
	"github.com/smallbiznis/storeledger/internal/financeoverview/domain"
	invoicedomain "github.com/smallbiznis/storeledger/internal/invoice/domain"
	ledgerdomain "github.com/smallbiznis/storeledger/internal/ledger/domain"
	"github.com/smallbiznis/storeledger/internal/ledger/engine"
	ledgerservice "github.com/smallbiznis/storeledger/internal/ledger/service"
	obsmetrics "github.com/smallbiznis/storeledger/internal/observability/metrics"
	"github.com/smallbiznis/storeledger/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Calendar *ledgerservice.Calendar
	Accounts accountdomain.Service
	Invoices invoicedomain.Service
	Cashflow cashflowdomain.Service
	Cache    cache.Store         `optional:"true"`
	Metrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	calendar *ledgerservice.Calendar
	accounts accountdomain.Service
	invoices invoicedomain.Service
	cashflow cashflowdomain.Service
	cache    cache.Store
	metrics  *obsmetrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("financeoverview.service"),
		calendar: p.Calendar,
		accounts: p.Accounts,
		invoices: p.Invoices,
		cashflow: p.Cashflow,
		cache:    p.Cache,
		metrics:  p.Metrics,
	}
}

func (s *Service) Summary(ctx context.Context, req domain.SummaryRequest) (domain.Summary, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Summary{}, domain.ErrInvalidOrganization
	}
	asOf, err := s.calendar.ResolveAsOf(req.AsOf)
	if err != nil {
		return domain.Summary{}, err
	}

	key := cache.SummaryKey(orgID.String(), asOf.String())
	if cached, ok := s.readCache(ctx, key); ok {
		return cached, nil
	}

	summary, err := s.compute(ctx, asOf)
	if err != nil {
		return domain.Summary{}, err
	}

	s.writeCache(ctx, key, summary)
	return summary, nil
}

func (s *Service) compute(ctx context.Context, asOf ledgerdomain.Date) (domain.Summary, error) {
	accounts, err := s.accounts.Snapshot(ctx, accountdomain.ScopeTenant)
	if err != nil {
		return domain.Summary{}, err
	}
	invoices, err := s.invoices.Snapshot(ctx)
	if err != nil {
		return domain.Summary{}, err
	}

	records := make([]ledgerdomain.Record, 0, len(accounts)+len(invoices))
	for _, a := range accounts {
		records = append(records, a.LedgerRecord())
	}
	for _, i := range invoices {
		records = append(records, i.LedgerRecord())
	}
	derived := engine.Project(records, asOf)

	month := domain.Window{From: asOf.StartOfMonth(), To: asOf.EndOfMonth()}
	summary := domain.Summary{
		AsOf:       asOf,
		Month:      month,
		Payable:    engine.Aggregate(selectDue(derived, ledgerdomain.DirectionPayable, month.From, month.To)),
		Receivable: engine.Aggregate(selectDue(derived, ledgerdomain.DirectionReceivable, month.From, month.To)),
		MRR:        engine.MRR(engine.Project(invoices, asOf), s.calendar.Settings().PlanCatalog()),
	}

	prevFrom, prevTo := previousSpan(asOf)
	current := engine.Aggregate(selectDue(derived, ledgerdomain.DirectionReceivable, month.From, asOf)).Settled()
	previous := engine.Aggregate(selectDue(derived, ledgerdomain.DirectionReceivable, prevFrom, prevTo)).Settled()
	summary.Received = domain.Comparison{
		Current:   current,
		Previous:  previous,
		ChangePct: engine.PctChange(current, previous),
	}

	today, err := s.cashflow.GetDay(ctx, cashflowdomain.GetDayRequest{Date: asOf.String()})
	switch {
	case err == nil:
		summary.Today = domain.TodayCash{
			Date:     asOf,
			HasEntry: true,
			Opening:  today.Summary.OpeningBalance,
			Closing:  today.Summary.ClosingBalance,
			Income:   today.Summary.Income,
			Expense:  today.Summary.Expense,
			Net:      today.Summary.Net,
		}
	case errors.Is(err, cashflowdomain.ErrNotFound):
		summary.Today = domain.TodayCash{Date: asOf}
	default:
		return domain.Summary{}, err
	}

	return summary, nil
}

func (s *Service) readCache(ctx context.Context, key string) (domain.Summary, bool) {
	if s.cache == nil || s.calendar.Settings().SummaryCacheTTL <= 0 {
		return domain.Summary{}, false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("summary cache read failed", zap.String("key", key), zap.Error(err))
		return domain.Summary{}, false
	}
	s.metrics.RecordSummaryCache(ctx, ok)
	if !ok {
		return domain.Summary{}, false
	}
	var summary domain.Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		s.log.Warn("summary cache entry unreadable", zap.String("key", key), zap.Error(err))
		return domain.Summary{}, false
	}
	return summary, true
}

func (s *Service) writeCache(ctx context.Context, key string, summary domain.Summary) {
	ttl := s.calendar.Settings().SummaryCacheTTL
	if s.cache == nil || ttl <= 0 {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, ttl); err != nil {
		s.log.Warn("summary cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func selectDue(items []ledgerdomain.Derived[ledgerdomain.Record], direction ledgerdomain.Direction, from, to ledgerdomain.Date) []ledgerdomain.Derived[ledgerdomain.Record] {
	out := make([]ledgerdomain.Derived[ledgerdomain.Record], 0, len(items))
	for _, item := range items {
		if item.Item.Direction != direction || !item.Item.DueDate.Between(from, to) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// previousSpan is the previous month cut at the same day of month as asOf.
func previousSpan(asOf ledgerdomain.Date) (ledgerdomain.Date, ledgerdomain.Date) {
	from := asOf.StartOfMonth().AddDays(-1).StartOfMonth()
	to := from.AddDays(asOf.Day() - 1)
	if end := from.EndOfMonth(); to.After(end) {
		to = end
	}
	return from, to
}
