package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storeledger/internal/cache"
	"github.com/smallbiznis/storeledger/internal/cashflow/domain"
	"github.com/smallbiznis/storeledger/internal/events"
	ledgerdomain "github.com/smallbiznis/storeledger/internal/ledger/domain"
	"github.com/smallbiznis/storeledger/internal/ledger/engine"
	ledgerservice "github.com/smallbiznis/storeledger/internal/ledger/service"
	obsmetrics "github.com/smallbiznis/storeledger/internal/observability/metrics"
	"github.com/smallbiznis/storeledger/internal/orgcontext"
	"github.com/smallbiznis/storeledger/pkg/db"
	"github.com/smallbiznis/storeledger/pkg/db/pagination"
	"github.com/smallbiznis/storeledger/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const metricKind = "cashflow"

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Calendar  *ledgerservice.Calendar
	Publisher events.Publisher
	Cache     cache.Store         `optional:"true"`
	Metrics   *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	calendar  *ledgerservice.Calendar
	publisher events.Publisher
	cache     cache.Store
	metrics   *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("cashflow.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		calendar:  p.Calendar,
		publisher: p.Publisher,
		cache:     p.Cache,
		metrics:   p.Metrics,
	}
}

func (s *Service) RecordDay(ctx context.Context, req domain.RecordDayRequest) (domain.DayView, error) {
	orgID, err := orgIDFromContext(ctx)
	if err != nil {
		return domain.DayView{}, err
	}
	date, err := parseDayKey(req.Date)
	if err != nil {
		s.rejected(ctx, err)
		return domain.DayView{}, err
	}

	txns := make([]ledgerdomain.Transaction, 0, len(req.Transactions))
	for i, input := range req.Transactions {
		txn, err := parseTransaction(input)
		if err != nil {
			var vErr *ledgerdomain.ValidationError
			if errors.As(err, &vErr) {
				vErr.Field = indexedField(i, vErr.Field)
			}
			s.rejected(ctx, err)
			return domain.DayView{}, err
		}
		txns = append(txns, txn)
	}
	sort.SliceStable(txns, func(i, j int) bool { return txns[i].Time < txns[j].Time })

	var view domain.DayView
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindDay(ctx, tx, orgID, date)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDayExists
		}

		opening, err := s.resolveOpening(ctx, tx, orgID, date, req.OpeningBalance)
		if err != nil {
			return err
		}
		closing := engine.ClosingFor(opening, txns)
		if strings.TrimSpace(req.ClosingBalance) != "" {
			closing, err = parseBalance("closing_balance", req.ClosingBalance)
			if err != nil {
				return err
			}
		}

		ledgerDay := ledgerdomain.Day{Date: date, OpeningBalance: opening, ClosingBalance: closing, Transactions: txns}
		if err := engine.ValidateDay(ledgerDay); err != nil {
			return err
		}

		day := s.newDay(orgID, ledgerDay)
		if err := s.repo.InsertDay(ctx, tx, &day); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrDayExists
			}
			return err
		}
		view = domain.NewView(day)
		return nil
	})
	if err != nil {
		var inconsistency *ledgerdomain.LedgerInconsistencyError
		switch {
		case errors.As(err, &inconsistency):
			s.metrics.RecordInconsistency(ctx, "record")
		case ledgerdomain.IsValidationError(err):
			s.rejected(ctx, err)
		}
		return domain.DayView{}, err
	}

	s.metrics.RecordIngested(ctx, metricKind)
	s.forgetSummary(ctx, orgID)
	return view, nil
}

func (s *Service) resolveOpening(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, date ledgerdomain.Date, raw string) (int64, error) {
	if strings.TrimSpace(raw) != "" {
		return parseBalance("opening_balance", raw)
	}
	prev, err := s.repo.PreviousDay(ctx, tx, orgID, date)
	if err != nil {
		return 0, err
	}
	if prev == nil {
		return 0, nil
	}
	return prev.ClosingBalance, nil
}

func (s *Service) newDay(orgID snowflake.ID, d ledgerdomain.Day) domain.Day {
	now := s.calendar.Clock().Now()
	day := domain.Day{
		ID:             s.genID.Generate(),
		OrgID:          orgID,
		Date:           d.Date,
		OpeningBalance: d.OpeningBalance,
		ClosingBalance: d.ClosingBalance,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for i, txn := range d.Transactions {
		day.Transactions = append(day.Transactions, s.newTransaction(day, i, txn))
	}
	return day
}

func (s *Service) newTransaction(day domain.Day, position int, txn ledgerdomain.Transaction) domain.Transaction {
	return domain.Transaction{
		ID:          s.genID.Generate(),
		DayID:       day.ID,
		OrgID:       day.OrgID,
		Position:    position,
		Time:        txn.Time,
		Description: txn.Description,
		Amount:      txn.Amount,
		Type:        txn.Type,
		Method:      txn.Method,
		CreatedAt:   s.calendar.Clock().Now(),
	}
}

// AppendTransaction adds one movement and moves the closing balance by its
// signed amount, so the stored day stays consistent.
func (s *Service) AppendTransaction(ctx context.Context, req domain.AppendTransactionRequest) (domain.DayView, error) {
	orgID, err := orgIDFromContext(ctx)
	if err != nil {
		return domain.DayView{}, err
	}
	date, err := parseDayKey(req.Date)
	if err != nil {
		return domain.DayView{}, err
	}
	if req.ExpectedVersion <= 0 {
		return domain.DayView{}, domain.ErrInvalidVersion
	}
	txn, err := parseTransaction(req.Transaction)
	if err != nil {
		s.rejected(ctx, err)
		return domain.DayView{}, err
	}

	day, err := s.repo.FindDay(ctx, s.db, orgID, date)
	if err != nil {
		return domain.DayView{}, err
	}
	if day == nil {
		return domain.DayView{}, domain.ErrNotFound
	}
	if day.Version != req.ExpectedVersion {
		s.metrics.RecordVersionConflict(ctx, metricKind)
		return domain.DayView{}, ledgerdomain.ErrVersionConflict
	}

	// A stored day that no longer bridges its transactions is reported, never patched.
	if err := engine.ValidateDay(day.Ledger()); err != nil {
		s.metrics.RecordInconsistency(ctx, "append")
		return domain.DayView{}, err
	}

	now := s.calendar.Clock().Now()
	stored := s.newTransaction(*day, len(day.Transactions), txn)
	closing := day.ClosingBalance + txn.Signed()

	var ok bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		ok, err = s.repo.AppendTransaction(ctx, tx, domain.Append{
			OrgID:           orgID,
			DayID:           day.ID,
			ExpectedVersion: req.ExpectedVersion,
			ClosingBalance:  closing,
			Transaction:     stored,
			At:              now,
		})
		return err
	})
	if err != nil {
		return domain.DayView{}, err
	}
	if !ok {
		s.metrics.RecordVersionConflict(ctx, metricKind)
		return domain.DayView{}, ledgerdomain.ErrVersionConflict
	}

	day.Transactions = append(day.Transactions, stored)
	sort.SliceStable(day.Transactions, func(i, j int) bool {
		return day.Transactions[i].Time < day.Transactions[j].Time
	})
	day.ClosingBalance = closing
	day.Version = req.ExpectedVersion + 1
	day.UpdatedAt = now
	s.metrics.RecordIngested(ctx, metricKind)
	s.forgetSummary(ctx, orgID)

	event := events.New(events.CashflowTransactionRecorded, orgID, now, map[string]any{
		"date":            date.String(),
		"transaction_id":  stored.ID.String(),
		"type":            string(stored.Type),
		"amount":          stored.Amount,
		"closing_balance": closing,
		"version":         day.Version,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("publish cashflow event failed",
			zap.String("event_type", event.Type),
			zap.String("date", date.String()),
			zap.Error(err),
		)
	}

	return domain.NewView(*day), nil
}

func (s *Service) GetDay(ctx context.Context, req domain.GetDayRequest) (domain.DayView, error) {
	orgID, err := orgIDFromContext(ctx)
	if err != nil {
		return domain.DayView{}, err
	}
	date, err := parseDayKey(req.Date)
	if err != nil {
		return domain.DayView{}, err
	}
	day, err := s.repo.FindDay(ctx, s.db, orgID, date)
	if err != nil {
		return domain.DayView{}, err
	}
	if day == nil {
		return domain.DayView{}, domain.ErrNotFound
	}
	return domain.NewView(*day), nil
}

func (s *Service) ListDays(ctx context.Context, req domain.ListDaysRequest) (domain.ListDaysResponse, error) {
	orgID, err := orgIDFromContext(ctx)
	if err != nil {
		return domain.ListDaysResponse{}, err
	}
	from, to, err := parseRange(req.From, req.To, ledgerdomain.Date{})
	if err != nil {
		return domain.ListDaysResponse{}, err
	}

	days, err := s.repo.ListDays(ctx, s.db, orgID, from, to)
	if err != nil {
		return domain.ListDaysResponse{}, err
	}

	ledgerDays := make([]ledgerdomain.Day, 0, len(days))
	for _, d := range days {
		ledgerDays = append(ledgerDays, d.Ledger())
	}

	page, pageInfo, err := pagination.Slice(days, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  req.PageSize,
	})
	if err != nil {
		return domain.ListDaysResponse{}, ledgerdomain.NewValidationError("page_token", "invalid_page_token", "invalid page token")
	}

	views := make([]domain.DayView, 0, len(page))
	for _, d := range page {
		views = append(views, domain.NewView(d))
	}

	return domain.ListDaysResponse{
		PageInfo:    pageInfo,
		Days:        views,
		NetMovement: engine.PeriodMovement(ledgerDays),
	}, nil
}

// Verify checks every stored day in the range. An empty range covers the
// configured lookback window ending today.
func (s *Service) Verify(ctx context.Context, req domain.VerifyRequest) (domain.VerifyReport, error) {
	orgID, err := orgIDFromContext(ctx)
	if err != nil {
		return domain.VerifyReport{}, err
	}
	today := s.calendar.Today()
	lookback := s.calendar.Settings().Integrity.LookbackDays
	from, to, err := parseRange(req.From, req.To, today)
	if err != nil {
		return domain.VerifyReport{}, err
	}
	if from.IsZero() {
		from = to.AddDays(-lookback)
	}

	days, err := s.repo.ListDays(ctx, s.db, orgID, from, to)
	if err != nil {
		return domain.VerifyReport{}, err
	}

	report := domain.VerifyReport{From: from, To: to, Checked: len(days), Inconsistencies: []domain.Inconsistency{}}
	now := s.calendar.Clock().Now()
	for _, day := range days {
		var inconsistency *ledgerdomain.LedgerInconsistencyError
		if err := engine.ValidateDay(day.Ledger()); !errors.As(err, &inconsistency) {
			continue
		}
		report.Inconsistencies = append(report.Inconsistencies, domain.Inconsistency{
			Date:       inconsistency.Date,
			Expected:   inconsistency.Expected,
			Actual:     inconsistency.Actual,
			Difference: inconsistency.Difference(),
		})
		s.metrics.RecordInconsistency(ctx, "verify")

		event := events.New(events.CashflowInconsistencyDetected, orgID, now, map[string]any{
			"date":           inconsistency.Date.String(),
			"expected_delta": inconsistency.Expected,
			"actual_delta":   inconsistency.Actual,
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.log.Warn("publish cashflow event failed",
				zap.String("event_type", event.Type),
				zap.String("date", inconsistency.Date.String()),
				zap.Error(err),
			)
		}
	}

	if !report.Consistent() {
		s.log.Warn("cashflow inconsistencies found",
			zap.String("org_id", orgID.String()),
			zap.Int("checked", report.Checked),
			zap.Int("inconsistent", len(report.Inconsistencies)),
		)
	}
	return report, nil
}

// Organizations lists every tenant that has stored cash-flow days.
func (s *Service) Organizations(ctx context.Context) ([]snowflake.ID, error) {
	return s.repo.ListOrgIDs(ctx, s.db)
}

func (s *Service) rejected(ctx context.Context, err error) {
	var vErr *ledgerdomain.ValidationError
	if errors.As(err, &vErr) {
		s.metrics.RecordRejected(ctx, metricKind, vErr.Code)
	}
}

func parseTransaction(input domain.TransactionInput) (ledgerdomain.Transaction, error) {
	amount, err := ledgerdomain.ParseAmountField("amount", input.Amount)
	if err != nil {
		return ledgerdomain.Transaction{}, err
	}
	txnType, _ := ledgerdomain.ParseTransactionType(input.Type)
	txn := ledgerdomain.Transaction{
		Time:        strings.TrimSpace(input.Time),
		Description: strings.TrimSpace(input.Description),
		Amount:      amount,
		Type:        txnType,
		Method:      strings.TrimSpace(input.Method),
	}
	if err := ledgerdomain.ValidateTransaction(txn); err != nil {
		return ledgerdomain.Transaction{}, err
	}
	return txn, nil
}

// parseBalance accepts signed balances; an overdrawn day is valid.
func parseBalance(field, raw string) (int64, error) {
	v, err := money.Parse(raw)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, money.ErrTooManyDecimals):
		return 0, ledgerdomain.NewValidationError(field, "too_many_decimals", field+" allows at most two decimal places")
	default:
		return 0, ledgerdomain.NewValidationError(field, "invalid_amount", field+" must be a decimal number")
	}
}

func parseDayKey(raw string) (ledgerdomain.Date, error) {
	date, err := ledgerdomain.ParseDateField("date", raw)
	if err != nil {
		return ledgerdomain.Date{}, err
	}
	if date.IsZero() {
		return ledgerdomain.Date{}, ledgerdomain.NewValidationError("date", "required", "date is required")
	}
	return date, nil
}

// parseRange reads optional bounds; an empty upper bound falls back to defaultTo.
func parseRange(rawFrom, rawTo string, defaultTo ledgerdomain.Date) (ledgerdomain.Date, ledgerdomain.Date, error) {
	from, err := ledgerdomain.ParseDateField("from", rawFrom)
	if err != nil {
		return ledgerdomain.Date{}, ledgerdomain.Date{}, err
	}
	to, err := ledgerdomain.ParseDateField("to", rawTo)
	if err != nil {
		return ledgerdomain.Date{}, ledgerdomain.Date{}, err
	}
	if to.IsZero() {
		to = defaultTo
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return ledgerdomain.Date{}, ledgerdomain.Date{}, ledgerdomain.NewValidationError("from", "invalid_range", "from must not be after to")
	}
	return from, to, nil
}

func indexedField(i int, field string) string {
	return "transactions[" + strconv.Itoa(i) + "]." + field
}

func orgIDFromContext(ctx context.Context) (snowflake.ID, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return 0, domain.ErrInvalidOrganization
	}
	return orgID, nil
}

// forgetSummary drops today's cached finance summary so the dashboard agrees
// with the lists right after a write. Summaries for other as-of dates expire by TTL.
func (s *Service) forgetSummary(ctx context.Context, orgID snowflake.ID) {
	if err := cache.ForgetSummary(ctx, s.cache, orgID.String(), s.calendar.Today().String()); err != nil {
		s.log.Warn("summary cache invalidation failed", zap.String("org_id", orgID.String()), zap.Error(err))
	}
}
