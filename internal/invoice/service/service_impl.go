package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storeledger/internal/cache"
	"github.com/smallbiznis/storeledger/internal/events"
	"github.com/smallbiznis/storeledger/internal/invoice/domain"
	"github.com/smallbiznis/storeledger/internal/invoice/format"
	ledgerdomain "github.com/smallbiznis/storeledger/internal/ledger/domain"
	"github.com/smallbiznis/storeledger/internal/ledger/engine"
	ledgerservice "github.com/smallbiznis/storeledger/internal/ledger/service"
	obsmetrics "github.com/smallbiznis/storeledger/internal/observability/metrics"
	"github.com/smallbiznis/storeledger/internal/orgcontext"
	"github.com/smallbiznis/storeledger/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const metricKind = "invoice"

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
		log:       p.Log.Named("invoice.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		calendar:  p.Calendar,
		publisher: p.Publisher,
		cache:     p.Cache,
		metrics:   p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.InvoiceView, error) {
	orgID, err := orgIDFromContext(ctx)
	if err != nil {
		return domain.InvoiceView{}, err
	}

	today := s.calendar.Today()
	invoice, err := s.buildInvoice(req, today)
	if err != nil {
		s.rejected(ctx, err)
		return domain.InvoiceView{}, err
	}
	if err := ledgerdomain.ValidateRecord(invoice.LedgerRecord()); err != nil {
		s.rejected(ctx, err)
		return domain.InvoiceView{}, err
	}

	now := s.calendar.Clock().Now()
	template := s.calendar.Settings().InvoiceNumberTemplate
	invoice.ID = s.genID.Generate()
	invoice.OrgID = orgID
	invoice.Version = 1
	invoice.CreatedAt = now
	invoice.UpdatedAt = now

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := s.repo.NextSequence(ctx, tx, orgID, now)
		if err != nil {
			return err
		}
		number, err := format.FormatInvoiceNumber(template, invoice.InvoiceDate, seq)
		if err != nil {
			return err
		}
		invoice.Sequence = seq
		invoice.InvoiceNumber = number
		return s.repo.Insert(ctx, tx, &invoice)
	})
	if err != nil {
		return domain.InvoiceView{}, err
	}
	s.metrics.RecordIngested(ctx, metricKind)
	s.forgetSummary(ctx, orgID)

	return domain.NewView(engine.Derive(invoice, today)), nil
}

func (s *Service) buildInvoice(req domain.CreateInvoiceRequest, today ledgerdomain.Date) (domain.Invoice, error) {
	planName := strings.TrimSpace(req.PlanName)

	// Catalog plans are stored under their catalog spelling so MRR groups them.
	var planPrice int64
	plan, known := s.lookupPlan(planName)
	if planName != "" && known {
		planName = plan.Name
	}
	if strings.TrimSpace(req.PlanPrice) != "" {
		price, err := ledgerdomain.ParseAmountField("plan_price", req.PlanPrice)
		if err != nil {
			return domain.Invoice{}, err
		}
		planPrice = price
	} else if planName != "" {
		if !known {
			return domain.Invoice{}, ledgerdomain.NewValidationError("plan_name", "unknown_plan", "unknown plan "+planName)
		}
		planPrice = plan.Price
	}

	amount := planPrice
	if strings.TrimSpace(req.Amount) != "" {
		parsed, err := ledgerdomain.ParseAmountField("amount", req.Amount)
		if err != nil {
			return domain.Invoice{}, err
		}
		amount = parsed
	} else if planName == "" {
		return domain.Invoice{}, ledgerdomain.NewValidationError("amount", "required", "amount is required")
	}

	invoiceDate, err := ledgerdomain.ParseDateField("invoice_date", req.InvoiceDate)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoiceDate.IsZero() {
		invoiceDate = today
	}
	dueDate, err := ledgerdomain.ParseDateField("due_date", req.DueDate)
	if err != nil {
		return domain.Invoice{}, err
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = planName
	}

	metadata := datatypes.JSONMap{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	return domain.Invoice{
		ClientName:    strings.TrimSpace(req.ClientName),
		PlanName:      planName,
		PlanPrice:     planPrice,
		Description:   description,
		Category:      strings.TrimSpace(req.Category),
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		InvoiceDate:   invoiceDate,
		DueDate:       dueDate,
		Amount:        amount,
		Status:        ledgerdomain.ParseStoredStatus(req.Status),
		Metadata:      metadata,
	}, nil
}

func (s *Service) lookupPlan(name string) (ledgerdomain.Plan, bool) {
	for _, plan := range s.calendar.Settings().PlanCatalog() {
		if strings.EqualFold(plan.Name, name) {
			return plan, true
		}
	}
	return ledgerdomain.Plan{}, false
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	orgID, err := orgIDFromContext(ctx)
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}
	asOf, err := s.calendar.ResolveAsOf(req.AsOf)
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	invoices, err := s.repo.List(ctx, s.db, orgID)
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	criteria := ledgerdomain.NewCriteria(req.Search, req.Status, req.Category, "", req.Period)
	result := engine.Run(invoices, criteria, asOf)

	page, pageInfo, err := pagination.Slice(result.Items, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  req.PageSize,
	})
	if err != nil {
		return domain.ListInvoiceResponse{}, ledgerdomain.NewValidationError("page_token", "invalid_page_token", "invalid page token")
	}

	views := make([]domain.InvoiceView, 0, len(page))
	for _, item := range page {
		views = append(views, domain.NewView(item))
	}

	return domain.ListInvoiceResponse{
		PageInfo: pageInfo,
		AsOf:     asOf,
		Invoices: views,
		Totals:   result.Totals,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetInvoiceRequest) (domain.InvoiceView, error) {
	orgID, err := orgIDFromContext(ctx)
	if err != nil {
		return domain.InvoiceView{}, err
	}
	asOf, err := s.calendar.ResolveAsOf(req.AsOf)
	if err != nil {
		return domain.InvoiceView{}, err
	}
	invoice, err := s.find(ctx, orgID, req.ID)
	if err != nil {
		return domain.InvoiceView{}, err
	}
	return domain.NewView(engine.Derive(*invoice, asOf)), nil
}

func (s *Service) Pay(ctx context.Context, req domain.TransitionInvoiceRequest) (domain.InvoiceView, error) {
	return s.transition(ctx, req, ledgerdomain.StatusPaid, events.InvoicePaid)
}

func (s *Service) Cancel(ctx context.Context, req domain.TransitionInvoiceRequest) (domain.InvoiceView, error) {
	return s.transition(ctx, req, ledgerdomain.StatusCanceled, events.InvoiceCanceled)
}

func (s *Service) transition(ctx context.Context, req domain.TransitionInvoiceRequest, to ledgerdomain.Status, eventType string) (domain.InvoiceView, error) {
	orgID, err := orgIDFromContext(ctx)
	if err != nil {
		return domain.InvoiceView{}, err
	}
	if req.ExpectedVersion <= 0 {
		return domain.InvoiceView{}, domain.ErrInvalidVersion
	}

	invoice, err := s.find(ctx, orgID, req.ID)
	if err != nil {
		return domain.InvoiceView{}, err
	}
	now := s.calendar.Clock().Now()

	ok, err := s.repo.Transition(ctx, s.db, domain.Transition{
		OrgID:           orgID,
		ID:              invoice.ID,
		ExpectedVersion: req.ExpectedVersion,
		To:              to,
		At:              now,
	})
	if err != nil {
		return domain.InvoiceView{}, err
	}
	if !ok {
		return domain.InvoiceView{}, s.classifyConflict(ctx, orgID, invoice.ID, req.ExpectedVersion)
	}

	invoice.Status = to
	invoice.Version = req.ExpectedVersion + 1
	invoice.UpdatedAt = now
	s.metrics.RecordTransition(ctx, metricKind, string(to))
	s.forgetSummary(ctx, orgID)

	event := events.New(eventType, orgID, now, map[string]any{
		"invoice_id":     invoice.ID.String(),
		"invoice_number": invoice.InvoiceNumber,
		"status":         string(to),
		"amount":         invoice.Amount,
		"plan_name":      invoice.PlanName,
		"version":        invoice.Version,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("publish invoice event failed",
			zap.String("event_type", eventType),
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err),
		)
	}

	return domain.NewView(engine.Derive(*invoice, s.calendar.Today())), nil
}

func (s *Service) classifyConflict(ctx context.Context, orgID, id snowflake.ID, expected int64) error {
	current, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return err
	}
	if current == nil {
		return domain.ErrNotFound
	}
	if current.Status.IsTerminal() && current.Version == expected {
		return ledgerdomain.ErrInvalidTransition
	}
	s.metrics.RecordVersionConflict(ctx, metricKind)
	return ledgerdomain.ErrVersionConflict
}

// MRR counts invoices whose derived status is PAID or PENDING on the as-of
// date, priced from the current plan catalog.
func (s *Service) MRR(ctx context.Context, req domain.MRRRequest) (domain.MRRResponse, error) {
	orgID, err := orgIDFromContext(ctx)
	if err != nil {
		return domain.MRRResponse{}, err
	}
	asOf, err := s.calendar.ResolveAsOf(req.AsOf)
	if err != nil {
		return domain.MRRResponse{}, err
	}
	invoices, err := s.repo.List(ctx, s.db, orgID)
	if err != nil {
		return domain.MRRResponse{}, err
	}

	derived := engine.Project(invoices, asOf)
	plans := s.calendar.Settings().PlanCatalog()

	breakdown := make([]domain.PlanRevenue, 0, len(plans))
	for _, plan := range plans {
		line := domain.PlanRevenue{PlanName: plan.Name, Price: plan.Price}
		for _, item := range derived {
			if !strings.EqualFold(strings.TrimSpace(item.Item.PlanName), plan.Name) {
				continue
			}
			if item.Status == ledgerdomain.StatusPaid || item.Status == ledgerdomain.StatusPending {
				line.Active++
			}
		}
		line.Amount = int64(line.Active) * plan.Price
		breakdown = append(breakdown, line)
	}

	return domain.MRRResponse{
		AsOf:  asOf,
		MRR:   engine.MRR(derived, plans),
		Plans: breakdown,
	}, nil
}

func (s *Service) Snapshot(ctx context.Context) ([]domain.Invoice, error) {
	orgID, err := orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, s.db, orgID)
}

func (s *Service) find(ctx context.Context, orgID snowflake.ID, rawID string) (*domain.Invoice, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}
	invoice, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

func (s *Service) rejected(ctx context.Context, err error) {
	var vErr *ledgerdomain.ValidationError
	if errors.As(err, &vErr) {
		s.metrics.RecordRejected(ctx, metricKind, vErr.Code)
	}
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
