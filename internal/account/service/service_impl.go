package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storeledger/internal/account/domain"
	"github.com/smallbiznis/storeledger/internal/cache"
	"github.com/smallbiznis/storeledger/internal/config"
	"github.com/smallbiznis/storeledger/internal/events"
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

const metricKind = "account"

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Cfg       config.Config
	Calendar  *ledgerservice.Calendar
	Publisher events.Publisher
	Cache     cache.Store         `optional:"true"`
	Metrics   *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	platformOrg snowflake.ID
	calendar    *ledgerservice.Calendar
	publisher   events.Publisher
	cache       cache.Store
	metrics     *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("account.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		platformOrg: snowflake.ID(p.Cfg.PlatformOrgID),
		calendar:    p.Calendar,
		publisher:   p.Publisher,
		cache:       p.Cache,
		metrics:     p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateAccountRequest) (domain.AccountView, error) {
	scope := normalizeScope(req.Scope)
	orgID, err := s.orgFor(ctx, scope)
	if err != nil {
		return domain.AccountView{}, err
	}

	account, err := s.buildAccount(scope, req)
	if err != nil {
		s.rejected(ctx, err)
		return domain.AccountView{}, err
	}
	if err := ledgerdomain.ValidateRecord(account.LedgerRecord()); err != nil {
		s.rejected(ctx, err)
		return domain.AccountView{}, err
	}

	now := s.calendar.Clock().Now()
	account.ID = s.genID.Generate()
	account.OrgID = orgID
	account.Version = 1
	account.CreatedAt = now
	account.UpdatedAt = now

	if err := s.repo.Insert(ctx, s.db, &account); err != nil {
		return domain.AccountView{}, err
	}
	s.metrics.RecordIngested(ctx, metricKind)
	s.forgetSummary(ctx, orgID)

	return domain.NewView(engine.Derive(account, s.calendar.Today())), nil
}

func (s *Service) buildAccount(scope domain.Scope, req domain.CreateAccountRequest) (domain.Account, error) {
	dueDate, err := ledgerdomain.ParseDateField("due_date", req.DueDate)
	if err != nil {
		return domain.Account{}, err
	}
	amount, err := ledgerdomain.ParseAmountField("amount", req.Amount)
	if err != nil {
		return domain.Account{}, err
	}

	direction := ledgerdomain.Direction(strings.ToUpper(strings.TrimSpace(req.Direction)))
	switch {
	case scope == domain.ScopePlatform && direction == "":
		direction = ledgerdomain.DirectionPayable
	case scope == domain.ScopePlatform && direction != ledgerdomain.DirectionPayable:
		return domain.Account{}, ledgerdomain.NewValidationError("direction", "platform_payable_only", "platform accounts are payable only")
	case direction == "":
		return domain.Account{}, ledgerdomain.NewValidationError("direction", "required", "direction is required")
	}

	metadata := datatypes.JSONMap{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	return domain.Account{
		Scope:         scope,
		Description:   strings.TrimSpace(req.Description),
		Category:      strings.TrimSpace(req.Category),
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		DueDate:       dueDate,
		Amount:        amount,
		Status:        ledgerdomain.ParseStoredStatus(req.Status),
		Direction:     direction,
		Metadata:      metadata,
	}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListAccountRequest) (domain.ListAccountResponse, error) {
	scope := normalizeScope(req.Scope)
	orgID, err := s.orgFor(ctx, scope)
	if err != nil {
		return domain.ListAccountResponse{}, err
	}
	asOf, err := s.calendar.ResolveAsOf(req.AsOf)
	if err != nil {
		return domain.ListAccountResponse{}, err
	}

	accounts, err := s.repo.List(ctx, s.db, orgID, scope)
	if err != nil {
		return domain.ListAccountResponse{}, err
	}

	criteria := ledgerdomain.NewCriteria(req.Search, req.Status, req.Category, req.Direction, req.Period)
	result := engine.Run(accounts, criteria, asOf)

	page, pageInfo, err := pagination.Slice(result.Items, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  req.PageSize,
	})
	if err != nil {
		return domain.ListAccountResponse{}, ledgerdomain.NewValidationError("page_token", "invalid_page_token", "invalid page token")
	}

	views := make([]domain.AccountView, 0, len(page))
	for _, item := range page {
		views = append(views, domain.NewView(item))
	}

	return domain.ListAccountResponse{
		PageInfo: pageInfo,
		AsOf:     asOf,
		Accounts: views,
		Totals:   result.Totals,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetAccountRequest) (domain.AccountView, error) {
	scope := normalizeScope(req.Scope)
	orgID, err := s.orgFor(ctx, scope)
	if err != nil {
		return domain.AccountView{}, err
	}
	asOf, err := s.calendar.ResolveAsOf(req.AsOf)
	if err != nil {
		return domain.AccountView{}, err
	}
	account, err := s.find(ctx, orgID, scope, req.ID)
	if err != nil {
		return domain.AccountView{}, err
	}
	return domain.NewView(engine.Derive(*account, asOf)), nil
}

func (s *Service) Settle(ctx context.Context, req domain.TransitionAccountRequest) (domain.AccountView, error) {
	return s.transition(ctx, req, func(a domain.Account) (ledgerdomain.Status, string) {
		return a.Direction.SettledStatus(), events.AccountSettled
	})
}

func (s *Service) Cancel(ctx context.Context, req domain.TransitionAccountRequest) (domain.AccountView, error) {
	return s.transition(ctx, req, func(domain.Account) (ledgerdomain.Status, string) {
		return ledgerdomain.StatusCanceled, events.AccountCanceled
	})
}

func (s *Service) transition(
	ctx context.Context,
	req domain.TransitionAccountRequest,
	target func(domain.Account) (ledgerdomain.Status, string),
) (domain.AccountView, error) {
	scope := normalizeScope(req.Scope)
	orgID, err := s.orgFor(ctx, scope)
	if err != nil {
		return domain.AccountView{}, err
	}
	if req.ExpectedVersion <= 0 {
		return domain.AccountView{}, domain.ErrInvalidVersion
	}

	account, err := s.find(ctx, orgID, scope, req.ID)
	if err != nil {
		return domain.AccountView{}, err
	}
	to, eventType := target(*account)
	now := s.calendar.Clock().Now()

	ok, err := s.repo.Transition(ctx, s.db, domain.Transition{
		OrgID:           orgID,
		ID:              account.ID,
		ExpectedVersion: req.ExpectedVersion,
		To:              to,
		At:              now,
	})
	if err != nil {
		return domain.AccountView{}, err
	}
	if !ok {
		return domain.AccountView{}, s.classifyConflict(ctx, orgID, scope, account.ID, req.ExpectedVersion)
	}

	account.Status = to
	account.Version = req.ExpectedVersion + 1
	account.UpdatedAt = now
	s.metrics.RecordTransition(ctx, metricKind, string(to))
	s.forgetSummary(ctx, orgID)

	event := events.New(eventType, orgID, now, map[string]any{
		"account_id": account.ID.String(),
		"scope":      string(scope),
		"status":     string(to),
		"amount":     account.Amount,
		"direction":  string(account.Direction),
		"version":    account.Version,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("publish account event failed",
			zap.String("event_type", eventType),
			zap.String("account_id", account.ID.String()),
			zap.Error(err),
		)
	}

	return domain.NewView(engine.Derive(*account, s.calendar.Today())), nil
}

// classifyConflict re-reads the row after a failed compare-and-swap. A terminal
// row means the move is not allowed at all; anything else is a stale version.
func (s *Service) classifyConflict(ctx context.Context, orgID snowflake.ID, scope domain.Scope, id snowflake.ID, expected int64) error {
	current, err := s.repo.FindByID(ctx, s.db, orgID, id, scope)
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

func (s *Service) Snapshot(ctx context.Context, scope domain.Scope) ([]domain.Account, error) {
	scope = normalizeScope(scope)
	orgID, err := s.orgFor(ctx, scope)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, s.db, orgID, scope)
}

func (s *Service) find(ctx context.Context, orgID snowflake.ID, scope domain.Scope, rawID string) (*domain.Account, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}
	account, err := s.repo.FindByID(ctx, s.db, orgID, id, scope)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrNotFound
	}
	return account, nil
}

func (s *Service) orgFor(ctx context.Context, scope domain.Scope) (snowflake.ID, error) {
	if scope == domain.ScopePlatform {
		if s.platformOrg == 0 {
			return 0, domain.ErrInvalidOrganization
		}
		return s.platformOrg, nil
	}
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return 0, domain.ErrInvalidOrganization
	}
	return orgID, nil
}

func (s *Service) rejected(ctx context.Context, err error) {
	var vErr *ledgerdomain.ValidationError
	if errors.As(err, &vErr) {
		s.metrics.RecordRejected(ctx, metricKind, vErr.Code)
	}
}

func normalizeScope(scope domain.Scope) domain.Scope {
	if scope == domain.ScopePlatform {
		return scope
	}
	return domain.ScopeTenant
}

// forgetSummary drops today's cached finance summary so the dashboard agrees
// with the lists right after a write. Summaries for other as-of dates expire by TTL.
func (s *Service) forgetSummary(ctx context.Context, orgID snowflake.ID) {
	if err := cache.ForgetSummary(ctx, s.cache, orgID.String(), s.calendar.Today().String()); err != nil {
		s.log.Warn("summary cache invalidation failed", zap.String("org_id", orgID.String()), zap.Error(err))
	}
}
