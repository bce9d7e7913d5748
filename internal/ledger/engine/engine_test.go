package engine

import (
	"testing"
	"time"

	"github.com/smallbiznis/storeledger/internal/ledger/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) domain.Date { return domain.NewDate(y, m, d) }

func payable(id string, due domain.Date, amount int64, status domain.Status) domain.Record {
	return domain.Record{
		ID:            id,
		Kind:          domain.KindAccount,
		Description:   "Conta " + id,
		Category:      "Infraestrutura",
		PaymentMethod: "Boleto",
		DueDate:       due,
		Amount:        amount,
		Status:        status,
		Direction:     domain.DirectionPayable,
	}
}

func TestDeriveStatusIsIdempotent(t *testing.T) {
	asOf := date(2024, time.January, 15)
	records := []domain.Record{
		payable("1", date(2024, time.January, 10), 100, domain.StatusPending),
		payable("2", date(2024, time.January, 15), 100, domain.StatusPending),
		payable("3", date(2024, time.January, 20), 100, domain.StatusPending),
		payable("4", date(2024, time.January, 1), 100, domain.StatusPaid),
		payable("5", date(2024, time.January, 1), 100, domain.StatusCanceled),
	}

	for _, r := range records {
		once := DeriveStatus(r, asOf)
		projected := r
		projected.Status = once
		assert.Equal(t, once, DeriveStatus(projected, asOf), "record %s", r.ID)
	}
}

func TestDeriveStatusBoundaryIsStrict(t *testing.T) {
	asOf := date(2024, time.January, 15)

	dueToday := payable("today", asOf, 100, domain.StatusPending)
	assert.Equal(t, domain.StatusPending, DeriveStatus(dueToday, asOf))

	dueYesterday := payable("yesterday", asOf.AddDays(-1), 100, domain.StatusPending)
	assert.Equal(t, domain.StatusOverdue, DeriveStatus(dueYesterday, asOf))
}

func TestDeriveStatusTerminalImmunity(t *testing.T) {
	asOf := date(2024, time.June, 1)
	past := date(2020, time.January, 1)

	for _, status := range []domain.Status{domain.StatusPaid, domain.StatusReceived, domain.StatusCanceled} {
		r := payable("x", past, 100, status)
		assert.Equal(t, status, DeriveStatus(r, asOf))
	}
}

func TestProjectDoesNotMutateInput(t *testing.T) {
	asOf := date(2024, time.January, 15)
	records := []domain.Record{payable("1", date(2024, time.January, 1), 100, domain.StatusPending)}

	derived := Project(records, asOf)

	require.Len(t, derived, 1)
	assert.Equal(t, domain.StatusOverdue, derived[0].Status)
	assert.Equal(t, domain.StatusPending, records[0].Status)
	assert.Equal(t, domain.StatusPending, derived[0].Item.Status)
}

func TestFilterMustRunAfterDerive(t *testing.T) {
	asOf := date(2024, time.January, 15)
	records := []domain.Record{payable("late", date(2024, time.January, 5), 100, domain.StatusPending)}
	overdue := domain.Criteria{Status: domain.StatusOverdue}

	derivedFirst := Filter(Project(records, asOf), overdue, asOf)
	require.Len(t, derivedFirst, 1)
	assert.Equal(t, domain.StatusOverdue, derivedFirst[0].Status)

	raw := []domain.Derived[domain.Record]{{Item: records[0], Status: records[0].Status}}
	filteredFirst := Filter(raw, overdue, asOf)
	assert.Empty(t, filteredFirst)
}

func TestFilterStatusMatchesDisplayedStatus(t *testing.T) {
	asOf := date(2024, time.January, 15)
	records := []domain.Record{
		payable("late", date(2024, time.January, 5), 100, domain.StatusPending),
		payable("open", date(2024, time.January, 25), 100, domain.StatusPending),
	}

	res := Run(records, domain.Criteria{Status: domain.StatusPending}, asOf)

	require.Len(t, res.Items, 1)
	assert.Equal(t, "open", res.Items[0].Item.ID)
	assert.Equal(t, domain.StatusPending, res.Items[0].Status)
}

func TestFilterSearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	asOf := date(2024, time.January, 15)
	a := payable("a", asOf, 100, domain.StatusPending)
	a.Description = "Servidor AWS"
	b := payable("b", asOf, 100, domain.StatusPending)
	b.Description = "Aluguel"
	b.Category = "Imóveis"
	b.PaymentMethod = "PIX"
	c := payable("c", asOf, 100, domain.StatusPending)
	c.Description = "Energia"
	c.Category = "Utilidades"
	c.PaymentMethod = "Débito automático"

	records := []domain.Record{a, b, c}
	cases := map[string][]string{
		"aws":     {"a"},
		"pix":     {"b"},
		"IMÓVEIS": {"b"},
		"débito":  {"c"},
		"zzz":     {},
	}
	for needle, want := range cases {
		res := Run(records, domain.Criteria{SearchText: needle}, asOf)
		got := make([]string, 0, len(res.Items))
		for _, item := range res.Items {
			got = append(got, item.Item.ID)
		}
		assert.ElementsMatch(t, want, got, "search %q", needle)
	}
}

func TestFilterSearchMatchesInvoiceClient(t *testing.T) {
	asOf := date(2024, time.January, 15)
	inv := domain.Record{
		ID:            "inv",
		Kind:          domain.KindInvoice,
		Description:   "Assinatura mensal",
		DueDate:       asOf,
		Status:        domain.StatusPending,
		Direction:     domain.DirectionReceivable,
		ClientName:    "Loja da Maria",
		InvoiceNumber: "FAT-202401-00001",
	}

	assert.Len(t, Run([]domain.Record{inv}, domain.Criteria{SearchText: "maria"}, asOf).Items, 1)
	assert.Len(t, Run([]domain.Record{inv}, domain.Criteria{SearchText: "00001"}, asOf).Items, 1)
}

func TestFilterCombinesCriteriaWithAnd(t *testing.T) {
	asOf := date(2024, time.January, 15)
	a := payable("a", date(2024, time.January, 20), 100, domain.StatusPending)
	b := payable("b", date(2024, time.January, 20), 100, domain.StatusPending)
	b.Category = "Vendas"
	c := payable("c", date(2024, time.January, 20), 100, domain.StatusPending)
	c.Direction = domain.DirectionReceivable

	res := Run([]domain.Record{a, b, c}, domain.Criteria{
		Category:  "Infraestrutura",
		Direction: domain.DirectionPayable,
		Status:    domain.StatusPending,
		Period:    domain.PeriodThisMonth,
	}, asOf)

	require.Len(t, res.Items, 1)
	assert.Equal(t, "a", res.Items[0].Item.ID)
}

func TestPeriodThisMonthBoundary(t *testing.T) {
	today := date(2024, time.February, 10)
	records := []domain.Record{
		payable("last-day", date(2024, time.February, 29), 100, domain.StatusPending),
		payable("next-month", date(2024, time.March, 1), 100, domain.StatusPending),
		payable("today", today, 100, domain.StatusPending),
		payable("yesterday", today.AddDays(-1), 100, domain.StatusPending),
	}

	res := Run(records, domain.Criteria{Period: domain.PeriodThisMonth}, today)

	ids := make([]string, 0, len(res.Items))
	for _, item := range res.Items {
		ids = append(ids, item.Item.ID)
	}
	assert.ElementsMatch(t, []string{"last-day", "today"}, ids)
}

func TestPeriodThisWeekWindow(t *testing.T) {
	cases := []struct {
		name  string
		today domain.Date
		end   domain.Date
	}{
		{name: "wednesday", today: date(2024, time.January, 17), end: date(2024, time.January, 21)},
		{name: "saturday", today: date(2024, time.January, 20), end: date(2024, time.January, 21)},
		{name: "sunday", today: date(2024, time.January, 21), end: date(2024, time.January, 28)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			from, to, ok := PeriodWindow(domain.PeriodThisWeek, tc.today)
			require.True(t, ok)
			assert.Equal(t, tc.today, from)
			assert.Equal(t, tc.end, to)

			records := []domain.Record{
				payable("end", tc.end, 100, domain.StatusPending),
				payable("after", tc.end.AddDays(1), 100, domain.StatusPending),
			}
			res := Run(records, domain.Criteria{Period: domain.PeriodThisWeek}, tc.today)
			require.Len(t, res.Items, 1)
			assert.Equal(t, "end", res.Items[0].Item.ID)
		})
	}
}

func TestUnknownPeriodIsNoOp(t *testing.T) {
	today := date(2024, time.January, 15)
	records := []domain.Record{
		payable("past", date(2023, time.January, 1), 100, domain.StatusPaid),
		payable("future", date(2030, time.January, 1), 100, domain.StatusPending),
	}

	c := domain.NewCriteria("", "", "", "", "NEXT_DECADE")
	assert.Equal(t, domain.PeriodAll, c.Period)
	assert.Len(t, Run(records, c, today).Items, 2)
}

func TestAggregateIsAdditive(t *testing.T) {
	asOf := date(2024, time.January, 15)
	records := []domain.Record{
		payable("1", date(2024, time.January, 10), 12345, domain.StatusPending),
		payable("2", date(2024, time.January, 20), 9990, domain.StatusPending),
		payable("3", date(2024, time.January, 1), 1, domain.StatusPaid),
		payable("4", date(2024, time.January, 1), 50000, domain.StatusCanceled),
		payable("5", date(2024, time.January, 1), 333, domain.StatusReceived),
	}
	records[4].Direction = domain.DirectionReceivable

	totals := Run(records, domain.Criteria{}, asOf).Totals

	var sum int64
	for _, r := range records {
		sum += r.Amount
	}
	assert.Equal(t, sum, totals.Total)
	assert.Equal(t, totals.Total, totals.Pending+totals.Paid+totals.Received+totals.Overdue+totals.Canceled)
	assert.Equal(t, totals.Total, totals.Payable+totals.Receivable)
	assert.Equal(t, int64(12345), totals.Overdue)
	assert.Equal(t, int64(9990), totals.Pending)
	assert.Equal(t, int64(333), totals.Receivable)
	assert.Equal(t, 5, totals.Count)
	assert.Equal(t, int64(334), totals.Settled())
	assert.Equal(t, int64(22335), totals.Open())
}

func TestMRRCountsPaidAndPendingOnly(t *testing.T) {
	asOf := date(2024, time.January, 15)
	plans := []domain.Plan{
		{Name: "Basico", Price: 9990},
		{Name: "Profissional", Price: 19990},
		{Name: "Enterprise", Price: 49990},
	}
	invoice := func(id, plan string, due domain.Date, status domain.Status) domain.Record {
		return domain.Record{
			ID: id, Kind: domain.KindInvoice, PlanName: plan, DueDate: due,
			Status: status, Direction: domain.DirectionReceivable, Amount: 1,
		}
	}
	records := []domain.Record{
		invoice("1", "Basico", date(2024, time.January, 5), domain.StatusPaid),
		invoice("2", "Basico", date(2024, time.January, 20), domain.StatusPending),
		invoice("3", "Profissional", date(2024, time.January, 10), domain.StatusPending),
		invoice("4", "Enterprise", date(2024, time.January, 10), domain.StatusCanceled),
		invoice("5", "Enterprise", date(2024, time.January, 1), domain.StatusPaid),
		invoice("6", "Legado", date(2024, time.January, 1), domain.StatusPaid),
	}

	got := MRR(Project(records, asOf), plans)

	// Basico x2, Profissional overdue excluded, Enterprise x1 (canceled excluded), unknown plan ignored.
	assert.Equal(t, int64(2*9990+49990), got)
}

func TestMRRMatchesPlanNamesCaseInsensitively(t *testing.T) {
	asOf := date(2024, time.January, 15)
	plans := []domain.Plan{{Name: "Basico", Price: 9990}}
	records := []domain.Record{
		{ID: "1", Kind: domain.KindInvoice, PlanName: "Basico", DueDate: date(2024, time.January, 20), Status: domain.StatusPending, Direction: domain.DirectionReceivable, Amount: 1},
		{ID: "2", Kind: domain.KindInvoice, PlanName: " basico ", DueDate: date(2024, time.January, 20), Status: domain.StatusPending, Direction: domain.DirectionReceivable, Amount: 1},
	}

	assert.Equal(t, int64(2*9990), MRR(Project(records, asOf), plans))
}

func TestPctChange(t *testing.T) {
	assert.Equal(t, float64(0), PctChange(100, 0))
	assert.Equal(t, float64(0), PctChange(0, 0))
	assert.InDelta(t, 50.0, PctChange(150, 100), 1e-9)
	assert.InDelta(t, -25.0, PctChange(75, 100), 1e-9)
	assert.InDelta(t, -200.0, PctChange(100, -100), 1e-9)
}

func goldenDay() domain.Day {
	return domain.Day{
		Date:           date(2024, time.January, 15),
		OpeningBalance: 345075,
		ClosingBalance: 385015,
		Transactions: []domain.Transaction{
			{Time: "09:15", Description: "Venda #1234", Amount: 15990, Type: domain.TransactionIncome, Method: "Cartão de Crédito"},
			{Time: "10:30", Description: "Pagamento fornecedor", Amount: 30000, Type: domain.TransactionExpense, Method: "PIX"},
			{Time: "11:45", Description: "Venda #1235", Amount: 8990, Type: domain.TransactionIncome, Method: "Dinheiro"},
			{Time: "14:20", Description: "Despesa operacional", Amount: 5000, Type: domain.TransactionExpense, Method: "Dinheiro"},
			{Time: "16:10", Description: "Venda #1236", Amount: 49960, Type: domain.TransactionIncome, Method: "PIX"},
		},
	}
}

func TestCashFlowGoldenDay(t *testing.T) {
	day := goldenDay()

	assert.Equal(t, int64(39940), NetMovement(day))
	assert.Equal(t, int64(385015), ClosingFor(day.OpeningBalance, day.Transactions))
	assert.NoError(t, ValidateDay(day))

	summary := Summarize(day)
	assert.Equal(t, int64(74940), summary.Income)
	assert.Equal(t, int64(35000), summary.Expense)
	assert.Equal(t, int64(39940), summary.Net)
	assert.Equal(t, 5, summary.Transactions)
}

func TestValidateDayReportsInconsistency(t *testing.T) {
	day := goldenDay()
	day.ClosingBalance = 384965

	err := ValidateDay(day)

	var inconsistency *domain.LedgerInconsistencyError
	require.ErrorAs(t, err, &inconsistency)
	assert.Equal(t, day.Date, inconsistency.Date)
	assert.Equal(t, int64(39890), inconsistency.Expected)
	assert.Equal(t, int64(39940), inconsistency.Actual)
	assert.Equal(t, int64(-50), inconsistency.Difference())
	assert.Equal(t, int64(384965), day.ClosingBalance, "validation must not fix the numbers")
}

func TestNetMovementIgnoresOrder(t *testing.T) {
	day := goldenDay()
	reversed := day
	reversed.Transactions = make([]domain.Transaction, len(day.Transactions))
	for i, txn := range day.Transactions {
		reversed.Transactions[len(day.Transactions)-1-i] = txn
	}

	assert.Equal(t, NetMovement(day), NetMovement(reversed))
	assert.Equal(t, "09:15", day.Transactions[0].Time)
	assert.Equal(t, int64(2*39940), PeriodMovement([]domain.Day{day, reversed}))
}
