// Package document renders invoices as printable PDFs.
package document

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/smallbiznis/storeledger/internal/invoice/domain"
	ledgerdomain "github.com/smallbiznis/storeledger/internal/ledger/domain"
	"github.com/smallbiznis/storeledger/pkg/money"
)

const ContentType = "application/pdf"

// Render lays out one invoice on a single A4 page. The status printed is the
// derived status of the view, so an unpaid invoice past its due date reads OVERDUE.
func Render(inv domain.InvoiceView) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, "Invoice "+inv.InvoiceNumber, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, string(inv.Status), props.Text{
			Size:  12,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)

	m.AddRow(24,
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(inv.ClientName, props.Text{Top: 5}),
		),
		col.New(6).Add(
			text.New("Date of issue: "+inv.InvoiceDate.String(), props.Text{Align: align.Right}),
			text.New("Date due: "+inv.DueDate.String(), props.Text{Top: 5, Align: align.Right}),
			text.New("Payment method: "+orDash(inv.PaymentMethod), props.Text{Top: 10, Align: align.Right}),
		),
	)

	m.AddRow(10,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Plan", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(12,
		text.NewCol(6, inv.Description, props.Text{Size: 9}),
		text.NewCol(3, orDash(inv.PlanName), props.Text{Size: 9}),
		text.NewCol(3, formatBRL(inv.Amount), props.Text{Size: 9, Align: align.Right}),
	)

	m.AddRow(10,
		col.New(6),
		text.NewCol(3, "Amount due", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(3, formatBRL(amountDue(inv)), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", inv.InvoiceNumber, err)
	}
	return doc.GetBytes(), nil
}

// Settled and canceled invoices owe nothing.
func amountDue(inv domain.InvoiceView) int64 {
	switch inv.Status {
	case ledgerdomain.StatusPaid, ledgerdomain.StatusReceived, ledgerdomain.StatusCanceled:
		return 0
	}
	return inv.Amount
}

func formatBRL(minor int64) string {
	return "R$ " + money.Format(minor)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
