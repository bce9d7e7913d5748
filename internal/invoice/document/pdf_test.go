package document

import (
	"bytes"
	"testing"

	"github.com/smallbiznis/storeledger/internal/invoice/domain"
	ledgerdomain "github.com/smallbiznis/storeledger/internal/ledger/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInvoice(status ledgerdomain.Status) domain.InvoiceView {
	return domain.InvoiceView{
		Invoice: domain.Invoice{
			InvoiceNumber: "FAT-202401-00001",
			ClientName:    "Mercado Bom Preço",
			PlanName:      "Profissional",
			Description:   "Profissional",
			InvoiceDate:   ledgerdomain.NewDate(2024, 1, 1),
			DueDate:       ledgerdomain.NewDate(2024, 1, 10),
			Amount:        19990,
			Status:        ledgerdomain.StatusPending,
		},
		Status: status,
	}
}

func TestRenderProducesPDF(t *testing.T) {
	out, err := Render(sampleInvoice(ledgerdomain.StatusOverdue))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestAmountDue(t *testing.T) {
	assert.Equal(t, int64(19990), amountDue(sampleInvoice(ledgerdomain.StatusOverdue)))
	assert.Equal(t, int64(0), amountDue(sampleInvoice(ledgerdomain.StatusPaid)))
	assert.Equal(t, int64(0), amountDue(sampleInvoice(ledgerdomain.StatusCanceled)))
}
