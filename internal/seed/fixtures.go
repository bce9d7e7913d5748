package seed

import (
	accountdomain "github.com/smallbiznis/storeledger/internal/account/domain"
	cashflowdomain "github.com/smallbiznis/storeledger/internal/cashflow/domain"
	invoicedomain "github.com/smallbiznis/storeledger/internal/invoice/domain"
)

// Demo data for January 2024. The 2024-01-15 cash-flow day is the reference
// day used throughout the tests: 3450.75 opening, 3850.15 closing.

var platformAccounts = []accountdomain.CreateAccountRequest{
	{Description: "Hospedagem de servidores", Category: "Infraestrutura", PaymentMethod: "Cartão de Crédito", DueDate: "2024-01-20", Amount: "1200.00"},
	{Description: "Licenças de software", Category: "Infraestrutura", PaymentMethod: "Boleto", DueDate: "2024-01-05", Amount: "850.00", Status: "PAID"},
	{Description: "Campanha de marketing", Category: "Marketing", PaymentMethod: "PIX", DueDate: "2024-01-10", Amount: "2000.00"},
}

var tenantAccounts = []accountdomain.CreateAccountRequest{
	{Description: "Aluguel da loja", Category: "Aluguel", PaymentMethod: "Boleto", DueDate: "2024-01-10", Amount: "3500.00", Direction: "PAYABLE"},
	{Description: "Fornecedor de bebidas", Category: "Fornecedores", PaymentMethod: "Boleto", DueDate: "2024-01-18", Amount: "1890.50", Direction: "PAYABLE"},
	{Description: "Energia elétrica", Category: "Utilidades", PaymentMethod: "Débito Automático", DueDate: "2024-01-08", Amount: "450.30", Direction: "PAYABLE", Status: "PAID"},
	{Description: "Internet", Category: "Utilidades", PaymentMethod: "Cartão de Crédito", DueDate: "2024-01-25", Amount: "159.90", Direction: "PAYABLE"},
	{Description: "Venda a prazo - João Silva", Category: "Vendas", PaymentMethod: "Crediário", DueDate: "2024-01-12", Amount: "780.00", Direction: "RECEIVABLE"},
	{Description: "Recebível de cartão parcelado", Category: "Vendas", PaymentMethod: "Cartão de Crédito", DueDate: "2024-01-30", Amount: "1250.00", Direction: "RECEIVABLE"},
	{Description: "Venda atacado - Mercado Central", Category: "Vendas", PaymentMethod: "PIX", DueDate: "2024-01-05", Amount: "2300.00", Direction: "RECEIVABLE", Status: "RECEIVED"},
}

var invoices = []invoicedomain.CreateInvoiceRequest{
	{ClientName: "Padaria Sol", PlanName: "Basico", Category: "Assinatura", PaymentMethod: "Boleto", InvoiceDate: "2024-01-05", DueDate: "2024-01-20"},
	{ClientName: "Mercado Lua", PlanName: "Profissional", Category: "Assinatura", PaymentMethod: "PIX", InvoiceDate: "2024-01-01", DueDate: "2024-01-10", Status: "PAID"},
	{ClientName: "Farmácia Vida", PlanName: "Enterprise", Category: "Assinatura", PaymentMethod: "Boleto", InvoiceDate: "2024-01-02", DueDate: "2024-01-12"},
	{ClientName: "Loja Estrela", PlanName: "Basico", Category: "Assinatura", PaymentMethod: "Cartão de Crédito", InvoiceDate: "2024-01-10", DueDate: "2024-01-25", Status: "CANCELED"},
}

var cashflowDays = []cashflowdomain.RecordDayRequest{
	{
		Date:           "2024-01-15",
		OpeningBalance: "3450.75",
		ClosingBalance: "3850.15",
		Transactions: []cashflowdomain.TransactionInput{
			{Time: "09:15", Description: "Venda #1234", Amount: "159.90", Type: "INCOME", Method: "Cartão de Crédito"},
			{Time: "10:30", Description: "Pagamento fornecedor", Amount: "300.00", Type: "EXPENSE", Method: "PIX"},
			{Time: "11:45", Description: "Venda #1235", Amount: "89.90", Type: "INCOME", Method: "Dinheiro"},
			{Time: "14:20", Description: "Despesa operacional", Amount: "50.00", Type: "EXPENSE", Method: "Dinheiro"},
			{Time: "16:10", Description: "Venda #1236", Amount: "499.60", Type: "INCOME", Method: "PIX"},
		},
	},
	{
		Date: "2024-01-16",
		Transactions: []cashflowdomain.TransactionInput{
			{Time: "08:40", Description: "Venda #1237", Amount: "230.00", Type: "INCOME", Method: "Cartão de Débito"},
			{Time: "13:05", Description: "Compra de embalagens", Amount: "75.40", Type: "EXPENSE", Method: "Dinheiro"},
		},
	},
}
