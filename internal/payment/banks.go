package payment

import (
	"github.com/midtrans/midtrans-go"

	"github.com/ariefcatur/go-wedding-orders/internal/orders"
)

type Bank struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	AccountNumber string `json:"account_number,omitempty"`
	AccountHolder string `json:"account_holder,omitempty"`
}

// Rekening tujuan transfer manual.
var TransferBanks = []Bank{
	{Code: string(midtrans.BankBca), Name: "BCA", AccountNumber: "1234567890", AccountHolder: "PT Wedding Organizer"},
	{Code: string(midtrans.BankMandiri), Name: "Mandiri", AccountNumber: "1370012345678", AccountHolder: "PT Wedding Organizer"},
	{Code: string(midtrans.BankBni), Name: "BNI", AccountNumber: "0123456789", AccountHolder: "PT Wedding Organizer"},
	{Code: string(midtrans.BankBri), Name: "BRI", AccountNumber: "012301000123456", AccountHolder: "PT Wedding Organizer"},
}

// Bank yang didukung payment gateway untuk virtual account.
var VABanks = []Bank{
	{Code: string(midtrans.BankBca), Name: "BCA Virtual Account"},
	{Code: string(midtrans.BankBni), Name: "BNI Virtual Account"},
	{Code: string(midtrans.BankBri), Name: "BRI Virtual Account"},
	{Code: string(midtrans.BankPermata), Name: "Permata Virtual Account"},
	{Code: string(midtrans.BankCimb), Name: "CIMB Niaga Virtual Account"},
}

// BanksFor returns the sub-selection list of a method; cash has none.
func BanksFor(m orders.PaymentMethod) []Bank {
	switch m {
	case orders.MethodBankTransfer:
		return TransferBanks
	case orders.MethodVirtualAccount:
		return VABanks
	}
	return nil
}

func validBank(m orders.PaymentMethod, code string) bool {
	for _, b := range BanksFor(m) {
		if b.Code == code {
			return true
		}
	}
	return false
}

func validMethod(m orders.PaymentMethod) bool {
	switch m {
	case orders.MethodBankTransfer, orders.MethodVirtualAccount, orders.MethodCash:
		return true
	}
	return false
}
