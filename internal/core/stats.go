package core

import "strings"

// Summary is the fixed-shape aggregation of a transaction set that powers
// the dashboard and reports views.
type Summary struct {
	TotalIncome      Money `json:"totalIncome"`
	TotalExpenses    Money `json:"totalExpenses"`
	ShopEarnings     Money `json:"shopEarnings"`
	ShopRawMaterial  Money `json:"shopRawMaterial"`
	ElectricityBills Money `json:"electricityBills"`
	PersonalSpending Money `json:"personalSpending"`
	HomeSpending     Money `json:"homeSpending"`
	OtherExpenses    Money `json:"otherExpenses"`
	CashTotal        Money `json:"cashTotal"`
	UPITotal         Money `json:"upiTotal"`
	BankTotal        Money `json:"bankTotal"`
	NetProfit        Money `json:"netProfit"`
	TransactionCount int   `json:"transactionCount"`
}

// Summarize reduces a period-filtered transaction set into totals.
//
// Expense classification is a first-match substring test on the lower-cased
// category name. Category linkage is free text rather than an ID reference,
// so overlapping names ("Personal Electricity") resolve by this priority
// order; callers relying on the buckets must not reorder it.
func Summarize(transactions []Transaction) Summary {
	s := Summary{TransactionCount: len(transactions)}

	for _, t := range transactions {
		category := strings.ToLower(t.Category)

		switch t.Type {
		case Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
			if strings.Contains(category, "shop earnings") || strings.Contains(category, "shop earning") {
				s.ShopEarnings = s.ShopEarnings.Add(t.Amount)
			}
		case Expense:
			s.TotalExpenses = s.TotalExpenses.Add(t.Amount)
			switch {
			case strings.Contains(category, "raw material"):
				s.ShopRawMaterial = s.ShopRawMaterial.Add(t.Amount)
			case strings.Contains(category, "electricity"):
				s.ElectricityBills = s.ElectricityBills.Add(t.Amount)
			case strings.Contains(category, "personal"):
				s.PersonalSpending = s.PersonalSpending.Add(t.Amount)
			case strings.Contains(category, "home"):
				s.HomeSpending = s.HomeSpending.Add(t.Amount)
			default:
				s.OtherExpenses = s.OtherExpenses.Add(t.Amount)
			}
		}

		// Payment buckets are independent of type.
		switch t.PaymentType {
		case Cash:
			s.CashTotal = s.CashTotal.Add(t.Amount)
		case UPI:
			s.UPITotal = s.UPITotal.Add(t.Amount)
		case Bank:
			s.BankTotal = s.BankTotal.Add(t.Amount)
		}
	}

	s.NetProfit = s.TotalIncome.Sub(s.TotalExpenses)
	return s
}
