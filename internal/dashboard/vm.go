package dashboard

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var display = message.NewPrinter(language.English)

// ViewModel is the summary plus display-formatted money strings.
type ViewModel struct {
	Summary
	GrossSales30Display        string `json:"grossSales30Display"`
	OutstandingAmountDisplay   string `json:"outstandingAmountDisplay"`
	CustomSalesAmount30Display string `json:"customSalesAmount30Display"`
}

// BuildViewModel formats a summary for the dashboard surface.
func BuildViewModel(s Summary) ViewModel {
	return ViewModel{
		Summary:                    s,
		GrossSales30Display:        formatAmount(s.GrossSales30),
		OutstandingAmountDisplay:   formatAmount(s.OutstandingAmount),
		CustomSalesAmount30Display: formatAmount(s.CustomSalesAmount30),
	}
}

// formatAmount renders an amount with digit grouping and two decimals.
func formatAmount(v float64) string {
	return display.Sprintf("%.2f", v)
}
