package dashboard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildViewModelFormatsAmounts(t *testing.T) {
	vm := BuildViewModel(Summary{
		GrossSales30:        1234567.5,
		OutstandingAmount:   500,
		CustomSalesAmount30: 0,
	})
	require.Equal(t, "1,234,567.50", vm.GrossSales30Display)
	require.Equal(t, "500.00", vm.OutstandingAmountDisplay)
	require.Equal(t, "0.00", vm.CustomSalesAmount30Display)
}
