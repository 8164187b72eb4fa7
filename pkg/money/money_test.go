package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRoundUsesBankersRounding(t *testing.T) {
	require.Equal(t, "2.12", Round(decimal.RequireFromString("2.125")).String())
	require.Equal(t, "2.14", Round(decimal.RequireFromString("2.135")).String())
	require.Equal(t, 4839.0, Float(decimal.RequireFromString("4839.0000")))
}

func TestFormat(t *testing.T) {
	require.Equal(t, "₹4,839.00", Format(decimal.NewFromInt(4839)))
	require.Equal(t, "₹2,847", FormatWhole(decimal.RequireFromString("2847.4")))
	require.Equal(t, "12.5 kWh", FormatKWh(decimal.RequireFromString("12.5")))
}
