package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll(t *testing.T) {
	all, err := All()
	require.NoError(t, err)
	require.NotEmpty(t, all)

	assert.Equal(t, "001_init.sql", all[0].Name)
	for _, table := range []string{"stocks", "daily_prices", "stock_indicators", "risk_badges", "factor_exposures"} {
		assert.True(t, strings.Contains(all[0].SQL, "CREATE TABLE IF NOT EXISTS "+table+" "), table)
	}
}
