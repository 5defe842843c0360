package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckProductionWithinPlan(t *testing.T) {
	assert.NoError(t, CheckProduction(100, 0, 100))
	assert.NoError(t, CheckProduction(100, 60, 40))
}

func TestCheckProductionOverPlanCarriesMaxAllowed(t *testing.T) {
	// planned 100, already produced 60 → at most 40 more
	err := CheckProduction(100, 60, 41)
	require.Error(t, err)

	var capErr *CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, KindProduction, capErr.Kind)
	assert.Equal(t, 40, capErr.MaxAllowed)
	assert.Contains(t, capErr.Error(), "at most 40 can be produced")
}

func TestCheckShippingWithinStock(t *testing.T) {
	assert.NoError(t, CheckShipping(60, 30, 30))
	assert.NoError(t, CheckShipping(60, 0, 1))
}

func TestCheckShippingOverProducedCarriesMaxAllowed(t *testing.T) {
	// produced 60, shipped 30 → at most 30 more, planned is irrelevant here
	err := CheckShipping(60, 30, 31)
	require.Error(t, err)

	var capErr *CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, KindShipping, capErr.Kind)
	assert.Equal(t, 30, capErr.MaxAllowed)
	assert.Contains(t, capErr.Error(), "at most 30 can be shipped")
}

func TestCheckShippingNothingProduced(t *testing.T) {
	err := CheckShipping(0, 0, 1)
	var capErr *CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, 0, capErr.MaxAllowed)
}

func TestNonPositiveQuantitiesRejectedBeforeCapacityMath(t *testing.T) {
	assert.ErrorIs(t, CheckProduction(100, 0, 0), ErrNonPositiveQuantity)
	assert.ErrorIs(t, CheckProduction(100, 0, -5), ErrNonPositiveQuantity)
	assert.ErrorIs(t, CheckShipping(100, 0, 0), ErrNonPositiveQuantity)
	assert.ErrorIs(t, CheckShipping(100, 0, -1), ErrNonPositiveQuantity)
}

func TestCheckProductionRemoval(t *testing.T) {
	// removing produced quantity below what already shipped is an integrity
	// violation, never silently tolerated
	assert.NoError(t, CheckProductionRemoval(30, 30))
	assert.NoError(t, CheckProductionRemoval(50, 30))

	err := CheckProductionRemoval(20, 30)
	var intErr *IntegrityError
	require.True(t, errors.As(err, &intErr))
	assert.Equal(t, 20, intErr.Produced)
	assert.Equal(t, 30, intErr.Shipped)
}
