package service

import (
	"context"
	"testing"

	"dailypos/internal/dto"
	"dailypos/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClosingRepoFor(env *testEnv) repository.ClosingRepository {
	return repository.NewClosingRepository(env.db)
}

func TestTaxTypes_CreateAndList(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	created, err := env.taxes.Create(ctx, dto.TaxTypeRequest{Label: "  VAT 5.5%  ", Percent: dec("5.5")})
	require.NoError(t, err)
	assert.Equal(t, "VAT 5.5%", created.Label)

	list, err := env.taxes.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "VAT 10%", list[0].Label)
	assert.Equal(t, "VAT 5.5%", list[1].Label)
}

func TestTaxTypes_Validation(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	cases := map[string]dto.TaxTypeRequest{
		"empty label":     {Label: " ", Percent: dec("5")},
		"negative":        {Label: "Neg", Percent: dec("-1")},
		"over hundred":    {Label: "Over", Percent: dec("100.01")},
		"three decimals":  {Label: "Precise", Percent: dec("5.555")},
		"duplicate label": {Label: "VAT 10%", Percent: dec("10")},
	}
	for name, req := range cases {
		_, err := env.taxes.Create(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidTaxType, name)
	}
}

func TestTaxTypes_Update(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	// keeping its own label is not a duplicate
	updated, err := env.taxes.Update(ctx, env.vat10.ID, dto.TaxTypeRequest{Label: "VAT 10%", Percent: dec("20")})
	require.NoError(t, err)
	assert.True(t, updated.Percent.Equal(dec("20")))

	other, err := env.taxes.Create(ctx, dto.TaxTypeRequest{Label: "Zero", Percent: dec("0")})
	require.NoError(t, err)
	_, err = env.taxes.Update(ctx, uuid.MustParse(other.ID), dto.TaxTypeRequest{Label: "VAT 10%", Percent: dec("0")})
	assert.ErrorIs(t, err, ErrInvalidTaxType)

	_, err = env.taxes.Update(ctx, uuid.New(), dto.TaxTypeRequest{Label: "Ghost", Percent: dec("1")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaxTypes_EditDoesNotTouchRecordedOrders(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	order := env.paidOrder(t, 2)

	_, err := env.taxes.Update(ctx, env.vat10.ID, dto.TaxTypeRequest{Label: "VAT 10%", Percent: dec("20")})
	require.NoError(t, err)

	got, err := env.orders.Get(ctx, uuid.MustParse(order.ID))
	require.NoError(t, err)
	assert.True(t, got.TaxAmount.Equal(dec("0.91")))
}
