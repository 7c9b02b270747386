package coupon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeFilter_KnownCodesPass(t *testing.T) {
	repo := &mockCouponRepo{codes: []string{"SAVE10", "welcome5"}}
	filter, err := NewCodeFilter(context.Background(), repo)
	require.NoError(t, err)

	assert.True(t, filter.MayContain("SAVE10"))
	// Matching is case-insensitive in both directions.
	assert.True(t, filter.MayContain("WELCOME5"))
	assert.True(t, filter.MayContain("save10"))
}

func TestCodeFilter_UnknownCodeRejected(t *testing.T) {
	filter, err := NewCodeFilter(context.Background(), &mockCouponRepo{})
	require.NoError(t, err)

	assert.False(t, filter.MayContain("DEFINITELY-NOT-A-CODE"))
}

func TestCodeFilter_AddBeforeReload(t *testing.T) {
	filter, err := NewCodeFilter(context.Background(), &mockCouponRepo{})
	require.NoError(t, err)

	filter.Add("NEWCODE1")
	assert.True(t, filter.MayContain("newcode1"))
}

func TestCodeFilter_ReloadPicksUpNewCodes(t *testing.T) {
	repo := &mockCouponRepo{}
	filter, err := NewCodeFilter(context.Background(), repo)
	require.NoError(t, err)
	assert.False(t, filter.MayContain("LATER99"))

	repo.codes = []string{"LATER99"}
	require.NoError(t, filter.Reload(context.Background(), repo))
	assert.True(t, filter.MayContain("LATER99"))
}
