package dashboard

import (
	"testing"

	"github.com/andresuchdata/bizdash-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketizer_MergeIsLeftOuterUnion(t *testing.T) {
	b := NewBucketizer()
	jan := domain.MonthKey{Year: 2024, Month: 1}
	feb := domain.MonthKey{Year: 2024, Month: 2}
	dec := domain.MonthKey{Year: 2023, Month: 12}

	b.Add(FamilyRevenue, jan, 100)
	b.Add(FamilyRevenue, jan, 50.25)
	b.Add(FamilyInvestment, feb, 400)
	b.Add(FamilyCost, dec, 30)
	b.Add(FamilyDistribution, dec, 10)
	b.Add(FamilyAdmin, dec, 5)
	b.Add(FamilyRevenue, domain.MonthKey{}, 999)

	points := b.Merge()
	require.Len(t, points, 3)

	assert.Equal(t, []string{"2023-12", "2024-01", "2024-02"}, []string{points[0].Month, points[1].Month, points[2].Month})

	assert.Equal(t, "dic 2023", points[0].Name)
	assert.Equal(t, 0.0, points[0].Revenue)
	assert.Equal(t, 30.0, points[0].Cost)
	assert.Equal(t, 15.0, points[0].DistributionAdmin)
	assert.Equal(t, 1, points[0].DistributionCount)

	assert.Equal(t, 150.25, points[1].Revenue)
	assert.Equal(t, 2, points[1].SalesCount)
	assert.Equal(t, 0.0, points[1].Investment)

	assert.Equal(t, 0.0, points[2].Revenue)
	assert.Equal(t, 400.0, points[2].Investment)
	assert.Equal(t, 1, points[2].PurchaseCount)
}

func TestBucketizer_KeysPerFamily(t *testing.T) {
	b := NewBucketizer()
	b.Add(FamilyAdmin, domain.MonthKey{Year: 2024, Month: 3}, 1)
	b.Add(FamilyAdmin, domain.MonthKey{Year: 2024, Month: 1}, 1)
	b.Add(FamilyDistribution, domain.MonthKey{Year: 2024, Month: 2}, 1)

	assert.Equal(t, []string{"2024-01", "2024-03"}, b.Keys(FamilyAdmin))
	assert.Equal(t, []string{"2024-02"}, b.Keys(FamilyDistribution))
	assert.Empty(t, b.Keys(FamilyRevenue))

	_, ok := b.Get(FamilyRevenue, "2024-01")
	assert.False(t, ok)
}

func TestBucketizer_EmptyMerge(t *testing.T) {
	points := NewBucketizer().Merge()
	assert.NotNil(t, points)
	assert.Empty(t, points)
}
