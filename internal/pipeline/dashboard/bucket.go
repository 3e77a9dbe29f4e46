package dashboard

import (
	"sort"
	"time"

	"github.com/andresuchdata/bizdash-go/internal/domain"
	"github.com/samber/lo"
)

// Family names one independent monthly series.
type Family string

const (
	FamilyRevenue      Family = "revenue"
	FamilyCost         Family = "cost"
	FamilyInvestment   Family = "investment"
	FamilyDistribution Family = "distribution"
	FamilyAdmin        Family = "admin"
)

var allFamilies = []Family{FamilyRevenue, FamilyCost, FamilyInvestment, FamilyDistribution, FamilyAdmin}

// MonthlyBucket accumulates one family's metric for one month.
type MonthlyBucket struct {
	Key    domain.MonthKey
	Label  string
	Anchor time.Time
	Total  float64
	Count  int
}

// Bucketizer keeps one month-keyed map per family. Families never see each
// other until Merge.
type Bucketizer struct {
	buckets map[Family]map[string]*MonthlyBucket
}

func NewBucketizer() *Bucketizer {
	b := &Bucketizer{buckets: make(map[Family]map[string]*MonthlyBucket, len(allFamilies))}
	for _, f := range allFamilies {
		b.buckets[f] = make(map[string]*MonthlyBucket)
	}
	return b
}

// Add records amount under family and month. Records without a month are
// ignored here; family totals are computed elsewhere.
func (b *Bucketizer) Add(family Family, key domain.MonthKey, amount float64) {
	if key.IsZero() {
		return
	}
	series, ok := b.buckets[family]
	if !ok {
		series = make(map[string]*MonthlyBucket)
		b.buckets[family] = series
	}

	k := key.String()
	bucket, ok := series[k]
	if !ok {
		bucket = &MonthlyBucket{Key: key, Label: key.Label(), Anchor: key.Anchor()}
		series[k] = bucket
	}
	bucket.Total += amount
	bucket.Count++
}

func (b *Bucketizer) Get(family Family, key string) (MonthlyBucket, bool) {
	bucket, ok := b.buckets[family][key]
	if !ok {
		return MonthlyBucket{}, false
	}
	return *bucket, true
}

// Keys lists the months seen by one family in ascending order.
func (b *Bucketizer) Keys(family Family) []string {
	return sortedKeys(b.buckets[family])
}

// Merge unions the month keys of every family and looks each family up per
// key, so a month present in any family appears with zeros elsewhere.
func (b *Bucketizer) Merge() []domain.MonthlyPoint {
	anchors := make(map[string]domain.MonthKey)
	for _, f := range allFamilies {
		for k, bucket := range b.buckets[f] {
			anchors[k] = bucket.Key
		}
	}

	keys := lo.Keys(anchors)
	sort.Slice(keys, func(i, j int) bool {
		return anchors[keys[i]].Before(anchors[keys[j]])
	})

	points := make([]domain.MonthlyPoint, 0, len(keys))
	for _, k := range keys {
		revenue, _ := b.Get(FamilyRevenue, k)
		cost, _ := b.Get(FamilyCost, k)
		investment, _ := b.Get(FamilyInvestment, k)
		distribution, _ := b.Get(FamilyDistribution, k)
		admin, _ := b.Get(FamilyAdmin, k)

		points = append(points, domain.MonthlyPoint{
			Month:             k,
			Name:              anchors[k].Label(),
			Revenue:           round2(revenue.Total),
			Cost:              round2(cost.Total),
			Investment:        round2(investment.Total),
			Distribution:      round2(distribution.Total),
			Admin:             round2(admin.Total),
			DistributionAdmin: round2(distribution.Total + admin.Total),
			SalesCount:        revenue.Count,
			ExpenseCount:      cost.Count,
			PurchaseCount:     investment.Count,
			DistributionCount: distribution.Count,
			AdminCount:        admin.Count,
		})
	}
	return points
}
