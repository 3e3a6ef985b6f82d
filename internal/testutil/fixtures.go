package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/railorder/internal/domain"
	"github.com/google/uuid"
)

var testShortIDCounter atomic.Int64

// Order options
type OrderOption func(*domain.Order)

func WithOrderStatus(s domain.OrderStatus) OrderOption {
	return func(o *domain.Order) {
		o.Status = s
	}
}

func WithShortID(id string) OrderOption {
	return func(o *domain.Order) {
		o.ShortID = id
	}
}

func WithTimetableYear(label string) OrderOption {
	return func(o *domain.Order) {
		o.TimetableYearLabel = label
	}
}

func defaultShortID(name string) string {
	upper := strings.ToUpper(name)
	var letters []byte
	for i := 0; i < len(upper) && len(letters) < 3; i++ {
		if upper[i] >= 'A' && upper[i] <= 'Z' {
			letters = append(letters, upper[i])
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	n := testShortIDCounter.Add(1)
	return fmt.Sprintf("%s%02d", string(letters), n)
}

func NewTestOrder(name string, opts ...OrderOption) *domain.Order {
	now := time.Now().UTC()
	o := &domain.Order{
		ID:                 uuid.New().String(),
		ShortID:            defaultShortID(name),
		Name:               name,
		CustomerRef:        "CUST-TEST",
		TimetableYearLabel: "2025",
		Status:             domain.OrderActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// OrderItem options
type ItemOption func(*domain.OrderItem)

func WithValidity(segs ...domain.ValiditySegment) ItemOption {
	return func(i *domain.OrderItem) {
		i.Validity = segs
	}
}

// WithEmptyValidity marks the item as explicitly having zero operating
// days, as opposed to nil validity which means "derive from elsewhere".
func WithEmptyValidity() ItemOption {
	return func(i *domain.OrderItem) {
		i.Validity = []domain.ValiditySegment{}
	}
}

func WithScalarWindow(start, end time.Time) ItemOption {
	return func(i *domain.OrderItem) {
		i.Start = &start
		i.End = &end
	}
}

func WithParent(parentID string) ItemOption {
	return func(i *domain.OrderItem) {
		i.ParentItemID = &parentID
	}
}

func WithVersionPath(path ...int) ItemOption {
	return func(i *domain.OrderItem) {
		i.VersionPath = path
	}
}

func WithVariant(vt domain.VariantType) ItemOption {
	return func(i *domain.OrderItem) {
		i.VariantType = vt
	}
}

func WithVariantOf(baseItemID, groupID string) ItemOption {
	return func(i *domain.OrderItem) {
		i.VariantOfItemID = &baseItemID
		i.VariantGroupID = &groupID
	}
}

func WithTrainPlan(planID string) ItemOption {
	return func(i *domain.OrderItem) {
		i.TrainPlanID = &planID
	}
}

func WithTrafficPeriod(periodID string) ItemOption {
	return func(i *domain.OrderItem) {
		i.TrafficPeriodID = &periodID
	}
}

func WithTags(tags ...string) ItemOption {
	return func(i *domain.OrderItem) {
		i.Tags = tags
	}
}

func NewTestItem(orderID, title string, opts ...ItemOption) *domain.OrderItem {
	now := time.Now().UTC()
	i := &domain.OrderItem{
		ID:          uuid.New().String(),
		OrderID:     orderID,
		Title:       title,
		VariantType: domain.VariantProductive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// TrafficPeriod options
type PeriodOption func(*domain.TrafficPeriod)

func WithRule(validityStart time.Time, dates ...time.Time) PeriodOption {
	return func(p *domain.TrafficPeriod) {
		p.Rules = append(p.Rules, domain.TrafficPeriodRule{
			ValidityStart: validityStart,
			IncludedDates: dates,
		})
	}
}

func WithExcludedDates(dates ...time.Time) PeriodOption {
	return func(p *domain.TrafficPeriod) {
		p.ExcludedDates = append(p.ExcludedDates, dates...)
	}
}

func NewTestPeriod(name string, opts ...PeriodOption) *domain.TrafficPeriod {
	now := time.Now().UTC()
	p := &domain.TrafficPeriod{
		ID:                 uuid.New().String(),
		Name:               name,
		TimetableYearLabel: "2025",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DateRange expands an inclusive date range into individual days.
// Handy for building traffic period rules in tests.
func DateRange(start, end time.Time) []time.Time {
	var out []time.Time
	for d := domain.DateOnly(start); !d.After(domain.DateOnly(end)); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// TrainPlan options
type PlanOption func(*domain.TrainPlan)

func WithPhase(p domain.PlanPhase) PlanOption {
	return func(tp *domain.TrainPlan) {
		tp.Phase = p
	}
}

func WithPlanVariant(vt domain.VariantType) PlanOption {
	return func(tp *domain.TrainPlan) {
		tp.VariantType = vt
	}
}

func WithRunWindow(first, last time.Time) PlanOption {
	return func(tp *domain.TrainPlan) {
		tp.FirstRunDate = &first
		tp.LastRunDate = &last
	}
}

func NewTestPlan(name string, opts ...PlanOption) *domain.TrainPlan {
	now := time.Now().UTC()
	tp := &domain.TrainPlan{
		ID:          uuid.New().String(),
		Name:        name,
		TrainNumber: "47110",
		Phase:       domain.PhaseDraft,
		VariantType: domain.VariantProductive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(tp)
	}
	return tp
}
