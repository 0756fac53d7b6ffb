package projection

import (
	"time"

	"github.com/magnatepoint/goal-projection/pkg/datetime"
	"github.com/magnatepoint/goal-projection/pkg/mathutil"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// rate is a monthly contribution held as the exact fraction num/den. A
// contribution spread over a horizon keeps the horizon as den, so month counts
// and timeline amounts are derived without the rounding of num/den.
type rate struct {
	num decimal.Decimal
	den decimal.Decimal
}

func flatRate(amount decimal.Decimal) rate {
	return rate{num: amount, den: one}
}

func spreadRate(remaining decimal.Decimal, months int) rate {
	return rate{num: remaining, den: decimal.NewFromInt(int64(months))}
}

// contributionRate recovers the exact rate behind a contribution. A value equal
// to the contribution derived from r's horizon is taken as remaining/months.
func contributionRate(r resolved, contribution *decimal.Decimal) *rate {
	if contribution == nil {
		return nil
	}
	if r.fixed == nil && r.remaining.IsPositive() {
		if months, ok := r.horizon(); ok {
			spread := spreadRate(r.remaining, months)
			if contribution.Equal(spread.amount()) {
				return &spread
			}
		}
	}
	flat := flatRate(*contribution)
	return &flat
}

func (c rate) amount() decimal.Decimal {
	if c.den.Equal(one) {
		return c.num
	}
	return c.num.Div(c.den)
}

func (c rate) positive() bool {
	return c.num.IsPositive()
}

// monthsToCover returns the whole months needed to save amount.
func (c rate) monthsToCover(amount decimal.Decimal) decimal.Decimal {
	return mathutil.CeilDiv(amount.Mul(c.den), c.num)
}

// savedAfter returns the total contributed over n months.
func (c rate) savedAfter(n int) decimal.Decimal {
	saved := c.num.Mul(decimal.NewFromInt(int64(n)))
	if c.den.Equal(one) {
		return saved
	}
	return saved.Div(c.den)
}

// projectDate offsets asOf by months 30-day months. It returns nil when the
// result would fall after datetime.MaxDate.
func projectDate(asOf time.Time, months decimal.Decimal) *time.Time {
	if months.GreaterThan(decimal.NewFromInt(datetime.MaxApproxMonths(asOf))) {
		return nil
	}
	return datetime.Ptr(datetime.AddApproxMonths(asOf, int(months.IntPart())))
}
