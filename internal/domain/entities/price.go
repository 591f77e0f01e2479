package entities

import (
	"sort"

	"github.com/shopspring/decimal"
)

// PriceScale is the number of decimal places a price may carry. Storage keeps
// prices at this scale, so anything finer would be silently rounded.
const PriceScale = 2

func fitsPriceScale(p decimal.Decimal) bool {
	return p.Equal(p.Truncate(PriceScale))
}

// SortByPrice orders vehicles by price, lowest first. Equal prices keep the
// oldest vehicle first.
func SortByPrice(vs []Vehicle) {
	sort.SliceStable(vs, func(i, j int) bool {
		if c := vs[i].Price.Cmp(vs[j].Price); c != 0 {
			return c < 0
		}
		return vs[i].CreatedAt.Before(vs[j].CreatedAt)
	})
}
