package pricing

import (
	"errors"
	"fmt"

	"github.com/huuhung7301/hubo-event/internal/model"
)

// ErrInvalidLineItem flags a line item with a non-positive quantity or
// negative price reaching the aggregator.  Upstream validation should
// make this unreachable; when it does occur the submission must be
// aborted rather than persisting a corrupted total.
var ErrInvalidLineItem = errors.New("pricing: invalid line item")

// ComputeTotal combines core items, optional items, add-ons and the
// delivery fee into the reservation total.  The same function backs
// both the running quote shown in Step 4 and the totalPrice persisted
// at submission time, so rounding and inclusion rules cannot drift
// between the two.
func ComputeTotal(core, optional, addOns []model.LineItem, deliveryFee float64) (float64, error) {
	if deliveryFee < 0 {
		return 0, fmt.Errorf("%w: negative delivery fee %v", ErrInvalidLineItem, deliveryFee)
	}
	total := deliveryFee
	for _, group := range [][]model.LineItem{core, optional, addOns} {
		sum, err := sumLines(group)
		if err != nil {
			return 0, err
		}
		total += sum
	}
	return total, nil
}

func sumLines(lines []model.LineItem) (float64, error) {
	var sum float64
	for _, l := range lines {
		if l.Quantity < 1 {
			return 0, fmt.Errorf("%w: %q has quantity %d", ErrInvalidLineItem, l.Key, l.Quantity)
		}
		if l.PriceAtBooking < 0 {
			return 0, fmt.Errorf("%w: %q has negative price %v", ErrInvalidLineItem, l.Key, l.PriceAtBooking)
		}
		sum += float64(l.Quantity) * l.PriceAtBooking
	}
	return sum, nil
}
