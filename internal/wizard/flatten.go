package wizard

import "github.com/huuhung7301/hubo-event/internal/model"

// CoreLines flattens the dynamic Step 1 selections into persistable
// line items, in slot-configuration order.  Each populated single or
// multi selection becomes {key, quantity 1, priceAtBooking} using the
// catalog key as the line-item key — the key is stable under item
// renames, display titles are not.  Text slots carry no items.
//
// On the existing-reservation branch the persisted core lines are
// authoritative and Step 1 collects nothing, so the stored items are
// returned verbatim.
func (st *State) CoreLines() []model.LineItem {
	if st.Existing != nil {
		return st.Existing.Items
	}
	var lines []model.LineItem
	for _, slot := range st.Slots {
		v, ok := st.Selections[slot.Name]
		if !ok {
			continue
		}
		switch v.Mode {
		case SlotSingle:
			if v.Item != nil {
				lines = append(lines, toLine(*v.Item))
			}
		case SlotMulti:
			for _, it := range v.Items {
				lines = append(lines, toLine(it))
			}
		}
	}
	return lines
}

// OptionalLines returns the optional-category line items.  The wizard
// itself only produces core lines; optional lines exist on
// reservations continued from a curated work.
func (st *State) OptionalLines() []model.LineItem {
	if st.Existing != nil {
		return st.Existing.OptionalItems
	}
	return nil
}

// AddOnLines flattens the Step 3 add-on selections.
func (st *State) AddOnLines() []model.LineItem {
	lines := make([]model.LineItem, 0, len(st.AddOns.AddOns))
	for _, it := range st.AddOns.AddOns {
		lines = append(lines, toLine(it))
	}
	return lines
}

// Notes returns the free-text message from the first populated text
// slot, or "".
func (st *State) Notes() string {
	for _, slot := range st.Slots {
		if v, ok := st.Selections[slot.Name]; ok && v.Mode == SlotText && v.Text != "" {
			return v.Text
		}
	}
	return ""
}

// DeliveryFee returns the priced delivery fee, or 0 when Step 2 has
// not produced one yet.
func (st *State) DeliveryFee() float64 {
	if st.Schedule.DeliveryFee == nil {
		return 0
	}
	return *st.Schedule.DeliveryFee
}

func toLine(it model.SelectionItem) model.LineItem {
	return model.LineItem{Key: it.Key, Quantity: 1, PriceAtBooking: it.Price}
}
