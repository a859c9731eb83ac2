package wizard

import (
	"errors"
	"fmt"
	"time"

	"github.com/huuhung7301/hubo-event/internal/model"
)

var (
	// ErrUnknownSlot is returned when a selection targets a slot name
	// missing from the configuration list.
	ErrUnknownSlot = errors.New("wizard: unknown slot")

	// ErrSlotMode is returned when an operation does not match the
	// slot's mode (toggling a text slot, writing text to a select slot).
	ErrSlotMode = errors.New("wizard: operation does not match slot mode")

	// ErrStepReadOnly is returned when Step 1 is edited while the
	// wizard is continuing an existing reservation.
	ErrStepReadOnly = errors.New("wizard: package step is read-only for an existing reservation")

	// ErrWrongStep is returned when a step submission arrives while the
	// wizard is positioned on a different step.
	ErrWrongStep = errors.New("wizard: submission does not match current step")

	// ErrIncompleteStep is returned when a step submission is missing a
	// required field and the transition stays blocked.
	ErrIncompleteStep = errors.New("wizard: step incomplete")

	// ErrJumpNotAllowed is returned for forward jumps past the next
	// unconfirmed step.
	ErrJumpNotAllowed = errors.New("wizard: jump not allowed")

	// ErrEmptyPackage is returned when Step 1 is submitted with no
	// items selected at all.
	ErrEmptyPackage = errors.New("wizard: no items selected")
)

// ToggleSelection flips an item in or out of a slot.  Single slots
// hold at most one item and re-selecting the held item clears the
// slot; multi slots add or remove by catalog key.  Editing is rejected
// on the existing-reservation branch, where Step 1 is read-only.
func (st *State) ToggleSelection(slot string, item model.SelectionItem) error {
	if st.Existing != nil {
		return ErrStepReadOnly
	}
	v, ok := st.Selections[slot]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	switch v.Mode {
	case SlotSingle:
		if v.Item != nil && v.Item.Key == item.Key {
			v.Item = nil
			return nil
		}
		v.Item = &item
		return nil
	case SlotMulti:
		for i, existing := range v.Items {
			if existing.Key == item.Key {
				v.Items = append(v.Items[:i], v.Items[i+1:]...)
				return nil
			}
		}
		v.Items = append(v.Items, item)
		return nil
	default:
		return fmt.Errorf("%w: %q is a text slot", ErrSlotMode, slot)
	}
}

// SetText stores free text into a text-mode slot.
func (st *State) SetText(slot, text string) error {
	if st.Existing != nil {
		return ErrStepReadOnly
	}
	v, ok := st.Selections[slot]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	if v.Mode != SlotText {
		return fmt.Errorf("%w: %q is not a text slot", ErrSlotMode, slot)
	}
	v.Text = text
	return nil
}

// SubmitPackage completes Step 1 and advances to Schedule.  At least
// one item must be selected somewhere; an all-empty package has
// nothing to reserve.
func (st *State) SubmitPackage() error {
	if st.Existing != nil {
		return ErrStepReadOnly
	}
	if st.CurrentStep != StepPackage {
		return fmt.Errorf("%w: at step %d", ErrWrongStep, st.CurrentStep)
	}
	if !st.hasAnySelection() {
		return ErrEmptyPackage
	}
	st.complete(StepPackage)
	st.CurrentStep = StepSchedule
	return nil
}

// SubmitSchedule merges the Step 2 payload and advances to AddOns.
// The transition requires a selected date, a successfully priced
// delivery fee and the contact fields.
func (st *State) SubmitSchedule(data ScheduleData) error {
	if st.CurrentStep != StepSchedule {
		return fmt.Errorf("%w: at step %d", ErrWrongStep, st.CurrentStep)
	}
	if data.Date == "" {
		return fmt.Errorf("%w: date not selected", ErrIncompleteStep)
	}
	if _, err := time.Parse("2006-01-02", data.Date); err != nil {
		return fmt.Errorf("%w: malformed date %q", ErrIncompleteStep, data.Date)
	}
	if data.DeliveryFee == nil {
		return fmt.Errorf("%w: delivery fee not computed", ErrIncompleteStep)
	}
	if data.CustomerName == "" || data.CustomerEmail == "" || data.CustomerPhone == "" {
		return fmt.Errorf("%w: contact details required", ErrIncompleteStep)
	}
	st.Schedule = data
	st.complete(StepSchedule)
	st.CurrentStep = StepAddOns
	return nil
}

// SubmitAddOns merges the Step 3 payload and advances to Review.
// Add-ons are optional, so the transition is always enabled.
func (st *State) SubmitAddOns(data AddOnData) error {
	if st.CurrentStep != StepAddOns {
		return fmt.Errorf("%w: at step %d", ErrWrongStep, st.CurrentStep)
	}
	st.AddOns = data
	st.complete(StepAddOns)
	st.CurrentStep = StepReview
	return nil
}

// CompleteConfirmation moves the wizard to the terminal step after a
// successful submission.  On a failed submission the caller leaves the
// state untouched at Review so the user can retry.
func (st *State) CompleteConfirmation() error {
	if st.CurrentStep != StepReview {
		return fmt.Errorf("%w: at step %d", ErrWrongStep, st.CurrentStep)
	}
	st.complete(StepReview)
	st.CurrentStep = StepConfirmed
	return nil
}

// Jump moves directly to another step via the step tracker.  Backward
// jumps are always allowed; forward jumps only as far as the next
// uncompleted step.  The terminal step is reachable only through
// CompleteConfirmation.
func (st *State) Jump(target Step) error {
	if target < StepPackage || target >= StepConfirmed {
		return fmt.Errorf("%w: step %d", ErrJumpNotAllowed, target)
	}
	if st.Existing != nil && target == StepPackage {
		return fmt.Errorf("%w: package step is a read-only summary", ErrJumpNotAllowed)
	}
	if target > st.Completed+1 {
		return fmt.Errorf("%w: step %d not yet reachable", ErrJumpNotAllowed, target)
	}
	st.CurrentStep = target
	return nil
}

func (st *State) complete(s Step) {
	if s > st.Completed {
		st.Completed = s
	}
}

func (st *State) hasAnySelection() bool {
	for _, v := range st.Selections {
		if v.Item != nil || len(v.Items) > 0 {
			return true
		}
	}
	return false
}
