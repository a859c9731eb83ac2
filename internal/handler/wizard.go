package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/huuhung7301/hubo-event/internal/booking"
	"github.com/huuhung7301/hubo-event/internal/middleware"
	"github.com/huuhung7301/hubo-event/internal/model"
	"github.com/huuhung7301/hubo-event/internal/pricing"
	"github.com/huuhung7301/hubo-event/internal/repository"
	"github.com/huuhung7301/hubo-event/internal/wizard"
)

// WizardHandler drives the reservation wizard over HTTP.  Each booking
// flow is one session in the session store; every mutation loads the
// state, applies one engine operation and saves it back.
type WizardHandler struct {
	Sessions     wizard.SessionStore
	Items        *repository.ItemRepo
	Orchestrator *booking.Orchestrator
	Warehouse    pricing.Location
	Postcodes    pricing.Directory
}

func NewWizardHandler(sessions wizard.SessionStore, items *repository.ItemRepo,
	orc *booking.Orchestrator, warehouse pricing.Location, postcodes pricing.Directory) *WizardHandler {
	return &WizardHandler{
		Sessions:     sessions,
		Items:        items,
		Orchestrator: orc,
		Warehouse:    warehouse,
		Postcodes:    postcodes,
	}
}

type startSessionReq struct {
	// ReservationID continues an existing reservation.  Requires an
	// authenticated owner; anyone else gets a fresh session.
	ReservationID uint64 `json:"reservation_id,omitempty"`
}

type sessionResp struct {
	SessionID string        `json:"session_id"`
	State     *wizard.State `json:"state"`
}

// StartSession creates a wizard session.  The slot layout comes from
// the live catalog, so adding a category changes the wizard without a
// deploy.
func (h *WizardHandler) StartSession(c echo.Context) error {
	var req startSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	slots, err := h.slotsFromCatalog(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "catalog unavailable"})
	}

	var st *wizard.State
	if req.ReservationID != 0 {
		st, err = h.Orchestrator.Resume(ctx, middleware.UserID(c), req.ReservationID, slots)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "resume failed"})
		}
	} else {
		st = wizard.New(slots)
	}

	id := wizard.NewSessionID()
	if err := h.Sessions.Save(ctx, id, st); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session save failed"})
	}
	return c.JSON(http.StatusCreated, sessionResp{SessionID: id, State: st})
}

// GetSession returns the current wizard state.
func (h *WizardHandler) GetSession(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	st, err := h.Sessions.Get(ctx, c.Param("id"))
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(http.StatusOK, sessionResp{SessionID: c.Param("id"), State: st})
}

type selectionReq struct {
	Slot string               `json:"slot"`
	Item *model.SelectionItem `json:"item,omitempty"`
	Text *string              `json:"text,omitempty"`
}

// Select toggles an item in a slot, or sets a text slot's value when
// the body carries "text" instead of "item".
func (h *WizardHandler) Select(c echo.Context) error {
	var req selectionReq
	if err := c.Bind(&req); err != nil || req.Slot == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	return h.mutate(c, func(st *wizard.State) error {
		switch {
		case req.Item != nil:
			return st.ToggleSelection(req.Slot, *req.Item)
		case req.Text != nil:
			return st.SetText(req.Slot, *req.Text)
		default:
			return wizard.ErrSlotMode
		}
	})
}

// SubmitPackage completes Step 1.
func (h *WizardHandler) SubmitPackage(c echo.Context) error {
	return h.mutate(c, func(st *wizard.State) error { return st.SubmitPackage() })
}

type scheduleReq struct {
	Date          string `json:"date"`
	Postcode      string `json:"postcode"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

// SubmitSchedule completes Step 2.  The delivery fee is always priced
// server-side from the submitted postcode; the client never supplies
// a fee.
func (h *WizardHandler) SubmitSchedule(c echo.Context) error {
	var req scheduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	quote, err := pricing.ComputeDeliveryFee(ctx, req.Postcode, h.Warehouse, h.Postcodes)
	if err != nil {
		return quoteError(c, err)
	}

	fee := quote.Fee
	return h.mutate(c, func(st *wizard.State) error {
		return st.SubmitSchedule(wizard.ScheduleData{
			Date:          req.Date,
			Postcode:      req.Postcode,
			DeliveryFee:   &fee,
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: req.CustomerPhone,
		})
	})
}

type addOnsReq struct {
	AddOns []model.SelectionItem `json:"add_ons"`
}

// SubmitAddOns completes Step 3.  An empty list is valid.
func (h *WizardHandler) SubmitAddOns(c echo.Context) error {
	var req addOnsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	return h.mutate(c, func(st *wizard.State) error {
		return st.SubmitAddOns(wizard.AddOnData{AddOns: req.AddOns})
	})
}

type jumpReq struct {
	Step int `json:"step"`
}

// Jump moves to another step, subject to the progression rules.
func (h *WizardHandler) Jump(c echo.Context) error {
	var req jumpReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	return h.mutate(c, func(st *wizard.State) error {
		return st.Jump(wizard.Step(req.Step))
	})
}

type quoteResp struct {
	Core        []model.LineItem `json:"core"`
	Optional    []model.LineItem `json:"optional"`
	AddOns      []model.LineItem `json:"add_ons"`
	DeliveryFee float64          `json:"delivery_fee"`
	Total       float64          `json:"total"`
}

// Quote prices the session's current selections with the same
// function submission uses, so the review screen and the stored total
// can never disagree.
func (h *WizardHandler) Quote(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	st, err := h.Sessions.Get(ctx, c.Param("id"))
	if err != nil {
		return sessionError(c, err)
	}
	core, optional, addOns := st.CoreLines(), st.OptionalLines(), st.AddOnLines()
	total, err := pricing.ComputeTotal(core, optional, addOns, st.DeliveryFee())
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid line item"})
	}
	return c.JSON(http.StatusOK, quoteResp{
		Core:        core,
		Optional:    optional,
		AddOns:      addOns,
		DeliveryFee: st.DeliveryFee(),
		Total:       total,
	})
}

// Submit persists the reservation and moves the wizard to the
// confirmation step.  Requires an authenticated user.
func (h *WizardHandler) Submit(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	id := c.Param("id")
	st, err := h.Sessions.Get(ctx, id)
	if err != nil {
		return sessionError(c, err)
	}

	res, err := h.Orchestrator.Submit(ctx, middleware.UserID(c), st)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrUnauthenticated):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "sign in to submit"})
		case errors.Is(err, booking.ErrDateUnavailable):
			return c.JSON(http.StatusConflict, echo.Map{"error": "date_unavailable"})
		case errors.Is(err, wizard.ErrWrongStep), errors.Is(err, wizard.ErrIncompleteStep):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "submission failed"})
		}
	}

	if err := st.CompleteConfirmation(); err == nil {
		// Keep the confirmed state so the confirmation screen survives
		// a reload; the store's TTL reaps it.
		_ = h.Sessions.Save(ctx, id, st)
	}
	return c.JSON(http.StatusCreated, echo.Map{"reservation": res, "state": st})
}

// Abandon discards a session.  Deleting an unknown id is a no-op.
func (h *WizardHandler) Abandon(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Sessions.Delete(ctx, c.Param("id")); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// mutate runs one engine operation against the session and saves the
// result.  Engine errors map to 400 for bad input and 409 for rule
// violations.
func (h *WizardHandler) mutate(c echo.Context, op func(*wizard.State) error) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	id := c.Param("id")
	st, err := h.Sessions.Get(ctx, id)
	if err != nil {
		return sessionError(c, err)
	}
	if err := op(st); err != nil {
		return engineError(c, err)
	}
	if err := h.Sessions.Save(ctx, id, st); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session save failed"})
	}
	return c.JSON(http.StatusOK, sessionResp{SessionID: id, State: st})
}

func sessionError(c echo.Context, err error) error {
	if errors.Is(err, wizard.ErrSessionNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found or expired"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session load failed"})
}

func engineError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, wizard.ErrUnknownSlot),
		errors.Is(err, wizard.ErrSlotMode),
		errors.Is(err, wizard.ErrIncompleteStep),
		errors.Is(err, wizard.ErrEmptyPackage):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, wizard.ErrStepReadOnly),
		errors.Is(err, wizard.ErrWrongStep),
		errors.Is(err, wizard.ErrJumpNotAllowed):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "operation failed"})
	}
}

// slotsFromCatalog builds the Step 1 slot list from the category
// table.  Unknown modes default to single-select.
func (h *WizardHandler) slotsFromCatalog(c echo.Context) ([]wizard.CategorySlot, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	cats, err := h.Items.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	slots := make([]wizard.CategorySlot, 0, len(cats))
	for _, cat := range cats {
		mode := wizard.SlotMode(cat.SlotMode)
		switch mode {
		case wizard.SlotSingle, wizard.SlotMulti, wizard.SlotText:
		default:
			mode = wizard.SlotSingle
		}
		slots = append(slots, wizard.CategorySlot{Name: cat.Name, Mode: mode})
	}
	return slots, nil
}
