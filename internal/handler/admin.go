package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/huuhung7301/hubo-event/internal/model"
	"github.com/huuhung7301/hubo-event/internal/repository"
)

// AdminHandler exposes the management surface: catalog and work
// creation plus reservation oversight.  All routes require the ADMIN
// role.
type AdminHandler struct {
	Items        *repository.ItemRepo
	Works        *repository.WorkRepo
	Reservations *repository.ReservationRepo
}

func NewAdminHandler(items *repository.ItemRepo, works *repository.WorkRepo,
	reservations *repository.ReservationRepo) *AdminHandler {
	return &AdminHandler{Items: items, Works: works, Reservations: reservations}
}

type createItemReq struct {
	Key        string  `json:"key"`
	Name       string  `json:"name"`
	BasePrice  float64 `json:"base_price"`
	Unit       string  `json:"unit"`
	ImageURL   string  `json:"image_url"`
	CategoryID uint64  `json:"category_id"`
}

// CreateItem adds a catalog item.
func (h *AdminHandler) CreateItem(c echo.Context) error {
	var req createItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Key == "" || req.Name == "" || req.CategoryID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "key, name and category_id required"})
	}
	if req.BasePrice < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "base_price must not be negative"})
	}
	if req.Unit == "" {
		req.Unit = "pcs"
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	it := &model.Item{
		Key:        req.Key,
		Name:       req.Name,
		BasePrice:  req.BasePrice,
		Unit:       req.Unit,
		ImageURL:   req.ImageURL,
		CategoryID: req.CategoryID,
	}
	if err := h.Items.Create(ctx, it); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "item key already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": it.ID, "key": it.Key})
}

type workLineReq struct {
	Key      string `json:"key"`
	Quantity int    `json:"quantity"`
}

type createWorkReq struct {
	Title         string        `json:"title"`
	ImageURL      string        `json:"image_url"`
	Notes         *string       `json:"notes"`
	Categories    []string      `json:"categories"`
	Items         []workLineReq `json:"items"`
	OptionalItems []workLineReq `json:"optional_items"`
}

// CreateWork adds a curated decoration package.  Every referenced item
// key must exist.
func (h *AdminHandler) CreateWork(c echo.Context) error {
	var req createWorkReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == "" || len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and items required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Works.CreateWork(ctx, repository.CreateWorkInput{
		Title:         req.Title,
		ImageURL:      req.ImageURL,
		Notes:         req.Notes,
		Categories:    req.Categories,
		Items:         toWorkLines(req.Items),
		OptionalItems: toWorkLines(req.OptionalItems),
	})
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// ListReservations returns every reservation for the back office.
func (h *AdminHandler) ListReservations(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Reservations.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": list})
}

type statusReq struct {
	Status string `json:"status"`
}

// UpdateReservationStatus moves a reservation between PENDING,
// CONFIRMED and CANCELLED.
func (h *AdminHandler) UpdateReservationStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	switch req.Status {
	case model.ReservationStatusPending, model.ReservationStatusConfirmed, model.ReservationStatusCancelled:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Reservations.UpdateStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": req.Status})
}

func toWorkLines(in []workLineReq) []repository.WorkLineInput {
	out := make([]repository.WorkLineInput, 0, len(in))
	for _, l := range in {
		out = append(out, repository.WorkLineInput{Key: l.Key, Quantity: l.Quantity})
	}
	return out
}
