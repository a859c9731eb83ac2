package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/huuhung7301/hubo-event/internal/repository"
)

// CatalogHandler exposes the public browse endpoints: item categories,
// items and curated works.
type CatalogHandler struct {
	Items *repository.ItemRepo
	Works *repository.WorkRepo
}

func NewCatalogHandler(items *repository.ItemRepo, works *repository.WorkRepo) *CatalogHandler {
	return &CatalogHandler{Items: items, Works: works}
}

type categoryResp struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	SlotMode string `json:"slot_mode"`
}

type itemResp struct {
	ID        uint64  `json:"id"`
	Key       string  `json:"key"`
	Name      string  `json:"name"`
	BasePrice float64 `json:"base_price"`
	Unit      string  `json:"unit"`
	ImageURL  string  `json:"image_url,omitempty"`
	Category  uint64  `json:"category_id"`
}

// GetCategories lists item categories in slot order.
func (h *CatalogHandler) GetCategories(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	cats, err := h.Items.ListCategories(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]categoryResp, 0, len(cats))
	for _, cat := range cats {
		out = append(out, categoryResp{ID: cat.ID, Name: cat.Name, SlotMode: cat.SlotMode})
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": out})
}

// GetItems lists catalog items.  Optional filters: ?q= keyword against
// name and key, ?category_id= numeric category.
func (h *CatalogHandler) GetItems(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	var categoryID uint64
	if raw := c.QueryParam("category_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category_id"})
		}
		categoryID = n
	}
	items, err := h.Items.ListItems(ctx, c.QueryParam("q"), categoryID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]itemResp, 0, len(items))
	for _, it := range items {
		out = append(out, itemResp{
			ID: it.ID, Key: it.Key, Name: it.Name, BasePrice: it.BasePrice,
			Unit: it.Unit, ImageURL: it.ImageURL, Category: it.CategoryID,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetItem returns a single catalog item by its key.
func (h *CatalogHandler) GetItem(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	it, err := h.Items.GetByKey(ctx, c.Param("key"))
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, itemResp{
		ID: it.ID, Key: it.Key, Name: it.Name, BasePrice: it.BasePrice,
		Unit: it.Unit, ImageURL: it.ImageURL, Category: it.CategoryID,
	})
}

// GetWorks lists the curated decoration packages with their item
// lines at live catalog prices.
func (h *CatalogHandler) GetWorks(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	works, err := h.Works.ListWorks(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"works": works})
}

// SelectionItems returns the items of one category in wizard shape.
func (h *CatalogHandler) SelectionItems(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	category := c.Param("name")
	items, err := h.Items.SelectionItemsByCategory(ctx, category)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"category": category, "items": items})
}

// reqCtx derives a bounded context for one DB-backed request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}
