package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/huuhung7301/hubo-event/internal/availability"
)

// AvailabilityHandler serves the calendar occupancy for the booking
// window.
type AvailabilityHandler struct {
	Agg *availability.Aggregator
}

func NewAvailabilityHandler(agg *availability.Aggregator) *AvailabilityHandler {
	return &AvailabilityHandler{Agg: agg}
}

// GetAvailability handles GET /v1/availability.  It returns a sparse
// map of ISO date to reservation count for the next three months plus
// the derived tier per date; dates absent from the map are open.
func (h *AvailabilityHandler) GetAvailability(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	counts, err := h.Agg.GetAvailability(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	tiers := make(map[string]string, len(counts))
	for date, n := range counts {
		tiers[date] = availability.Tier(n)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"counts": counts,
		"tiers":  tiers,
	})
}
