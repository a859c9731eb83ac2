package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/huuhung7301/hubo-event/internal/pricing"
)

// DeliveryHandler quotes the delivery fee for a postcode.
type DeliveryHandler struct {
	Warehouse pricing.Location
	Postcodes pricing.Directory
}

func NewDeliveryHandler(warehouse pricing.Location, postcodes pricing.Directory) *DeliveryHandler {
	return &DeliveryHandler{Warehouse: warehouse, Postcodes: postcodes}
}

// Quote handles GET /v1/delivery/quote?postcode=NNNN.
//
// Responses distinguish the UI states: an incomplete postcode is a
// 400 (the client should keep the field neutral until four digits are
// typed), an unknown postcode is a 404, and a postcode outside the
// service radius is a 422 carrying the computed distance.
func (h *DeliveryHandler) Quote(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	quote, err := pricing.ComputeDeliveryFee(ctx, c.QueryParam("postcode"), h.Warehouse, h.Postcodes)
	if err != nil {
		return quoteError(c, err)
	}
	return c.JSON(http.StatusOK, quote)
}

// quoteError maps delivery pricing failures to HTTP responses.  Shared
// with the wizard's schedule step, which prices the same way.
func quoteError(c echo.Context, err error) error {
	var oos *pricing.OutOfServiceAreaError
	switch {
	case errors.Is(err, pricing.ErrPostcodeIncomplete):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "postcode_incomplete"})
	case errors.Is(err, pricing.ErrPostcodeNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "postcode_unknown"})
	case errors.As(err, &oos):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":       "out_of_service_area",
			"distance_km": oos.DistanceKm,
		})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "quote failed"})
	}
}
