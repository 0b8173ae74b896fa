package handler

// widget.go serves the home page booking widget: Movie, Cinema, Date and
// Time picked in order, each pick narrowing the next slot's options.

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-storefront/internal/middleware"
	"github.com/iliyamo/cinema-storefront/internal/model"
	"github.com/iliyamo/cinema-storefront/internal/selector"
	"github.com/iliyamo/cinema-storefront/internal/session"
)

// WidgetHandler drives the cascading selector stored in the visitor session.
type WidgetHandler struct {
	Store    session.Store
	Selector *selector.Selector
}

func NewWidgetHandler(store session.Store, sel *selector.Selector) *WidgetHandler {
	if store == nil || sel == nil {
		panic("nil dependency passed to NewWidgetHandler")
	}
	return &WidgetHandler{Store: store, Selector: sel}
}

func widgetView(st selector.State) echo.Map {
	if st.Dates == nil {
		st.Dates = []string{}
	}
	if st.Times == nil {
		st.Times = []model.TimeSlot{}
	}
	return echo.Map{"widget": st, "complete": st.Complete()}
}

// Get handles GET /v1/widget.
func (h *WidgetHandler) Get(c echo.Context) error {
	s, err := h.Store.Get(c.Request().Context(), middleware.SessionID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, widgetView(s.Widget))
}

// Select handles PUT /v1/widget/:slot with {"value": ...}.  Movie and
// cinema take an id, date takes YYYY-MM-DD and time takes HH:MM or
// HH:MM:SS.
func (h *WidgetHandler) Select(c echo.Context) error {
	slot, ok := selector.ParseSlot(c.Param("slot"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown selection"})
	}
	var body struct {
		Value json.RawMessage `json:"value"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	action, err := parseAction(slot, body.Value)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()
	update := session.WidgetUpdater(h.Store, middleware.SessionID(c))
	st, err := h.Selector.Apply(ctx, update, action)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, widgetView(st))
}

// parseAction decodes the slot value.  Ids may arrive as numbers or
// numeric strings.
func parseAction(slot selector.Slot, raw json.RawMessage) (selector.Action, error) {
	a := selector.Action{Slot: slot}
	if len(raw) == 0 || string(raw) == "null" {
		return a, selector.ErrEmptyValue
	}
	switch slot {
	case selector.SlotMovie, selector.SlotCinema:
		var n int64
		if err := json.Unmarshal(raw, &n); err == nil {
			a.ID = n
			return a, nil
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return a, fmt.Errorf("invalid %s id", slot)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return a, fmt.Errorf("invalid %s id", slot)
		}
		a.ID = n
	default:
		if err := json.Unmarshal(raw, &a.Value); err != nil {
			return a, fmt.Errorf("invalid %s", slot)
		}
	}
	return a, nil
}

// Confirm handles POST /v1/widget/confirm and returns the showtime the
// filled widget points at.
func (h *WidgetHandler) Confirm(c echo.Context) error {
	s, err := h.Store.Get(c.Request().Context(), middleware.SessionID(c))
	if err != nil {
		return respondError(c, err)
	}
	id, err := selector.Confirm(s.Widget)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"showtime_id": id,
		"redirect":    fmt.Sprintf("/booking/%d", id),
	})
}
