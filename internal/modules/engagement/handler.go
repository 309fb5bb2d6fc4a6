package engagement

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/parley/internal/chat"
	"github.com/nfrund/parley/internal/handlers"
	"github.com/nfrund/parley/internal/middleware"
	"github.com/nfrund/parley/internal/modules/engagement/components"
	"github.com/nfrund/parley/internal/view"
)

// HourlyResponse carries both the raw hours and the two-hour bins.
type HourlyResponse struct {
	Day   time.Time   `json:"day"`
	Hours []HourUsers `json:"hours"`
	Bins  []Bin       `json:"bins"`
}

// Handler serves the engagement dashboard data.
type Handler struct {
	store chat.Store
	now   func() time.Time
}

// HourlyData answers GET /engagement/users/chat-busier/hourly-data.
func (h *Handler) HourlyData(c echo.Context) error {
	u, ok := middleware.UserFrom(c)
	if !ok || !chat.HasPermission(u, chat.PermViewEngagementStats) {
		return c.JSON(http.StatusForbidden, handlers.ErrorResponse{Code: "error-not-allowed", Message: "not allowed"})
	}

	displacement := 0
	if raw := c.QueryParam("displacement"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, handlers.ErrorResponse{
				Code:    "invalid-parameter",
				Message: "displacement must be a non-negative integer",
			})
		}
		displacement = n
	}
	utc, _ := strconv.ParseBool(c.QueryParam("utc"))

	activity, err := HourlyActivity(c.Request().Context(), h.store, h.now(), displacement, utc)
	if err != nil {
		return handlers.Error(c, err)
	}
	resp := HourlyResponse{Day: activity.Day, Hours: activity.Hours, Bins: Bucket(activity.Hours, 2)}

	if c.QueryParam("format") == "html" {
		page := view.Page("Busiest hours", components.HourlyChart(resp.Day, displacement, utc, toChartBins(resp.Bins)))
		return c.Render(http.StatusOK, "", page)
	}
	return c.JSON(http.StatusOK, resp)
}

func toChartBins(bins []Bin) []components.ChartBin {
	out := make([]components.ChartBin, len(bins))
	for i, b := range bins {
		out[i] = components.ChartBin{Label: b.Hour, Value: b.Users}
	}
	return out
}
