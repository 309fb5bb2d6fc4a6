package messageactions

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/parley/internal/actions"
	"github.com/nfrund/parley/internal/chat"
	"github.com/nfrund/parley/internal/handlers"
	"github.com/nfrund/parley/internal/middleware"
	"github.com/nfrund/parley/internal/modules/messageactions/components"
	"github.com/nfrund/parley/internal/modules/messageactions/events"
	"github.com/nfrund/parley/internal/modules/messageactions/topics"
	"github.com/nfrund/parley/internal/pubsub"
	"github.com/nfrund/parley/internal/view"
)

// InvokeRequest is the body of an action invocation.
type InvokeRequest struct {
	Context string `json:"context" form:"context" validate:"omitempty,oneof=message message-mobile threads"`
	Reason  string `json:"reason" form:"reason" validate:"max=1000"`
}

// InvokeResponse carries what the handler returned.
type InvokeResponse struct {
	Action    string          `json:"action"`
	MessageID string          `json:"message_id"`
	Result    *actions.Result `json:"result,omitempty"`
}

// VisibleResponse lists the actions a user may run on a message.
type VisibleResponse struct {
	MessageID string               `json:"message_id"`
	Group     actions.Group        `json:"group"`
	Context   actions.Context      `json:"context,omitempty"`
	Actions   []actions.Descriptor `json:"actions"`
}

// Handler serves the message action endpoints.
type Handler struct {
	registry  *actions.Registry
	store     chat.Store
	publisher pubsub.Publisher
	settings  chat.Settings
	baseURL   string
	now       func() time.Time
}

func wantsHTML(c echo.Context) bool {
	if f := c.QueryParam("format"); f != "" {
		return f == "html"
	}
	return c.Request().Header.Get("HX-Request") == "true"
}

// ListActions returns the registered actions, optionally narrowed by group
// and context.
func (h *Handler) ListActions(c echo.Context) error {
	var ds []actions.Descriptor
	if g := c.QueryParam("group"); g != "" {
		ds = h.registry.ByGroup(actions.Group(g))
	} else {
		ds = h.registry.All()
	}
	ds = h.registry.ByContext(actions.Context(c.QueryParam("context")), ds)

	if wantsHTML(c) {
		return c.Render(http.StatusOK, "", view.Page("Message actions", components.CatalogueTable(ds)))
	}
	return c.JSON(http.StatusOK, ds)
}

// MessageActions returns the actions visible to the current user on a message.
func (h *Handler) MessageActions(c echo.Context) error {
	user, ok := middleware.UserFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	group := actions.Group(c.QueryParam("group"))
	if group == "" {
		group = actions.GroupMenu
	}
	uiContext := actions.Context(c.QueryParam("context"))

	ec, err := BuildEvalContext(c.Request().Context(), h.store, h.settings, c.Param("id"), user)
	if err != nil {
		return handlers.Error(c, err)
	}
	visible := h.registry.Visible(ec, uiContext, group)

	if wantsHTML(c) {
		return c.Render(http.StatusOK, "", components.ActionMenu(ec.Message.ID, uiContext, visible))
	}
	return c.JSON(http.StatusOK, VisibleResponse{
		MessageID: ec.Message.ID,
		Group:     group,
		Context:   uiContext,
		Actions:   visible,
	})
}

// Invoke runs an action's handler after re-checking that the action is
// visible to the current user.
func (h *Handler) Invoke(c echo.Context) error {
	user, ok := middleware.UserFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	var req InvokeRequest
	if err := handlers.BindAndValidate(c, &req); err != nil {
		return handlers.Error(c, err)
	}

	ctx := c.Request().Context()
	ec, err := BuildEvalContext(ctx, h.store, h.settings, c.Param("id"), user)
	if err != nil {
		return handlers.Error(c, err)
	}

	actionID := c.Param("action")
	uiContext := actions.Context(req.Context)
	d, ok := h.registry.Allowed(actionID, ec, uiContext)
	if !ok {
		code := "action-not-found"
		if _, exists := h.registry.Get(actionID); exists {
			code = "action-not-available"
		}
		return c.JSON(http.StatusNotFound, handlers.ErrorResponse{Code: code, Message: actionID})
	}
	if d.Action == nil {
		return c.JSON(http.StatusNotImplemented, handlers.ErrorResponse{Code: "no-handler", Message: actionID})
	}

	result, err := d.Action(WithInvocation(ctx, Invocation{Context: uiContext, Reason: req.Reason}), ec)
	if err != nil {
		middleware.FromContext(ctx).Warn("Message action failed", "action", actionID, "message", ec.Message.ID, "error", err)
		return handlers.Error(c, err)
	}

	err = pubsub.Publish(ctx, h.publisher, topics.ActionInvoked, user.ID, events.ActionInvoked{
		ActionID:  actionID,
		MessageID: ec.Message.ID,
		UserID:    user.ID,
		Context:   req.Context,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		middleware.FromContext(ctx).Error("Failed to publish action invoked event", "action", actionID, "error", err)
	}

	if result != nil && result.Toast != "" && c.Request().Header.Get("HX-Request") == "true" {
		if trigger, err := json.Marshal(map[string]string{"toast": result.Toast}); err == nil {
			c.Response().Header().Set("HX-Trigger", string(trigger))
		}
	}
	return c.JSON(http.StatusOK, InvokeResponse{Action: actionID, MessageID: ec.Message.ID, Result: result})
}

// PermalinkResponse carries a message link.
type PermalinkResponse struct {
	Permalink string `json:"permalink"`
}

// Permalink returns the absolute link to a message. Only members of the
// message's room may ask for it, as with the permalink action.
func (h *Handler) Permalink(c echo.Context) error {
	user, ok := middleware.UserFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}

	ctx := c.Request().Context()
	ec, err := BuildEvalContext(ctx, h.store, h.settings, c.Param("id"), user)
	if err != nil {
		return handlers.Error(c, err)
	}
	if ec.Subscription == nil {
		return c.JSON(http.StatusForbidden, handlers.ErrorResponse{Code: "error-not-allowed", Message: "not a member of the room"})
	}

	link, err := chat.Permalink(ctx, h.store, h.baseURL, ec.Message.ID)
	if err != nil {
		return handlers.Error(c, err)
	}
	return c.JSON(http.StatusOK, PermalinkResponse{Permalink: link})
}
