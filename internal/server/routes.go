package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/parley/internal/handlers"
	"github.com/nfrund/parley/internal/middleware"
	"github.com/nfrund/parley/internal/modules/messageactions/components"
	"github.com/nfrund/parley/internal/modules/messageactions/topics"
	"github.com/nfrund/parley/internal/pubsub"
	"github.com/nfrund/parley/internal/rendering"
	"github.com/nfrund/parley/internal/websocket"
)

// RegisterRoutes sets up the routes that do not belong to a module.
func (s *Server) RegisterRoutes() {
	currentUser := middleware.CurrentUser(s.Store)

	s.E.GET("/health", handlers.Health(s.Actions.Len))
	s.E.GET("/ws/actions", s.ws.Handler(websocket.ConnectionTypeData), currentUser)
	s.E.GET("/ws/html", s.ws.Handler(websocket.ConnectionTypeHTML), currentUser)

	if s.DB == nil {
		s.E.GET("/dev/login/:id", s.devLogin)
	}
}

// devLogin signs a seeded user in by id. It only exists on the in-memory store.
func (s *Server) devLogin(c echo.Context) error {
	user, err := s.Store.User(c.Request().Context(), c.Param("id"))
	if err != nil {
		return handlers.Error(c, err)
	}
	sess, err := session.Get(middleware.SessionName, c)
	if err != nil {
		return err
	}
	sess.Values[middleware.SessionUserIDKey] = user.ID
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (s *Server) websocketRoutes() []websocket.Route {
	renderer := rendering.New()
	return []websocket.Route{
		{
			Topic: topics.ActionsChanged.Name(),
			Type:  websocket.ConnectionTypeData,
			Build: func(ctx context.Context, msg pubsub.Message) ([]byte, error) {
				ev, err := topics.ActionsChanged.Decode(msg)
				if err != nil {
					return nil, err
				}
				return json.Marshal(websocket.NewDataMessage(msg.Topic, ev))
			},
		},
		{
			// htmx swaps the catalogue table in place by its id.
			Topic: topics.ActionsChanged.Name(),
			Type:  websocket.ConnectionTypeHTML,
			Build: func(ctx context.Context, msg pubsub.Message) ([]byte, error) {
				return renderer.RenderComponent(ctx, components.CatalogueTable(s.Actions.All()))
			},
		},
		{
			Topic:  topics.ActionInvoked.Name(),
			Type:   websocket.ConnectionTypeData,
			Direct: true,
			Build: func(ctx context.Context, msg pubsub.Message) ([]byte, error) {
				ev, err := topics.ActionInvoked.Decode(msg)
				if err != nil {
					return nil, err
				}
				return json.Marshal(websocket.NewCommand(websocket.CmdShowNotification, ev))
			},
		},
		{
			Topic: topics.MessageDeleted.Name(),
			Type:  websocket.ConnectionTypeData,
			Build: func(ctx context.Context, msg pubsub.Message) ([]byte, error) {
				ev, err := topics.MessageDeleted.Decode(msg)
				if err != nil {
					return nil, err
				}
				return json.Marshal(websocket.NewDataMessage(msg.Topic, ev))
			},
		},
	}
}
