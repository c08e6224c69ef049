package api

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// DraftFeed upgrades the connection and streams draft lifecycle events
// to the review UI.
// GET /ws
func (h *Handler) DraftFeed(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return err
	}

	conn := h.feed.NewConnection(ws)
	h.feed.Register(conn)

	go h.feed.WritePump(conn)
	go h.feed.ReadPump(conn)

	return nil
}
