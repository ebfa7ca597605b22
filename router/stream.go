package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
	CheckOrigin:      func(r *http.Request) bool { return true },
	HandshakeTimeout: time.Duration(time.Second * 5),
}

const screenshotStreamInterval = 500 * time.Millisecond

// StreamScreenshots pushes successive base64 screenshot frames over a
// websocket until the client disconnects or a capture fails.
func (h *Handler) StreamScreenshots(c *gin.Context) {
	udid := c.Param("udid")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.LogError("screenshot_stream", fmt.Sprintf("WebSocket upgrade error - %v", err))
		return
	}
	defer conn.Close()

	for {
		screenshot, err := h.Client.GetScreenshot(udid)
		if err != nil {
			h.Logger.LogError("screenshot_stream", fmt.Sprintf("Could not capture screenshot for device `%s` - %v", udid, err))
			return
		}

		if err := conn.WriteMessage(websocket.TextMessage, []byte(screenshot)); err != nil {
			return
		}

		time.Sleep(screenshotStreamInterval)
	}
}
