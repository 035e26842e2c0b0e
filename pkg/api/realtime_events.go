package api

import (
	"encoding/json"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/labstack/echo"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/Aslhee/MobileCafeServer/pkg/api/resource"
	"github.com/Aslhee/MobileCafeServer/pkg/events"
)

// realtimeEventsHandler relays station events from NATS to a websocket so
// that staff consoles re-render without polling.
func (h *Handler) realtimeEventsHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, _, _, err := ws.UpgradeHTTP(c.Request(), c.Response())
		if err != nil {
			log.Error("api: failed to upgrade to websocket: ", err)
			return nil
		}

		closedCh := make(chan struct{})

		sub, err := h.nc.Subscribe(events.WildcardSubject, func(msg *nats.Msg) {
			deviceID, topic := events.SourceAndTopic(msg.Subject)

			// Parse the message and send it
			var data interface{}
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				return
			}

			event := resource.NewRealtimeEvent(deviceID, topic, data)
			out, _ := json.Marshal(event)
			if err := wsutil.WriteServerMessage(conn, ws.OpText, out); err != nil {
				log.Error("api: failed to send realtime event: ", err)
				select {
				case closedCh <- struct{}{}:
				default:
				}
			}
		})
		if err != nil {
			log.Error("api: failed to subscribe for realtime events: ", err)
			conn.Close()
			return nil
		}

		go func() {
			defer conn.Close()
			defer sub.Unsubscribe()

			// Drain client frames; EOF means the console went away
			for {
				select {
				case <-closedCh:
					return
				default:
				}

				if _, err := wsutil.ReadClientMessage(conn, nil); err != nil {
					return
				}
			}
		}()

		return nil
	}
}
