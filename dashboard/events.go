// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"time"

	"github.com/Cloud-scan/cloudscan-ui/model"
	"github.com/Cloud-scan/cloudscan-ui/queries"
	"github.com/Cloud-scan/cloudscan-ui/querycache"
	"github.com/Cloud-scan/cloudscan-ui/realtime"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/net/websocket"
)

const scanMessageType = "scan"

// scanMessage carries the cached scan next to the relayed events. It has the
// shape of a realtime event so the browser decodes both the same way.
type scanMessage struct {
	Type      string     `json:"type"`
	ScanID    string     `json:"scanId"`
	Data      model.Scan `json:"data"`
	Timestamp time.Time  `json:"timestamp"`
}

// eventsHandler relays the realtime events of one scan to a browser
// websocket. While the socket is open the scan is subscribed and its cache
// entry is observed, so an active scan is polled and every settled value is
// pushed down the socket. Status events make the observed scan refetch.
func (d *Dashboard) eventsHandler() websocket.Handler {
	return func(ws *websocket.Conn) {
		defer ws.Close()

		scanID := mux.Vars(ws.Request())[idVarKey]
		logger := d.logger.With(zap.String("scanID", scanID))
		if scanID == "" {
			logger.Warn("rejecting event stream without a scan ID")
			return
		}

		events := make(chan realtime.Event, d.eventBuffer)
		unsubscribe, err := d.realtime.Subscribe(scanID, func(e realtime.Event) {
			if e.Type == realtime.EventStatus {
				d.queries.Cache().Invalidate(queries.ScanKey(scanID))
			}
			select {
			case events <- e:
			default:
				logger.Warn("dropping realtime event for slow websocket", zap.String("type", string(e.Type)))
			}
		})
		if err != nil {
			logger.Error("failed to subscribe to scan events", zap.Error(err))
			return
		}
		defer unsubscribe()

		// Only the latest scan snapshot is kept.
		scans := make(chan scanMessage, 1)
		stopObserving, err := d.queries.Scan(scanID).Observe(func(scan model.Scan, r querycache.Result) {
			if r.Status != querycache.StatusSuccess || r.IsFetching {
				if r.Err != nil {
					logger.Debug("scan refresh failed", zap.Error(r.Err))
				}
				return
			}
			msg := scanMessage{Type: scanMessageType, ScanID: scanID, Data: scan, Timestamp: r.UpdatedAt}
			select {
			case <-scans:
			default:
			}
			select {
			case scans <- msg:
			default:
			}
		})
		if err != nil {
			logger.Error("failed to observe scan", zap.Error(err))
			return
		}
		defer stopObserving()

		// The browser never sends anything; reading only detects the close.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			var discard []byte
			for websocket.Message.Receive(ws, &discard) == nil {
			}
		}()

		logger.Debug("relaying scan events")
		for {
			var msg any
			select {
			case e := <-events:
				msg = e
			case s := <-scans:
				msg = s
			case <-closed:
				logger.Debug("event stream closed by client")
				return
			}
			if err := websocket.JSON.Send(ws, msg); err != nil {
				logger.Debug("event stream closed", zap.Error(err))
				return
			}
		}
	}
}
