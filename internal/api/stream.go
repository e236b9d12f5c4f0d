// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/featstab/internal/models"
)

const (
	streamWriteWait = 10 * time.Second
	streamPongWait  = 60 * time.Second
	streamPingEvery = (streamPongWait * 9) / 10
)

// StatusStream upgrades to a websocket and sends the run report as JSON on
// connect and whenever it changes. Once a finished report (succeeded or
// failed) has been sent the server closes the stream normally.
func (router *Router) StatusStream(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      router.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		router.logger.Debug().Err(err).Msg("Status stream upgrade failed")
		return
	}
	defer func() {
		_ = conn.Close() // Explicitly ignore error - best-effort cleanup
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go discardReads(conn, cancel)

	interval := router.cfg.StreamInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	ping := time.NewTicker(streamPingEvery)
	defer ping.Stop()

	var last []byte
	for {
		report := router.status.Status()
		data, err := json.Marshal(report)
		if err != nil {
			router.logger.Error().Err(err).Msg("Failed to encode status report")
			return
		}
		if !bytes.Equal(data, last) {
			if err := write(conn, websocket.TextMessage, data); err != nil {
				return
			}
			last = data
		}
		if report.State == models.RunSucceeded || report.State == models.RunFailed {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(report.State))
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(streamWriteWait))
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			if err := write(conn, websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ticker.C:
		}
	}
}

func write(conn *websocket.Conn, messageType int, data []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
		return err
	}
	return conn.WriteMessage(messageType, data)
}

// discardReads consumes client frames so control messages are handled, and
// cancels the stream once the client goes away.
func discardReads(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

// checkOrigin accepts clients without an Origin header, same-host pages and
// the configured CORS origins.
func (router *Router) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(router.cfg.CORSOrigins, "*") || slices.Contains(router.cfg.CORSOrigins, origin) {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}
