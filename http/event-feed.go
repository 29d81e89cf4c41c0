package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/contest-ops/ccsfeed/httpjson"
	"github.com/contest-ops/ccsfeed/logger"
	"github.com/contest-ops/ccsfeed/srvcerror"
)

const keepaliveInterval = 120 * time.Second

// eventFeed streams the event log as NDJSON: all durable events past the
// resume token first, then a live tail. The stream has no end marker; it
// terminates only when the client disconnects. A newline is sent after 120
// seconds without events, per the CCS keepalive rule.
func (httpserver *HttpServer) eventFeed(w http.ResponseWriter, r *http.Request) {
	cursor := int64(0)
	if raw := r.URL.Query().Get("since_token"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpjson.HandleError(httpserver.logger, w, srvcerror.ErrInvalidToken(raw))
			return
		}
		if err := httpserver.feedSrvc.ValidateSinceToken(parsed); err != nil {
			httpjson.HandleError(httpserver.logger, w, srvcerror.ErrUnknownToken(raw).SetDebug(err))
			return
		}
		cursor = parsed
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := logger.WithLogger(r.Context(), httpserver.logger)
	ctx = logger.WithSessionID(ctx, uuid.New().String())

	log := logger.FromContext(ctx).With("remote", r.RemoteAddr, "since_token", cursor)
	log.Info("event feed client connected")
	defer log.Info("event feed client disconnected")

	notify := httpserver.feedSrvc.Subscribe(ctx)

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	lastSend := time.Now()

	for {
		events, err := httpserver.feedSrvc.EventsAfter(ctx, cursor)
		if err != nil {
			log.Error("reading event log failed", "error", err)
			return
		}
		for _, ev := range events {
			if err := enc.Encode(ev); err != nil {
				return
			}
			cursor = ev.Token
		}
		if len(events) > 0 {
			flusher.Flush()
			lastSend = time.Now()
		}

		keepalive := time.NewTimer(time.Until(lastSend.Add(keepaliveInterval)))
		select {
		case <-ctx.Done():
			keepalive.Stop()
			return
		case <-notify:
			keepalive.Stop()
		case <-keepalive.C:
			if _, err := w.Write([]byte("\n")); err != nil {
				return
			}
			flusher.Flush()
			lastSend = time.Now()
		}
	}
}
