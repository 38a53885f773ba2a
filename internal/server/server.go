package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tartampluch/go-caltemp/internal/config"
	"github.com/tartampluch/go-caltemp/internal/holiday"
)

// cacheItem stores the rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// yearResponse is the body of GET /holidays/{year}.
type yearResponse struct {
	holiday.YearInfo
	Holidays []holiday.Holiday `json:"holidays"`
}

// CalendarServer serves the iCalendar feed and the holiday table over HTTP.
type CalendarServer struct {
	// cache uses atomic.Pointer for lock-free reads.
	// The feed is read by calendar clients far more often than it is rebuilt.
	cache atomic.Pointer[cacheItem]
	Port  string
}

// NewCalendarServer creates a new instance of the server.
func NewCalendarServer(port string) *CalendarServer {
	return &CalendarServer{
		Port: port,
	}
}

// Handler returns the routes served by the CalendarServer.
// Cross-origin reads are allowed so web calendar clients can subscribe.
func (s *CalendarServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{config.CORSAnyOrigin},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		ExposedHeaders: []string{config.HeaderETag, config.HeaderLastModified},
		MaxAge:         config.CORSMaxAge,
	}))

	r.Get(config.RouteCalendar, s.handleCalendarRequest)
	r.Head(config.RouteCalendar, s.handleCalendarRequest)
	r.Get(config.RouteHolidays, s.handleHolidaysRequest)
	r.Head(config.RouteHolidays, s.handleHolidaysRequest)
	r.MethodNotAllowed(methodNotAllowed)
	return r
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *CalendarServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the served calendar.
func (s *CalendarServer) Update(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	// Keep Last-Modified when the content did not change, so clients
	// polling with If-Modified-Since still get 304.
	lastMod := time.Now().UTC().Format(http.TimeFormat)
	if prev := s.cache.Load(); prev != nil && prev.etag == etag {
		lastMod = prev.lastModified
	}

	// Any concurrent reader sees either the old or the new complete item.
	s.cache.Store(&cacheItem{
		data:         data,
		etag:         etag,
		lastModified: lastMod,
	})

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// handleCalendarRequest serves the ICS content with HTTP caching support.
// The router only routes GET and HEAD here; other methods get methodNotAllowed.
func (s *CalendarServer) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	// 1. Load Data (Atomic / Lock-Free)
	item := s.cache.Load()

	// 2. Readiness Check
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	// 3. Set Response Headers
	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	// 4. Check Conditional Headers
	if notModified(r, item) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	// 5. Serve Content
	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

// notModified applies If-None-Match, then If-Modified-Since.
func notModified(r *http.Request, item *cacheItem) bool {
	if match := r.Header.Get(config.HeaderIfNoneMatch); match != "" {
		return match == item.etag
	}

	since := r.Header.Get(config.HeaderIfModifiedSince)
	if since == "" {
		return false
	}
	clientTime, err := time.Parse(http.TimeFormat, since)
	if err != nil {
		return false
	}
	serverTime, err := time.Parse(http.TimeFormat, item.lastModified)
	if err != nil {
		return false
	}
	// If server content is not newer than client cache, return 304.
	return !serverTime.After(clientTime)
}

// handleHolidaysRequest serves the holidays and leap-year details of a year as JSON.
func (s *CalendarServer) handleHolidaysRequest(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, config.PathValueYear))
	if err != nil {
		http.Error(w, config.HTTPMsgBadYear, http.StatusBadRequest)
		return
	}

	body, err := json.Marshal(yearResponse{
		YearInfo: holiday.YearDetails(year),
		Holidays: holiday.Holidays(year),
	})
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	if r.Method == http.MethodGet {
		if _, err := w.Write(body); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(config.HeaderAllow, config.AllowedMethods)
	http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
}
