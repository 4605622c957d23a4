// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/trial-engine/internal/catalog"
	"github.com/pdiddy/trial-engine/internal/filter"
	"github.com/pdiddy/trial-engine/internal/layout"
	"github.com/pdiddy/trial-engine/internal/store"
	"github.com/pdiddy/trial-engine/pkg/types"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve records, classifications and layouts over HTTP",
	Long: `Serve starts a read-mostly JSON API over the study catalog:

  GET    /health
  GET    /studies            ?region=&condition=&from=&to=
  GET    /search             ?q=&limit=   (title/condition search of the snapshot)
  GET    /classifications    same filter parameters as /studies
  GET    /stats              same filter parameters, plus ?top=
  POST   /refetch            re-read the configured sources
  GET    /layouts            POST /layouts {"name": ...}
  GET    /layouts/{id}       PATCH, DELETE
  POST   /layouts/{id}/widgets
  PATCH  /layouts/{id}/widgets/{widgetID}   DELETE

Records come from the saved snapshot when one exists; POST /refetch reads
the sources and replaces both the cached list and the snapshot.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	port, _ := cmd.Flags().GetInt("port")
	if port == 0 {
		port = cfg.Server.Port
	}

	srv := &http.Server{
		Handler:           buildRouter(e.catalog, e.store, layout.NewManager(e.store), cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return eris.Wrapf(err, "server listen on port %d", port)
	}

	zap.L().Info("starting server", zap.Int("port", port))
	return serveUntilDone(ctx, srv, ln)
}

// serveUntilDone serves on ln until ctx is done, then shuts the server
// down and waits for in-flight requests to finish or shutdownTimeout to
// pass before returning.
func serveUntilDone(ctx context.Context, srv *http.Server, ln net.Listener) error {
	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server listen")
	}
	if err := <-shutdownErr; err != nil {
		return eris.Wrap(err, "server shutdown")
	}
	zap.L().Info("server stopped")
	return nil
}

// api holds the handler dependencies.
type api struct {
	catalog *catalog.Catalog
	store   *store.Store
	layouts *layout.Manager
}

func buildRouter(cat *catalog.Catalog, st *store.Store, layouts *layout.Manager, origins []string) http.Handler {
	a := &api{catalog: cat, store: st, layouts: layouts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", a.health)
	r.Get("/studies", a.studies)
	r.Get("/search", a.search)
	r.Get("/classifications", a.classifications)
	r.Get("/stats", a.stats)
	r.Post("/refetch", a.refetch)

	r.Route("/layouts", func(r chi.Router) {
		r.Get("/", a.listLayouts)
		r.Post("/", a.createLayout)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", a.getLayout)
			r.Patch("/", a.updateLayout)
			r.Delete("/", a.deleteLayout)
			r.Post("/widgets", a.addWidget)
			r.Patch("/widgets/{widgetID}", a.updateWidget)
			r.Delete("/widgets/{widgetID}", a.removeWidget)
		})
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// --- records ---

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, http.StatusOK, map[string]any{
		"status": "ok",
		"loaded": a.catalog.Cached(),
	})
}

func (a *api) filtered(w http.ResponseWriter, r *http.Request) ([]types.StudyRecord, bool) {
	state, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	records, err := a.catalog.Filter(r.Context(), state)
	if err != nil {
		zap.L().Error("load records", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err)
		return nil, false
	}
	return records, true
}

func (a *api) studies(w http.ResponseWriter, r *http.Request) {
	records, ok := a.filtered(w, r)
	if !ok {
		return
	}
	writeResponse(w, http.StatusOK, map[string]any{
		"total":   len(records),
		"studies": records,
	})
}

func (a *api) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, eris.New("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := a.store.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeResponse(w, http.StatusOK, map[string]any{
		"total":   len(records),
		"studies": records,
	})
}

func (a *api) classifications(w http.ResponseWriter, r *http.Request) {
	records, ok := a.filtered(w, r)
	if !ok {
		return
	}
	results := a.catalog.Classify(records)
	writeResponse(w, http.StatusOK, map[string]any{
		"total":   len(results),
		"results": results,
	})
}

func (a *api) stats(w http.ResponseWriter, r *http.Request) {
	records, ok := a.filtered(w, r)
	if !ok {
		return
	}
	top := defaultTop
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, eris.Errorf("invalid top %q", v))
			return
		}
		top = n
	}
	writeResponse(w, http.StatusOK, buildReport(a.catalog, records, top))
}

func (a *api) refetch(w http.ResponseWriter, r *http.Request) {
	records, err := a.catalog.Refetch(r.Context())
	if err != nil {
		zap.L().Error("refetch failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeResponse(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"records": len(records),
	})
}

func filterFromQuery(r *http.Request) (types.FilterState, error) {
	q := r.URL.Query()
	region, err := filter.ParseRegion(q.Get("region"))
	if err != nil {
		return types.FilterState{}, err
	}
	from, err := filter.ParseDate(q.Get("from"))
	if err != nil {
		return types.FilterState{}, err
	}
	to, err := filter.ParseDate(q.Get("to"))
	if err != nil {
		return types.FilterState{}, err
	}
	return types.FilterState{
		Region:          region,
		ConditionSearch: q.Get("condition"),
		DateRange:       types.DateRange{From: from, To: to},
	}, nil
}

// --- layouts ---

func (a *api) listLayouts(w http.ResponseWriter, r *http.Request) {
	layouts, err := a.layouts.List(r.Context())
	if err != nil {
		writeLayoutError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, layouts)
}

func (a *api) createLayout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
		return
	}
	l, err := a.layouts.Create(r.Context(), req.Name)
	if err != nil {
		writeLayoutError(w, err)
		return
	}
	writeResponse(w, http.StatusCreated, l)
}

func (a *api) getLayout(w http.ResponseWriter, r *http.Request) {
	l, err := a.layouts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLayoutError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, l)
}

func (a *api) updateLayout(w http.ResponseWriter, r *http.Request) {
	var u layout.Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
		return
	}
	l, err := a.layouts.Update(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		writeLayoutError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, l)
}

func (a *api) deleteLayout(w http.ResponseWriter, r *http.Request) {
	if err := a.layouts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeLayoutError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) addWidget(w http.ResponseWriter, r *http.Request) {
	var widget types.ChartWidget
	if err := json.NewDecoder(r.Body).Decode(&widget); err != nil {
		writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
		return
	}
	l, err := a.layouts.AddWidget(r.Context(), chi.URLParam(r, "id"), widget)
	if err != nil {
		writeLayoutError(w, err)
		return
	}
	writeResponse(w, http.StatusCreated, l)
}

func (a *api) updateWidget(w http.ResponseWriter, r *http.Request) {
	var u layout.WidgetUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
		return
	}
	l, err := a.layouts.UpdateWidget(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "widgetID"), u)
	if err != nil {
		writeLayoutError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, l)
}

func (a *api) removeWidget(w http.ResponseWriter, r *http.Request) {
	l, err := a.layouts.RemoveWidget(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "widgetID"))
	if err != nil {
		writeLayoutError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, l)
}

// --- responses ---

func writeLayoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, layout.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, layout.ErrDefaultLayout):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, layout.ErrInvalid):
		writeError(w, http.StatusBadRequest, err)
	default:
		zap.L().Error("layout request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeResponse(w, status, map[string]string{"error": err.Error()})
}

func writeResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response", zap.Error(err))
	}
}

func init() {
	serveCmd.Flags().Bool("live", false, "read the configured sources instead of the saved snapshot")
	serveCmd.Flags().Int("port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
