package cli

import (
	"context"
	"encoding/base64"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/prefixtower/pkg/archive"
	"github.com/matzehuels/prefixtower/pkg/errors"
	"github.com/matzehuels/prefixtower/pkg/observability"
	"github.com/matzehuels/prefixtower/pkg/pipeline"
)

// maxRequestBody bounds synthesis request bodies.
const maxRequestBody = 1 << 20

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		catPath string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the synthesis HTTP API",
		Long: `Serve the synthesis HTTP API.

Endpoints:
  POST   /synthesize     synthesize a design (JSON options body)
  GET    /rank           rank of a recipe (?width=16&recipe=sklansky)
  GET    /designs        archived designs, newest first (?limit=20)
  GET    /designs/{id}   one archived design
  DELETE /designs/{id}   remove an archived design
  GET    /healthz        liveness probe
  GET    /metrics        Prometheus metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Serve.Addr
			}
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()
			store, err := c.newArchive(ctx, "memory")
			if err != nil {
				return err
			}
			defer store.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			prom := observability.NewPrometheus(reg)
			observability.SetPipelineHooks(prom)
			observability.SetCacheHooks(prom)
			observability.SetHTTPHooks(prom)
			defer observability.Reset()

			s := &server{
				runner:      runner,
				store:       store,
				logger:      loggerFromContext(ctx),
				catalogPath: c.catalogPath(catPath),
				metrics:     prom.Handler(),
			}
			return s.listen(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&catPath, "catalog", "", "cell catalog file (TOML or YAML)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

// server holds the HTTP API dependencies.
type server struct {
	runner      *pipeline.Runner
	store       archive.Store
	logger      *log.Logger
	catalogPath string
	metrics     http.Handler
}

func (s *server) listen(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Post("/synthesize", s.synthesize)
	r.Get("/rank", s.rank)
	r.Route("/designs", func(r chi.Router) {
		r.Get("/", s.listDesigns)
		r.Get("/{id}", s.getDesign)
		r.Delete("/{id}", s.deleteDesign)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// instrument logs each request and reports it to the HTTP hooks under its
// route pattern.
func (s *server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		observability.HTTP().OnRequest(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status,
			"duration", d, "request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// synthesizeResponse is the body returned by POST /synthesize. Text
// artifacts are inlined; binary ones are base64 encoded and listed in
// Base64.
type synthesizeResponse struct {
	ID        string            `json:"id"`
	Rank      string            `json:"rank"`
	Height    int               `json:"height"`
	Depths    []int             `json:"depths"`
	Blocks    int               `json:"blocks"`
	Cells     int               `json:"cells"`
	Cached    bool              `json:"cached"`
	Artifacts map[string]string `json:"artifacts"`
	Base64    []string          `json:"base64,omitempty"`
}

func (s *server) synthesize(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	opts.CatalogPath = s.catalogPath
	opts.Logger = s.logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	rec := archive.NewRecord(opts, res)
	if err := s.store.Save(r.Context(), rec); err != nil {
		s.logger.Warn("archive failed", "error", err)
	}

	resp := synthesizeResponse{
		ID:        rec.ID,
		Rank:      rec.Rank,
		Height:    res.Height,
		Depths:    res.Depths,
		Blocks:    res.Blocks,
		Cells:     res.Stats.NodeCount,
		Cached:    res.CacheInfo.ArtifactHit,
		Artifacts: make(map[string]string, len(res.Artifacts)),
	}
	for _, format := range opts.Formats {
		data := res.Artifacts[format]
		if isBinary(format) {
			resp.Artifacts[format] = base64.StdEncoding.EncodeToString(data)
			resp.Base64 = append(resp.Base64, format)
			continue
		}
		resp.Artifacts[format] = string(data)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) rank(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, err := strconv.Atoi(q.Get("width"))
	if err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "width must be an integer"))
		return
	}
	rank, err := s.runner.RecipeRank(r.Context(), pipeline.Options{
		Width:       width,
		Recipe:      q.Get("recipe"),
		CatalogPath: s.catalogPath,
		Logger:      s.logger,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"width": width, "recipe": q.Get("recipe"), "rank": rank.String()})
}

func (s *server) listDesigns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "limit must be an integer"))
			return
		}
		limit = n
	}
	recs, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	// Listings omit artifacts; fetch a design by ID for its outputs.
	for _, rec := range recs {
		rec.Artifacts = nil
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *server) getDesign(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *server) deleteDesign(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps error codes onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := errors.GetCode(err)
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidRecipe, errors.ErrCodeInvalidLanguage,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath, errors.ErrCodeRankOutOfRange:
		status = http.StatusBadRequest
	case errors.ErrCodeStructural, errors.ErrCodePortMismatch, errors.ErrCodeCatalog, errors.ErrCodeUnsupported:
		status = http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound:
		status = http.StatusNotFound
	}
	if goerrors.Is(err, archive.ErrNotFound) {
		status, code = http.StatusNotFound, errors.ErrCodeNotFound
	}
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, map[string]string{"error": errors.UserMessage(err), "code": fmt.Sprint(code)})
}
