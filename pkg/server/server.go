package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/contabilu/pkg/config"
	"github.com/yurifrl/contabilu/pkg/csv"
	"github.com/yurifrl/contabilu/pkg/models"
	"github.com/yurifrl/contabilu/pkg/report"
	"github.com/yurifrl/contabilu/pkg/service"
	"github.com/yurifrl/contabilu/pkg/storage"
)

const dateLayout = "2006-01-02"

// Backend is the part of the service the handlers call.
type Backend interface {
	ImportBytes(ctx context.Context, data []byte, filename string) (*service.Outcome, error)
	Status(ctx context.Context) (*storage.Status, error)
	Transactions(ctx context.Context, f storage.Filter) ([]*models.Transaction, error)
	Report(ctx context.Context, from, to time.Time) (*report.Report, error)
	Ping(ctx context.Context) error
}

// Server exposes imports, status and reports over HTTP.
type Server struct {
	config   config.ServerConfig
	logger   *log.Logger
	backend  Backend
	mux      *http.ServeMux
	template *template.Template
}

func New(cfg config.ServerConfig, logger *log.Logger, backend Backend) *Server {
	s := &Server{
		config:   cfg,
		logger:   logger,
		backend:  backend,
		mux:      http.NewServeMux(),
		template: template.Must(template.New("index").Parse(indexHTML)),
	}
	s.setupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/", s.withLogging(s.handleHome))
	s.mux.HandleFunc("/health", s.withLogging(s.handleHealth))

	s.mux.HandleFunc("/api/import", s.withLogging(s.handleImport))
	s.mux.HandleFunc("/api/status", s.withLogging(s.handleStatus))
	s.mux.HandleFunc("/api/report", s.withLogging(s.handleReport))
	s.mux.HandleFunc("/api/transactions.csv", s.withLogging(s.handleExport))
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.respondError(w, r, http.StatusNotFound, "not found", nil)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.template.Execute(w, nil); err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to render page", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.Ping(r.Context()); err != nil {
		s.respondError(w, r, http.StatusServiceUnavailable, "database unavailable", err)
		return
	}
	if err := s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	limit := int64(s.config.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	file, header, err := r.FormFile("workbook")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, http.StatusRequestEntityTooLarge, "file too large", err)
			return
		}
		s.respondError(w, r, http.StatusBadRequest, "workbook file required", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to read file", err)
		return
	}

	// an import that started runs to completion even if the client goes away
	out, err := s.backend.ImportBytes(context.WithoutCancel(r.Context()), data, header.Filename)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to read workbook", err)
		return
	}

	status := http.StatusOK
	if !out.Success() {
		status = http.StatusUnprocessableEntity
	}
	s.logger.Info("import request finished", "file", header.Filename, "run", out.RunID, "success", out.Success())

	if err := s.writeJSON(w, status, map[string]any{
		"status":  statusWord(out.Success()),
		"outcome": out,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	st, err := s.backend.Status(r.Context())
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to read status", err)
		return
	}
	if err := s.writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": st}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	from, to, err := period(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	rep, err := s.backend.Report(r.Context(), from, to)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to build report", err)
		return
	}
	if err := s.writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": rep}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// handleExport streams the persisted transactions in the import layout.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	q := r.URL.Query()

	from, to, err := period(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	var criteria csv.Criteria
	if criteria.MinAmount, err = floatParam(q.Get("min")); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid min", err)
		return
	}
	if criteria.MaxAmount, err = floatParam(q.Get("max")); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid max", err)
		return
	}
	criteria.Payee = q.Get("payee")

	txs, err := s.backend.Transactions(r.Context(), storage.Filter{
		From:       from,
		To:         to,
		Category:   q.Get("category"),
		CostType:   models.CostType(q.Get("cost_type")),
		NatureCode: q.Get("nature"),
	})
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to list transactions", err)
		return
	}

	body, err := csv.Transactions(txs, criteria.Func())
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to write csv", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	if _, err := w.Write(body); err != nil {
		s.logger.Warn("failed to write csv response", "err", err)
	}
}

// --- helpers ---

func statusWord(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}

// period reads the optional from/to query parameters (YYYY-MM-DD).
func period(r *http.Request) (from, to time.Time, err error) {
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		if from, err = time.Parse(dateLayout, v); err != nil {
			return from, to, fmt.Errorf("invalid from date %q", v)
		}
	}
	if v := q.Get("to"); v != "" {
		if to, err = time.Parse(dateLayout, v); err != nil {
			return from, to, fmt.Errorf("invalid to date %q", v)
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return from, to, errors.New("to date is before from date")
	}
	return from, to, nil
}

func floatParam(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}

// writeJSON encodes v as JSON with the given status and writes headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// respondError logs the error and returns a minimal JSON error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		s.logger.Warn("request error", "status", status, "msg", message, "err", err, "method", r.Method, "path", r.URL.Path)
	} else {
		s.logger.Warn("request error", "status", status, "msg", message, "method", r.Method, "path", r.URL.Path)
	}
	_ = s.writeJSON(w, status, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// withLogging wraps a handler to log request start/end and recover panics.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
				s.respondError(w, r, http.StatusInternalServerError, "internal server error", fmt.Errorf("panic: %v", rec))
			}
			s.logger.Debug("http request done", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
		}()
		next(w, r)
	}
}

const indexHTML = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>contabilu</title>
</head>
<body>
<h1>Importar planilha</h1>
<form action="/api/import" method="post" enctype="multipart/form-data">
  <input type="file" name="workbook" accept=".xlsx,.xlsm,.xls,.csv,.txt" required>
  <button type="submit">Importar</button>
</form>
<ul>
  <li><a href="/api/status">Status</a></li>
  <li><a href="/api/report">Indicadores</a></li>
  <li><a href="/api/transactions.csv">Exportar CSV</a></li>
</ul>
</body>
</html>
`
