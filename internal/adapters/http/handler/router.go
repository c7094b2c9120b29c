package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ogurasousui/face-attendance/internal/core/attendance"
	"github.com/ogurasousui/face-attendance/internal/core/employee"
)

// maxBodyBytes は認識結果のフレーム画像を含むリクエストを許容する上限です。
const maxBodyBytes = 10 << 20

// BatchProcessor はオフライン同期バッチを処理します。
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, events []attendance.BatchEvent) (*attendance.BatchResult, error)
}

// Pinger は依存先の疎通確認です。*pgxpool.Pool が満たします。
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies はルーターが利用するユースケースです。Health は省略できます。
type Dependencies struct {
	Attendance attendance.UseCase
	Batch      BatchProcessor
	Employees  employee.UseCase
	Health     Pinger
	Logger     *slog.Logger
}

// Handler はデスクトップクライアント向け JSON API です。
type Handler struct {
	attendance attendance.UseCase
	batch      BatchProcessor
	employees  employee.UseCase
	health     Pinger
	logger     *slog.Logger
	validate   *validator.Validate
}

// New は Handler を生成します。
func New(deps Dependencies) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		attendance: deps.Attendance,
		batch:      deps.Batch,
		employees:  deps.Employees,
		health:     deps.Health,
		logger:     logger,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

// NewRouter はミドルウェアとルートを設定した chi ルーターを返します。
func NewRouter(deps Dependencies) http.Handler {
	h := New(deps)

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/healthz", h.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/process-attendance", h.ProcessAttendance)
		r.Post("/process-attendance-batch", h.ProcessAttendanceBatch)
		r.Get("/attendance", h.ListAttendance)
		r.Get("/employee", h.ListEmployees)
		r.Get("/employee/{id}", h.GetEmployee)
		r.Post("/recognition-result", h.RecognitionResult)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

// requestID は X-Request-Id を引き継ぐか UUID を採番し、chi のリクエスト ID として保持します。
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			level := slog.LevelInfo
			if ww.Status() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(r.Context(), level, "http request",
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// Healthz は疎通確認を返します。
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.health.Ping(ctx); err != nil {
			h.logger.Error("health check failed", slog.Any("error", err))
			writeError(w, http.StatusServiceUnavailable, "storage unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
