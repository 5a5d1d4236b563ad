package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/dutyroster/internal/attachment"
	"github.com/dukerupert/dutyroster/internal/completion"
	"github.com/dukerupert/dutyroster/internal/config"
	"github.com/dukerupert/dutyroster/internal/email"
	"github.com/dukerupert/dutyroster/internal/handler"
	"github.com/dukerupert/dutyroster/internal/middleware"
	"github.com/dukerupert/dutyroster/internal/model"
	"github.com/dukerupert/dutyroster/internal/notify"
	"github.com/dukerupert/dutyroster/internal/rotation"
	"github.com/dukerupert/dutyroster/internal/staging"
	"github.com/dukerupert/dutyroster/internal/store"
	ws "github.com/dukerupert/dutyroster/internal/websocket"
)

type Server struct {
	db           *sql.DB
	cfg          *config.Config
	hub          *ws.Hub
	dispatcher   *notify.Dispatcher
	stager       *staging.Stager
	studentStore *store.StudentStore
	choreStore   *store.ChoreStore
	dayH         *handler.DayHandler
	completionH  *handler.CompletionHandler
	stagingH     *handler.StagingHandler
	attachmentH  *handler.AttachmentHandler
	rosterH      *handler.RosterHandler
	rateLimiter  *middleware.RateLimiter
	today        handler.Clock
	logger       *slog.Logger
}

// New wires stores, services, notification sinks and handlers from cfg.
// cfg must have passed Validate.
func New(db *sql.DB, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	rule, err := cfg.ScheduleRule()
	if err != nil {
		return nil, err
	}
	tieBreak, err := rotation.ParseTieBreak(cfg.Rotation.TieBreak)
	if err != nil {
		return nil, err
	}
	policy, err := completion.ParseResubmitPolicy(cfg.Completion.ResubmitPolicy)
	if err != nil {
		return nil, err
	}

	hub := ws.NewHub(logger.With("component", "websocket"))
	dispatcher, err := newDispatcher(cfg, hub, logger.With("component", "notify"))
	if err != nil {
		return nil, err
	}

	studentStore := store.NewStudentStore(db)
	assignmentStore := store.NewAssignmentStore(db)
	completionStore := store.NewCompletionStore(db)
	choreStore := store.NewChoreStore(db)

	selector := rotation.NewSelector(studentStore, assignmentStore, logger.With("component", "rotation"),
		rotation.WithWindow(cfg.Rotation.WindowDays),
		rotation.WithTieBreak(tieBreak),
	)
	stager := staging.New(staging.Deps{
		Rule:        rule,
		Selector:    selector,
		Assignments: assignmentStore,
		Completions: completionStore,
		Chores:      choreStore,
		Students:    studentStore,
		Notifier:    dispatcher,
		Logger:      logger.With("component", "staging"),
	})
	tracker := completion.New(completion.Deps{
		Completions: completionStore,
		Assignments: assignmentStore,
		Students:    studentStore,
		Chores:      choreStore,
		Notifier:    dispatcher,
		Policy:      policy,
		Logger:      logger.With("component", "completion"),
	})

	files, err := newAttachmentStore(cfg.Attachments, logger.With("component", "attachment"))
	if err != nil {
		return nil, err
	}
	attachments := attachment.NewService(
		attachment.NewProcessor(cfg.Attachments.Quality, cfg.Attachments.MaxDimension),
		files, completionStore, tracker, logger.With("component", "attachment"),
	)

	views := handler.DayStores{
		Chores:      choreStore,
		Assignments: assignmentStore,
		Students:    studentStore,
	}
	today := handler.LocalClock(loc)
	return &Server{
		db:           db,
		cfg:          cfg,
		hub:          hub,
		dispatcher:   dispatcher,
		stager:       stager,
		studentStore: studentStore,
		choreStore:   choreStore,
		dayH:         handler.NewDayHandler(rule, stager, tracker, views, today, logger.With("component", "day")),
		completionH:  handler.NewCompletionHandler(tracker, completionStore, studentStore, choreStore, today, logger.With("component", "completion_handler")),
		stagingH:     handler.NewStagingHandler(stager, today, logger.With("component", "staging_handler")),
		attachmentH:  handler.NewAttachmentHandler(attachments, cfg.Attachments.MaxUploadBytes, logger.With("component", "attachment_handler")),
		rosterH:      handler.NewRosterHandler(studentStore, choreStore, logger.With("component", "roster")),
		rateLimiter:  middleware.NewRateLimiter(),
		today:        today,
		logger:       logger,
	}, nil
}

func newDispatcher(cfg *config.Config, hub *ws.Hub, logger *slog.Logger) (*notify.Dispatcher, error) {
	renderer := notify.Renderer{BaseURL: cfg.Server.BaseURL}
	sinks := []notify.Sink{notify.NewHubSink(hub)}

	for i, wh := range cfg.Notify.Webhooks {
		kinds, err := wh.EventKinds()
		if err != nil {
			return nil, fmt.Errorf("notify.webhooks[%d]: %w", i, err)
		}
		opts := []notify.WebhookOption{notify.WithKinds(kinds...)}
		if wh.Username != "" {
			opts = append(opts, notify.WithUsername(wh.Username))
		}
		sinks = append(sinks, notify.NewWebhookSink(wh.URL, renderer, opts...))
	}

	if e := cfg.Notify.Email; e.Enabled() {
		sinks = append(sinks, notify.NewEmailSink(email.NewClient(e.PostmarkToken, e.From), e.To, renderer))
	}

	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	logger.Info("notification sinks", "sinks", names)
	return notify.NewDispatcher(logger, cfg.Notify.Timeout, sinks...), nil
}

func newAttachmentStore(cfg config.AttachmentConfig, logger *slog.Logger) (attachment.Store, error) {
	s3cfg := attachment.S3Config(cfg.S3)
	if s3cfg.Enabled() {
		logger.Info("attachments stored in bucket", "bucket", s3cfg.Bucket, "endpoint", s3cfg.Endpoint)
		return attachment.NewS3Store(s3cfg), nil
	}
	logger.Info("attachments stored on disk", "dir", cfg.Dir)
	return attachment.NewDirStore(cfg.Dir)
}

// Seed upserts the configured roster and chore catalog. Rows missing from
// the configuration are kept so history stays resolvable.
func (s *Server) Seed(ctx context.Context) error {
	students, err := s.cfg.RosterSeed()
	if err != nil {
		return err
	}
	for _, st := range students {
		if err := s.studentStore.Upsert(ctx, st); err != nil {
			return fmt.Errorf("seed student %d: %w", st.ID, err)
		}
	}
	chores, err := s.cfg.ChoreDefinitions()
	if err != nil {
		return err
	}
	for _, c := range chores {
		if err := s.choreStore.Upsert(ctx, c); err != nil {
			return fmt.Errorf("seed chore %d: %w", c.ID, err)
		}
	}
	s.logger.Info("seeded roster and chores", "students", len(students), "chores", len(chores))
	return nil
}

// Stager returns the stager for the cron scheduler.
func (s *Server) Stager() *staging.Stager {
	return s.stager
}

// Dispatcher returns the notification dispatcher so shutdown can wait for
// pending deliveries.
func (s *Server) Dispatcher() *notify.Dispatcher {
	return s.dispatcher
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.Handler(s.hub, s.logger.With("component", "websocket"), s.cfg.Server.AllowedOrigins))

	mux.HandleFunc("GET /api/today", s.dayH.Today)
	mux.HandleFunc("GET /api/week", s.dayH.Week)
	mux.HandleFunc("GET /api/students", s.rosterH.Students)
	mux.HandleFunc("GET /api/chores", s.rosterH.Chores)

	mux.HandleFunc("POST /api/completions", s.rateLimitedHandler(s.completionH.Submit))
	mux.HandleFunc("GET /api/completions", s.completionH.List)
	mux.HandleFunc("GET /api/completions/{id}", s.completionH.Get)
	mux.HandleFunc("PUT /api/completions/{id}/attachments/{slot}", s.rateLimitedHandler(s.attachmentH.Upload))
	mux.HandleFunc("GET /api/completions/{id}/attachments/{slot}", s.attachmentH.Download)

	mux.HandleFunc("POST /api/staging/week", s.stagingH.StageWeek)
	mux.HandleFunc("POST /api/staging/day", s.stagingH.StageDay)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	code := http.StatusOK
	status := "ok"
	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Error("health check", "error", err)
		code, status = http.StatusServiceUnavailable, "database unavailable"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"status":  status,
		"today":   model.FormatDate(s.today()),
		"clients": s.hub.ClientCount(),
		"dropped": s.hub.Dropped(),
	})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	limit := s.cfg.Server.SubmitRate
	if limit <= 0 {
		return h
	}
	wrapped := middleware.RateLimit(s.rateLimiter, middleware.RealIP, limit, time.Minute)(h)
	return wrapped.ServeHTTP
}
