package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	api "github.com/phods-dev/qotd-service/internal/api/http"
	"github.com/phods-dev/qotd-service/internal/audit"
	auth "github.com/phods-dev/qotd-service/internal/auth/middleware"
	"github.com/phods-dev/qotd-service/internal/config"
	"github.com/phods-dev/qotd-service/internal/db"
	"github.com/phods-dev/qotd-service/internal/logger"
	"github.com/phods-dev/qotd-service/internal/notify"
	"github.com/phods-dev/qotd-service/internal/qotd"
	rbac "github.com/phods-dev/qotd-service/internal/rbac"
	"github.com/phods-dev/qotd-service/internal/sheet"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New("qotdd")

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// DB_DRIVER=memory keeps the sheets in process memory for offline
	// runs; users and the audit trail still go to an in-memory sqlite.
	driver, dsn := db.Driver(cfg.DBDriver), cfg.DBDSN
	memSheets := cfg.DBDriver == "memory"
	if memSheets {
		driver, dsn = db.DriverSQLite, "file:qotd?mode=memory&cache=shared"
	}
	dbh, err := db.Open(ctx, driver, dsn)
	if err != nil {
		log.WithError(err).Fatal("db open failed")
	}

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret)
	if err := auth.EnsureAdmin(dbh, cfg.AdminUser, cfg.AdminPassHash); err != nil {
		log.WithError(err).Fatal("bootstrap admin failed")
	}

	// --- Lifecycle service ---
	var store sheet.RemoteStore = sheet.NewSQLStore(dbh)
	if memSheets {
		store = sheet.NewMemoryStore()
	}
	events := audit.NewEventRepo(dbh)
	svc := qotd.New(store, notify.NewLog(log), log, qotd.WithAudit(events))

	// --- Rollover timer ---
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.RolloverAt != "" {
		sched, err := qotd.NewScheduler(svc, log, cfg.RolloverAt)
		if err != nil {
			log.WithError(err).Fatal("bad rollover time")
		}
		go sched.Run(runCtx)
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, true))

		// Participant surface
		pr.With(rbac.Require("qotd:view")).
			Get("/qotd/random", api.RandomQuestionHandler(svc))
		pr.With(rbac.Require("qotd:view")).
			Get("/qotd/{num}", api.FetchQuestionHandler(svc))
		pr.With(rbac.Require("qotd:view")).
			Get("/qotd/{num}/solution", api.GetSolutionHandler(svc))
		pr.With(rbac.Require("qotd:submit")).
			Post("/qotd/submissions", api.SubmitHandler(svc))
		pr.With(rbac.RequireOwnerOr("qotd:verify-any", ownSubmissions)).
			Get("/qotd/{num}/submissions", api.VerifySubmissionsHandler(svc))
		pr.With(rbac.RequireOwnerOr("qotd:verify-any", ownSubmissions)).
			Get("/qotd/{num}/events", api.ListEventsHandler(events))
		pr.With(rbac.Require("qotd:scores-own")).
			Get("/scores", api.ScoresHandler(svc))

		// Curator surface
		pr.With(rbac.Require("qotd:upload")).
			Post("/qotd", api.UploadQuestionHandler(svc))
		pr.With(rbac.Require("qotd:edit")).
			Patch("/qotd/{num}", api.EditQuestionHandler(svc))
		pr.With(rbac.Require("qotd:delete")).
			Delete("/qotd/{num}", api.DeleteQuestionHandler(svc))
		pr.With(rbac.Require("qotd:pending")).
			Get("/qotd/pending", api.PendingQuestionsHandler(svc))
		pr.With(rbac.Require("qotd:pending")).
			Get("/qotd/pending/{num}", api.PendingQuestionsHandler(svc))
		pr.With(rbac.Require("qotd:solution-set")).
			Put("/qotd/{num}/solution", api.SetSolutionHandler(svc))
		pr.With(rbac.Require("qotd:merge")).
			Post("/qotd/{num}/merge", api.MergeLeaderboardHandler(svc))
		pr.With(rbac.Require("qotd:refresh")).
			Post("/leaderboard/refresh", api.RefreshLeaderboardHandler(svc))
		pr.With(rbac.Require("qotd:rollover")).
			Post("/rollover", api.RolloverHandler(svc))

		// Admin surface
		pr.With(rbac.Require("season:end")).
			Post("/season/end", api.EndSeasonHandler(svc))
		pr.With(rbac.Require("cache:reset")).
			Post("/cache/reset", api.CacheResetHandler(svc))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		<-runCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", cfg.HTTPAddr).WithField("db", cfg.DBDriver).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server exited")
	}
}

// ownSubmissions is true when the request targets the caller's own rows
// (no user filter, or the filter names the caller).
func ownSubmissions(r *http.Request) bool {
	user := r.URL.Query().Get("user")
	return user == "" || user == auth.SubjectFromContext(r.Context())
}
