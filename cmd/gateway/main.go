package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/oralex/oralex/internal/api/http"
	"github.com/oralex/oralex/internal/audit"
	"github.com/oralex/oralex/internal/catalog"
	"github.com/oralex/oralex/internal/config"
	"github.com/oralex/oralex/internal/db"
	"github.com/oralex/oralex/internal/evaluation"
	"github.com/oralex/oralex/internal/grading"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	cat := catalog.NewSQLStore(dbh)
	if cfg.SeedDemo {
		if err := catalog.SeedDemo(ctx, cat); err != nil {
			log.Fatalf("seed demo data: %v", err)
		}
		log.Printf("demo catalog seeded")
	}

	trail := audit.NewLog(dbh)
	store := evaluation.NewSQLStore(dbh, cfg.DBDriver)
	svc := evaluation.NewService(store, cat, cat,
		evaluation.WithMapper(grading.NewMapper(cfg.PassingRatio)),
		evaluation.WithRecorder(trail),
	)

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

	// Grading flow
	r.Post("/evaluations", api.StartEvaluationHandler(svc))
	r.Get("/evaluations/{evaluationID}", api.GetEvaluationHandler(svc))
	r.Put("/evaluations/{evaluationID}/progress", api.SaveProgressHandler(svc))
	r.Post("/evaluations/{evaluationID}/finalize", api.FinalizeEvaluationHandler(svc))
	r.Get("/evaluations/{evaluationID}/events", api.ListEvaluationEventsHandler(trail))

	// Commission surface
	r.Get("/commissions", api.ListCommissionsHandler(cat))
	r.Get("/commissions/{commissionID}", api.GetCommissionHandler(cat))
	r.Post("/commissions/{commissionID}/draw-question", api.DrawQuestionHandler(svc, cat))
	r.Get("/commissions/{commissionID}/evaluations", api.ListCommissionEvaluationsHandler(svc))

	// Catalog read surface
	r.Get("/subjects", api.ListSubjectsHandler(cat))
	r.Get("/subjects/{subjectID}/themes", api.ListThemesHandler(cat))
	r.Get("/questions", api.ListQuestionsHandler(cat))
	r.Get("/guidelines/{guidelineID}", api.GetGuidelineHandler(cat))
	r.Get("/guidelines/{guidelineID}/criteria", api.GetGuidelineCriteriaHandler(cat))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s, passing_ratio=%.2f)", cfg.HTTPAddr, cfg.DBDriver, cfg.PassingRatio)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
