package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"icmasure/internal/cache"
	"icmasure/internal/config"
	"icmasure/internal/db"
	"icmasure/internal/handlers"
	"icmasure/internal/logging"
	mw "icmasure/internal/middleware"
)

func main() {
	log := logging.Init()
	defer func() { _ = log.Sync() }()

	config.Load(log)
	db.InitDB()
	cache.Init()

	r := chi.NewRouter()

	// base middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.RedirectSlashes) // /path/ -> /path

	// static assets and uploaded payment proofs
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir("web/images"))))
	r.Handle("/uploads/*", mw.AdminOnlyMW(http.StripPrefix("/uploads/", http.FileServer(http.Dir("uploads")))))

	// ---------- Public pages ----------
	r.Get("/", handlers.ShowIndexPage)
	r.Get("/speakers", handlers.ShowSpeakersPage)
	r.Get("/registration", handlers.ShowRegistrationPage)
	r.Get("/venue", handlers.ShowVenuePage)
	r.Post("/theme", handlers.HandleThemeToggle)

	// Abstract submission (form + dynamic contributor list)
	r.Get("/submit", handlers.ShowSubmissionForm)
	r.Post("/submit", handlers.HandleSubmissionForm)

	// Author tracking (reference + email)
	r.Get("/status", handlers.ShowStatusLookup)
	r.Post("/status", handlers.HandleStatusLookup)
	r.Get("/status/{reference}", handlers.ShowStatusPage)
	r.Get("/submission/{reference}/edit", handlers.ShowEditForm)
	r.Post("/submission/{reference}/edit", handlers.HandleEditForm)
	r.Post("/submission/{reference}/payment", handlers.HandleProofUpload)

	// Public JSON (counter widget)
	r.Get("/api/stats", handlers.GetStats)

	// ---------- Admin authentication ----------
	r.Get("/admin/login", handlers.ShowLoginPage)
	r.Post("/admin/login", handlers.HandleLogin)
	r.Post("/admin/logout", handlers.HandleLogout)

	// ---------- Admin panel ----------
	r.Group(func(g chi.Router) {
		g.Use(mw.AdminOnlyMW) // valid session required

		g.Get("/admin/submissions", handlers.AdminSubmissionsPage)
		g.Get("/admin/submissions/{id}", handlers.AdminSubmissionShow)
		g.Get("/admin/payments", handlers.AdminPaymentsPage)

		// bulk approve / reject / export with two-phase confirmation
		g.Post("/admin/submissions/bulk", handlers.HandleBulkAction)

		// single-item actions
		g.Post("/admin/submissions/{id}/approve-abstract", handlers.HandleApproveAbstract)
		g.Post("/admin/submissions/{id}/reject", handlers.HandleRejectSubmission)
		g.Post("/admin/submissions/{id}/request-revision", handlers.HandleRequestRevision)
		g.Post("/admin/submissions/{id}/approve-payment", handlers.HandleApprovePayment)
		g.Post("/admin/submissions/{id}/payment-status", handlers.HandleUpdatePaymentStatus)
	})

	// ---------- Admin JSON API ----------
	r.Get("/admin/api/submissions", mw.AdminOnly(handlers.GetSubmissionsJSON))

	// ---------- Start ----------
	addr := config.Addr()
	log.Infow("listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalw("server stopped", "err", err)
	}
}
