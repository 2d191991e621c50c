package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nicl-mu/renewal-portal/internal/infra/config"
	"github.com/nicl-mu/renewal-portal/internal/infra/database"
	"github.com/nicl-mu/renewal-portal/internal/infra/http/handlers"
	"github.com/nicl-mu/renewal-portal/internal/infra/http/middleware"
	"github.com/nicl-mu/renewal-portal/internal/infra/integration/brevo"
	"github.com/nicl-mu/renewal-portal/internal/infra/mail"
	"github.com/nicl-mu/renewal-portal/internal/infra/pipeline"
	"github.com/nicl-mu/renewal-portal/internal/infra/spreadsheet"
	"github.com/nicl-mu/renewal-portal/internal/infra/storage"
	"github.com/nicl-mu/renewal-portal/internal/usecase"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	// 1. Team registry, reloadable on SIGHUP
	registry, err := config.NewRegistry(cfg.TeamsFile)
	if err != nil {
		log.Fatalf("Loading teams: %v", err)
	}
	go reloadOnSignal(registry)

	// 2. Repositories
	runRepo := database.NewRunRepository(db)
	if err := runRepo.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("Preparing schema: %v", err)
	}

	// 3. Gateways and adapters
	var sender usecase.EmailSender
	if cfg.BrevoAPIKey != "" {
		sender = brevo.NewClient(cfg.BrevoAPIKey, cfg.BrevoURL)
	} else {
		port, _ := strconv.Atoi(cfg.MailPort)
		sender = mail.NewSMTPSender(cfg.MailHost, port, cfg.MailUser, cfg.MailPass)
		log.Println("No Brevo API key configured, using SMTP transport")
	}
	mailer, err := mail.NewMailer(sender)
	if err != nil {
		log.Fatalf("Loading mail templates: %v", err)
	}

	store := storage.NewStore()
	tracker := pipeline.NewTracker()
	runner := pipeline.NewScriptRunner(cfg.ScriptsDir, os.Getenv("PYTHON_BIN"))
	reader := spreadsheet.NewReader()

	// 4. Use cases
	authUC := usecase.NewAuthUseCase(registry, mailer, cfg.DevMode())
	dispatchUC := usecase.NewDispatchUseCase(mailer)

	pipes := config.Pipelines(cfg)
	workflows := make(map[string]*usecase.WorkflowUseCase, len(pipes))
	for id, pipe := range pipes {
		if err := ensurePipelineDirs(store, pipe); err != nil {
			log.Fatalf("Preparing directories for %s: %v", id, err)
		}
		counter := spreadsheet.NewCounter(reader, pipe.ScriptDir, pipe.CountScript, os.Getenv("PYTHON_BIN"))
		workflows[id] = usecase.NewWorkflowUseCase(pipe, runner, counter, reader, store, tracker, runRepo, dispatchUC)
	}

	// 5. Handlers
	sessions := middleware.NewSessionStore(!cfg.DevMode())
	authHandler := handlers.NewAuthHandler(authUC, sessions, cfg.DevMode())
	healthHandler := handlers.NewHealthHandler(db, cfg.ScriptsDir, cfg.BrevoAPIKey != "")

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/api/health-check", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/send-otp", authHandler.SendOTP)
		r.Post("/verify-otp", authHandler.VerifyOTP)
		r.Post("/password-login", authHandler.PasswordLogin)
		r.Get("/session", authHandler.Session)
		r.Post("/logout", authHandler.Logout)
	})

	for id, uc := range workflows {
		team := registry.Team(id)
		if team == nil {
			log.Fatalf("No roster entry for pipeline %q", id)
		}
		workflowHandler := handlers.NewWorkflowHandler(uc, registry, tracker)
		filesHandler := handlers.NewFilesHandler(uc.Pipe, store)

		r.Route("/api/"+id, func(r chi.Router) {
			r.Use(sessions.RequireTeam(id, team.Name))

			r.Post("/upload-excel", workflowHandler.UploadExcel)
			r.Post("/generate-pdfs", workflowHandler.GeneratePDFs(false))
			r.Post("/send-emails", workflowHandler.SendEmails)
			r.Get("/status", workflowHandler.Status)
			r.Get("/progress", workflowHandler.Progress)

			// Health merges everything including the attached forms, hence
			// the different route name the dashboard uses.
			if uc.Pipe.HasAttach() {
				r.Post("/attach-forms", workflowHandler.AttachForms)
				r.Post("/merge-all", workflowHandler.MergePDFs(false))
			} else {
				r.Post("/merge-pdfs", workflowHandler.MergePDFs(false))
			}
			if uc.Pipe.Printer != nil {
				r.Post("/generate-printer-pdfs", workflowHandler.GeneratePDFs(true))
				r.Post("/merge-printer-pdfs", workflowHandler.MergePDFs(true))
				r.Get("/printer-files", filesHandler.PrinterFiles)
				r.Get("/download/all-printer-individual", filesHandler.DownloadAll(true))
			}

			r.Get("/files", filesHandler.Files)
			r.Get("/download/all-individual", filesHandler.DownloadAll(false))
			r.Get("/download/{kind}/{filename}", filesHandler.Download)
		})
	}

	addr := ":" + cfg.Port
	log.Printf("Renewal portal listening on %s (%s mode)", addr, cfg.Env)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err)
	}
}

func ensurePipelineDirs(store *storage.Store, pipe usecase.Pipeline) error {
	dirs := []string{pipe.UploadDir, pipe.OutputDir, pipe.MergedDir}
	if pipe.Printer != nil {
		dirs = append(dirs, pipe.Printer.OutputDir, pipe.Printer.MergedDir)
	}
	return store.EnsureDirs(dirs...)
}

func reloadOnSignal(registry *config.Registry) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	for range hup {
		if err := registry.Reload(); err != nil {
			log.Printf("Team roster reload failed: %v", err)
			continue
		}
		log.Println("Team roster reloaded")
	}
}
