package handlers

import (
	"net/http"
	"time"

	"github.com/camden-git/seeds/models"
	"github.com/camden-git/seeds/repository"
	"github.com/camden-git/seeds/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type RouterOptions struct {
	Services       *services.Services
	Users          repository.UserRepository
	JWTSecret      []byte
	JWTExpiration  time.Duration
	AllowSignup    bool
	AllowedOrigins []string
	// RequestTimeout defaults to DefaultRequestTimeout when zero.
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

const DefaultRequestTimeout = 8 * time.Second

// NewRouter builds the HTTP API. Everything under /api except the auth
// entry points requires a bearer token.
func NewRouter(opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(opts.Logger.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(corsHandler.Handler)

	logger := opts.Logger.Named("handlers")
	svcs := opts.Services
	authHandler := &AuthHandler{
		UserRepo:    opts.Users,
		Secret:      opts.JWTSecret,
		Expiration:  opts.JWTExpiration,
		AllowSignup: opts.AllowSignup,
		Logger:      logger,
	}
	personHandler := &PersonHandler{People: svcs.People, Logger: logger}
	conversationHandler := &ConversationHandler{Conversations: svcs.Conversations, Logger: logger}
	insightsHandler := &InsightsHandler{Insights: svcs.Insights, Logger: logger}
	companyHandler := NewCatalogHandler[models.Company, services.CompanyInput](svcs.Companies, logger)
	sectorHandler := NewCatalogHandler[models.Sector, services.SectorInput](svcs.Sectors, logger)
	groupHandler := NewCatalogHandler[models.Group, services.GroupInput](svcs.Groups, logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/status", authHandler.Status)
			r.Post("/login", authHandler.Login)
			r.Post("/register", authHandler.Register)
		})

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(opts.JWTSecret, opts.Users, logger))

			r.Get("/auth/me", authHandler.CurrentUser)

			r.Route("/people", func(r chi.Router) {
				r.Post("/", personHandler.CreatePerson)
				r.Get("/", personHandler.ListPeople)
				r.Get("/search", personHandler.SearchPeople)
				r.Get("/cities", personHandler.ListCities)
				r.Get("/companies", personHandler.ListCompanies)
				r.Route("/{slug}", func(r chi.Router) {
					r.Get("/", personHandler.GetPerson)
					r.Put("/", personHandler.UpdatePerson)
					r.Delete("/", personHandler.DeletePerson)
				})
			})

			r.Route("/companies", companyHandler.Routes)
			r.Route("/sectors", sectorHandler.Routes)
			r.Route("/groups", groupHandler.Routes)

			r.Route("/conversations", func(r chi.Router) {
				r.Post("/", conversationHandler.CreateConversation)
				r.Get("/", conversationHandler.ListConversations)
				r.Route("/{conversation_id}", func(r chi.Router) {
					r.Get("/", conversationHandler.GetConversation)
					r.Put("/", conversationHandler.UpdateConversation)
					r.Delete("/", conversationHandler.DeleteConversation)
				})
			})

			r.Route("/insights", func(r chi.Router) {
				r.Get("/pings", insightsHandler.Pings)
				r.Get("/orbit", insightsHandler.Orbit)
				r.Get("/trend", insightsHandler.Trend)
				r.Get("/dashboard", insightsHandler.Dashboard)
			})
		})
	})

	return r
}
