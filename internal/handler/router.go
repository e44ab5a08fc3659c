package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/unclebandit/mailtrack-backend/internal/controller"
	"github.com/unclebandit/mailtrack-backend/internal/logger"
	"github.com/unclebandit/mailtrack-backend/internal/metrics"
)

// Deps is everything the router wires together.
type Deps struct {
	Customers *controller.CustomerController
	Mails     *controller.MailController
	Lookup    *controller.LookupController
	Dashboard *controller.DashboardController
	Settings  *controller.SettingController
	Auth      *controller.AuthController

	Authenticator Authenticator
	Metrics       *metrics.Metrics
	Log           logger.Logger
	CORSOrigins   []string
	// PhotoDir is served under /photos/ when photos are stored on disk.
	PhotoDir string
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Log))
	r.Use(middleware.Recoverer)
	if d.Metrics != nil {
		r.Use(Instrument(d.Metrics))
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	if d.PhotoDir != "" {
		r.Handle("/photos/*", http.StripPrefix("/photos/", http.FileServer(http.Dir(d.PhotoDir))))
	}

	// Public lookup, callable cross-origin like the customer-facing page expects.
	r.Route("/api/lookup", func(r chi.Router) {
		r.Use(lookupCORS(d.CORSOrigins).Handler)
		r.Get("/", d.Lookup.Lookup)
		r.Post("/", d.Lookup.Lookup)
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", d.Auth.SignUp)
		r.Post("/signin", d.Auth.SignIn)
		r.Post("/signout", d.Auth.SignOut)
		r.With(OptionalStaff(d.Authenticator)).Get("/me", d.Auth.Me)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireStaff(d.Authenticator, d.Log))

		r.Get("/api/dashboard", d.Dashboard.Overview)

		r.Route("/api/customers", func(r chi.Router) {
			r.Get("/", d.Customers.ListCustomers)
			r.Post("/", d.Customers.CreateCustomer)
			r.Get("/search", d.Customers.SearchCustomers)
			r.Get("/{id}", d.Customers.GetCustomer)
			r.Put("/{id}", d.Customers.UpdateCustomer)
			r.Delete("/{id}", d.Customers.DeleteCustomer)
			r.Post("/{id}/pickup", d.Customers.PickupAll)
		})

		r.Route("/api/mails", func(r chi.Router) {
			r.Get("/", d.Mails.ListMails)
			r.Post("/", d.Mails.CreateMail)
			r.Post("/{id}/pickup", d.Mails.PickupMail)
			r.Delete("/{id}", d.Mails.DeleteMail)
		})

		r.Route("/api/settings", func(r chi.Router) {
			r.Get("/", d.Settings.ListSettings)
			r.Put("/{key}", d.Settings.UpdateSetting)
		})
	})

	return r
}

func lookupCORS(origins []string) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
	})
}
