package http

import (
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"evently/internal/delivery/http/controllers"
	"evently/internal/delivery/http/middleware"
	"evently/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Pages      *controllers.PageController
	EventForm  *controllers.EventFormController
	Attendees  *controllers.AttendeeController
	Categories *controllers.CategoryController
	Validate   *controllers.ValidateController
}

// RouterConfig holds the settings NewRouter needs besides the controllers.
type RouterConfig struct {
	Verifier       domain.TokenVerifier
	SignInURL      string
	AllowedOrigins []string
	// UploadDir is served under UploadPath when set (local upload provider).
	UploadDir  string
	UploadPath string
}

// NewRouter initializes the HTTP router with all application routes and the middleware chain.
func NewRouter(logger *slog.Logger, c Controllers, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	optional := middleware.OptionalAuth(cfg.Verifier)
	page := middleware.RequirePageAuth(cfg.Verifier, cfg.SignInURL, logger)
	api := middleware.RequireAuth(cfg.Verifier, logger)

	// Pages
	mux.HandleFunc("GET /{$}", optional(c.Pages.Home))
	mux.HandleFunc("GET /sign-in", optional(c.Pages.SignIn))
	mux.HandleFunc("GET /profile", page(c.Pages.Profile))
	mux.HandleFunc("GET /events/{eventID}", optional(c.Pages.EventDetail))
	mux.HandleFunc("GET /events/create", page(c.EventForm.NewEvent))
	mux.HandleFunc("POST /events/create", page(c.EventForm.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}/update", page(c.EventForm.EditEvent))
	mux.HandleFunc("POST /events/{eventID}/update", page(c.EventForm.UpdateEvent))
	mux.HandleFunc("POST /events/{eventID}/register", page(c.Attendees.RegisterFromPage))

	// API Routes
	mux.HandleFunc("GET /api/categories", c.Categories.ListCategories)
	mux.HandleFunc("POST /api/categories", api(c.Categories.CreateCategory))
	mux.HandleFunc("POST /api/events/validate", c.Validate.ValidateEvent)
	mux.HandleFunc("POST /api/events/{eventID}/registrations", api(c.Attendees.RegisterForEvent))
	mux.HandleFunc("GET /api/me/registrations", api(c.Attendees.ListMyRegisteredEvents))

	if cfg.UploadDir != "" && cfg.UploadPath != "" {
		prefix := cfg.UploadPath + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.UploadDir))))
	}

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	mux.HandleFunc("/", optional(c.Pages.NotFound))

	var h http.Handler = mux
	h = middleware.CORS(cfg.AllowedOrigins, h)
	h = chimw.Recoverer(h)
	h = middleware.LoggingMiddleware(logger, h)
	h = chimw.RealIP(h)
	h = chimw.RequestID(h)
	return h
}
