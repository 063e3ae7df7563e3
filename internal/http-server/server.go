package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shopfront/internal/apis/shop"
	"shopfront/internal/catalog"
	"shopfront/internal/http-server/handlers/admin"
	catalogh "shopfront/internal/http-server/handlers/catalog"
	"shopfront/internal/http-server/handlers/messages"
	"shopfront/internal/http-server/handlers/notifications"
	"shopfront/internal/http-server/middleware"
	"shopfront/internal/http-server/respond"
	"shopfront/internal/notify"
)

type Server struct {
	log    *slog.Logger
	router chi.Router
	apiMW  []func(http.Handler) http.Handler
}

type Options struct {
	CORSOrigins     []string
	RateLimit       int
	RateLimitWindow time.Duration
}

func New(log *slog.Logger, opts Options) *Server {
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.WithRequestID)
	r.Use(middleware.AccessLog(log))
	r.Use(middleware.RecoverPanic(log))
	r.Use(middleware.Metrics)
	if len(opts.CORSOrigins) > 0 {
		r.Use(middleware.CORS(opts.CORSOrigins))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respond.WriteError(w, http.StatusNotFound, "not_found", "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respond.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	s := &Server{log: log, router: r}
	if opts.RateLimit > 0 {
		s.apiMW = append(s.apiMW, middleware.RateLimit(opts.RateLimit, opts.RateLimitWindow))
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

type Deps struct {
	Sessions     *catalog.SessionStore
	Shop         shop.Service
	Poller       notifications.Poller
	Messages     messages.Counter
	Bus          *notify.Broadcaster
	DisplayLimit int
	Timeout      time.Duration
	SecureCookie bool
}

func (s *Server) RegisterRoutes(dep Deps) {
	cat := catalogh.New(catalogh.Options{
		Log:     s.log,
		Store:   dep.Sessions,
		Timeout: dep.Timeout,
		Secure:  dep.SecureCookie,
	})
	notif := notifications.New(notifications.Options{
		Log:          s.log,
		Poller:       dep.Poller,
		DisplayLimit: dep.DisplayLimit,
		Timeout:      dep.Timeout,
	})
	msgs := messages.New(messages.Options{
		Log:     s.log,
		Counter: dep.Messages,
		Reader:  dep.Shop,
		Bus:     dep.Bus,
		Timeout: dep.Timeout,
	})
	adm := admin.New(admin.Options{
		Log:     s.log,
		Mutator: dep.Shop,
		Timeout: dep.Timeout,
	})

	s.router.Group(func(api chi.Router) {
		api.Use(s.apiMW...)

		api.Route("/api/catalog", func(r chi.Router) {
			r.Get("/", cat.Get)
			r.Get("/options", cat.Options)
			r.Post("/category", cat.SelectCategory)
			r.Post("/search", cat.SubmitSearch)
			r.Delete("/search", cat.ClearSearch)
			r.Post("/filters", cat.SetFilters)
			r.Post("/clear", cat.ClearAll)
		})

		api.Route("/api/admin", func(r chi.Router) {
			r.Get("/notifications", notif.List)
			r.Post("/notifications/orders/{id}/viewed", notif.OrderViewed)
			r.Post("/notifications/products/{id}/viewed", notif.ProductViewed)

			r.Get("/messages/unread", msgs.Unread)
			r.Post("/messages/{id}/read", msgs.MarkRead)

			for _, res := range []shop.Resource{shop.Staff, shop.Products, shop.Customers} {
				r.Post("/"+string(res), adm.Create(res))
				r.Put("/"+string(res)+"/{id}", adm.Update(res))
				r.Delete("/"+string(res)+"/{id}", adm.Delete(res))
			}
		})
	})
}
