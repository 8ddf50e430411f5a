package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Ham-irza/resell-hub/controllers/public"
	"github.com/Ham-irza/resell-hub/middleware"
	"github.com/Ham-irza/resell-hub/simulation"
	"github.com/Ham-irza/resell-hub/utils"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// InitRouter builds the full HTTP surface: public catalog and auth endpoints,
// authenticated user endpoints, admin endpoints, and the operational cron
// trigger. The returned handler carries the global middleware chain.
func InitRouter(scheduler *simulation.Scheduler) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "ok"})
	}).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()

	registerAuthRoutes(v1)

	// Public catalog
	v1.HandleFunc("/plans", public.ListPlans).Methods(http.MethodGet)
	v1.HandleFunc("/products", public.ListProducts).Methods(http.MethodGet)
	v1.HandleFunc("/stores", public.ListStores).Methods(http.MethodGet)

	registerUserRoutes(v1)
	registerAdminRoutes(v1)
	registerCronRoutes(v1, scheduler)

	// Global chain, innermost first.
	var h http.Handler = r
	h = middleware.MaxBodyMiddleware(h)
	h = middleware.TimeoutMiddleware(h)
	h = middleware.MetricsMiddleware(h)
	h = middleware.SuspiciousActivityMiddleware(h)
	h = middleware.SecurityHeadersMiddleware(h)
	h = middleware.RequestLogMiddleware(h)
	h = middleware.RequestIDMiddleware(h)
	h = middleware.RecoveryMiddleware(h)

	ipLimiter := middleware.NewIPRateLimiter(0, time.Minute)
	h = ipLimiter.Middleware(h)

	h = handlers.CORS(
		handlers.AllowedOrigins(corsOrigins()),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Requested-With", "X-Request-ID", "X-CRON-KEY"}),
		handlers.AllowCredentials(),
	)(h)

	return h
}

func corsOrigins() []string {
	raw := os.Getenv("CORS_ALLOWED_ORIGINS")
	if raw == "" {
		return []string{"*"}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// registerCronRoutes exposes the manual sweep trigger for platforms that run
// the sweep from an external cron instead of the resident scheduler.
func registerCronRoutes(v1 *mux.Router, scheduler *simulation.Scheduler) {
	limiter := middleware.NewWebhookLimiter(10, time.Minute, strings.Split(os.Getenv("CRON_IP_WHITELIST"), ","))

	cron := v1.PathPrefix("/cron").Subrouter()
	cron.Handle("/daily-sales", limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		key := os.Getenv("CRON_KEY")
		if key == "" || req.Header.Get("X-CRON-KEY") != key {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
			return
		}
		processed, err := scheduler.RunOnce(req.Context())
		if err == simulation.ErrSweepRunning {
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "A sweep is already running"})
			return
		}
		if err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Sweep failed"})
			return
		}
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
			Success: true,
			Message: "Sweep complete",
			Data:    map[string]interface{}{"processed": processed},
		})
	}))).Methods(http.MethodPost)
}
