package routes

import (
	"net/http"

	"github.com/Ham-irza/resell-hub/controllers/auth"
	"github.com/Ham-irza/resell-hub/controllers/users"
	"github.com/Ham-irza/resell-hub/middleware"

	"github.com/gorilla/mux"
)

func registerAuthRoutes(v1 *mux.Router) {
	v1.HandleFunc("/register", auth.Register).Methods(http.MethodPost)
	v1.HandleFunc("/login", auth.Login).Methods(http.MethodPost)
	v1.HandleFunc("/refresh", auth.Refresh).Methods(http.MethodPost)
	v1.HandleFunc("/logout", auth.Logout).Methods(http.MethodPost)
}

func registerUserRoutes(v1 *mux.Router) {
	u := v1.PathPrefix("/users").Subrouter()
	u.Use(middleware.AuthMiddleware)
	userLimiter := middleware.NewUserRateLimiter(0, 0, 60)
	u.Use(userLimiter.Middleware)

	u.HandleFunc("/purchases", users.BuyPlan).Methods(http.MethodPost)
	u.HandleFunc("/purchases/active", users.ActivePurchase).Methods(http.MethodGet)
	u.HandleFunc("/purchases", users.ListPurchases).Methods(http.MethodGet)

	u.HandleFunc("/orders", users.BuyProduct).Methods(http.MethodPost)
	u.HandleFunc("/orders", users.ListOrders).Methods(http.MethodGet)

	u.HandleFunc("/wallet/history", users.WalletHistory).Methods(http.MethodGet)
	u.HandleFunc("/wallet/withdraw", users.Withdraw).Methods(http.MethodPost)

	u.HandleFunc("/notifications", users.ListNotifications).Methods(http.MethodGet)
	u.HandleFunc("/notifications/read", users.MarkNotificationsRead).Methods(http.MethodPut)

	u.HandleFunc("/info", users.Info).Methods(http.MethodGet)
}
