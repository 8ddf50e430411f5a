package routes

import (
	"net/http"

	"github.com/Ham-irza/resell-hub/controllers/admins"
	"github.com/Ham-irza/resell-hub/middleware"

	"github.com/gorilla/mux"
)

func registerAdminRoutes(v1 *mux.Router) {
	a := v1.PathPrefix("/admin").Subrouter()
	a.Use(middleware.AdminAuthMiddleware)

	a.HandleFunc("/stats", admins.Stats).Methods(http.MethodGet)

	a.HandleFunc("/withdrawals", admins.ListWithdrawals).Methods(http.MethodGet)
	a.HandleFunc("/withdrawals/{id:[0-9]+}", admins.DecideWithdrawal).Methods(http.MethodPut)

	a.HandleFunc("/transactions", admins.ListTransactions).Methods(http.MethodGet)

	a.HandleFunc("/orders", admins.ListOrders).Methods(http.MethodGet)
	a.HandleFunc("/orders/{id:[0-9]+}", admins.UpdateOrderFulfillment).Methods(http.MethodPut)

	a.HandleFunc("/products", admins.ListProducts).Methods(http.MethodGet)
	a.HandleFunc("/products", admins.CreateProduct).Methods(http.MethodPost)
	a.HandleFunc("/products/{id:[0-9]+}", admins.UpdateProduct).Methods(http.MethodPut)
	a.HandleFunc("/products/{id:[0-9]+}", admins.DeleteProduct).Methods(http.MethodDelete)

	a.HandleFunc("/plans", admins.ListPlans).Methods(http.MethodGet)
	a.HandleFunc("/plans", admins.CreatePlan).Methods(http.MethodPost)
	a.HandleFunc("/plans/{id:[0-9]+}", admins.UpdatePlan).Methods(http.MethodPut)
	a.HandleFunc("/plans/{id:[0-9]+}", admins.DeletePlan).Methods(http.MethodDelete)

	a.HandleFunc("/stores", admins.CreateStore).Methods(http.MethodPost)
	a.HandleFunc("/stores/{id:[0-9]+}", admins.UpdateStore).Methods(http.MethodPut)
	a.HandleFunc("/stores/{id:[0-9]+}", admins.DeleteStore).Methods(http.MethodDelete)

	a.HandleFunc("/users", admins.ListUsers).Methods(http.MethodGet)
	a.HandleFunc("/users/{id:[0-9]+}", admins.GetUser).Methods(http.MethodGet)
}
