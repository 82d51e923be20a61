package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /{$}", handler.Root)
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerUserRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /api/users/add", handler.CreateUser)
	mux.HandleFunc("GET /api/users", handler.ListUsers)
	mux.HandleFunc("GET /api/users/{$}", handler.ListUsers)
}
