package httpserver

import "net/http"

// Routes groups handlers.
type Routes struct {
	CreateReservation  http.HandlerFunc
	ListByDate         http.HandlerFunc
	ListForOwner       http.HandlerFunc
	ActiveReservation  http.HandlerFunc
	DeleteForOwner     http.HandlerFunc
	ListResources      http.HandlerFunc
	AdminLogin         http.HandlerFunc
	AdminDelete        http.HandlerFunc
	AdminMigrateTimes  http.HandlerFunc
	AdminEnsureSlots   http.HandlerFunc
	Events             http.HandlerFunc
	Health             http.HandlerFunc
	AdminAuth          func(http.Handler) http.Handler
}

// NewRouter registers endpoints.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()

	register := func(pattern string, handler http.HandlerFunc) {
		if handler != nil {
			mux.Handle(pattern, handler)
		}
	}
	registerAdmin := func(pattern string, handler http.HandlerFunc) {
		if handler == nil {
			return
		}
		if routes.AdminAuth != nil {
			mux.Handle(pattern, routes.AdminAuth(handler))
			return
		}
		mux.Handle(pattern, handler)
	}

	register("POST /api/reservations", routes.CreateReservation)
	register("GET /api/reservations", routes.ListByDate)
	register("GET /api/reservations/owner", routes.ListForOwner)
	register("GET /api/reservations/active", routes.ActiveReservation)
	register("DELETE /api/reservations/{id}", routes.DeleteForOwner)
	register("GET /api/resources", routes.ListResources)
	register("POST /auth/login", routes.AdminLogin)
	registerAdmin("DELETE /admin/reservations/{id}", routes.AdminDelete)
	registerAdmin("POST /admin/maintenance/migrate-times", routes.AdminMigrateTimes)
	registerAdmin("POST /admin/maintenance/reconcile-slots", routes.AdminEnsureSlots)
	register("GET /ws/events", routes.Events)
	register("GET /health", routes.Health)

	return mux
}
