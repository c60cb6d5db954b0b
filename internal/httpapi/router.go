package httpapi

import (
	"net/http"
)

// RouterConfig collects the handlers mounted by NewRouter. Nil handlers
// leave their routes unmounted.
type RouterConfig struct {
	Generate   *GenerateHandler
	Users      *UserHandler
	Events     *EventHandler
	Metrics    http.Handler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		newResponder(nil).writeJSON(r.Context(), w, http.StatusOK, statusResponse{Status: "ok"})
	})

	if cfg.Generate != nil {
		mux.HandleFunc("POST /chat/generate", cfg.Generate.Chat)
		mux.HandleFunc("POST /ai/generate", cfg.Generate.Single)
	}

	if cfg.Users != nil {
		mux.HandleFunc("POST /auth/register", cfg.Users.Register)
		mux.HandleFunc("POST /auth/login", cfg.Users.Login)
		mux.HandleFunc("GET /users/me", cfg.Users.Me)
	}

	if cfg.Events != nil {
		mux.HandleFunc("POST /events/add", cfg.Events.Add)
		mux.HandleFunc("GET /events", cfg.Events.List)
		mux.HandleFunc("PUT /events/{index}", cfg.Events.Update)
		mux.HandleFunc("DELETE /events/{index}", cfg.Events.Delete)
	}

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}
