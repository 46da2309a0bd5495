package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"postboard/app/controllers"
	"postboard/app/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// SetupPageRoutes defines the page server's routes and returns a router.
// Metrics from gatherer are served on /metrics when it is set.
func SetupPageRoutes(pageController *controllers.PageController, gatherer prometheus.Gatherer, log *zap.Logger) *mux.Router {
	router := newRouter(log)

	router.HandleFunc("/", pageController.Index).Methods("GET")
	router.HandleFunc("/select", pageController.Select).Methods("POST")
	router.HandleFunc("/posts/{id:[0-9]+}/toggle", pageController.Toggle).Methods("POST")
	router.HandleFunc("/ws", pageController.Socket).Methods("GET")

	// API routes with JSON content type
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)
	api.HandleFunc("/page", pageController.State).Methods("GET")

	if gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}
	return router
}

// SetupStoreRoutes defines the local collection store's routes and returns a
// router. Paths match the remote store so the client can point at either.
func SetupStoreRoutes(storeController *controllers.StoreController, log *zap.Logger) *mux.Router {
	router := newRouter(log)

	router.HandleFunc("/users", storeController.Users).Methods("GET")
	router.HandleFunc("/users/{id:[0-9]+}", storeController.User).Methods("GET")
	router.HandleFunc("/posts", storeController.Posts).Methods("GET")
	router.HandleFunc("/posts/{id:[0-9]+}", storeController.Post).Methods("GET")
	router.HandleFunc("/comments", storeController.Comments).Methods("GET")
	return router
}

func newRouter(log *zap.Logger) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recoverer(log))

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") || r.Header.Get("Accept") == "application/json" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "Not found"})
			return
		}
		http.NotFound(w, r)
	})
	return router
}

// StartServer serves router on addr until ctx is cancelled, then shuts down
// gracefully.
func StartServer(ctx context.Context, addr string, router http.Handler, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	srv := &http.Server{Addr: addr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("server stopped", zap.String("addr", addr))
	return nil
}
