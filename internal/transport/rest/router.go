package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"mathqc/internal/cache"
	"mathqc/internal/repository"
	"mathqc/internal/service"
	"mathqc/internal/transport/rest/handler"
	"mathqc/internal/transport/rest/middleware"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService       *service.AuthService
	VerifierService   *service.VerifierService
	DedupeService     *service.DedupeService
	DistractorService *service.DistractorService
	QuestionRepo      repository.QuestionRepo
	ResultCache       cache.VerificationCache
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	questionHandler := handler.NewQuestionHandler(c.QuestionRepo)
	verifyHandler := handler.NewVerifyHandler(
		c.VerifierService, c.DedupeService, c.DistractorService, c.QuestionRepo, c.ResultCache)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Health check reports the AI breaker state
	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		breaker := c.VerifierService.AIBreaker()
		w.Write([]byte(`{"status":"ok","aiBreaker":"` + breaker.State().String() + `"}`))
	}).Methods("GET")

	// Editor routes (require editor auth)
	editorRoutes := v1.NewRoute().Subrouter()
	editorRoutes.Use(authMW.RequireEditor)

	editorRoutes.HandleFunc("/questions", questionHandler.Create).Methods("POST", "OPTIONS")
	editorRoutes.HandleFunc("/questions", questionHandler.List).Methods("GET", "OPTIONS")
	editorRoutes.HandleFunc("/questions/verify-batch", verifyHandler.VerifyBatch).Methods("POST", "OPTIONS")
	editorRoutes.HandleFunc("/questions/duplicates", verifyHandler.Duplicates).Methods("POST", "OPTIONS")
	editorRoutes.HandleFunc("/questions/{questionId}", questionHandler.Get).Methods("GET", "OPTIONS")
	editorRoutes.HandleFunc("/questions/{questionId}", questionHandler.Update).Methods("PUT", "OPTIONS")
	editorRoutes.HandleFunc("/questions/{questionId}", questionHandler.Delete).Methods("DELETE", "OPTIONS")
	editorRoutes.HandleFunc("/questions/{questionId}/validate", verifyHandler.Validate).Methods("POST", "OPTIONS")
	editorRoutes.HandleFunc("/questions/{questionId}/verify", verifyHandler.Verify).Methods("POST", "OPTIONS")
	editorRoutes.HandleFunc("/questions/{questionId}/fixes", verifyHandler.ApplyFixes).Methods("POST", "OPTIONS")
	editorRoutes.HandleFunc("/questions/{questionId}/distractors", verifyHandler.Distractors).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
