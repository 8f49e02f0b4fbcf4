package http

import "net/http"

// NewRouter mounts the API. Only /predict is rate limited.
func NewRouter(scorer CreditScorer, limiter *RateLimiter, info ModelInfo) http.Handler {
	scoreHandler := NewScoreHandler(scorer)

	mux := http.NewServeMux()
	mux.Handle(
		"/predict",
		RateLimitMiddleware(
			limiter,
			http.HandlerFunc(scoreHandler.Predict),
		),
	)
	mux.HandleFunc("GET /scores/{id}", scoreHandler.GetRecord)
	mux.HandleFunc("GET /healthz", HealthHandler(info))

	return RequestIDMiddleware(LoggingMiddleware(RecoverMiddleware(mux)))
}
