package server

import "net/http"

const (
	mcpPath    = "/mcp"
	healthPath = "/health"
)

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle(healthPath, chain(
		http.HandlerFunc(s.handleHealth),
		LoggingMiddleware,
	))

	if s.mcp != nil {
		mux.Handle(mcpPath, chain(
			s.mcp,
			LoggingMiddleware,
			RequestSizeLimitMiddleware(defaultMaxBodySize),
		))
	}

	return mux
}

func chain(handler http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := handler
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}
