package server

import "net/http"

const (
	tokenAvailable = "available"
	tokenMissing   = "missing"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Token   string `json:"token"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := healthResponse{
		Status:  "ok",
		Version: s.version,
		Token:   tokenMissing,
	}
	if s.credentials != nil && s.credentials.Available() {
		resp.Token = tokenAvailable
	}

	writeJSON(w, http.StatusOK, resp)
}
