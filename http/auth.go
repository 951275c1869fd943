package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"blogGraph/errs"
)

func (s *Server) registerAuthRoutes(r *mux.Router) {
	// Exchange username and password for a bearer token.
	r.HandleFunc("/authenticate", s.handleAuthenticate).Methods("POST")
}

// credentials is the body of "POST /authenticate".
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// tokenResponse tells the client its new bearer token and who it belongs to.
type tokenResponse struct {
	Token string `json:"token"`
	UID   string `json:"uid"`
}

// handleAuthenticate handles the route "POST /authenticate".
// On success it returns a fresh token, which replaces any token issued before.
func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := decode(r, &creds); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user, token, err := s.us.Authenticate(r.Context(), creds.Username, creds.Password)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, &tokenResponse{Token: token, UID: user.ID})
}
