package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"blogGraph/auth"
	"blogGraph/errs"
)

func (s *Server) registerFollowRoutes(r *mux.Router) {
	// Follow and unfollow another user.
	r.HandleFunc("/user/{id}/follow/{followId}", s.requireAuth(s.handleCreateFollow)).Methods("GET")
	r.HandleFunc("/user/{id}/follow/{followId}", s.requireAuth(s.handleDeleteFollow)).Methods("DELETE")

	// Who follows the user, and whom the user follows.
	r.HandleFunc("/user/{id}/follower", s.requireAuth(s.handleFollowers)).Methods("GET")
	r.HandleFunc("/user/{id}/following", s.requireAuth(s.handleFolloweds)).Methods("GET")
}

// handleCreateFollow handles the route "GET /user/{id}/follow/{followId}".
// The user with id starts following the user with followId.
func (s *Server) handleCreateFollow(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "id", "followId")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	follow, err := s.fs.Create(r.Context(), auth.GetActor(r.Context()), ids[0], ids[1])
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, follow)
}

// handleDeleteFollow handles the route "DELETE /user/{id}/follow/{followId}".
func (s *Server) handleDeleteFollow(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "id", "followId")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.fs.Delete(r.Context(), auth.GetActor(r.Context()), ids[0], ids[1]); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, nil)
}

// handleFollowers handles the route "GET /user/{id}/follower".
func (s *Server) handleFollowers(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	users, err := s.fs.Followers(r.Context(), auth.GetActor(r.Context()), userID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, users)
}

// handleFolloweds handles the route "GET /user/{id}/following".
func (s *Server) handleFolloweds(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	users, err := s.fs.Followeds(r.Context(), auth.GetActor(r.Context()), userID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, users)
}
