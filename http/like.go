package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"blogGraph/auth"
	"blogGraph/errs"
)

// registerLikeRoutes is a helper for registering all like routes.
func (s *Server) registerLikeRoutes(r *mux.Router) {
	// Like and unlike a post.
	r.HandleFunc("/user/{id}/like/post/{postId}", s.requireAuth(s.handleLikePost)).Methods("GET")
	r.HandleFunc("/user/{id}/like/post/{postId}", s.requireAuth(s.handleUnlikePost)).Methods("DELETE")

	// Like and unlike a comment.
	r.HandleFunc("/user/{id}/like/comment/{commentId}", s.requireAuth(s.handleLikeComment)).Methods("GET")
	r.HandleFunc("/user/{id}/like/comment/{commentId}", s.requireAuth(s.handleUnlikeComment)).Methods("DELETE")
}

// handleLikePost handles the route "GET /user/{id}/like/post/{postId}".
func (s *Server) handleLikePost(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "id", "postId")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	like, err := s.ls.LikePost(r.Context(), auth.GetActor(r.Context()), ids[0], ids[1])
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, like)
}

// handleUnlikePost handles the route "DELETE /user/{id}/like/post/{postId}".
func (s *Server) handleUnlikePost(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "id", "postId")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.ls.UnlikePost(r.Context(), auth.GetActor(r.Context()), ids[0], ids[1]); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, nil)
}

// handleLikeComment handles the route "GET /user/{id}/like/comment/{commentId}".
func (s *Server) handleLikeComment(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "id", "commentId")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	like, err := s.ls.LikeComment(r.Context(), auth.GetActor(r.Context()), ids[0], ids[1])
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, like)
}

// handleUnlikeComment handles the route "DELETE /user/{id}/like/comment/{commentId}".
func (s *Server) handleUnlikeComment(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "id", "commentId")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.ls.UnlikeComment(r.Context(), auth.GetActor(r.Context()), ids[0], ids[1]); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, nil)
}
