package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"blogGraph/auth"
	"blogGraph/domain"
	"blogGraph/errs"
)

// Feed defaults, used when the client doesn't ask for anything else.
const (
	defaultPage = 0
	defaultSize = 10
)

func (s *Server) registerPostRoutes(r *mux.Router) {
	// Write, edit and delete posts of a user.
	r.HandleFunc("/user/{id}/post", s.requireAuth(s.handleCreatePost)).Methods("POST")
	r.HandleFunc("/user/{id}/post/{postId}", s.requireAuth(s.handleUpdatePost)).Methods("PUT")
	r.HandleFunc("/user/{id}/post/{postId}", s.requireAuth(s.handleDeletePost)).Methods("DELETE")

	// Read posts.
	r.HandleFunc("/user/{id}/post", s.handleUserPosts).Methods("GET")
	r.HandleFunc("/post/{id}", s.handleGetPost).Methods("GET")
	r.HandleFunc("/post/{id}/likes", s.handleCountPostLikes).Methods("GET")
	r.HandleFunc("/posts", s.handleLatestPosts).Methods("GET")
}

// countResponse carries a like count.
type countResponse struct {
	Count int `json:"count"`
}

// handleCreatePost handles the route "POST /user/{id}/post".
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	var post domain.Post
	if err := decode(r, &post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.ps.Create(r.Context(), auth.GetActor(r.Context()), userID, &post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, &post)
}

// handleUpdatePost handles the route "PUT /user/{id}/post/{postId}".
func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "id", "postId")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	var upd domain.PostUpdate
	if err := decode(r, &upd); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	post, err := s.ps.Update(r.Context(), auth.GetActor(r.Context()), ids[0], ids[1], upd)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, post)
}

// handleDeletePost handles the route "DELETE /user/{id}/post/{postId}".
func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "id", "postId")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.ps.Delete(r.Context(), auth.GetActor(r.Context()), ids[0], ids[1]); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, nil)
}

// handleUserPosts handles the route "GET /user/{id}/post".
func (s *Server) handleUserPosts(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	posts, err := s.ps.ByUserID(r.Context(), userID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, posts)
}

// handleGetPost handles the route "GET /post/{id}".
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	post, err := s.ps.ByID(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, post)
}

// handleCountPostLikes handles the route "GET /post/{id}/likes".
func (s *Server) handleCountPostLikes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	count, err := s.ps.CountLikes(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, &countResponse{Count: count})
}

// handleLatestPosts handles the route "GET /posts?page=&size=&sort=".
func (s *Server) handleLatestPosts(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", defaultPage)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	size, err := queryInt(r, "size", defaultSize)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	posts, err := s.ps.Latest(r.Context(), page, size, r.URL.Query().Get("sort"))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, posts)
}
