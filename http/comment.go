package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"blogGraph/auth"
	"blogGraph/domain"
	"blogGraph/errs"
)

func (s *Server) registerCommentRoutes(r *mux.Router) {
	// Comment on a post, edit and delete the comment.
	r.HandleFunc("/user/{id}/post/{postId}/comment", s.requireAuth(s.handleCreateComment)).Methods("POST")
	r.HandleFunc("/user/{id}/post/{postId}/comment/{commentId}", s.requireAuth(s.handleUpdateComment)).Methods("PUT")
	r.HandleFunc("/user/{id}/post/{postId}/comment/{commentId}", s.requireAuth(s.handleDeleteComment)).Methods("DELETE")

	// Read comments.
	r.HandleFunc("/post/{id}/comment", s.handlePostComments).Methods("GET")
	r.HandleFunc("/comment/{id}", s.handleGetComment).Methods("GET")
	r.HandleFunc("/comment/{id}/likes", s.handleCountCommentLikes).Methods("GET")
}

// handleCreateComment handles the route "POST /user/{id}/post/{postId}/comment".
func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "id", "postId")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	var comment domain.Comment
	if err := decode(r, &comment); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.cs.Create(r.Context(), auth.GetActor(r.Context()), ids[0], ids[1], &comment); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, &comment)
}

// handleUpdateComment handles the route "PUT /user/{id}/post/{postId}/comment/{commentId}".
// The comment is looked up by its id and author, postId only has to be well formed.
func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "id", "postId", "commentId")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	var upd domain.CommentUpdate
	if err := decode(r, &upd); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	comment, err := s.cs.Update(r.Context(), auth.GetActor(r.Context()), ids[0], ids[2], upd)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, comment)
}

// handleDeleteComment handles the route "DELETE /user/{id}/post/{postId}/comment/{commentId}".
func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "id", "postId", "commentId")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.cs.Delete(r.Context(), auth.GetActor(r.Context()), ids[0], ids[2]); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, nil)
}

// handlePostComments handles the route "GET /post/{id}/comment".
func (s *Server) handlePostComments(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	comments, err := s.cs.ByPostID(r.Context(), postID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, comments)
}

// handleGetComment handles the route "GET /comment/{id}".
func (s *Server) handleGetComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	comment, err := s.cs.ByID(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, comment)
}

// handleCountCommentLikes handles the route "GET /comment/{id}/likes".
func (s *Server) handleCountCommentLikes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	count, err := s.cs.CountLikes(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, &countResponse{Count: count})
}
