package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"blogGraph/auth"
	"blogGraph/domain"
	"blogGraph/errs"
)

func (s *Server) registerUserRoutes(r *mux.Router) {
	// Sign up.
	r.HandleFunc("/user", s.handleCreateUser).Methods("POST")

	// List all users.
	r.HandleFunc("/users", s.handleAllUsers).Methods("GET")

	// Get, update and delete a specific user.
	r.HandleFunc("/user/{id}", s.handleGetUser).Methods("GET")
	r.HandleFunc("/user/{id}", s.requireAuth(s.handleUpdateUser)).Methods("PUT")
	r.HandleFunc("/user/{id}", s.requireAuth(s.handleDeleteUser)).Methods("DELETE")
}

// signupForm is the body of "POST /user". The password never makes it into a
// json-encoded User, so it gets its own field here.
type signupForm struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
	Password string `json:"password"`
}

// handleCreateUser handles the route "POST /user".
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var form signupForm
	if err := decode(r, &form); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user := domain.User{
		Username: form.Username,
		Email:    form.Email,
		Avatar:   form.Avatar,
		Password: form.Password,
	}
	if err := s.us.Create(r.Context(), &user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, &user)
}

// handleAllUsers handles the route "GET /users".
func (s *Server) handleAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.us.All(r.Context())
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, users)
}

// handleGetUser handles the route "GET /user/{id}".
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user, err := s.us.ByID(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, user)
}

// handleUpdateUser handles the route "PUT /user/{id}".
// Fields missing from the body, or left empty, keep their current value.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	var upd domain.UserUpdate
	if err := decode(r, &upd); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user, err := s.us.Update(r.Context(), auth.GetActor(r.Context()), id, upd)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, user)
}

// handleDeleteUser handles the route "DELETE /user/{id}".
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.us.Delete(r.Context(), auth.GetActor(r.Context()), id); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, nil)
}
