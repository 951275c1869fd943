package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"blogGraph/auth"
	"blogGraph/crud"
	"blogGraph/domain"
	"blogGraph/errs"
)

// Server provides the http functionality of this app, namely routing,
// request handling, and middleware. It resolves the caller's identity
// before handing things over to one of the crud services, which do the
// authorization themselves.
type Server struct {
	router *mux.Router
	us     domain.UserService
	ps     domain.PostService
	cs     domain.CommentService
	fs     domain.FollowService
	ls     domain.LikeService
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the crud services passed in.
func NewServer(services *crud.Services) *Server {
	// Construct a new Server with a gorilla router and the services passed in.
	s := &Server{
		router: mux.NewRouter(),
		us:     services.User,
		ps:     services.Post,
		cs:     services.Comment,
		fs:     services.Follow,
		ls:     services.Like,
	}

	// Register routes of the auth system.
	s.registerAuthRoutes(s.router)

	// Register routes of the crud system.
	s.registerUserRoutes(s.router)
	s.registerPostRoutes(s.router)
	s.registerCommentRoutes(s.router)
	s.registerFollowRoutes(s.router)
	s.registerLikeRoutes(s.router)

	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// The router skips its middleware for requests no route matches,
	// so these get instrumented here.
	s.router.NotFoundHandler = s.instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errs.ReturnError(w, r, errs.Errorf(errs.ENOTFOUND, "There is nothing here."))
	}))
	s.router.MethodNotAllowedHandler = s.instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errs.ReturnError(w, r, errs.Errorf(errs.EMETHOD, "%s is not allowed here.", r.Method))
	}))

	// Set up middleware that needs to run on every request.
	s.router.Use(s.instrument, setContentTypeJSON, s.checkUser)
	return s
}

// Handler returns the router, with all routes and middleware attached.
func (s *Server) Handler() http.Handler {
	return s.router
}

// The setContentTypeJSON middleware sets the content type to "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// checkUser looks for a bearer token on the request. If it belongs to a user, the
// user's Actor is put into the request context. A missing or unknown token leaves the
// request anonymous, it's up to requireAuth to turn it away.
func (s *Server) checkUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.us.ByRemember(r.Context(), token)
		if err != nil {
			if errs.ErrorCode(err) != errs.EUNAUTHENTICATED {
				errs.ReturnError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
			return
		}
		ctx := auth.SetActor(r.Context(), domain.NewActor(user))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAuth rejects requests that checkUser couldn't resolve to a user.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.GetActor(r.Context()) == nil {
			errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHENTICATED, "You need to be logged in."))
			return
		}
		next(w, r)
	}
}

// bearerToken parses "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Run listens on addr until ctx is cancelled, then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
