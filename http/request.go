package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"blogGraph/errs"
)

// pathID parses the path variable with the given name as a uuid.
func pathID(r *http.Request, name string) (string, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return "", errs.Errorf(errs.EINVALID, "Invalid Id format.")
	}
	return id.String(), nil
}

// pathIDs parses several path variables at once, stopping at the first invalid one.
func pathIDs(r *http.Request, names ...string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		id, err := pathID(r, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// queryInt reads an integer query parameter, falling back to def if it's absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errs.Errorf(errs.EINVALID, "The %s parameter must be a number.", name)
	}
	return n, nil
}

// decode reads the request's json body into dst.
func decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errs.Errorf(errs.EINVALID, "Invalid request body.")
	}
	return nil
}

// respond writes v as json with the given status code.
func respond(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		errs.LogError(r, err)
	}
}
