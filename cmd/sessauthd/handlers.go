package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	sessauth "github.com/sessauth/sessauth"
	"github.com/sessauth/sessauth/metrics/export/prometheus"
	"github.com/sessauth/sessauth/middleware"
)

type server struct {
	engine *sessauth.Engine
	config ServerConfig
}

func newServer(engine *sessauth.Engine, config ServerConfig) *server {
	return &server{
		engine: engine,
		config: config,
	}
}

// Router wires all routes. Auth endpoints and pages sit at the top level, the
// JSON API under /api/, static files under /public/.
func (s *server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(bodyLimit)

	r.HandleFunc("/", s.indexPage).Methods(http.MethodGet)
	r.HandleFunc("/login", s.loginPage).Methods(http.MethodGet)

	r.PathPrefix("/public/").Handler(
		http.StripPrefix("/public/", http.FileServer(http.Dir(s.config.PublicDir))),
	).Methods(http.MethodGet)

	if s.config.Metrics {
		r.Handle("/metrics", prometheus.NewExporter(s.engine).Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/login", s.apiLogin).Methods(http.MethodPost)
	api.HandleFunc("/create-uuid-v4", s.createUUIDv4).Methods(http.MethodGet)
	api.HandleFunc("/echo/{this}/and/{that}", s.echoThisAndThat).Methods(http.MethodGet)
	api.HandleFunc("/echo-path", s.echoPath).Methods(http.MethodGet)
	api.HandleFunc("/echo-query-params", s.echoQueryParams).Methods(http.MethodGet)
	api.HandleFunc("/echo-parsed-query-params", s.echoParsedQueryParams).Methods(http.MethodGet)
	api.HandleFunc("/echo-uuid-in-path/{uuid}", s.echoUUIDInPath).Methods(http.MethodGet)

	guard := middleware.Guard(s.engine)
	api.Handle("/logout", guard(http.HandlerFunc(s.apiLogout))).Methods(http.MethodPost)

	admin := middleware.RequireRole(sessauth.RoleAdmin)
	api.Handle("/seen-users", guard(admin(http.HandlerFunc(s.seenUsers)))).Methods(http.MethodGet)
	api.Handle("/seen-users/{index:[0-9]+}", guard(admin(http.HandlerFunc(s.seenUserAt)))).Methods(http.MethodGet)

	return r
}

func bodyLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		next.ServeHTTP(w, r)
	})
}

type loginRequest struct {
	Loginname string `json:"loginname"`
	Password  string `json:"password"`
}

type loginResponse struct {
	Loginname string `json:"loginname"`
}

func (s *server) apiLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	token, ttl, err := s.engine.Login(middleware.RequestContext(r), req.Loginname, req.Password)
	if err != nil {
		if errors.Is(err, sessauth.ErrInvalidLogin) {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	middleware.SetAccessTokenCookie(w, r, token, ttl)
	writeJSON(w, http.StatusOK, loginResponse{Loginname: req.Loginname})
}

func (s *server) apiLogout(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	s.engine.Logout(middleware.RequestContext(r), info)
	middleware.ClearAccessTokenCookie(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) seenUsers(w http.ResponseWriter, r *http.Request) {
	log.Println("seen-users listing requested")

	writeJSON(w, http.StatusOK, map[string]any{
		"login_infos": s.engine.SeenUsers(r.Context()),
	})
}

func (s *server) seenUserAt(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	info, err := s.engine.SeenUserAt(r.Context(), index)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

func (s *server) createUUIDv4(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(uuid.NewString()))
}

func (s *server) echoThisAndThat(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	writeJSON(w, http.StatusOK, map[string]string{
		"this": vars["this"],
		"that": vars["that"],
	})
}

func (s *server) echoPath(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"path": r.URL.Path,
	})
}

func (s *server) echoQueryParams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, r.URL.Query())
}

type parsedQueryParams struct {
	List []string  `json:"list"`
	UUID uuid.UUID `json:"uuid"`
}

func (s *server) echoParsedQueryParams(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	id, err := uuid.Parse(query.Get("uuid"))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, parsedQueryParams{
		List: query["list"],
		UUID: id,
	})
}

func (s *server) echoUUIDInPath(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["uuid"])
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, id)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
