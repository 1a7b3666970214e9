package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/token"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type account struct {
	id       string
	password string
	role     string
}

// devBackend is an in-memory stand-in for the REST backend: it accepts the
// sign-in and sign-up payloads and answers with the same envelopes.
type devBackend struct {
	issuer *token.Issuer
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	accounts map[string]account // by phone
}

func newDevBackend(issuer *token.Issuer, logger *zap.Logger) *devBackend {
	return &devBackend{
		issuer: issuer,
		logger: logger,
		now:    time.Now,
		accounts: map[string]account{
			"9000000001": {id: "admin-1", password: "admin-pass", role: permission.RoleAdmin},
			"9000000002": {id: "user-1", password: "user-pass", role: permission.RoleUser},
		},
	}
}

func (b *devBackend) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/signin", b.signIn).Methods(http.MethodPost)
	r.HandleFunc("/signup", b.signUp).Methods(http.MethodPost)
	return r
}

func (b *devBackend) signIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFieldErrors(w, http.StatusBadRequest, map[string][]string{"form": {"Invalid request body"}})
		return
	}

	b.mu.Lock()
	acct, ok := b.accounts[body.Phone]
	b.mu.Unlock()
	if !ok || acct.password != body.Password {
		writeFieldErrors(w, http.StatusUnauthorized, map[string][]string{"form": {"Invalid phone number or password"}})
		return
	}

	raw, err := b.issuer.Issue(token.Claims{Role: acct.role, UserID: acct.id, Subject: body.Phone}, b.now())
	if err != nil {
		b.logger.Error("token issue failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": raw, "token_type": "bearer"})
}

func (b *devBackend) signUp(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFieldErrors(w, http.StatusBadRequest, map[string][]string{"form": {"Invalid request body"}})
		return
	}

	errs := map[string][]string{}
	if strings.TrimSpace(body.Name) == "" {
		errs["name"] = []string{"Name is required"}
	}
	if strings.TrimSpace(body.Phone) == "" {
		errs["phone"] = []string{"Phone is required"}
	}
	if len(body.Password) < 8 {
		errs["password"] = []string{"Password must be at least 8 characters"}
	}
	if len(errs) > 0 {
		writeFieldErrors(w, http.StatusUnprocessableEntity, errs)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.accounts[body.Phone]; exists {
		writeFieldErrors(w, http.StatusConflict, map[string][]string{"phone": {"Phone number already registered"}})
		return
	}
	b.accounts[body.Phone] = account{id: uuid.NewString(), password: body.Password, role: permission.RoleUser}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Signup successful!"})
}

func writeFieldErrors(w http.ResponseWriter, status int, errs map[string][]string) {
	writeJSON(w, status, map[string]any{"detail": map[string]any{"errors": errs}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
