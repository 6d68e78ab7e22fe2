package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	domoperator "example.com/divide-account/internal/domain/operator"
	domshopping "example.com/divide-account/internal/domain/shopping"
	domsplit "example.com/divide-account/internal/domain/split"
	authuc "example.com/divide-account/internal/usecase/auth"
	divideuc "example.com/divide-account/internal/usecase/divide"
	historyuc "example.com/divide-account/internal/usecase/history"
)

// StorePinger reports whether the split store is reachable.
type StorePinger interface {
	Ping(ctx context.Context) error
}

type API struct {
	authSvc    *authuc.Service
	divideSvc  *divideuc.Service
	historySvc *historyuc.Service
	tokenSvc   authuc.TokenService
	store      StorePinger
	gatherer   prometheus.Gatherer
	validator  *validator.Validate
}

type Dependencies struct {
	AuthService    *authuc.Service
	DivideService  *divideuc.Service
	HistoryService *historyuc.Service
	TokenService   authuc.TokenService
	Store          StorePinger

	// Gatherer backs /metrics; nil means the default registry.
	Gatherer prometheus.Gatherer
}

func NewAPI(deps Dependencies) *API {
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &API{
		authSvc:    deps.AuthService,
		divideSvc:  deps.DivideService,
		historySvc: deps.HistoryService,
		tokenSvc:   deps.TokenService,
		store:      deps.Store,
		gatherer:   gatherer,
		validator:  validator.New(),
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/store", a.handleStoreHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.AllowContentType("application/json"))

		r.Post("/auth/login", a.handleLogin)
		r.Post("/splits", a.handleCreateSplit)
		r.Post("/splits/validate", a.handleValidateSplit)

		r.Group(func(pr chi.Router) {
			pr.Use(a.authMiddleware)
			pr.Get("/splits", a.handleListSplits)
			pr.Get("/splits/{id}", a.handleGetSplit)
		})
	})

	return r
}

func (a *API) handleStoreHealth(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	if err := a.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) decodeAndValidate(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return a.validator.Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func handleDomainError(w http.ResponseWriter, err error) {
	var verr *domshopping.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   domshopping.ErrValidation.Error(),
			Details: verr,
		})
	case errors.Is(err, domoperator.ErrInvalidCredential):
		respondError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, domsplit.ErrSplitNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, domoperator.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, err)
	default:
		respondError(w, http.StatusInternalServerError, err)
	}
}
