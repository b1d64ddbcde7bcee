package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"zipper.com/internal/application/usecase"
	"zipper.com/internal/domain/entity"
	"zipper.com/internal/domain/port"
	"zipper.com/internal/infrastructure/logger"
)

const maxBodyBytes = 1 << 20

// Handler holds HTTP handlers and their dependencies
type Handler struct {
	executeBundleUseCase  *usecase.ExecuteBundleUseCase
	simulateBundleUseCase *usecase.SimulateBundleUseCase
	getAccountUseCase     *usecase.GetAccountUseCase
	validator             port.BundleValidator
	logger                logger.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	executeBundleUseCase *usecase.ExecuteBundleUseCase,
	simulateBundleUseCase *usecase.SimulateBundleUseCase,
	getAccountUseCase *usecase.GetAccountUseCase,
	validator port.BundleValidator,
	logger logger.Logger,
) *Handler {
	return &Handler{
		executeBundleUseCase:  executeBundleUseCase,
		simulateBundleUseCase: simulateBundleUseCase,
		getAccountUseCase:     getAccountUseCase,
		validator:             validator,
		logger:                logger,
	}
}

// SimulateRequest is the body of POST /bundles/simulate
type SimulateRequest struct {
	Bundle    entity.Bundle    `json:"bundle"`
	Addresses []entity.Address `json:"addresses"`
}

// SimulateResponse is the result of a simulation plus the thresholds a
// caller can pass to a trailing verify instruction
type SimulateResponse struct {
	*entity.SimulationResult
	ExpectedBalances []uint64 `json:"expected_balances,omitempty"`
}

// ReferencesRequest is the body of POST /references
type ReferencesRequest struct {
	Addresses []entity.Address `json:"addresses"`
}

// HandleSubmitBundle handles POST /bundles requests
func (h *Handler) HandleSubmitBundle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := loggerFrom(ctx, h.logger)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		requestLogger.LogError(ctx, "Failed to read request body", err)
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	if err := h.validator.ValidateRequest(ctx, r, body); err != nil {
		requestLogger.LogWarning(ctx, "Bundle validation failed", "error", err.Error())
		http.Error(w, fmt.Sprintf("Validation failed: %v", err), http.StatusUnauthorized)
		return
	}

	var bundle entity.Bundle
	if err := json.Unmarshal(body, &bundle); err != nil {
		requestLogger.LogError(ctx, "Failed to parse JSON body", err)
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	receipt, err := h.executeBundleUseCase.Execute(ctx, &bundle)
	if err != nil {
		h.writeExecuteError(w, r, err)
		return
	}

	status := http.StatusOK
	if receipt.Status == entity.BundleAborted {
		status = http.StatusConflict
	}
	h.writeJSON(w, r, status, receipt)

	requestLogger.LogInfo(ctx, "Bundle processed",
		"bundle_id", receipt.ID,
		"status", string(receipt.Status))
}

// HandleSimulateBundle handles POST /bundles/simulate requests
func (h *Handler) HandleSimulateBundle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := loggerFrom(ctx, h.logger)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SimulateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		requestLogger.LogError(ctx, "Failed to parse JSON body", err)
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	result, err := h.simulateBundleUseCase.Execute(ctx, &req.Bundle, req.Addresses)
	if err != nil {
		h.writeExecuteError(w, r, err)
		return
	}

	resp := SimulateResponse{SimulationResult: result}
	if result.Receipt.Status == entity.BundleSimulated {
		if balances, err := result.ExpectedBalances(); err == nil {
			resp.ExpectedBalances = balances
		}
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

// HandleReferences handles POST /references requests
func (h *Handler) HandleReferences(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ReferencesRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	h.writeJSON(w, r, http.StatusOK, usecase.BuildReferences(req.Addresses))
}

// HandleAccount handles GET /accounts/{address} requests
func (h *Handler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := loggerFrom(ctx, h.logger)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/accounts/")
	if path == "" || path == r.URL.Path {
		http.Error(w, "Missing address parameter", http.StatusBadRequest)
		return
	}

	addr, err := entity.ParseAddress(path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	view, err := h.getAccountUseCase.Execute(ctx, addr)
	if errors.Is(err, entity.ErrAccountNotFound) {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}
	if err != nil {
		requestLogger.LogError(ctx, "Failed to get account", err)
		http.Error(w, "Failed to get account", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, r, http.StatusOK, view)
}

func (h *Handler) writeExecuteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, entity.ErrEmptyBundle),
		errors.Is(err, entity.ErrInvalidInstruction),
		errors.Is(err, entity.ErrUnknownInstruction),
		errors.Is(err, entity.ErrTooManyAccounts):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		loggerFrom(r.Context(), h.logger).LogError(r.Context(), "Failed to execute bundle", err)
		http.Error(w, "Failed to execute bundle", http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		loggerFrom(r.Context(), h.logger).LogError(r.Context(), "Failed to encode response", err)
	}
}

// SetupRoutes sets up all HTTP routes
func (h *Handler) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	wrap := func(next http.HandlerFunc) http.HandlerFunc {
		return RequestIDMiddleware(LoggingMiddleware(next, h.logger), h.logger)
	}

	mux.HandleFunc("/bundles", wrap(h.HandleSubmitBundle))
	mux.HandleFunc("/bundles/simulate", wrap(h.HandleSimulateBundle))
	mux.HandleFunc("/references", wrap(h.HandleReferences))
	mux.HandleFunc("/accounts/", wrap(h.HandleAccount))

	return mux
}
