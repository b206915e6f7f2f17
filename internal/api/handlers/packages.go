package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"parcel-delivery-service/internal/api/dto"
	"parcel-delivery-service/internal/api/sessionctx"
	"parcel-delivery-service/internal/domain"
	"parcel-delivery-service/internal/ports"
	"parcel-delivery-service/internal/services"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PackageHandler exposes the session-scoped package endpoints.
type PackageHandler struct {
	Repo       ports.PackageRepository
	Sessions   *services.SessionService
	Dispatcher ports.CostDispatcher
}

// ensureSession gates the request on the session registry. It writes the
// error response itself when the gate fails.
func (h *PackageHandler) ensureSession(w http.ResponseWriter, r *http.Request) (*domain.Session, bool) {
	sess, err := h.Sessions.Ensure(r.Context(), sessionctx.SessionID(r.Context()))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSessionID) {
			writeError(w, r, http.StatusForbidden, codeForbidden, "invalid session")
			return nil, false
		}
		slog.Error("session gate failed", slog.String("error", err.Error()))
		writeError(w, r, http.StatusInternalServerError, codeInternal, "internal server error")
		return nil, false
	}
	return sess, true
}

// Create persists the package with a pending cost and hands it to the
// asynchronous pricing pipeline. An enqueue failure leaves the package in
// place and is reported in the response status, never as a request failure.
func (h *PackageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, r, map[string]string{"body": "malformed JSON body"})
		return
	}

	if problems := req.Validate(); len(problems) > 0 {
		writeValidationError(w, r, problems)
		return
	}

	sess, ok := h.ensureSession(w, r)
	if !ok {
		return
	}

	if _, err := h.Repo.GetTypeByID(r.Context(), req.TypeID); err != nil {
		if errors.Is(err, domain.ErrUnknownType) {
			writeError(w, r, http.StatusNotFound, codeNotFound, "package type not found")
			return
		}
		slog.Error("package type lookup failed", slog.String("error", err.Error()))
		writeError(w, r, http.StatusInternalServerError, codeInternal, "internal server error")
		return
	}

	pkg := &domain.Package{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Weight:       req.Weight,
		Price:        req.Price,
		TypeID:       req.TypeID,
		SessionID:    sess.ID,
		ShippingCost: domain.CostPending,
	}

	if err := h.Repo.Create(r.Context(), pkg); err != nil {
		slog.Error("create package failed", slog.String("error", err.Error()))
		writeError(w, r, http.StatusInternalServerError, codeInternal, "failed to create package")
		return
	}

	taskID, err := h.Dispatcher.DispatchCostComputation(r.Context(), pkg)
	if err != nil {
		// The package is committed; pricing will be re-driven out-of-band.
		slog.Error("dispatch cost computation failed",
			slog.String("package_id", pkg.ID.String()),
			slog.String("error", err.Error()))
		writeJSON(w, r, http.StatusAccepted, dto.TaskResponse{TaskID: "", Status: "error"})
		return
	}

	writeJSON(w, r, http.StatusAccepted, dto.TaskResponse{TaskID: taskID.String(), Status: "processing"})
}

// List returns the session's packages with pagination and conjunctive
// filters on type and computed-cost state.
func (h *PackageHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, problems := parseListFilter(r)
	if len(problems) > 0 {
		writeValidationError(w, r, problems)
		return
	}

	sess, ok := h.ensureSession(w, r)
	if !ok {
		return
	}

	if filter.TypeID != nil {
		if _, err := h.Repo.GetTypeByID(r.Context(), *filter.TypeID); err != nil {
			if errors.Is(err, domain.ErrUnknownType) {
				writeError(w, r, http.StatusNotFound, codeNotFound, "package type not found")
				return
			}
			slog.Error("package type lookup failed", slog.String("error", err.Error()))
			writeError(w, r, http.StatusInternalServerError, codeInternal, "internal server error")
			return
		}
	}

	packages, total, err := h.Repo.ListBySession(r.Context(), sess.ID, filter)
	if err != nil {
		slog.Error("list packages failed", slog.String("error", err.Error()))
		writeError(w, r, http.StatusInternalServerError, codeInternal, "failed to list packages")
		return
	}

	res := dto.ListPackagesResponse{
		Packages: make([]dto.PackageResponse, 0, len(packages)),
		Total:    total,
		Page:     filter.Page,
		Size:     filter.Size,
		Pages:    (total + filter.Size - 1) / filter.Size,
	}
	for _, p := range packages {
		res.Packages = append(res.Packages, dto.NewPackageResponse(p))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Get returns one package scoped to the caller's session. A nonexistent id
// and a foreign session's id are deliberately indistinguishable.
func (h *PackageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, codeNotFound, "package not found")
		return
	}

	sess, ok := h.ensureSession(w, r)
	if !ok {
		return
	}

	pkg, err := h.Repo.GetByIDAndSession(r.Context(), id, sess.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, codeNotFound, "package not found")
			return
		}
		slog.Error("get package failed", slog.String("error", err.Error()))
		writeError(w, r, http.StatusInternalServerError, codeInternal, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewPackageResponse(pkg))
}

// Types returns the immutable package-type reference data.
func (h *PackageHandler) Types(w http.ResponseWriter, r *http.Request) {
	types, err := h.Repo.ListTypes(r.Context())
	if err != nil {
		slog.Error("list package types failed", slog.String("error", err.Error()))
		writeError(w, r, http.StatusInternalServerError, codeInternal, "failed to list package types")
		return
	}

	res := make([]dto.PackageTypeResponse, 0, len(types))
	for _, t := range types {
		res = append(res, dto.PackageTypeResponse{ID: t.ID, Name: t.Name})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func parseListFilter(r *http.Request) (ports.ListFilter, map[string]string) {
	problems := make(map[string]string)
	q := r.URL.Query()

	filter := ports.ListFilter{Page: 1, Size: defaultPageSize}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			problems["page"] = "page must be an integer >= 1"
		} else {
			filter.Page = page
		}
	}

	if raw := q.Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > maxPageSize {
			problems["size"] = "size must be an integer between 1 and 100"
		} else {
			filter.Size = size
		}
	}

	if raw := q.Get("type_id"); raw != "" {
		typeID, err := strconv.Atoi(raw)
		if err != nil || typeID < 1 {
			problems["type_id"] = "type_id must be a positive integer"
		} else {
			filter.TypeID = &typeID
		}
	}

	if raw := q.Get("has_shipping_cost"); raw != "" {
		has, err := strconv.ParseBool(raw)
		if err != nil {
			problems["has_shipping_cost"] = "has_shipping_cost must be a boolean"
		} else {
			filter.HasShippingCost = &has
		}
	}

	return filter, problems
}
