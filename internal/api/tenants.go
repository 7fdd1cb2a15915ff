package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	"github.com/adxcore/orchestrator/internal/api/models"
	"github.com/adxcore/orchestrator/internal/tenant"
)

// handleCreateTenant onboards a new tenant
// @Summary Create a new tenant
// @Description Onboards a new tenant with the given subscription tier and isolation level
// @Tags tenants
// @Accept json
// @Produce json
// @Param body body models.CreateTenantRequest true "Tenant creation request"
// @Success 201 {object} models.TenantResponse "Tenant created successfully"
// @Failure 400 {object} models.ErrorResponse "Invalid request or validation error"
// @Failure 409 {object} models.ErrorResponse "Tenant slug already exists"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /v1/tenants [post]
func (s *Server) handleCreateTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := r.Header.Get("X-Request-ID")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Failed to read request body", nil, requestID)
		return
	}
	defer r.Body.Close()

	var req models.CreateTenantRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", []string{err.Error()}, requestID)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.TrimSpace(req.Slug)
	if req.Name == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "name is required", nil, requestID)
		return
	}
	if req.Slug == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "slug is required", nil, requestID)
		return
	}
	if len(req.Name) > 255 {
		s.writeErrorResponse(w, http.StatusBadRequest, "name must be <= 255 characters", nil, requestID)
		return
	}
	if !tenant.Tier(req.Tier).IsValid() {
		s.writeErrorResponse(w, http.StatusBadRequest, "invalid tier", nil, requestID)
		return
	}

	t, err := models.FromCreateRequest(&req)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Failed to process request", []string{err.Error()}, requestID)
		return
	}
	if err := t.Validate(); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid tenant", []string{err.Error()}, requestID)
		return
	}

	t.ID = uuid.New()
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.Version = 1

	if err := s.tenantRepo.CreateTenant(ctx, t); err != nil {
		if errors.Is(err, tenant.ErrTenantExists) {
			s.writeErrorResponse(w, http.StatusConflict, "Tenant slug already exists", nil, requestID)
			return
		}
		s.logger.Error("failed to create tenant", zap.Error(err), zap.String("request_id", requestID))
		s.writeErrorResponse(w, http.StatusInternalServerError, "Failed to create tenant", nil, requestID)
		return
	}

	s.logger.Info("tenant created, awaiting provisioning workflow",
		zap.String("tenant_slug", t.Slug),
		zap.String("request_id", requestID))

	resp := models.ToTenantResponse(t)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// handleGetTenant retrieves a single tenant by ID or slug
// @Summary Get a tenant by ID
// @Description Retrieves a specific tenant resource
// @Tags tenants
// @Produce json
// @Param id path string true "Tenant identifier (UUID or slug)"
// @Success 200 {object} models.TenantResponse "Tenant found"
// @Failure 400 {object} models.ErrorResponse "Invalid tenant identifier format"
// @Failure 404 {object} models.ErrorResponse "Tenant not found"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /v1/tenants/{id} [get]
func (s *Server) handleGetTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := r.Header.Get("X-Request-ID")

	identifier := chi.URLParam(r, "id")
	if strings.TrimSpace(identifier) == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "tenant identifier is required", nil, requestID)
		return
	}
	if isUUIDLike(identifier) {
		if _, err := uuid.Parse(identifier); err != nil {
			s.writeErrorResponse(w, http.StatusBadRequest, "invalid tenant identifier format", []string{err.Error()}, requestID)
			return
		}
	}

	t, err := s.lookupTenant(ctx, identifier)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			s.writeErrorResponse(w, http.StatusNotFound, "Tenant not found", nil, requestID)
			return
		}
		s.logger.Error("failed to get tenant", zap.Error(err), zap.String("request_id", requestID))
		s.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve tenant", nil, requestID)
		return
	}

	resp := models.ToTenantResponse(t)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// handleListTenants lists tenants with pagination
// @Summary List all tenants
// @Description Returns a paginated list of tenants
// @Tags tenants
// @Produce json
// @Param limit query int false "Maximum number of results (default 50)"
// @Param offset query int false "Number of results to skip (default 0)"
// @Param include_deleted query bool false "Include deleted tenants in results"
// @Success 200 {object} models.ListTenantsResponse "List of tenants"
// @Failure 400 {object} models.ErrorResponse "Invalid pagination parameters"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /v1/tenants [get]
func (s *Server) handleListTenants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := r.Header.Get("X-Request-ID")

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")
	includeDeletedStr := r.URL.Query().Get("include_deleted")

	limit := 50
	offset := 0
	includeDeleted := false

	if limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			s.writeErrorResponse(w, http.StatusBadRequest, "Invalid limit parameter", []string{"limit must be a positive integer"}, requestID)
			return
		}
		limit = parsed
	}

	if offsetStr != "" {
		parsed, err := strconv.Atoi(offsetStr)
		if err != nil || parsed < 0 {
			s.writeErrorResponse(w, http.StatusBadRequest, "Invalid offset parameter", []string{"offset must be a non-negative integer"}, requestID)
			return
		}
		offset = parsed
	}
	if includeDeletedStr != "" {
		parsed, err := strconv.ParseBool(includeDeletedStr)
		if err != nil {
			s.writeErrorResponse(w, http.StatusBadRequest, "Invalid include_deleted parameter", []string{"include_deleted must be a boolean"}, requestID)
			return
		}
		includeDeleted = parsed
	}

	filters := tenant.ListFilters{
		Limit:          limit,
		Offset:         offset,
		IncludeDeleted: includeDeleted,
	}
	tenants, err := s.tenantRepo.ListTenants(ctx, filters)
	if err != nil {
		s.logger.Error("failed to list tenants", zap.Error(err), zap.String("request_id", requestID))
		s.writeErrorResponse(w, http.StatusInternalServerError, "Failed to list tenants", nil, requestID)
		return
	}

	countFilters := filters
	countFilters.Limit = 0
	countFilters.Offset = 0
	allTenants, err := s.tenantRepo.ListTenants(ctx, countFilters)
	if err != nil {
		s.logger.Error("failed to count tenants", zap.Error(err), zap.String("request_id", requestID))
		s.writeErrorResponse(w, http.StatusInternalServerError, "Failed to list tenants", nil, requestID)
		return
	}
	total := len(allTenants)

	responses := make([]models.TenantResponse, 0, len(tenants))
	for _, t := range tenants {
		responses = append(responses, models.ToTenantResponse(t))
	}

	resp := models.ListTenantsResponse{
		Tenants: responses,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// handleUpdateTenant updates an existing tenant, triggering an upgrade/downgrade
// workflow when the tier changes.
// @Summary Update a tenant
// @Description Updates properties of an existing tenant
// @Tags tenants
// @Accept json
// @Produce json
// @Param id path string true "Tenant identifier (UUID or slug)"
// @Param body body models.UpdateTenantRequest true "Tenant update request"
// @Success 200 {object} models.TenantResponse "Tenant updated successfully"
// @Success 202 {object} models.TenantResponse "Tier change accepted, workflow in progress"
// @Failure 400 {object} models.ErrorResponse "Invalid request or validation error"
// @Failure 404 {object} models.ErrorResponse "Tenant not found"
// @Failure 409 {object} models.ErrorResponse "Invalid state transition"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /v1/tenants/{id} [put]
func (s *Server) handleUpdateTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := r.Header.Get("X-Request-ID")

	identifier := chi.URLParam(r, "id")
	if strings.TrimSpace(identifier) == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "tenant identifier is required", nil, requestID)
		return
	}
	if isUUIDLike(identifier) {
		if _, err := uuid.Parse(identifier); err != nil {
			s.writeErrorResponse(w, http.StatusBadRequest, "invalid tenant identifier format", []string{err.Error()}, requestID)
			return
		}
	}

	var req models.UpdateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", []string{err.Error()}, requestID)
		return
	}
	defer r.Body.Close()

	t, err := s.lookupTenant(ctx, identifier)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			s.writeErrorResponse(w, http.StatusNotFound, "Tenant not found", nil, requestID)
			return
		}
		s.logger.Error("failed to get tenant", zap.Error(err), zap.String("request_id", requestID))
		s.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve tenant", nil, requestID)
		return
	}

	if t.IsDeleted() {
		s.writeErrorResponse(w, http.StatusConflict, "Tenant is deleted", nil, requestID)
		return
	}

	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			s.writeErrorResponse(w, http.StatusBadRequest, "name cannot be empty", nil, requestID)
			return
		}
		if len(trimmed) > 255 {
			s.writeErrorResponse(w, http.StatusBadRequest, "name must be <= 255 characters", nil, requestID)
			return
		}
		req.Name = &trimmed
	}
	if req.Tier != nil && !tenant.Tier(*req.Tier).IsValid() {
		s.writeErrorResponse(w, http.StatusBadRequest, "invalid tier", nil, requestID)
		return
	}

	previousStatus := t.Status
	previousTier := t.Tier

	if err := models.ApplyUpdateRequest(t, &req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Failed to process update", []string{err.Error()}, requestID)
		return
	}

	tierChanged := req.Tier != nil && t.Tier != previousTier
	if tierChanged && t.Status == tenant.StatusActive {
		if tierRank(t.Tier) > tierRank(previousTier) {
			t.Status = tenant.StatusUpgrading
		} else {
			t.Status = tenant.StatusDowngrading
		}
		t.StatusMessage = "Tier change requested"
		t.WorkflowExecutionID = nil
		t.Quotas = tenant.DefaultQuotasForTier(t.Tier)
	}

	if previousStatus != t.Status {
		if err := tenant.ValidateTransition(previousStatus, t.Status); err != nil {
			s.writeInvalidStateError(w, "Invalid state transition", []string{err.Error()}, requestID)
			return
		}
	}

	t.UpdatedAt = time.Now()

	if err := s.tenantRepo.UpdateTenant(ctx, t); err != nil {
		if errors.Is(err, tenant.ErrVersionConflict) {
			s.writeErrorResponse(w, http.StatusConflict, "Tenant was modified concurrently", nil, requestID)
			return
		}
		s.logger.Error("failed to update tenant", zap.Error(err), zap.String("request_id", requestID))
		s.writeErrorResponse(w, http.StatusInternalServerError, "Failed to update tenant", nil, requestID)
		return
	}

	resp := models.ToTenantResponse(t)
	w.Header().Set("Content-Type", "application/json")
	if tierChanged && (t.Status == tenant.StatusUpgrading || t.Status == tenant.StatusDowngrading) {
		w.WriteHeader(http.StatusAccepted)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(resp)
}

// handleSuspendTenant suspends a tenant, blocking access without destroying its data.
// @Summary Suspend a tenant
// @Description Suspends an active tenant (e.g. for billing failure or abuse)
// @Tags tenants
// @Param id path string true "Tenant identifier (UUID or slug)"
// @Success 200 {object} models.TenantResponse "Tenant suspended"
// @Failure 400 {object} models.ErrorResponse "Invalid tenant identifier format"
// @Failure 404 {object} models.ErrorResponse "Tenant not found"
// @Failure 409 {object} models.ErrorResponse "Invalid state transition"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /v1/tenants/{id}/suspend [post]
func (s *Server) handleSuspendTenant(w http.ResponseWriter, r *http.Request) {
	s.transitionTenantStatus(w, r, tenant.StatusSuspended, "Suspended by operator")
}

// handleReactivateTenant reactivates a suspended tenant.
// @Summary Reactivate a tenant
// @Description Reactivates a suspended tenant
// @Tags tenants
// @Param id path string true "Tenant identifier (UUID or slug)"
// @Success 200 {object} models.TenantResponse "Tenant reactivated"
// @Failure 400 {object} models.ErrorResponse "Invalid tenant identifier format"
// @Failure 404 {object} models.ErrorResponse "Tenant not found"
// @Failure 409 {object} models.ErrorResponse "Invalid state transition"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /v1/tenants/{id}/reactivate [post]
func (s *Server) handleReactivateTenant(w http.ResponseWriter, r *http.Request) {
	s.transitionTenantStatus(w, r, tenant.StatusActive, "Reactivated by operator")
}

func (s *Server) transitionTenantStatus(w http.ResponseWriter, r *http.Request, target tenant.Status, message string) {
	ctx := r.Context()
	requestID := r.Header.Get("X-Request-ID")

	identifier := chi.URLParam(r, "id")
	if strings.TrimSpace(identifier) == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "tenant identifier is required", nil, requestID)
		return
	}

	t, err := s.lookupTenant(ctx, identifier)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			s.writeErrorResponse(w, http.StatusNotFound, "Tenant not found", nil, requestID)
			return
		}
		s.logger.Error("failed to get tenant", zap.Error(err), zap.String("request_id", requestID))
		s.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve tenant", nil, requestID)
		return
	}

	if t.Status == target {
		resp := models.ToTenantResponse(t)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
		return
	}

	if err := tenant.ValidateTransition(t.Status, target); err != nil {
		s.writeInvalidStateError(w, "Invalid state transition", []string{err.Error()}, requestID)
		return
	}

	t.Status = target
	t.StatusMessage = message
	t.UpdatedAt = time.Now()

	if err := s.tenantRepo.UpdateTenant(ctx, t); err != nil {
		if errors.Is(err, tenant.ErrVersionConflict) {
			s.writeErrorResponse(w, http.StatusConflict, "Tenant was modified concurrently", nil, requestID)
			return
		}
		s.logger.Error("failed to update tenant status", zap.Error(err), zap.String("request_id", requestID))
		s.writeErrorResponse(w, http.StatusInternalServerError, "Failed to update tenant", nil, requestID)
		return
	}

	resp := models.ToTenantResponse(t)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// handleDeleteTenant marks a tenant deleted. Actual data purge happens through
// the GDPR deletion workflow; this only flips tenant status to terminal.
// @Summary Delete a tenant
// @Description Marks a tenant as deleted; data purge is not started by this endpoint
// @Tags tenants
// @Param id path string true "Tenant identifier (UUID or slug)"
// @Success 202 {object} models.TenantResponse "Tenant deletion initiated"
// @Failure 400 {object} models.ErrorResponse "Invalid tenant identifier format"
// @Failure 404 {object} models.ErrorResponse "Tenant not found"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /v1/tenants/{id} [delete]
func (s *Server) handleDeleteTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := r.Header.Get("X-Request-ID")

	identifier := chi.URLParam(r, "id")
	if strings.TrimSpace(identifier) == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "tenant identifier is required", nil, requestID)
		return
	}
	if isUUIDLike(identifier) {
		if _, err := uuid.Parse(identifier); err != nil {
			s.writeErrorResponse(w, http.StatusBadRequest, "invalid tenant identifier format", []string{err.Error()}, requestID)
			return
		}
	}

	t, err := s.lookupTenant(ctx, identifier)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			s.writeErrorResponse(w, http.StatusNotFound, "Tenant not found", nil, requestID)
			return
		}
		s.logger.Error("failed to get tenant", zap.Error(err), zap.String("request_id", requestID))
		s.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve tenant", nil, requestID)
		return
	}

	if t.IsDeleted() {
		resp := models.ToTenantResponse(t)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(resp)
		return
	}

	if err := tenant.ValidateTransition(t.Status, tenant.StatusDeleted); err != nil {
		s.writeInvalidStateError(w, "Invalid state transition", []string{err.Error()}, requestID)
		return
	}

	t.Status = tenant.StatusDeleted
	t.StatusMessage = "Deletion requested"
	t.WorkflowExecutionID = nil
	t.UpdatedAt = time.Now()

	if err := s.tenantRepo.UpdateTenant(ctx, t); err != nil {
		s.logger.Error("failed to mark tenant deleted", zap.Error(err), zap.String("request_id", requestID))
		s.writeErrorResponse(w, http.StatusInternalServerError, "Failed to initiate deletion", nil, requestID)
		return
	}

	resp := models.ToTenantResponse(t)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(resp)
}

// tierRank orders tiers for upgrade/downgrade classification.
func tierRank(t tenant.Tier) int {
	switch t {
	case tenant.TierFree:
		return 0
	case tenant.TierStarter:
		return 1
	case tenant.TierProfessional:
		return 2
	case tenant.TierEnterprise, tenant.TierCustom:
		return 3
	default:
		return -1
	}
}

// writeErrorResponse writes a standardized error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string, details []string, requestID string) {
	resp := models.ErrorResponse{
		Error:     message,
		Details:   details,
		RequestID: requestID,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

// writeWorkflowError writes a standardized error response for workflow trigger failures (500)
func (s *Server) writeWorkflowError(w http.ResponseWriter, err error, tenantID string, requestID string) {
	s.logger.Error("failed to trigger workflow",
		zap.Error(err),
		zap.String("tenant_id", tenantID),
		zap.String("request_id", requestID))
	s.writeErrorResponse(w, http.StatusInternalServerError, "Failed to trigger workflow", []string{err.Error()}, requestID)
}

// writeInvalidStateError writes a standardized error response for invalid state transitions (409)
func (s *Server) writeInvalidStateError(w http.ResponseWriter, message string, details []string, requestID string) {
	s.logger.Warn("invalid state transition",
		zap.String("message", message),
		zap.Strings("details", details),
		zap.String("request_id", requestID))
	s.writeErrorResponse(w, http.StatusConflict, message, details, requestID)
}

func (s *Server) lookupTenant(ctx context.Context, identifier string) (*tenant.Tenant, error) {
	if id, err := uuid.Parse(identifier); err == nil {
		return s.tenantRepo.GetTenantByID(ctx, id)
	}
	return s.tenantRepo.GetTenantBySlug(ctx, identifier)
}

var uuidLikePattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

func isUUIDLike(value string) bool {
	return uuidLikePattern.MatchString(value)
}
