package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"doctags/internal/delivery/http/helpers"
	"doctags/internal/delivery/http/middleware"
	"doctags/internal/domain"
)

// SubscribeRequest is the request body for POST /subscriptions.
type SubscribeRequest struct {
	Tag string `json:"tag"`
}

// Validate implements Validator.
func (s SubscribeRequest) Validate() []string {
	if strings.TrimSpace(s.Tag) == "" {
		return []string{"tag is required"}
	}
	return nil
}

// SubscribeSuccessResponse is the success response envelope for POST /subscriptions (200/201).
type SubscribeSuccessResponse struct {
	Data  *domain.TagSubscription `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// ListSubscriptionsSuccessResponse is the success response envelope for GET /subscriptions (200).
type ListSubscriptionsSuccessResponse struct {
	Data  []*domain.TagSubscription `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// UnsubscribeResponse is the data payload for DELETE /subscriptions/{tag} (200).
type UnsubscribeResponse struct {
	Status string `json:"status"`
}

// UnsubscribeSuccessResponse is the success response envelope for DELETE /subscriptions/{tag} (200).
type UnsubscribeSuccessResponse struct {
	Data  UnsubscribeResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// SubscriptionController handles tag subscription endpoints.
type SubscriptionController struct {
	Logger  *slog.Logger
	Service domain.SubscriptionService
}

// NewSubscriptionController creates a SubscriptionController with the given logger and service.
func NewSubscriptionController(logger *slog.Logger, svc domain.SubscriptionService) *SubscriptionController {
	return &SubscriptionController{
		Logger:  logger,
		Service: svc,
	}
}

// Subscribe godoc
// @Summary Subscribe to a tag
// @Description Subscribes the authenticated user to a tag. Whenever the tag is added to a document, the user is emailed. Subscribing twice is a no-op: 201 when the subscription was created, 200 when it already existed.
// @Tags subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SubscribeRequest true "Tag to subscribe to"
// @Success 200 {object} controllers.SubscribeSuccessResponse "already subscribed; data contains the existing subscription"
// @Success 201 {object} controllers.SubscribeSuccessResponse "data contains the new subscription"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (invalid tag)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /subscriptions [post]
func (c *SubscriptionController) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	sub, created, err := c.Service.Subscribe(r.Context(), userID, req.Tag)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTag) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	helpers.WriteJSONSuccess(w, status, sub)
}

// ListSubscriptions godoc
// @Summary List the current user's tag subscriptions
// @Description Returns all tags the authenticated user is subscribed to, newest first. Requires Bearer token.
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListSubscriptionsSuccessResponse "data is an array of subscriptions"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /subscriptions [get]
func (c *SubscriptionController) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	subs, err := c.Service.ListByUser(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if subs == nil {
		subs = []*domain.TagSubscription{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, subs)
}

// Unsubscribe godoc
// @Summary Unsubscribe from a tag
// @Description Removes the authenticated user's subscription to the tag. Requires Bearer token.
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param tag path string true "Tag to unsubscribe from"
// @Success 200 {object} controllers.UnsubscribeSuccessResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (invalid tag)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no such subscription)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /subscriptions/{tag} [delete]
func (c *SubscriptionController) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	tag := r.PathValue("tag")
	if tag == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing tag")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Unsubscribe(r.Context(), userID, tag); err != nil {
		if errors.Is(err, domain.ErrInvalidTag) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "subscription not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, UnsubscribeResponse{Status: "unsubscribed"})
}
