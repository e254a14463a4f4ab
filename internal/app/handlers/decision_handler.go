package handlers

import (
	"context"
	stderrors "errors"
	"net/http"

	"loan-approval/internal/common/errors"
	"loan-approval/internal/common/logger"
	"loan-approval/internal/decision"
	"loan-approval/internal/models"
	"loan-approval/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// DecisionService is satisfied by *decision.Service.
type DecisionService interface {
	Decide(ctx context.Context, record models.ApplicantRecord, origin decision.Origin) (*models.Decision, error)
	Options() models.DecisionOptions
}

// DecisionRecorder is satisfied by *store.DecisionStore.
type DecisionRecorder interface {
	Save(ctx context.Context, d *models.Decision) (*store.Receipt, error)
	Find(ctx context.Context, id string) (*models.Decision, error)
}

type DecisionHandler struct {
	service  DecisionService
	recorder DecisionRecorder
	logger   logger.Logger
}

// NewDecisionHandler returns a handler; recorder may be nil when no database
// is configured.
func NewDecisionHandler(service DecisionService, recorder DecisionRecorder, log logger.Logger) *DecisionHandler {
	return &DecisionHandler{
		service:  service,
		recorder: recorder,
		logger:   log.WithFields(map[string]interface{}{"component": "decision-handler"}),
	}
}

func (h *DecisionHandler) Decide(c *gin.Context) {
	var body models.ApplicantRecord
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingError(err)})
		return
	}

	d, err := h.service.Decide(c.Request.Context(), body, decision.OriginHTTP)
	if err != nil {
		stdErr := errors.FromInference(err)
		c.JSON(statusFor(stdErr), gin.H{"error": stdErr})
		return
	}

	if h.recorder != nil {
		if _, err := h.recorder.Save(c.Request.Context(), d); err != nil {
			h.logger.Error("Decision made but not recorded", map[string]interface{}{
				"loanId": body.LoanID,
				"error":  err.Error(),
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{"decision": d})
}

func (h *DecisionHandler) Options(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Options())
}

func (h *DecisionHandler) Get(c *gin.Context) {
	if h.recorder == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "decision store is not configured"})
		return
	}

	d, err := h.recorder.Find(c.Request.Context(), c.Param("id"))
	if err != nil {
		stdErr := errors.Normalize(err)
		c.JSON(statusFor(stdErr), gin.H{"error": stdErr})
		return
	}
	c.JSON(http.StatusOK, gin.H{"decision": d})
}

func statusFor(err *errors.StandardError) int {
	switch err.Code {
	case errors.ErrCodeUnknownCategory, errors.ErrCodeFieldOutOfRange:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeDecisionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeDatabaseConnectionFailed, errors.ErrCodeQueryExecutionFailed:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// bindingError names the failing fields when gin's validator rejected the body.
func bindingError(err error) gin.H {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return gin.H{"code": errors.ErrCodeInputParsingFailed, "message": err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return gin.H{
		"code":    errors.ErrCodeApplicationValidationFailed,
		"message": "Application data validation failed",
		"fields":  fields,
	}
}
