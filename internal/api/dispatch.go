package api

import (
	"errors"
	"net/http"
	"time"

	"wasender/internal/dispatch"
	"wasender/internal/promoter"
	"wasender/internal/quota"

	"github.com/gin-gonic/gin"
)

type DispatchHandler struct {
	Manager          *dispatch.Manager
	Promoter         *promoter.Promoter
	DefaultVariation bool
}

func NewDispatchHandler(mgr *dispatch.Manager, prom *promoter.Promoter, defaultVariation bool) *DispatchHandler {
	return &DispatchHandler{Manager: mgr, Promoter: prom, DefaultVariation: defaultVariation}
}

type RecipientRequest struct {
	Address    string            `json:"address" binding:"required"`
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes"`
}

type SubmitRequest struct {
	TenantID   string             `json:"tenant_id" binding:"required"`
	Recipients []RecipientRequest `json:"recipients"`
	Template   string             `json:"template" binding:"required"`
	MediaURL   string             `json:"media_url"`
	Variation  *bool              `json:"variation"`
}

// SubmitCampaign accepts a recipient batch and starts background
// dispatch. Admission errors map to specific status codes; mid-run
// failures are only visible through the progress snapshot.
func (h *DispatchHandler) SubmitCampaign(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipients := make([]dispatch.Recipient, 0, len(req.Recipients))
	for _, r := range req.Recipients {
		recipients = append(recipients, dispatch.Recipient{
			Address: r.Address,
			Name:    r.Name,
			Attrs:   r.Attributes,
		})
	}

	variation := h.DefaultVariation
	if req.Variation != nil {
		variation = *req.Variation
	}
	tmpl := dispatch.Template{
		Body:      req.Template,
		MediaURL:  req.MediaURL,
		Variation: variation,
	}

	err := h.Manager.Submit(c.Request.Context(), req.TenantID, recipients, tmpl)
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "recipients": len(recipients)})
	case errors.Is(err, dispatch.ErrEmptyRecipients):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, dispatch.ErrAlreadyRunning):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, quota.ErrInsufficient):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, quota.ErrDailyLimitExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// GetProgress returns the live snapshot for a tenant. Unknown tenants
// get an all-zero inactive snapshot.
func (h *DispatchHandler) GetProgress(c *gin.Context) {
	snap := h.Manager.GetProgress(c.Param("tenantId"))
	c.JSON(http.StatusOK, snap)
}

// CancelCampaign requests cooperative cancellation. Always accepted.
func (h *DispatchHandler) CancelCampaign(c *gin.Context) {
	h.Manager.Cancel(c.Param("tenantId"))
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// PromoteDue triggers one promotion pass, same as the scheduler tick.
func (h *DispatchHandler) PromoteDue(c *gin.Context) {
	n := h.Promoter.PromoteDue(c.Request.Context(), time.Now())
	c.JSON(http.StatusOK, gin.H{"processed": n})
}
