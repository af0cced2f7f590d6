package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/volpulse/internal/domain/dto"
	"github.com/guttosm/volpulse/internal/domain/models"
	"github.com/guttosm/volpulse/internal/service"
)

// Handler provides HTTP handlers for the volume aggregation and credential
// management endpoints.
//
// Responsibilities:
//   - Validate incoming HTTP query parameters and bodies
//   - Interact with the service layer
//   - Translate service results into response DTOs
//   - Return structured JSON responses with appropriate HTTP status codes
type Handler struct {
	volumes service.VolumeService
	creds   service.CredentialService
}

// NewHandler constructs a new Handler instance.
//
// Parameters:
//   - volumes (service.VolumeService): combined volume aggregation.
//   - creds (service.CredentialService): credential management.
//
// Returns:
//   - *Handler: A handler ready to be registered with the router.
func NewHandler(volumes service.VolumeService, creds service.CredentialService) *Handler {
	return &Handler{volumes: volumes, creds: creds}
}

// GetVolume handles GET /api/v1/volume requests.
//
// Query Parameters:
//   - window (string, optional): "recent" (default, last 30 days) or "full"
//     (last 730 days).
//   - start, end (string, optional): explicit range bounds in YYYY-MM-DD;
//     both override the named window; end must not precede start.
//
// GetVolume godoc
// @Summary      Get combined traded volume
// @Description  Returns per-venue traded volume with provenance tier and snapshot history
// @Tags         volume
// @Accept       json
// @Produce      json
// @Param        window  query     string  false  "Named window: recent or full"  example(recent)
// @Param        start   query     string  false  "Range start in YYYY-MM-DD"     example(2025-08-01)
// @Param        end     query     string  false  "Range end in YYYY-MM-DD"       example(2025-08-31)
// @Success      200     {object}  dto.VolumeResponse  "Success"
// @Failure      400     {object}  dto.ErrorResponse   "Bad Request"
// @Failure      500     {object}  dto.ErrorResponse   "Internal Error"
// @Router       /api/v1/volume [get]
func (h *Handler) GetVolume(c *gin.Context) {
	// ─── Resolve the query range ──────────────────────────────
	window := strings.ToLower(strings.TrimSpace(c.DefaultQuery("window", "recent")))

	var q models.VolumeQuery
	switch window {
	case "recent":
		q = models.RecentRange(time.Now().UTC())
	case "full":
		q = models.FullHistoryRange(time.Now().UTC())
	default:
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid window, expected recent or full", nil))
		return
	}

	// Explicit bounds override the named window.
	if s := c.Query("start"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid start format, expected YYYY-MM-DD", err))
			return
		}
		q.StartTime = parsed
	}
	if s := c.Query("end"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid end format, expected YYYY-MM-DD", err))
			return
		}
		// include the whole end day
		q.EndTime = parsed.AddDate(0, 0, 1).Add(-time.Second)
	}
	if q.EndTime.Before(q.StartTime) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("end must not precede start", nil))
		return
	}

	// ─── Query service (with request context) ─────────────────
	combined, err := h.volumes.GetCombinedVolume(c.Request.Context(), q)
	if err != nil || combined == nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to aggregate volume", err))
		return
	}

	// ─── Build and return response DTO ────────────────────────
	c.JSON(http.StatusOK, dto.VolumeResponse{
		Woox:    toVenueVolume(combined.Woox),
		Paradex: toVenueVolume(combined.Paradex),
		Window:  window,
	})
}

func toVenueVolume(v service.VenueVolume) dto.VenueVolume {
	sample := v.Result.SampleTrades
	if sample == nil {
		sample = []models.Trade{}
	}
	history := v.History
	if history == nil {
		history = []models.VolumeSnapshot{}
	}
	return dto.VenueVolume{
		TotalVolumeUSD: v.Result.TotalVolumeUSD,
		SourceTier:     v.Result.SourceTier,
		SampleTrades:   sample,
		History:        history,
		Note:           v.Result.Note,
	}
}

// ListCredentials handles GET /api/v1/credentials requests.
//
// ListCredentials godoc
// @Summary      List stored credentials
// @Description  Returns credential metadata per platform; key material is never included
// @Tags         credentials
// @Produce      json
// @Success      200  {array}   dto.CredentialInfo  "Success"
// @Failure      500  {object}  dto.ErrorResponse   "Internal Error"
// @Router       /api/v1/credentials [get]
func (h *Handler) ListCredentials(c *gin.Context) {
	creds, err := h.creds.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to list credentials", err))
		return
	}

	infos := make([]dto.CredentialInfo, 0, len(creds))
	for _, cred := range creds {
		infos = append(infos, dto.CredentialInfo{
			Platform:  string(cred.Platform),
			HasKey:    cred.APIKey != "" || cred.Token != "",
			CreatedAt: cred.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, infos)
}

// SaveCredential handles POST /api/v1/credentials requests.
//
// SaveCredential godoc
// @Summary      Store a venue credential
// @Description  Upserts the API key pair (woox) or bearer token (paradex) for one platform
// @Tags         credentials
// @Accept       json
// @Produce      json
// @Param        credential  body      dto.CredentialRequest  true  "Credential to store"
// @Success      201         {object}  map[string]string      "Created"
// @Failure      400         {object}  dto.ErrorResponse      "Bad Request"
// @Failure      500         {object}  dto.ErrorResponse      "Internal Error"
// @Router       /api/v1/credentials [post]
func (h *Handler) SaveCredential(c *gin.Context) {
	var req dto.CredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid request body", err))
		return
	}

	cred := models.Credential{
		Platform:  models.Platform(strings.ToLower(strings.TrimSpace(req.Platform))),
		APIKey:    req.APIKey,
		APISecret: req.APISecret,
		Token:     req.Token,
	}
	if err := h.creds.Save(c.Request.Context(), cred); err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid credential", err))
			return
		}
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to store credential", err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "stored", "platform": string(cred.Platform)})
}
