package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"vidstream-platform/internal/auth"
	"vidstream-platform/internal/calls"
	"vidstream-platform/internal/recordings"
	"vidstream-platform/internal/reporting"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth       *auth.Manager
	Calls      *calls.Service
	Recordings *recordings.Store
	Reports    *reporting.Service
}

// statusForCallError maps service sentinels onto HTTP status codes. Anything
// unrecognized is a 500.
func statusForCallError(err error) int {
	switch {
	case errors.Is(err, calls.ErrInvalidParticipants), errors.Is(err, calls.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, calls.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, calls.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, calls.ErrInvalidTransition), errors.Is(err, calls.ErrCallInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func abortCallError(c *gin.Context, err error) {
	status := statusForCallError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// --- Auth ---

type loginRequest struct {
	UserID string `json:"user_id"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (h Handlers) Refresh(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "refresh_token required"})
		return
	}
	claims, err := h.Auth.Verify(req.RefreshToken, auth.TokenTypeRefresh, time.Now())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), claims.UserID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Calls ---

type initiateCallRequest struct {
	ReceiverID string `json:"receiverId"`
	CallType   string `json:"callType"`
	Metadata   string `json:"metadata,omitempty"`
}

func (h Handlers) InitiateCall(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var req initiateCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	rec, err := h.Calls.Initiate(c.Request.Context(), userID, req.ReceiverID, calls.CallType(req.CallType), req.Metadata)
	if err != nil {
		abortCallError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "call": rec})
}

type updateCallStatusRequest struct {
	Status           string `json:"status"`
	DisconnectReason string `json:"disconnectReason,omitempty"`
	Quality          string `json:"quality,omitempty"`
	ScreenShare      bool   `json:"screenShare,omitempty"`
}

func (h Handlers) UpdateCallStatus(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	callID := c.Param("callId")
	var req updateCallStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	rec, err := h.Calls.UpdateStatus(c.Request.Context(), callID, userID, calls.StatusUpdateRequest{
		Status:           calls.Status(req.Status),
		DisconnectReason: calls.DisconnectReason(req.DisconnectReason),
		Quality:          calls.Quality(req.Quality),
		ScreenShare:      req.ScreenShare,
	})
	if err != nil {
		abortCallError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "call": rec})
}

type reportProgressRequest struct {
	Quality     string `json:"quality,omitempty"`
	ScreenShare bool   `json:"screenShare,omitempty"`
}

// ReportCallProgress updates quality and screen-share facts on a live call.
func (h Handlers) ReportCallProgress(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	callID := c.Param("callId")
	var req reportProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	rec, err := h.Calls.ReportProgress(c.Request.Context(), callID, userID, calls.Quality(req.Quality), req.ScreenShare)
	if err != nil {
		abortCallError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "call": rec})
}

func (h Handlers) CallHistory(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 20)

	records, total, err := h.Calls.History(c.Request.Context(), userID, page, limit)
	if err != nil {
		abortCallError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"calls": records,
		"page":  page,
		"limit": limit,
		"total": total,
	})
}

func (h Handlers) CallStats(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	stats, err := h.Calls.Stats(c.Request.Context(), userID)
	if err != nil {
		abortCallError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h Handlers) CallDetails(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	roomID := c.Param("roomId")
	if roomID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "roomId required"})
		return
	}
	rec, err := h.Calls.Details(c.Request.Context(), roomID, userID)
	if err != nil {
		abortCallError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// CallsReport returns aggregated call metrics for a time range. Query params
// from/to are RFC 3339; the default window is the last 30 days.
func (h Handlers) CallsReport(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be RFC 3339"})
			return
		}
		from = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be RFC 3339"})
			return
		}
		to = t
	}

	summary, err := h.Reports.CallsSummary(c.Request.Context(), reporting.SummaryRequest{
		UserID: userID,
		Range:  reporting.TimeRange{From: from, To: to},
	})
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// --- Recordings ---

// UploadRecording stores a finished call recording and links it to the call
// record. Multipart fields: callId, recording (file).
func (h Handlers) UploadRecording(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	callID := c.PostForm("callId")
	if callID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "callId required"})
		return
	}
	fh, err := c.FormFile("recording")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "recording file required"})
		return
	}

	saved, err := h.Recordings.Save(callID, fh)
	if err != nil {
		switch {
		case errors.Is(err, recordings.ErrTooLarge),
			errors.Is(err, recordings.ErrUnsupportedType),
			errors.Is(err, recordings.ErrEmptyUpload):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to store recording"})
		}
		return
	}

	url := "/call/download-recording/" + saved.Filename
	rec, err := h.Calls.AttachRecording(c.Request.Context(), callID, userID, url)
	if err != nil {
		// The call record rejected the link; do not keep an orphaned file.
		_ = h.Recordings.Remove(saved.Filename)
		abortCallError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "recordingUrl": url, "call": rec})
}

// DownloadRecording streams a stored recording. Range requests are honored so
// players can seek.
func (h Handlers) DownloadRecording(c *gin.Context) {
	filename := c.Param("filename")
	f, info, contentType, err := h.Recordings.Open(filename)
	if err != nil {
		if errors.Is(err, recordings.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "recording not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	defer f.Close()

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", `inline; filename="`+info.Name()+`"`)
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}

// --- Misc ---

func (h Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
