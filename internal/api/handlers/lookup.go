package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Holy623/psa-pop-tracker/internal/services"
)

// LookupHandler runs the lookup pipeline for dashboard searches.
type LookupHandler struct {
	tracker  *services.Tracker
	sessions *services.SessionRegistry
}

// NewLookupHandler creates a lookup handler.
func NewLookupHandler(tracker *services.Tracker, sessions *services.SessionRegistry) *LookupHandler {
	return &LookupHandler{
		tracker:  tracker,
		sessions: sessions,
	}
}

type lookupRequest struct {
	Query     string `json:"query" binding:"required"`
	SessionID string `json:"session_id"`
}

// Lookup performs a full lookup for the requested item: scrape all sources,
// persist today's snapshots, and return the combined result plus any
// population changes since the previous snapshot.
func (h *LookupHandler) Lookup(c *gin.Context) {
	var req lookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	session := h.sessions.Get(req.SessionID)
	result, err := h.tracker.Lookup(c.Request.Context(), session, req.Query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":     session.ID,
		"search_history": session.History(),
		"result":         result,
	})
}

// RecentResult returns the last in-process lookup result for an item, if
// one exists, without triggering a new scrape.
func (h *LookupHandler) RecentResult(c *gin.Context) {
	query := c.Query("item")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item is required"})
		return
	}

	result, ok := h.tracker.RecentResult(query)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no recent lookup for item"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetSession returns (or creates) a session and its search history.
func (h *LookupHandler) GetSession(c *gin.Context) {
	session := h.sessions.Get(c.Query("session_id"))
	c.JSON(http.StatusOK, gin.H{
		"session_id":     session.ID,
		"search_history": session.History(),
	})
}
