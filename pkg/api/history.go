package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo"

	"github.com/Aslhee/MobileCafeServer/pkg/accounting"
	"github.com/Aslhee/MobileCafeServer/pkg/api/resource"
	"github.com/Aslhee/MobileCafeServer/pkg/storage"
)

type evidenceRequest struct {
	HasFaceData     bool `json:"hasFaceData"`
	HasLocationData bool `json:"hasLocationData"`
}

func (h *Handler) handleFetchHistory(c echo.Context) error {
	m, err := h.store.History().FetchAll()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, resource.NewHistoryList(m))
}

func (h *Handler) handleGetHistoryRecord(c echo.Context) error {
	m, err := h.store.History().FindByID(c.Param("id"))
	if err != nil && err == storage.ErrNotFound {
		return c.JSON(http.StatusNotFound, err)
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, resource.NewHistoryRecord(m))
}

// handleSetEvidence is called by the capture pipeline once the client
// uploaded face or location data for the record named by the device's
// currentSessionId.
func (h *Handler) handleSetEvidence(c echo.Context) error {
	req := &evidenceRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}

	id := c.Param("id")
	err := h.store.History().SetEvidence(id, req.HasFaceData, req.HasLocationData)
	if err != nil && err == storage.ErrNotFound {
		return c.JSON(http.StatusNotFound, err)
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	m, err := h.store.History().FindByID(id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, resource.NewHistoryRecord(m))
}

func (h *Handler) handleHistorySummary(c echo.Context) error {
	day := time.Now()
	if dateParam := c.QueryParam("date"); dateParam != "" {
		parsed, err := time.Parse("2006-01-02", dateParam)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		}
		day = parsed
	}

	m, err := h.store.History().FetchAll()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, resource.NewHistorySummary(accounting.Summarize(m, day)))
}
