package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo"

	"github.com/Aslhee/MobileCafeServer/pkg/accounting"
	"github.com/Aslhee/MobileCafeServer/pkg/api/resource"
	"github.com/Aslhee/MobileCafeServer/pkg/storage"
)

type addTimeRequest struct {
	Minutes int `json:"minutes"`
}

type addTimeResponse struct {
	Device  *resource.DeviceResource  `json:"device"`
	History *resource.HistoryResource `json:"history"`
}

type batteryRequest struct {
	BatteryLevel int `json:"batteryLevel"`
}

func (h *Handler) handleAddTime(c echo.Context) error {
	req := &addTimeRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}
	if req.Minutes <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "minutes must be positive"})
	}

	now := time.Now()
	dev, record, err := h.acct.AddTime(c.Param("id"), req.Minutes, now)
	if err != nil {
		return h.sessionError(c, err, record != nil)
	}

	return c.JSON(http.StatusCreated, &addTimeResponse{
		Device:  resource.NewDevice(dev, now),
		History: resource.NewHistoryRecord(record),
	})
}

func (h *Handler) handleTogglePause(c echo.Context) error {
	now := time.Now()
	dev, err := h.acct.TogglePause(c.Param("id"), now)
	if err != nil {
		return h.sessionError(c, err, false)
	}

	return c.JSON(http.StatusOK, resource.NewDevice(dev, now))
}

func (h *Handler) handleLock(c echo.Context) error {
	dev, err := h.acct.Lock(c.Param("id"))
	if err != nil {
		return h.sessionError(c, err, false)
	}

	return c.JSON(http.StatusOK, resource.NewDevice(dev, time.Now()))
}

func (h *Handler) handleSetBattery(c echo.Context) error {
	req := &batteryRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}

	deviceID := c.Param("id")
	if err := h.store.Devices().SetBatteryLevel(deviceID, req.BatteryLevel); err != nil {
		return h.sessionError(c, err, false)
	}

	m, err := h.store.Devices().FindByDeviceID(deviceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	h.publish(deviceID, "device", m)

	return c.JSON(http.StatusOK, resource.NewDevice(m, time.Now()))
}

// sessionError maps accounting and storage failures to one-shot notices.
// Nothing is retried here; partial add-time writes are already marked for
// reconciliation by the accounting service.
func (h *Handler) sessionError(c echo.Context, err error, historyWritten bool) error {
	msg := map[string]interface{}{"error": err.Error()}
	if historyWritten {
		msg["historyWritten"] = true
	}

	switch err {
	case storage.ErrNotFound:
		return c.JSON(http.StatusNotFound, msg)
	case storage.ErrConflict:
		return c.JSON(http.StatusConflict, msg)
	case accounting.ErrAlreadyExpired:
		return c.JSON(http.StatusConflict, msg)
	}

	return c.JSON(http.StatusInternalServerError, msg)
}
