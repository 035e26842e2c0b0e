package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo"

	"github.com/Aslhee/MobileCafeServer/pkg/api/resource"
	"github.com/Aslhee/MobileCafeServer/pkg/storage"
)

func (h *Handler) handleFetchDevices(c echo.Context) error {
	m, err := h.store.Devices().FetchAll()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, resource.NewDeviceList(m, time.Now()))
}

func (h *Handler) handleGetDevice(c echo.Context) error {
	m, err := h.store.Devices().FindByDeviceID(c.Param("id"))
	if err != nil && err == storage.ErrNotFound {
		return c.JSON(http.StatusNotFound, err)
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, resource.NewDevice(m, time.Now()))
}

func (h *Handler) handleCreateDevice(c echo.Context) error {
	r := &resource.DeviceResource{}
	if err := c.Bind(r); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}

	m, err := resource.ValidateDevice(r)
	if err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}

	if _, err := h.store.Devices().FindByDeviceID(m.DeviceID); err == nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": "deviceId already exists"})
	}

	err = h.store.Devices().Create(m)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	h.publish(m.DeviceID, "device", m)

	return c.JSON(http.StatusCreated, resource.NewDevice(m, time.Now()))
}

func (h *Handler) handleDeleteDevice(c echo.Context) error {
	m, err := h.store.Devices().FindByDeviceID(c.Param("id"))
	if err != nil && err == storage.ErrNotFound {
		return c.JSON(http.StatusNotFound, err)
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	// Operator action on the device only; history records stay
	err = h.store.Devices().Delete(m.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	// nil payload tells subscribers the device is gone
	h.publish(m.DeviceID, "device", nil)

	return c.JSON(http.StatusNoContent, nil)
}
