package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo"

	"github.com/Aslhee/MobileCafeServer/pkg/api/resource"
	"github.com/Aslhee/MobileCafeServer/pkg/model"
	"github.com/Aslhee/MobileCafeServer/pkg/storage"
)

type reportAppsRequest struct {
	// Clients report package -> display name with dots escaped to
	// underscores in the keys, a restriction of their local key space.
	Apps map[string]string `json:"apps"`
}

type saveWhitelistRequest struct {
	Packages []string `json:"packages"`
}

// handleFetchApps merges the station's installed-apps report with its
// current whitelist into the per-app allowed view the selection screen
// renders.
func (h *Handler) handleFetchApps(c echo.Context) error {
	deviceID := c.Param("id")

	if _, err := h.store.Devices().FindByDeviceID(deviceID); err != nil {
		return h.sessionError(c, err, false)
	}

	installed, err := h.store.Whitelists().InstalledApps(deviceID)
	if err != nil && err == storage.ErrNotFound {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "client hasn't reported apps yet"})
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	whitelist, err := h.store.Whitelists().Whitelist(deviceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	allowed := make(map[string]bool, len(whitelist))
	for _, pkg := range whitelist {
		allowed[pkg] = true
	}

	entries := make([]model.AppEntry, 0, len(installed))
	for pkg, name := range installed {
		entries = append(entries, model.AppEntry{
			PackageName: pkg,
			AppName:     name,
			Allowed:     allowed[pkg],
		})
	}

	return c.JSON(http.StatusOK, resource.NewAppList(entries))
}

func (h *Handler) handleReportApps(c echo.Context) error {
	deviceID := c.Param("id")

	if _, err := h.store.Devices().FindByDeviceID(deviceID); err != nil {
		return h.sessionError(c, err, false)
	}

	req := &reportAppsRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}

	// Restore the real package names before persisting
	apps := make(map[string]string, len(req.Apps))
	for safePkg, name := range req.Apps {
		apps[strings.ReplaceAll(safePkg, "_", ".")] = name
	}

	if err := h.store.Whitelists().SaveInstalledApps(deviceID, apps); err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusNoContent, nil)
}

func (h *Handler) handleSaveWhitelist(c echo.Context) error {
	deviceID := c.Param("id")

	if _, err := h.store.Devices().FindByDeviceID(deviceID); err != nil {
		return h.sessionError(c, err, false)
	}

	req := &saveWhitelistRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}

	if err := h.store.Whitelists().SaveWhitelist(deviceID, req.Packages); err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusNoContent, nil)
}
