// HTTP handlers for app and system info endpoints.
package handlers

import (
	"net/http"
	"runtime"

	"github.com/mhsenkow/myfacesnapjournal/internal/version"
)

// InfoHandler serves static application and host metadata.
type InfoHandler struct{}

// NewInfoHandler creates a new InfoHandler instance.
func NewInfoHandler() *InfoHandler {
	return &InfoHandler{}
}

// AppInfoResponse is the response body for GET /api/v1/app/info.
type AppInfoResponse struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Author      string `json:"author"`
}

// SystemInfoResponse is the response body for GET /api/v1/app/system.
type SystemInfoResponse struct {
	Platform  string `json:"platform"`
	Arch      string `json:"arch"`
	GoVersion string `json:"go_version"`
}

// AppInfo handles GET /api/v1/app/info
func (h *InfoHandler) AppInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AppInfoResponse{
		Name:        version.AppName,
		Version:     version.Version,
		Description: "Local-first AI journaling app",
		Author:      "MyFace Team",
	})
}

// SystemInfo handles GET /api/v1/app/system
func (h *InfoHandler) SystemInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SystemInfoResponse{
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
		GoVersion: runtime.Version(),
	})
}
