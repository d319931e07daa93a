package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"go-storefront/models"
	"go-storefront/repository"
	"net/http"
	"time"
)

// SettingsController serves the site settings (store identity, theme). The
// storefront reads them publicly; only admins may write.
type SettingsController struct {
	Settings repository.SettingsRepository
}

// NewSettingsController creates a new SettingsController
func NewSettingsController(settings repository.SettingsRepository) *SettingsController {
	return &SettingsController{Settings: settings}
}

// GetSettings retrieves the site settings.
func (sc *SettingsController) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	settings, err := sc.Settings.Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// No settings saved yet; serve defaults.
			settings = &models.SiteSettings{StoreName: "Storefront"}
		} else {
			http.Error(w, "Failed to retrieve settings", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(settings)
}

// UpdateSettings replaces the site settings (Admin only).
func (sc *SettingsController) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.SiteSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if settings.StoreName == "" {
		http.Error(w, "Store name is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := sc.Settings.Put(ctx, &settings); err != nil {
		http.Error(w, "Error saving settings", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(settings)
}
