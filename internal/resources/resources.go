// Package resources implements the MCP resource handlers.
//
// Resources provide read-only data that the host can consume for
// context. They use URI-based addressing (speck://...) following MCP
// conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nprbst/speck-sub002/internal/config"
	"github.com/nprbst/speck-sub002/internal/feature"
	"github.com/nprbst/speck-sub002/internal/staging"
)

// Handler manages the speck resource endpoints.
type Handler struct {
	store    config.Store
	features feature.Store
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(store config.Store, features feature.Store) *Handler {
	return &Handler{store: store, features: features}
}

// ProjectResource returns the MCP resource definition for project status.
func (h *Handler) ProjectResource() mcp.Resource {
	return mcp.NewResource(
		"speck://project/status",
		"Speck Project Status",
		mcp.WithResourceDescription("Project configuration, installed version, and active features"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleProject returns the project status as JSON.
func (h *Handler) HandleProject(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	projectRoot, err := config.FindProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	cfg, err := h.store.Load(projectRoot)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	features, err := h.features.List(projectRoot)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	status := struct {
		Config   *config.ProjectConfig   `json:"config"`
		Features []feature.FeatureRecord `json:"features"`
	}{cfg, features}

	return jsonResource(req.Params.URI, status)
}

// UpgradeResource returns the MCP resource definition for upgrade status.
func (h *Handler) UpgradeResource() mcp.Resource {
	return mcp.NewResource(
		"speck://upgrade/status",
		"Speck Upgrade Status",
		mcp.WithResourceDescription("Open staging sessions with their status, staged files, and conflicts"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleUpgrade returns every open staging session as JSON.
func (h *Handler) HandleUpgrade(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	projectRoot, err := config.FindProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	area := staging.NewArea(projectRoot)
	open, err := area.Orphans()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	reports := make([]*staging.Report, 0, len(open))
	for _, s := range open {
		report, err := area.Inspect(s.TargetVersion)
		if err != nil {
			return errorResource(req.Params.URI, err.Error()), nil
		}
		reports = append(reports, report)
	}

	return jsonResource(req.Params.URI, struct {
		OpenSessions []*staging.Report `json:"open_sessions"`
	}{reports})
}

// jsonResource marshals a value as an application/json resource.
func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
