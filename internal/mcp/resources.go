package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// Resource URIs for the phoenix MCP server.
const (
	// ResourceURIManifest is the last synthesized brand manifest.
	ResourceURIManifest = "phoenix://brand/manifest"

	// ResourceURIStatus is the current brand state.
	ResourceURIStatus = "phoenix://brand/status"

	// ResourceURIWorkflows is every known workflow.
	ResourceURIWorkflows = "phoenix://workflows"
)

// ResourceInfo contains metadata about a resource.
type ResourceInfo struct {
	URI         string
	Name        string
	Description string
	MIMEType    string
}

// AvailableResources returns information about all available resources.
func AvailableResources() []ResourceInfo {
	return []ResourceInfo{
		{
			URI:         ResourceURIManifest,
			Name:        "Brand Manifest",
			Description: "The last synthesized brand manifest",
			MIMEType:    "application/json",
		},
		{
			URI:         ResourceURIStatus,
			Name:        "Brand Status",
			Description: "Discovery roots, agents, platforms, focus and workflow counts",
			MIMEType:    "application/json",
		},
		{
			URI:         ResourceURIWorkflows,
			Name:        "Workflows",
			Description: "Every known workflow, pending and historical, in creation order",
			MIMEType:    "application/json",
		},
	}
}

// IsValidResourceURI checks if a URI is a phoenix resource.
func IsValidResourceURI(uri string) bool {
	for _, info := range AvailableResources() {
		if info.URI == uri {
			return true
		}
	}
	return false
}

func (s *Server) handleReadResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI

	var v any
	switch uri {
	case ResourceURIManifest:
		m, ok := s.brand.Manifest()
		if !ok {
			return nil, &ResourceNotFoundError{URI: uri}
		}
		v = m
	case ResourceURIStatus:
		v = s.brand.Status()
	case ResourceURIWorkflows:
		v = s.brand.ListWorkflows()
	default:
		return nil, &ResourceNotFoundError{URI: uri}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode resource %s; %w", uri, err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// ResourceNotFoundError is returned when a requested resource doesn't exist.
type ResourceNotFoundError struct {
	URI string
}

func (e *ResourceNotFoundError) Error() string {
	return "resource not found: " + e.URI
}
