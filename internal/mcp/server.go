package mcp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/martinsuchenak/merakilife/internal/log"
	"github.com/martinsuchenak/merakilife/internal/model"
	"github.com/martinsuchenak/merakilife/internal/render"
	"github.com/martinsuchenak/merakilife/internal/report"
	"github.com/paularlott/mcp"
)

// Server wraps the MCP server with the report service
type Server struct {
	mcpServer   *mcp.Server
	service     *report.Service
	bearerToken string
	version     string
}

// NewServer creates a new MCP server exposing lifecycle tools
func NewServer(service *report.Service, bearerToken, version string) *Server {
	s := &Server{
		mcpServer:   mcp.NewServer("merakilife", version),
		service:     service,
		bearerToken: bearerToken,
		version:     version,
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcpServer.RegisterTool(
		mcp.NewTool("organization_list", "List the Meraki organizations the API key can access"),
		s.handleOrganizationList,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("lifecycle_report", "Report hardware models in use that have an end-of-life announcement, with active unit counts and urgency (CRITICAL once end-of-support has passed, WARNING within a year)",
			mcp.StringArray("organization_ids", "Organization IDs to report on; all organizations when omitted"),
		),
		s.handleLifecycleReport,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("eol_lookup", "Look up the end-of-life announcement for one Meraki model, e.g. MX64 or MR33",
			mcp.String("model", "Model name", mcp.Required()),
		),
		s.handleEOLLookup,
	)
}

// HandleRequest handles MCP HTTP requests with optional bearer token authentication
func (s *Server) HandleRequest(w http.ResponseWriter, r *http.Request) {
	log.Debug("MCP request received", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)

	if s.bearerToken != "" {
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok {
			log.Warn("MCP request without bearer token", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Missing bearer token", http.StatusUnauthorized)
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.bearerToken)) != 1 {
			log.Warn("MCP request invalid token", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}
	}

	s.mcpServer.HandleRequest(w, r)
}

func (s *Server) handleOrganizationList(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	orgs, err := s.service.ListOrganizations(ctx)
	if err != nil {
		return nil, mcp.NewToolErrorInternal("failed to list organizations: " + err.Error())
	}
	return mcp.NewToolResponseText(formatOrganizations(orgs)), nil
}

func (s *Server) handleLifecycleReport(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	ids, _ := req.StringSlice("organization_ids")

	summary, err := s.service.Report(ctx, ids)
	if err != nil {
		if errors.Is(err, report.ErrUnknownOrganization) {
			return nil, mcp.NewToolErrorInvalidParams(err.Error())
		}
		return nil, mcp.NewToolErrorInternal("report failed: " + err.Error())
	}

	log.Info("Report generated via MCP", "run_id", summary.RunID, "organizations", len(summary.Reports))
	return mcp.NewToolResponseText(formatSummary(summary)), nil
}

func (s *Server) handleEOLLookup(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	name, err := req.String("model")
	if err != nil || strings.TrimSpace(name) == "" {
		return nil, mcp.NewToolErrorInvalidParams("model is required")
	}

	a, err := s.service.Lookup(ctx, name)
	if errors.Is(err, model.ErrNotFound) && !model.IsFetchError(err) {
		return mcp.NewToolResponseText(fmt.Sprintf("No end-of-life announcement for %s", strings.ToUpper(strings.TrimSpace(name)))), nil
	}
	if err != nil {
		return nil, mcp.NewToolErrorInternal("catalog lookup failed: " + err.Error())
	}
	return mcp.NewToolResponseText(formatAnnouncement(a)), nil
}

func formatOrganizations(orgs []model.Organization) string {
	if len(orgs) == 0 {
		return "No organizations found"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d organization(s):\n\n", len(orgs))
	for i, o := range orgs {
		fmt.Fprintf(&b, "%d - %s (ID: %s)\n", i+1, o.Name, o.ID)
	}
	return b.String()
}

func formatAnnouncement(a model.Announcement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Model: %s\n", a.Model)
	if a.Product != "" && a.Product != a.Model {
		fmt.Fprintf(&b, "Product: %s\n", a.Product)
	}
	fmt.Fprintf(&b, "Announcement: %s\n", render.FormatDate(a.AnnouncementDate))
	fmt.Fprintf(&b, "End of sale: %s\n", render.FormatDate(a.EndOfSale))
	fmt.Fprintf(&b, "End of support: %s\n", render.FormatDate(a.EndOfSupport))
	for _, link := range a.UpgradePathLinks() {
		fmt.Fprintf(&b, "Upgrade path: %s\n", link)
	}
	return b.String()
}

func formatSummary(summary *model.RunSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s: %d ok, %d empty, %d failed\n",
		summary.RunID, summary.Counts.OK, summary.Counts.Empty, summary.Counts.Failed)

	for _, r := range summary.Reports {
		fmt.Fprintf(&b, "\n## %s\n", r.Organization.Label())
		switch r.Status {
		case model.StatusFailed:
			fmt.Fprintf(&b, "Skipped: %s\n", r.Error)
			continue
		case model.StatusEmpty:
			b.WriteString("No models in use with an end-of-life announcement\n")
			continue
		}
		for _, e := range r.Entries {
			fmt.Fprintf(&b, "- %s: %d active, end of support %s [%s]\n",
				e.Model, e.ActiveUnits, render.FormatDate(e.EndOfSupport), e.Urgency)
		}
	}
	return b.String()
}

// GetHTTPHandler returns the HTTP handler for the MCP server
func (s *Server) GetHTTPHandler() http.HandlerFunc {
	return s.HandleRequest
}

// LogStartup logs MCP server startup information
func (s *Server) LogStartup() {
	log.Info("MCP Server initialized", "version", s.version)
	if s.bearerToken != "" {
		log.Info("MCP authentication enabled", "type", "Bearer token")
	} else {
		log.Info("MCP authentication disabled")
	}
	tools := s.mcpServer.ListTools()
	log.Info("MCP tools registered", "count", len(tools))
	for _, tool := range tools {
		log.Debug("MCP tool registered", "name", tool.Name)
	}
}
