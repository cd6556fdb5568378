// Package domain defines the portfolio assistant's MCP tool schemas and
// handlers. Every tool returns a human-readable status string.
package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/healclinics/shop-api/internal/portfolio"
)

// CreateProjectInput represents the MCP tool input for project creation.
type CreateProjectInput struct {
	Name        string `json:"name" jsonschema:"project name, must be unique"`
	ProjectType string `json:"project_type" jsonschema:"kind of project (app, module, widget, ...)"`
	Description string `json:"description" jsonschema:"short project description"`
	Priority    int    `json:"priority,omitempty" jsonschema:"priority 1-10, defaults to 5"`
}

// UpdateProjectProgressInput represents the MCP tool input for progress updates.
type UpdateProjectProgressInput struct {
	ProjectName          string  `json:"project_name" jsonschema:"name of an existing project"`
	CompletionPercentage float64 `json:"completion_percentage" jsonschema:"completion 0-100"`
	Status               string  `json:"status,omitempty" jsonschema:"optional new status (planned, active, completed)"`
}

// TrackSkillInput represents the MCP tool input for skill tracking.
type TrackSkillInput struct {
	SkillName      string  `json:"skill_name" jsonschema:"skill name, upserted by name"`
	Category       string  `json:"category" jsonschema:"skill category"`
	Proficiency    int     `json:"proficiency" jsonschema:"proficiency 1-10"`
	MendixRelevant bool    `json:"mendix_relevant,omitempty" jsonschema:"whether the skill is Mendix relevant"`
	Notes          string  `json:"notes,omitempty" jsonschema:"free-form notes"`
	PracticeHours  float64 `json:"practice_hours,omitempty" jsonschema:"hours practiced since the last update"`
}

// PortfolioStatusInput is empty; the dashboard takes no arguments.
type PortfolioStatusInput struct{}

// StatusResult carries the formatted status text of every portfolio tool.
type StatusResult struct {
	Message string `json:"message" jsonschema:"human-readable status text"`
}

func CreateProjectTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "create_project",
		Description: "Nieuw portfolio project aanmaken",
	}
}

func UpdateProjectProgressTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "update_project_progress",
		Description: "Project voortgang bijwerken",
	}
}

func TrackSkillTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "track_skill",
		Description: "Vaardigheid bijhouden",
	}
}

func PortfolioStatusTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_portfolio_status",
		Description: "Complete portfolio overzicht",
	}
}

// statusReply wraps a formatted message as both text content and structured output.
func statusReply(message string) (*mcp.CallToolResult, StatusResult, error) {
	result := &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
	}
	return result, StatusResult{Message: message}, nil
}

// CreateProjectHandler creates a project; a duplicate name is reported in the
// reply text rather than as a protocol error.
func CreateProjectHandler(store *portfolio.Store) mcp.ToolHandlerFor[CreateProjectInput, StatusResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CreateProjectInput) (*mcp.CallToolResult, StatusResult, error) {
		priority := input.Priority
		if priority == 0 {
			priority = 5
		}

		project := &portfolio.Project{
			Name:        input.Name,
			Type:        input.ProjectType,
			Description: input.Description,
			Priority:    priority,
			Status:      portfolio.ProjectPlanned,
		}

		if err := store.CreateProject(ctx, project); err != nil {
			if errors.Is(err, portfolio.ErrProjectExists) {
				return statusReply(fmt.Sprintf("❌ Project '%s' bestaat al!", input.Name))
			}
			return statusReply(fmt.Sprintf("❌ Fout bij aanmaken project: %v", err))
		}

		return statusReply(portfolio.FormatProjectCreated(project))
	}
}

func UpdateProjectProgressHandler(store *portfolio.Store) mcp.ToolHandlerFor[UpdateProjectProgressInput, StatusResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input UpdateProjectProgressInput) (*mcp.CallToolResult, StatusResult, error) {
		status := portfolio.ProjectStatus(input.Status)
		if input.Status != "" && !status.Valid() {
			return statusReply(fmt.Sprintf("❌ Onbekende status '%s'", input.Status))
		}

		previous, err := store.GetProjectByName(ctx, input.ProjectName)
		if err != nil {
			if errors.Is(err, portfolio.ErrProjectNotFound) {
				return statusReply(fmt.Sprintf("❌ Project '%s' niet gevonden", input.ProjectName))
			}
			return statusReply(fmt.Sprintf("❌ Fout bij bijwerken: %v", err))
		}

		updated, err := store.UpdateProjectProgress(ctx, input.ProjectName, input.CompletionPercentage, status)
		if err != nil {
			return statusReply(fmt.Sprintf("❌ Fout bij bijwerken: %v", err))
		}

		return statusReply(portfolio.FormatProjectProgress(updated, previous.CompletionPercentage, input.Status != ""))
	}
}

func TrackSkillHandler(store *portfolio.Store) mcp.ToolHandlerFor[TrackSkillInput, StatusResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TrackSkillInput) (*mcp.CallToolResult, StatusResult, error) {
		skill := &portfolio.Skill{
			Name:           input.SkillName,
			Category:       input.Category,
			Proficiency:    input.Proficiency,
			MendixRelevant: input.MendixRelevant,
			Notes:          input.Notes,
			PracticeHours:  input.PracticeHours,
		}

		previous, err := store.UpsertSkill(ctx, skill)
		if err != nil {
			return statusReply(fmt.Sprintf("❌ Fout bij skill tracking: %v", err))
		}

		return statusReply(portfolio.FormatSkillTracked(skill, input.Proficiency-previous))
	}
}

func PortfolioStatusHandler(store *portfolio.Store) mcp.ToolHandlerFor[PortfolioStatusInput, StatusResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ PortfolioStatusInput) (*mcp.CallToolResult, StatusResult, error) {
		projects, err := store.ListProjects(ctx)
		if err != nil {
			return statusReply(fmt.Sprintf("❌ Fout bij dashboard: %v", err))
		}
		skills, err := store.ListSkills(ctx)
		if err != nil {
			return statusReply(fmt.Sprintf("❌ Fout bij dashboard: %v", err))
		}

		return statusReply(portfolio.FormatDashboard(projects, skills))
	}
}
