package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/outlook-mcp/internal/outlook"
	"github.com/teemow/outlook-mcp/internal/server"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:     "generate-docs",
		Aliases: []string{"docs"},
		Short:   "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
This command introspects the registered tools and outputs their documentation
in markdown format, ensuring the documentation is always accurate and in sync
with the actual tool implementations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(outputFile string) error {
	all, err := listTools(false)
	if err != nil {
		return err
	}
	readOnly, err := listTools(true)
	if err != nil {
		return err
	}

	// Extract mcp.Tool from each ServerTool
	tools := make([]mcp.Tool, 0, len(all))
	for _, serverTool := range all {
		tools = append(tools, serverTool.Tool)
	}
	readOnlyNames := make(map[string]bool, len(readOnly))
	for name := range readOnly {
		readOnlyNames[name] = true
	}

	// Generate markdown documentation
	markdown := generateToolsMarkdown(tools, readOnlyNames)

	// Write to output
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	} else {
		fmt.Print(markdown)
	}

	return nil
}

// errDocsOnly is returned by the connector used while listing tools; tool
// definitions never reach Outlook.
var errDocsOnly = errors.New("outlook is not connected while generating docs")

// listTools registers every tool on a throwaway server and returns them.
func listTools(readOnly bool) (map[string]*mcpserver.ServerTool, error) {
	connector := outlook.ConnectorFunc(func(context.Context) (outlook.Object, error) {
		return nil, errDocsOnly
	})
	serverContext, err := server.NewServerContext(context.Background(), outlook.NewClient(connector, outlook.Options{}))
	if err != nil {
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	mcpSrv := newMCPServer()
	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return nil, err
	}
	return mcpSrv.ListTools(), nil
}

func generateToolsMarkdown(tools []mcp.Tool, readOnly map[string]bool) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document provides a complete reference of all tools available when running outlook-mcp as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	// Group tools by category
	toolsByCategory := groupToolsByCategory(tools)

	// Table of contents
	sb.WriteString("## Table of Contents\n\n")
	categories := make([]string, 0, len(toolsByCategory))
	for category := range toolsByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		anchor := strings.ToLower(strings.ReplaceAll(category, " ", "-"))
		sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", category, anchor))
	}
	sb.WriteString("\n")

	sb.WriteString("## Read-only Mode\n\n")
	sb.WriteString("With `--read-only` only the tools marked *(read-only)* below are registered.\n")
	sb.WriteString("Every tool answers with a JSON object carrying `success`; failures add `error` and `error_type`.\n\n")

	// Generate documentation for each category
	for _, category := range categories {
		categoryTools := toolsByCategory[category]
		sort.Slice(categoryTools, func(i, j int) bool {
			return categoryTools[i].Name < categoryTools[j].Name
		})

		sb.WriteString(fmt.Sprintf("## %s\n\n", category))

		for _, tool := range categoryTools {
			sb.WriteString(generateToolMarkdown(tool, readOnly[tool.Name]))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func groupToolsByCategory(tools []mcp.Tool) map[string][]mcp.Tool {
	categories := make(map[string][]mcp.Tool)

	for _, tool := range tools {
		category := getCategoryFromToolName(tool.Name)
		categories[category] = append(categories[category], tool)
	}

	return categories
}

// toolCategories maps a keyword in the tool name to its section.
var toolCategories = []struct {
	keyword  string
	category string
}{
	{"attachment", "Attachment Tools"},
	{"email", "Mail Tools"},
	{"folder", "Folder Tools"},
	{"rules", "Folder Tools"},
	{"calendar", "Calendar Tools"},
	{"meeting", "Calendar Tools"},
	{"contact", "Contact Tools"},
	{"out_of_office", "Settings Tools"},
}

func getCategoryFromToolName(name string) string {
	for _, c := range toolCategories {
		if strings.Contains(name, c.keyword) {
			return c.category
		}
	}
	return "Other"
}

func generateToolMarkdown(tool mcp.Tool, readOnly bool) string {
	var sb strings.Builder

	// Tool name
	if readOnly {
		sb.WriteString(fmt.Sprintf("### %s *(read-only)*\n\n", tool.Name))
	} else {
		sb.WriteString(fmt.Sprintf("### %s\n\n", tool.Name))
	}

	// Description
	if tool.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", tool.Description))
	}

	// Input schema
	if tool.InputSchema.Properties != nil && len(tool.InputSchema.Properties) > 0 {
		sb.WriteString("**Arguments:**\n")

		// Sort properties for consistent output
		propNames := make([]string, 0, len(tool.InputSchema.Properties))
		for name := range tool.InputSchema.Properties {
			propNames = append(propNames, name)
		}
		sort.Strings(propNames)

		for _, name := range propNames {
			prop := tool.InputSchema.Properties[name]
			isRequired := contains(tool.InputSchema.Required, name)

			requiredStr := "optional"
			if isRequired {
				requiredStr = "required"
			}

			// Get property type and description from the property map
			propMap, ok := prop.(map[string]interface{})
			if !ok {
				continue
			}

			propType := getPropertyType(propMap)

			sb.WriteString(fmt.Sprintf("- `%s` (%s): ", name, requiredStr))

			// Get description
			if desc, ok := propMap["description"].(string); ok {
				sb.WriteString(desc)
			} else {
				sb.WriteString(fmt.Sprintf("%s parameter", propType))
			}

			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func getPropertyType(prop map[string]interface{}) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}

func contains(slice []string, item string) bool {
	return slices.Contains(slice, item)
}
