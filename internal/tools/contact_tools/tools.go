package contact_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/outlook-mcp/internal/instrumentation"
	"github.com/teemow/outlook-mcp/internal/outlook"
	"github.com/teemow/outlook-mcp/internal/server"
	"github.com/teemow/outlook-mcp/internal/tools/common"
)

// RegisterContactTools registers the contact tools with the MCP server.
// create_contact is skipped in read-only mode.
func RegisterContactTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listTool := mcp.NewTool("get_contacts",
		mcp.WithDescription("List contacts sorted by full name, optionally filtered by name"),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of contacts (default %d, max %d)", outlook.DefaultContactLimit, outlook.MaxContactLimit)),
		),
		mcp.WithString("search_name",
			mcp.Description("Only return contacts whose full name contains this text"),
		),
	)
	s.AddTool(listTool, common.InstrumentedToolHandler("get_contacts",
		instrumentation.ServiceContacts, instrumentation.OperationList, sc, handleGetContacts))

	searchTool := mcp.NewTool("search_contacts",
		mcp.WithDescription("Search contacts by name, primary email address or company (case-insensitive)"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to look for"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of results (default and max %d)", outlook.MaxContactLimit)),
		),
	)
	s.AddTool(searchTool, common.InstrumentedToolHandler("search_contacts",
		instrumentation.ServiceContacts, instrumentation.OperationSearch, sc, handleSearchContacts))

	if readOnly {
		return nil
	}

	createTool := mcp.NewTool("create_contact",
		mcp.WithDescription("Create a new contact"),
		mcp.WithString("full_name", mcp.Required(), mcp.Description("Full name")),
		mcp.WithString("email", mcp.Required(), mcp.Description("Primary email address")),
		mcp.WithString("company", mcp.Description("Company name")),
		mcp.WithString("job_title", mcp.Description("Job title")),
		mcp.WithString("business_phone", mcp.Description("Business phone number")),
		mcp.WithString("mobile_phone", mcp.Description("Mobile phone number")),
		mcp.WithString("home_phone", mcp.Description("Home phone number")),
	)
	s.AddTool(createTool, common.InstrumentedToolHandler("create_contact",
		instrumentation.ServiceContacts, instrumentation.OperationCreate, sc, handleCreateContact))

	return nil
}

func handleGetContacts(ctx context.Context, client *outlook.Client, args common.Args) (common.Envelope, error) {
	name := args.String("search_name")
	contacts, err := client.Contacts(ctx, args.Int("limit", outlook.DefaultContactLimit), name)
	if err != nil {
		return nil, err
	}
	env := common.List("contacts", contacts)
	if name != "" {
		env.With("search_name", name)
	}
	return env, nil
}

func handleSearchContacts(ctx context.Context, client *outlook.Client, args common.Args) (common.Envelope, error) {
	query := args.String("query")
	contacts, err := client.SearchContacts(ctx, query, args.Int("limit", outlook.MaxContactLimit))
	if err != nil {
		return nil, err
	}
	return common.List("contacts", contacts).With("query", query), nil
}

func handleCreateContact(ctx context.Context, client *outlook.Client, args common.Args) (common.Envelope, error) {
	nc := outlook.NewContact{
		FullName:      args.String("full_name"),
		Email:         args.String("email"),
		Company:       args.String("company"),
		JobTitle:      args.String("job_title"),
		BusinessPhone: args.String("business_phone"),
		MobilePhone:   args.String("mobile_phone"),
		HomePhone:     args.String("home_phone"),
	}
	id, err := client.CreateContact(ctx, nc)
	if err != nil {
		return nil, err
	}
	return common.Envelope{
		"message":    fmt.Sprintf("Contact '%s' created", nc.FullName),
		"contact_id": id,
		"full_name":  nc.FullName,
	}, nil
}
