package mail_tools

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

// RegisterEmailTools registers the read-only mail tools with the MCP server
func RegisterEmailTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	inboxTool := mcp.NewTool("get_inbox_emails",
		mcp.WithDescription("List the most recent emails in the Outlook inbox, newest first"),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of emails to return (default %d, max %d)", outlook.DefaultEmailLimit, outlook.MaxEmailLimit)),
		),
		mcp.WithBoolean("unread_only",
			mcp.Description("Only return unread emails (default false)"),
		),
	)
	s.AddTool(inboxTool, common.InstrumentedToolHandler("get_inbox_emails",
		instrumentation.ServiceMail, instrumentation.OperationList, sc, handleInboxEmails))

	sentTool := mcp.NewTool("get_sent_emails",
		mcp.WithDescription("List the most recently sent emails, newest first"),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of emails to return (default %d, max %d)", outlook.DefaultEmailLimit, outlook.MaxEmailLimit)),
		),
	)
	s.AddTool(sentTool, common.InstrumentedToolHandler("get_sent_emails",
		instrumentation.ServiceMail, instrumentation.OperationList, sc, handleSentEmails))

	searchTool := mcp.NewTool("search_emails",
		mcp.WithDescription("Search emails by keyword in subject, body or sender name (case-insensitive)"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to look for"),
		),
		mcp.WithString("folder",
			mcp.Description("Folder to search: inbox, sent, drafts, deleted or all (inbox, sent and drafts). Default inbox"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of results (default %d, max %d)", outlook.DefaultSearchLimit, outlook.MaxEmailLimit)),
		),
	)
	s.AddTool(searchTool, common.InstrumentedToolHandler("search_emails",
		instrumentation.ServiceMail, instrumentation.OperationSearch, sc, handleSearchEmails))

	customTool := mcp.NewTool("search_emails_in_custom_folder",
		mcp.WithDescription("List or search emails in any folder by path, e.g. 'Inbox/Projects'. "+
			"Use list_outlook_folders to discover paths."),
		mcp.WithString("folder_path",
			mcp.Required(),
			mcp.Description("Slash-separated folder path below the mailbox root, e.g. 'Inbox/Projects/2025'"),
		),
		mcp.WithString("query",
			mcp.Description("Optional text to look for in subject, body or sender name"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of results (default %d, max %d)", outlook.DefaultSearchLimit, outlook.MaxEmailLimit)),
		),
		mcp.WithNumber("days_back",
			mcp.Description(fmt.Sprintf("Only include emails received in the last N days (default %d). 0 searches the whole folder, which can be slow", outlook.DefaultDaysBack)),
		),
		mcp.WithBoolean("refresh_folder_cache",
			mcp.Description("Resolve folder_path again instead of using the cached folder (default false)"),
		),
	)
	s.AddTool(customTool, common.InstrumentedToolHandler("search_emails_in_custom_folder",
		instrumentation.ServiceMail, instrumentation.OperationSearch, sc, handleSearchCustomFolder))

	getTool := mcp.NewTool("get_email",
		mcp.WithDescription("Get one email by its entry ID, including its attachment list"),
		mcp.WithString("email_id",
			mcp.Required(),
			mcp.Description("Entry ID of the email, as returned by the listing tools"),
		),
	)
	s.AddTool(getTool, common.InstrumentedToolHandler("get_email",
		instrumentation.ServiceMail, instrumentation.OperationGet, sc, handleGetEmail))

	return nil
}

func handleInboxEmails(ctx context.Context, client *outlook.Client, args common.Args) (common.Envelope, error) {
	unreadOnly := args.Bool("unread_only", false)
	emails, err := client.InboxEmails(ctx, args.Int("limit", outlook.DefaultEmailLimit), unreadOnly)
	if err != nil {
		return nil, err
	}
	return common.List("emails", emails).With("unread_only", unreadOnly), nil
}

func handleSentEmails(ctx context.Context, client *outlook.Client, args common.Args) (common.Envelope, error) {
	emails, err := client.SentEmails(ctx, args.Int("limit", outlook.DefaultEmailLimit))
	if err != nil {
		return nil, err
	}
	return common.List("emails", emails), nil
}

func handleSearchEmails(ctx context.Context, client *outlook.Client, args common.Args) (common.Envelope, error) {
	query := args.String("query")
	folder := args.StringOr("folder", "inbox")
	emails, err := client.SearchEmails(ctx, query, folder, args.Int("limit", outlook.DefaultSearchLimit))
	if err != nil {
		return nil, err
	}
	return common.List("emails", emails).
		With("query", query).
		With("folder", folder), nil
}

func handleSearchCustomFolder(ctx context.Context, client *outlook.Client, args common.Args) (common.Envelope, error) {
	q := outlook.FolderSearch{
		Path:     args.String("folder_path"),
		Query:    args.String("query"),
		Limit:    args.Int("limit", outlook.DefaultSearchLimit),
		DaysBack: args.Int("days_back", client.DefaultDaysBack()),
		Refresh:  args.Bool("refresh_folder_cache", false),
	}
	emails, err := client.SearchFolder(ctx, q)
	if err != nil {
		return nil, err
	}

	env := common.List("emails", emails).
		With("folder", q.Path).
		With("days_back", q.DaysBack)
	if q.Query != "" {
		env.With("query", q.Query)
	}
	if q.DaysBack > 0 {
		env.With("info", fmt.Sprintf("Only emails from the last %d days are included. Use days_back=0 to search the whole folder.", q.DaysBack))
	}
	return env, nil
}

func handleGetEmail(ctx context.Context, client *outlook.Client, args common.Args) (common.Envelope, error) {
	email, err := client.GetEmail(ctx, args.String("email_id"))
	if err != nil {
		return nil, err
	}
	return common.Envelope{"email": email}, nil
}
