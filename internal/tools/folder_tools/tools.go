package folder_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/outlook-mcp/internal/instrumentation"
	"github.com/teemow/outlook-mcp/internal/outlook"
	"github.com/teemow/outlook-mcp/internal/server"
	"github.com/teemow/outlook-mcp/internal/tools/common"
)

// RegisterFolderTools registers folder and rule discovery tools with the
// MCP server. None of them change the mailbox, so they are available in
// read-only mode.
func RegisterFolderTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listFoldersTool := mcp.NewTool("list_outlook_folders",
		mcp.WithDescription("List every mail folder with its slash-separated path, for use with search_emails_in_custom_folder"),
		mcp.WithBoolean("include_counts",
			mcp.Description("Also report item and unread counts (slow on large mailboxes, default false)"),
		),
	)
	s.AddTool(listFoldersTool, common.InstrumentedToolHandler("list_outlook_folders",
		instrumentation.ServiceFolders, instrumentation.OperationList, sc, handleListFolders))

	listRulesTool := mcp.NewTool("list_outlook_rules",
		mcp.WithDescription("List the mailbox's client rules with their conditions, actions and exceptions"),
	)
	s.AddTool(listRulesTool, common.InstrumentedToolHandler("list_outlook_rules",
		instrumentation.ServiceFolders, instrumentation.OperationList, sc, handleListRules))

	clearCacheTool := mcp.NewTool("clear_folder_cache",
		mcp.WithDescription("Forget cached folder lookups, e.g. after folders were renamed or moved"),
	)
	s.AddTool(clearCacheTool, common.InstrumentedToolHandler("clear_folder_cache",
		instrumentation.ServiceFolders, instrumentation.OperationUpdate, sc, handleClearFolderCache))

	return nil
}

func handleListFolders(ctx context.Context, client *outlook.Client, args common.Args) (common.Envelope, error) {
	includeCounts := args.Bool("include_counts", false)
	folders, err := client.ListFolders(ctx, includeCounts)
	if err != nil {
		return nil, err
	}
	return common.List("folders", folders).With("include_counts", includeCounts), nil
}

func handleListRules(ctx context.Context, client *outlook.Client, _ common.Args) (common.Envelope, error) {
	rules, err := client.Rules(ctx)
	if err != nil {
		return nil, err
	}
	return common.List("rules", rules), nil
}

func handleClearFolderCache(_ context.Context, client *outlook.Client, _ common.Args) (common.Envelope, error) {
	return common.Envelope{
		"cleared": client.ClearFolderCache(),
		"message": "Folder cache cleared",
	}, nil
}
