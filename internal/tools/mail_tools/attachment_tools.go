package mail_tools

import (
	"context"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/outlook-mcp/internal/instrumentation"
	"github.com/teemow/outlook-mcp/internal/outlook"
	"github.com/teemow/outlook-mcp/internal/server"
	"github.com/teemow/outlook-mcp/internal/tools/common"
)

// RegisterAttachmentTools registers attachment tools. Saving to disk is
// left out in read-only mode.
func RegisterAttachmentTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listTool := mcp.NewTool("list_email_attachments",
		mcp.WithDescription("List the attachments of an email: index, filename, size and type"),
		mcp.WithString("email_id",
			mcp.Required(),
			mcp.Description("Entry ID of the email"),
		),
	)
	s.AddTool(listTool, common.InstrumentedToolHandler("list_email_attachments",
		instrumentation.ServiceMail, instrumentation.OperationList, sc, handleListAttachments))

	if readOnly {
		return nil
	}

	saveTool := mcp.NewTool("save_email_attachment",
		mcp.WithDescription("Save one attachment of an email to a local directory"),
		mcp.WithString("email_id",
			mcp.Required(),
			mcp.Description("Entry ID of the email"),
		),
		mcp.WithNumber("attachment_index",
			mcp.Required(),
			mcp.Description("1-based index from list_email_attachments"),
		),
		mcp.WithString("directory",
			mcp.Required(),
			mcp.Description("Existing directory to write the file to"),
		),
	)
	s.AddTool(saveTool, common.InstrumentedToolHandler("save_email_attachment",
		instrumentation.ServiceMail, instrumentation.OperationSave, sc, handleSaveAttachment))

	return nil
}

func handleListAttachments(ctx context.Context, client *outlook.Client, args common.Args) (common.Envelope, error) {
	id := args.String("email_id")
	atts, err := client.ListAttachments(ctx, id)
	if err != nil {
		return nil, err
	}
	return common.List("attachments", atts).With("email_id", id), nil
}

func handleSaveAttachment(ctx context.Context, client *outlook.Client, args common.Args) (common.Envelope, error) {
	path, err := client.SaveAttachment(ctx, args.String("email_id"), args.Int("attachment_index", 0), args.String("directory"))
	if err != nil {
		return nil, err
	}
	return common.Envelope{
		"message":  "Attachment saved",
		"path":     path,
		"filename": filepath.Base(path),
	}, nil
}
