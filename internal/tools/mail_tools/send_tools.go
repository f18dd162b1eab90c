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

// messageOptions are the parameters shared by the sending tools.
func messageOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient addresses, separated by semicolons"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Plain text body"),
		),
		mcp.WithString("cc",
			mcp.Description("CC addresses, separated by semicolons"),
		),
		mcp.WithString("bcc",
			mcp.Description("BCC addresses, separated by semicolons"),
		),
		mcp.WithString("importance",
			mcp.Description("low, normal or high (default normal)"),
		),
	}
}

// RegisterSendTools registers the tools that send or save mail
func RegisterSendTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	sendTool := mcp.NewTool("send_email",
		append([]mcp.ToolOption{mcp.WithDescription("Compose and send an email immediately")},
			messageOptions()...)...,
	)
	s.AddTool(sendTool, common.InstrumentedToolHandler("send_email",
		instrumentation.ServiceMail, instrumentation.OperationSend, sc, handleSendEmail))

	draftTool := mcp.NewTool("create_draft_email",
		append([]mcp.ToolOption{mcp.WithDescription("Compose an email and save it to Drafts without sending")},
			messageOptions()...)...,
	)
	s.AddTool(draftTool, common.InstrumentedToolHandler("create_draft_email",
		instrumentation.ServiceMail, instrumentation.OperationCreate, sc, handleCreateDraft))

	attachTool := mcp.NewTool("send_email_with_attachments",
		append([]mcp.ToolOption{
			mcp.WithDescription("Send (or save as draft) an email with local files attached. " +
				"Every file must exist; if any is missing nothing is created and missing_files lists them."),
			mcp.WithArray("attachments",
				mcp.Required(),
				mcp.Description("Absolute paths of the files to attach"),
				mcp.WithStringItems(),
			),
			mcp.WithBoolean("send",
				mcp.Description("Send immediately (default true). false saves a draft"),
			),
		}, messageOptions()...)...,
	)
	s.AddTool(attachTool, common.InstrumentedToolHandler("send_email_with_attachments",
		instrumentation.ServiceMail, instrumentation.OperationSend, sc, handleSendWithAttachments))

	return nil
}

func messageFromArgs(args common.Args) outlook.Message {
	return outlook.Message{
		To:         args.String("to"),
		Subject:    args.String("subject"),
		Body:       args.Text("body"),
		CC:         args.String("cc"),
		BCC:        args.String("bcc"),
		Importance: args.StringOr("importance", "normal"),
	}
}

func handleSendEmail(ctx context.Context, client *outlook.Client, args common.Args) (common.Envelope, error) {
	msg := messageFromArgs(args)
	if err := client.SendEmail(ctx, msg); err != nil {
		return nil, err
	}
	return common.Envelope{
		"message": fmt.Sprintf("Email sent to %s", msg.To),
		"subject": msg.Subject,
	}, nil
}

func handleCreateDraft(ctx context.Context, client *outlook.Client, args common.Args) (common.Envelope, error) {
	msg := messageFromArgs(args)
	id, err := client.CreateDraft(ctx, msg)
	if err != nil {
		return nil, err
	}
	return common.Envelope{
		"message":  "Draft saved",
		"draft_id": id,
		"subject":  msg.Subject,
	}, nil
}

func handleSendWithAttachments(ctx context.Context, client *outlook.Client, args common.Args) (common.Envelope, error) {
	msg := messageFromArgs(args)
	msg.Attachments = args.Strings("attachments")
	send := args.Bool("send", true)

	id, err := client.SendWithAttachments(ctx, msg, send)
	if err != nil {
		return nil, err
	}

	env := common.Envelope{
		"subject":          msg.Subject,
		"attachment_count": len(msg.Attachments),
		"sent":             send,
	}
	if send {
		env["message"] = fmt.Sprintf("Email with %d attachment(s) sent to %s", len(msg.Attachments), msg.To)
	} else {
		env["message"] = "Draft with attachments saved"
		env["draft_id"] = id
	}
	return env, nil
}
