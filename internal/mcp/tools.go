package mcp

import "github.com/mark3labs/mcp-go/mcp"

var createToolDef = mcp.NewTool("capsule_create",
	mcp.WithDescription("Turn text, a URL or a local file into an action-oriented capsule: "+
		"title, summary, prioritized actions, tags, read time and deadline. "+
		"URLs may be articles, YouTube videos, tweets, LinkedIn/GitHub pages or PDFs. "+
		"Files may be images, audio, video, PDFs or plain text."),
	mcp.WithString("kind",
		mcp.Required(),
		mcp.Enum("text", "url", "file"),
		mcp.Description("Input kind")),
	mcp.WithString("content",
		mcp.Description("Text to summarize (kind=text, max 100,000 characters)")),
	mcp.WithString("source_label",
		mcp.Description("Where the text came from, e.g. Slack (kind=text, default Manual)")),
	mcp.WithString("url",
		mcp.Description("http(s) URL to fetch (kind=url)")),
	mcp.WithString("path",
		mcp.Description("Local file path (kind=file, max 50MB, no symlinks)")),
)

var fetchToolDef = mcp.NewTool("capsule_fetch",
	mcp.WithDescription("Fetch a stored capsule by id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule id (cap_...)")),
	mcp.WithBoolean("include_text", mcp.Description("Include extractedText (default true)")),
)

var listToolDef = mcp.NewTool("capsule_list",
	mcp.WithDescription("List stored capsule summaries, newest first."),
	mcp.WithString("source_type", mcp.Description("Filter by source type (text, article, youtube, ...)")),
	mcp.WithString("priority", mcp.Enum("high", "medium", "low"), mcp.Description("Filter by priority")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Page offset (default 0)")),
)

var deleteToolDef = mcp.NewTool("capsule_delete",
	mcp.WithDescription("Permanently delete a stored capsule by id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule id (cap_...)")),
)
