package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"codeatlas/internal/backend"
	"codeatlas/internal/index"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing the indexing operations",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	logger := newLogger()
	idx, be, err := buildIndexer(wd, logger)
	if err != nil {
		return err
	}
	defer be.Close()

	s := mcpserver.NewMCPServer("codeatlas", "1.0.0", mcpserver.WithToolCapabilities(false))

	s.AddTool(indexDirectoryTool(), makeIndexDirectoryHandler(idx))
	s.AddTool(getIndexStatsTool(), makeStatsHandler(idx))
	s.AddTool(updateFileIndexTool(), makeUpdateFileHandler(idx))
	s.AddTool(searchIndexTool(), makeSearchHandler(be))

	return mcpserver.ServeStdio(s)
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func indexDirectoryTool() mcp.Tool {
	return mcp.NewTool("index_directory",
		mcp.WithDescription("Index all recognized source files under a directory and publish their chunks for retrieval."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Directory to index"),
		),
		mcp.WithBoolean("recursive",
			mcp.Description("Descend into subdirectories (default true)"),
		),
		mcp.WithString("patterns",
			mcp.Description("Optional comma-separated glob patterns, e.g. '*.py,*.go'"),
		),
	)
}

func getIndexStatsTool() mcp.Tool {
	return mcp.NewTool("get_index_stats",
		mcp.WithDescription("Get current index statistics: file count, chunk count, and per-language breakdown."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	)
}

func searchIndexTool() mcp.Tool {
	return mcp.NewTool("search_index",
		mcp.WithDescription("Semantically search the indexed chunks by vector similarity. Returns matching code chunks with file paths and line numbers."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language or keyword query to search the index"),
		),
		mcp.WithNumber("k",
			mcp.Description("Maximum number of chunks to return (default 10)"),
		),
	)
}

func updateFileIndexTool() mcp.Tool {
	return mcp.NewTool("update_file_index",
		mcp.WithDescription("Re-index a single file: retract its previous chunks and publish the current ones."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File to re-index"),
		),
	)
}

// --- Handler factories ---

func makeIndexDirectoryHandler(idx *index.Indexer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := req.GetString("path", "")
		if path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		recursive := req.GetBool("recursive", true)

		var patterns []string
		if raw := req.GetString("patterns", ""); raw != "" {
			for _, p := range strings.Split(raw, ",") {
				if p = strings.TrimSpace(p); p != "" {
					patterns = append(patterns, p)
				}
			}
		}

		summary, err := idx.IndexDirectory(ctx, abs, recursive, patterns)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("indexing failed: %v", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf(
			"Indexed %d files into %d chunks.\nLanguages: %s",
			summary.IndexedFiles, summary.TotalChunks, strings.Join(summary.Languages, ", "),
		)), nil
	}
}

func makeStatsHandler(idx *index.Indexer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(formatStats(idx.Stats())), nil
	}
}

func makeUpdateFileHandler(idx *index.Indexer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := req.GetString("path", "")
		if path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := idx.UpdateFile(ctx, abs); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("update failed: %v", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Re-indexed %s.", abs)), nil
	}
}

func makeSearchHandler(be *backend.SQLiteVec) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		k := req.GetInt("k", 10)
		if k <= 0 {
			k = 10
		}

		results, err := be.Search(ctx, query, k)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}

		return mcp.NewToolResultText(formatSearchResults(query, results)), nil
	}
}

// --- Formatting helpers ---

func formatStats(stats index.Stats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Index statistics\n\n")
	fmt.Fprintf(&sb, "- Files:  %d\n", stats.IndexedFiles)
	fmt.Fprintf(&sb, "- Chunks: %d\n", stats.TotalChunks)
	fmt.Fprintf(&sb, "- Languages: %s\n", strings.Join(stats.Languages, ", "))
	if len(stats.FileTypes) > 0 {
		sb.WriteString("\nFiles per language:\n")
		for _, lang := range stats.Languages {
			fmt.Fprintf(&sb, "- %s: %d\n", lang, stats.FileTypes[lang])
		}
	}
	return sb.String()
}

func formatSearchResults(query string, results []backend.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for query: %q", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Search results for %q (%d chunks)\n\n", query, len(results))

	for i, r := range results {
		meta := r.Document.Metadata
		fmt.Fprintf(&sb, "### Result %d: `%s`\n\n", i+1, meta.FilePath)
		fmt.Fprintf(&sb, "**Type:** %s  \n**Name:** %s  \n**Lines:** %d–%d  \n**Language:** %s\n\n",
			meta.ChunkType, meta.Name, meta.StartLine, meta.EndLine, meta.Language)
		fmt.Fprintf(&sb, "```%s\n%s\n```\n\n", meta.Language, r.Document.Text)
	}

	return sb.String()
}
