package mcp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/flyagile/miro-mcp-server/auth"
	"github.com/flyagile/miro-mcp-server/miro"
)

const (
	serverName    = "miro-mcp-server"
	serverVersion = "1.0.0"
)

// Server exposes Miro board operations as MCP tools.
type Server struct {
	mcpServer *server.MCPServer
	boards    BoardAPI
	logger    *slog.Logger
}

// BoardAPI is the slice of the Miro client the tools need.
type BoardAPI interface {
	ListBoards(ctx context.Context, token string, limit int, cursor string) (*miro.BoardsPage, error)
	GetBoard(ctx context.Context, token, boardID string) (*miro.Board, error)
	CreateBoard(ctx context.Context, token string, req miro.CreateBoardRequest) (*miro.Board, error)
}

// NewServer creates the MCP server and registers the board tools. A nil
// logger falls back to slog.Default().
func NewServer(boards BoardAPI, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer: mcpServer,
		boards:    boards,
		logger:    logger,
	}

	s.registerTools()

	return s
}

// Handler returns the streamable HTTP handler for mounting under /mcp. The
// context func carries the authenticated user's access token and identity
// from the HTTP request into tool handler contexts.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithEndpointPath("/mcp"),
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			if token, ok := auth.AccessTokenFromContext(r.Context()); ok {
				ctx = auth.ContextWithAccessToken(ctx, token)
			}
			if info, ok := auth.UserInfoFromContext(r.Context()); ok {
				ctx = auth.ContextWithUserInfo(ctx, info)
			}
			return ctx
		}),
	)
}

// registerTools registers the board tools
func (s *Server) registerTools() {
	listBoardsTool := mcp.NewTool("list_boards",
		mcp.WithDescription("List Miro boards visible to the authenticated user's team"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of boards to return per page"),
		),
		mcp.WithString("cursor",
			mcp.Description("Pagination cursor from a previous list_boards call"),
		),
	)
	s.mcpServer.AddTool(listBoardsTool, s.handleListBoards)

	getBoardTool := mcp.NewTool("get_board",
		mcp.WithDescription("Get details of a specific Miro board"),
		mcp.WithString("board_id",
			mcp.Required(),
			mcp.Description("ID of the board to fetch"),
		),
	)
	s.mcpServer.AddTool(getBoardTool, s.handleGetBoard)

	createBoardTool := mcp.NewTool("create_board",
		mcp.WithDescription("Create a new Miro board"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name for the new board"),
		),
		mcp.WithString("description",
			mcp.Description("Optional description for the new board"),
		),
	)
	s.mcpServer.AddTool(createBoardTool, s.handleCreateBoard)
}
