package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flyagile/miro-mcp-server/auth"
	"github.com/flyagile/miro-mcp-server/miro"
)

// tokenFromContext extracts the Miro access token the bearer middleware
// attached upstream. Its absence means the tool was invoked outside an
// authenticated request, which the transport wiring should make impossible.
func tokenFromContext(ctx context.Context) (string, *mcp.CallToolResult) {
	token, ok := auth.AccessTokenFromContext(ctx)
	if !ok || token == "" {
		return "", mcp.NewToolResultError("no access token in request context")
	}
	return token, nil
}

func (s *Server) handleListBoards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, errResult := tokenFromContext(ctx)
	if errResult != nil {
		return errResult, nil
	}

	limit := request.GetInt("limit", 0)
	cursor := request.GetString("cursor", "")

	page, err := s.boards.ListBoards(ctx, token, limit, cursor)
	if err != nil {
		s.logger.Warn("list_boards failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list boards: %v", err)), nil
	}

	jsonData, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format boards: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (s *Server) handleGetBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, errResult := tokenFromContext(ctx)
	if errResult != nil {
		return errResult, nil
	}

	boardID, err := request.RequireString("board_id")
	if err != nil {
		return mcp.NewToolResultError("board_id argument is required"), nil
	}

	board, err := s.boards.GetBoard(ctx, token, boardID)
	if err != nil {
		s.logger.Warn("get_board failed", "board_id", boardID, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get board: %v", err)), nil
	}

	jsonData, err := json.MarshalIndent(board, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format board: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (s *Server) handleCreateBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, errResult := tokenFromContext(ctx)
	if errResult != nil {
		return errResult, nil
	}

	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name argument is required"), nil
	}
	description := request.GetString("description", "")

	board, err := s.boards.CreateBoard(ctx, token, miro.CreateBoardRequest{
		Name:        name,
		Description: description,
	})
	if err != nil {
		s.logger.Warn("create_board failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create board: %v", err)), nil
	}

	jsonData, err := json.MarshalIndent(board, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format board: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}
