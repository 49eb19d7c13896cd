package mcp

import (
	"context"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flyagile/miro-mcp-server/auth"
	"github.com/flyagile/miro-mcp-server/miro"
)

// fakeBoards records calls and serves canned responses.
type fakeBoards struct {
	lastToken  string
	lastLimit  int
	lastCursor string
	lastID     string
	lastCreate miro.CreateBoardRequest

	page  *miro.BoardsPage
	board *miro.Board
	err   error
}

func (f *fakeBoards) ListBoards(_ context.Context, token string, limit int, cursor string) (*miro.BoardsPage, error) {
	f.lastToken, f.lastLimit, f.lastCursor = token, limit, cursor
	return f.page, f.err
}

func (f *fakeBoards) GetBoard(_ context.Context, token, boardID string) (*miro.Board, error) {
	f.lastToken, f.lastID = token, boardID
	return f.board, f.err
}

func (f *fakeBoards) CreateBoard(_ context.Context, token string, req miro.CreateBoardRequest) (*miro.Board, error) {
	f.lastToken, f.lastCreate = token, req
	return f.board, f.err
}

func callToolRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func authedContext(token string) context.Context {
	return auth.ContextWithAccessToken(context.Background(), token)
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	tc, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "content is not text")
	return tc.Text
}

func TestHandleListBoards(t *testing.T) {
	boards := &fakeBoards{
		page: &miro.BoardsPage{
			Data: []miro.Board{{ID: "b1", Name: "Planning"}},
		},
	}
	s := NewServer(boards, nil)

	result, err := s.handleListBoards(authedContext("miro-token"),
		callToolRequest(map[string]any{"limit": float64(10), "cursor": "page-2"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	assert.Equal(t, "miro-token", boards.lastToken)
	assert.Equal(t, 10, boards.lastLimit)
	assert.Equal(t, "page-2", boards.lastCursor)
	assert.Contains(t, textContent(t, result), `"Planning"`)
}

func TestHandleListBoardsNoToken(t *testing.T) {
	s := NewServer(&fakeBoards{}, nil)

	result, err := s.handleListBoards(context.Background(), callToolRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "no access token")
}

func TestHandleListBoardsAPIError(t *testing.T) {
	boards := &fakeBoards{err: fmt.Errorf("upstream busted")}
	s := NewServer(boards, nil)

	result, err := s.handleListBoards(authedContext("tok"), callToolRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "Failed to list boards")
}

func TestHandleGetBoard(t *testing.T) {
	boards := &fakeBoards{board: &miro.Board{ID: "b42", Name: "Roadmap"}}
	s := NewServer(boards, nil)

	result, err := s.handleGetBoard(authedContext("tok"),
		callToolRequest(map[string]any{"board_id": "b42"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	assert.Equal(t, "b42", boards.lastID)
	assert.Contains(t, textContent(t, result), `"Roadmap"`)
}

func TestHandleGetBoardMissingID(t *testing.T) {
	s := NewServer(&fakeBoards{}, nil)

	result, err := s.handleGetBoard(authedContext("tok"), callToolRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "board_id argument is required")
}

func TestHandleCreateBoard(t *testing.T) {
	boards := &fakeBoards{board: &miro.Board{ID: "new-1", Name: "Fresh Board"}}
	s := NewServer(boards, nil)

	result, err := s.handleCreateBoard(authedContext("tok"),
		callToolRequest(map[string]any{"name": "Fresh Board", "description": "notes"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	assert.Equal(t, miro.CreateBoardRequest{Name: "Fresh Board", Description: "notes"}, boards.lastCreate)
	assert.Contains(t, textContent(t, result), `"new-1"`)
}

func TestHandleCreateBoardMissingName(t *testing.T) {
	s := NewServer(&fakeBoards{}, nil)

	result, err := s.handleCreateBoard(authedContext("tok"), callToolRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "name argument is required")
}
