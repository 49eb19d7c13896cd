package miro

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(nil, WithBaseURL(ts.URL))
}

func TestListBoards(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/boards" {
			t.Errorf("path = %q, want /v2/boards", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "25" {
			t.Errorf("limit = %q, want 25", got)
		}
		if got := r.URL.Query().Get("cursor"); got != "next-page" {
			t.Errorf("cursor = %q, want next-page", got)
		}

		json.NewEncoder(w).Encode(BoardsPage{
			Data: []Board{
				{ID: "b1", Name: "Sprint Planning"},
				{ID: "b2", Name: "Retrospective"},
			},
			Total:  2,
			Cursor: "",
		})
	})

	page, err := c.ListBoards(context.Background(), "test-token", 25, "next-page")
	if err != nil {
		t.Fatalf("ListBoards() error = %v", err)
	}
	if len(page.Data) != 2 {
		t.Fatalf("len(Data) = %d, want 2", len(page.Data))
	}
	if page.Data[0].ID != "b1" || page.Data[1].Name != "Retrospective" {
		t.Errorf("unexpected boards: %+v", page.Data)
	}
}

func TestListBoardsDefaultQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("query = %q, want empty", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(BoardsPage{})
	})

	if _, err := c.ListBoards(context.Background(), "tok", 0, ""); err != nil {
		t.Fatalf("ListBoards() error = %v", err)
	}
}

func TestGetBoard(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/boards/board-123" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Board{ID: "board-123", Name: "Roadmap", Description: "Q3 plans"})
	})

	board, err := c.GetBoard(context.Background(), "tok", "board-123")
	if err != nil {
		t.Fatalf("GetBoard() error = %v", err)
	}
	if board.Name != "Roadmap" || board.Description != "Q3 plans" {
		t.Errorf("board = %+v", board)
	}
}

func TestGetBoardEmptyID(t *testing.T) {
	c := NewClient(nil)
	if _, err := c.GetBoard(context.Background(), "tok", ""); err == nil {
		t.Error("GetBoard(\"\") succeeded, want error")
	}
}

func TestGetBoardNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"code": "not_found", "message": "Board not found"})
	})

	_, err := c.GetBoard(context.Background(), "tok", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetBoard() error = %v, want ErrNotFound", err)
	}
}

func TestCreateBoard(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}

		var req CreateBoardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Name != "New Board" || req.Description != "created by test" {
			t.Errorf("request = %+v", req)
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Board{ID: "created-1", Name: req.Name, Description: req.Description})
	})

	board, err := c.CreateBoard(context.Background(), "tok", CreateBoardRequest{
		Name:        "New Board",
		Description: "created by test",
	})
	if err != nil {
		t.Fatalf("CreateBoard() error = %v", err)
	}
	if board.ID != "created-1" {
		t.Errorf("ID = %q, want created-1", board.ID)
	}
}

func TestCreateBoardEmptyName(t *testing.T) {
	c := NewClient(nil)
	if _, err := c.CreateBoard(context.Background(), "tok", CreateBoardRequest{}); err == nil {
		t.Error("CreateBoard with empty name succeeded, want error")
	}
}

func TestUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"code": "token_invalid"})
	})

	_, err := c.ListBoards(context.Background(), "expired-token", 0, "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("ListBoards() error = %v, want ErrUnauthorized", err)
	}
}

func TestServerErrorMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"message": "Rate limit exceeded"})
	})

	_, err := c.ListBoards(context.Background(), "tok", 0, "")
	if err == nil {
		t.Fatal("ListBoards() succeeded, want error")
	}
	if got := err.Error(); got != "miro API error (status 429): Rate limit exceeded" {
		t.Errorf("error = %q", got)
	}
}
