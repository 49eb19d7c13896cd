package miro

// Board is a Miro board as returned by the REST API v2. Only the fields the
// tools surface are decoded.
type Board struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ViewLink    string `json:"viewLink,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// BoardsPage is one page of a board listing. Cursor is empty on the last
// page.
type BoardsPage struct {
	Data   []Board `json:"data"`
	Total  int     `json:"total,omitempty"`
	Cursor string  `json:"cursor,omitempty"`
}

// CreateBoardRequest is the payload for creating a new board.
type CreateBoardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// apiError is Miro's error envelope.
type apiError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
