package types

import "encoding/json"

// TimeRange is an inclusive YYYY-MM-DD window.
type TimeRange struct {
	Since string `json:"since,omitempty"`
	Until string `json:"until,omitempty"`
}

// Filter is one insights filtering clause, e.g. spend GREATER_THAN 50.
type Filter struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

// Page is the common envelope of Graph list responses.
type Page struct {
	Data   []json.RawMessage `json:"data"`
	Paging *Paging           `json:"paging,omitempty"`
}

type Paging struct {
	Cursors  *Cursors `json:"cursors,omitempty"`
	Next     string   `json:"next,omitempty"`
	Previous string   `json:"previous,omitempty"`
}

type Cursors struct {
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
}

// User is the subset of /me used to confirm a token.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
