// Package models defines the core data structures exchanged with the
// event admin gateway.
package models

// Event represents one promotional event entry as the gateway reports it.
// Field names follow the gateway's wire format.
type Event struct {
	// ID is the unique identifier for the event, assigned by the backend.
	ID int64 `json:"id"`
	// Title is the display title of the event.
	Title string `json:"event_title"`
	// Description is the display description, opaque to the client.
	Description string `json:"description"`
	// IconURL points at the event's icon image.
	IconURL string `json:"icon_url"`
	// LiveURL points at the event's live page.
	LiveURL string `json:"live_url"`
	// WebURL points at the event's web site.
	WebURL string `json:"web_url"`
	// TwitterURL points at the event's Twitter page.
	TwitterURL string `json:"twitter_url"`
	// Voted reports whether the current account has voted for the event.
	Voted bool `json:"is_voted"`
	// Votes is the current vote total. Non-negative; only the vote
	// operation adjusts it server-side.
	Votes int `json:"votes"`
	// Rank is computed by the backend and read-only for the client.
	Rank int `json:"rank"`
	// Show encodes visibility as 0/1, per the gateway's wire format.
	Show int `json:"is_show"`
	// SortOrder is the client-adjustable ordering weight. Ties are
	// permitted; ordering among ties is undefined.
	SortOrder int `json:"sort_order"`
}

// Visible reports whether the event is currently shown.
func (e Event) Visible() bool {
	return e.Show != 0
}

// SetVisible stores the 0/1 wire encoding of the visibility flag.
func (e *Event) SetVisible(v bool) {
	if v {
		e.Show = 1
	} else {
		e.Show = 0
	}
}
