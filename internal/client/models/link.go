package models

// Link is one row of the short-link list.
type Link struct {
	ID       int    `json:"id"`
	Original string `json:"original"`
	Short    string `json:"short"`
	Clicks   int    `json:"clicks"`
}
