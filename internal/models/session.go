package models

// Session is the server-side state bound to one browser session: at most
// one authenticated family member. A nil *Session means "not logged in".
type Session struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
}
