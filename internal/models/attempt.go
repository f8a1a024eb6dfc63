package models

// Attempt - сохранённый ответ на одно задание
type Attempt struct {
	ID         string `json:"id"`
	UserID     int    `json:"-"`
	SessionID  string `json:"session_id"`
	Operation  string `json:"operation"`
	Expression string `json:"expression"`
	Solved     string `json:"solved"`
	Answer     string `json:"answer"`
	Correct    bool   `json:"correct"`
	ElapsedMS  int64  `json:"elapsed_ms"`
	Speed      string `json:"speed"`
	CreatedAt  string `json:"created_at"`
}

type AttemptList struct {
	Attempts []Attempt `json:"attempts"`
}
