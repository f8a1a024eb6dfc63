package models

// User - учётная запись ученика
type User struct {
	ID        int    `json:"id"`
	Login     string `json:"login"`
	Password  string `json:"-"` // хеш пароля, в JSON не отдаём
	CreatedAt string `json:"created_at"`
}

// Credentials - тело запросов регистрации и входа
type Credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token            string `json:"token"`
	ExpiresInMinutes int    `json:"expires_in_minutes"`
}
