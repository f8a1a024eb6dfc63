package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"mathdrill/internal/models"

	_ "github.com/glebarez/go-sqlite"
	"golang.org/x/crypto/bcrypt"
)

const timeLayout = "02.01.2006 15:04:05"

var ErrUserExists = errors.New("user already exists")

// Store - хранилище пользователей и истории ответов в SQLite
type Store struct {
	db *sql.DB
}

// Open открывает (или создаёт) базу по пути path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к базе данных: %w", err)
	}
	// SQLite не любит параллельную запись
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			login TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%d.%m.%Y %H:%M:%S', 'now'))
		)
	`)
	if err != nil {
		return fmt.Errorf("ошибка создания таблицы users: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			session_id TEXT NOT NULL,
			operation TEXT NOT NULL,
			expression TEXT NOT NULL,
			solved TEXT NOT NULL,
			answer TEXT NOT NULL,
			correct INTEGER NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			speed TEXT NOT NULL,
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("ошибка создания таблицы attempts: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_attempts_user ON attempts(user_id)`)
	if err != nil {
		return fmt.Errorf("ошибка создания индекса attempts: %w", err)
	}
	return nil
}

// CreateUser создаёт пользователя и возвращает его ID
func (s *Store) CreateUser(login, password string) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM users WHERE login = ?", login).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка проверки существования пользователя: %w", err)
	}
	if count > 0 {
		return 0, fmt.Errorf("%w: %s", ErrUserExists, login)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	result, err := s.db.Exec("INSERT INTO users (login, password) VALUES (?, ?)", login, string(hashedPassword))
	if err != nil {
		return 0, fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("ошибка получения ID пользователя: %w", err)
	}

	return int(id), nil
}

// GetUser возвращает пользователя по логину; nil, если не найден
func (s *Store) GetUser(login string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRow("SELECT id, login, password, created_at FROM users WHERE login = ?", login).
		Scan(&user.ID, &user.Login, &user.Password, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}

	return &user, nil
}

// SaveAttempt сохраняет ответ на задание
func (s *Store) SaveAttempt(a *models.Attempt) error {
	if a.CreatedAt == "" {
		a.CreatedAt = time.Now().Format(timeLayout)
	}

	_, err := s.db.Exec(
		`INSERT INTO attempts (id, user_id, session_id, operation, expression, solved, answer, correct, elapsed_ms, speed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.SessionID, a.Operation, a.Expression, a.Solved, a.Answer, a.Correct, a.ElapsedMS, a.Speed, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("ошибка сохранения ответа: %w", err)
	}

	log.Printf("СОХРАНЕНО В БД: ID=%s, userID=%d, задание='%s', ответ=%s, верно=%t, время=%d мс",
		a.ID, a.UserID, a.Expression, a.Answer, a.Correct, a.ElapsedMS)

	return nil
}

// GetAttempts возвращает историю ответов пользователя в порядке сохранения
func (s *Store) GetAttempts(userID int) ([]models.Attempt, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, session_id, operation, expression, solved, answer, correct, elapsed_ms, speed, created_at
		FROM attempts WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории: %w", err)
	}
	defer rows.Close()

	var attempts []models.Attempt
	for rows.Next() {
		var a models.Attempt
		err := rows.Scan(&a.ID, &a.UserID, &a.SessionID, &a.Operation, &a.Expression,
			&a.Solved, &a.Answer, &a.Correct, &a.ElapsedMS, &a.Speed, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
		}
		attempts = append(attempts, a)
	}

	return attempts, rows.Err()
}

// CheckPasswordHash сравнивает пароль и хеш пароля
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
