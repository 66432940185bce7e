// Package storage реализует хранилище данных на основе PostgreSQL:
// пользователи, карточки пациентов со встроенными заметками, счетчики
// отображаемых идентификаторов и метаданные документов.
// Каждый запрос к данным пациентов фильтруется по владельцу.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	// ErrNotFound запись отсутствует или принадлежит другому пользователю.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken email уже зарегистрирован.
	ErrEmailTaken = errors.New("email already registered")
)

const uniqueViolation = "23505"

// Storage инкапсулирует пул соединений с PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New открывает пул соединений и проверяет доступность базы.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// Ping проверяет соединение с базой.
func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
