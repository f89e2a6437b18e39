package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-user-registration/internal/domain/apperror"
	"github.com/oksasatya/go-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-user-registration/internal/domain/repository"
)

const userColumns = `id, name, email, password, status, created_at, updated_at`

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// IsUniqueViolation reports whether err is a Postgres unique_violation (23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *UserRepository) CreateInTransaction(ctx context.Context, in entity.CreateUserInput) (*entity.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}

	u := &entity.User{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Status:   false,
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password, status)
		VALUES ($1, $2, $3, $4, false)
		RETURNING created_at, updated_at
	`, u.ID, u.Name, u.Email, u.Password)

	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		_ = tx.Rollback(ctx)
		if IsUniqueViolation(err) {
			return nil, apperror.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if IsUniqueViolation(err) {
			return nil, apperror.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return u, nil
}

// UpdateStatus patches only the status column. It is monotonic (a false value never
// clears an active user) and updated_at moves only when the value actually changes.
func (r *UserRepository) UpdateStatus(ctx context.Context, id string, status bool) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET status = status OR $2,
		    updated_at = CASE WHEN status = (status OR $2) THEN updated_at ELSE now() END
		WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return apperror.ErrUserNotFound
	}

	return nil
}

func (r *UserRepository) ListPendingActivation(ctx context.Context, createdBefore time.Time, limit int) ([]entity.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE status = false AND created_at < $1
		ORDER BY created_at
		LIMIT $2
	`, createdBefore, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

var _ repository.UserRepository = (*UserRepository)(nil)
