package repository

import (
	"context"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

type AccountRepository struct {
	*SQLRepository
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository(base *SQLRepository) *AccountRepository {
	return &AccountRepository{SQLRepository: base}
}

const accountColumns = "id, email, password_hash, created_at"

func scanAccount(row rowScanner) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	return a, err
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var account domain.Account
	err := r.run(ctx, "find account by email", func(ctx context.Context) error {
		var err error
		account, err = scanAccount(r.db.QueryRowContext(ctx,
			"SELECT "+accountColumns+" FROM users WHERE LOWER(email) = LOWER($1)", email))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	var account domain.Account
	err := r.run(ctx, "find account", func(ctx context.Context) error {
		var err error
		account, err = scanAccount(r.db.QueryRowContext(ctx,
			"SELECT "+accountColumns+" FROM users WHERE id = $1", id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	return r.run(ctx, "create account", func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx,
			"INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)",
			account.ID, account.Email, account.PasswordHash, account.CreatedAt)
		return err
	})
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	err := r.run(ctx, "list accounts", func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx, "SELECT "+accountColumns+" FROM users ORDER BY created_at")
		if err != nil {
			return err
		}
		defer rows.Close()

		accounts = nil
		for rows.Next() {
			a, err := scanAccount(rows)
			if err != nil {
				return err
			}
			accounts = append(accounts, a)
		}
		return rows.Err()
	})
	return accounts, err
}

func (r *AccountRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return r.run(ctx, "update password", func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx, "UPDATE users SET password_hash = $1 WHERE id = $2", hash, id)
		if err != nil {
			return err
		}
		return requireRow(res)
	})
}
