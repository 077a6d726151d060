package users

import (
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/kelviy/leadtime-order-sync/internal/repository"
	"github.com/kelviy/leadtime-order-sync/pkg/models"
)

type UserRepository interface {
	PersistUser(username, fullname, role string, hashedPassword []byte) error
	GetUser(id int) (*models.User, error)
}

type userRepositoryImpl struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) UserRepository {
	return &userRepositoryImpl{repository: r}
}

func (r *userRepositoryImpl) PersistUser(username, fullname, role string, hashedPassword []byte) error {
	query := r.repository.GoquDBWrapper.Insert("users").
		Rows(goqu.Record{
			"password_hash": string(hashedPassword),
			"username":      username,
			"fullname":      fullname,
			"role":          role,
		})

	if _, err := query.Executor().Exec(); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (r *userRepositoryImpl) GetUser(id int) (*models.User, error) {
	var user models.User

	query := r.repository.GoquDBWrapper.
		Select("id", "username", "fullname", "role").
		From("users").
		Where(goqu.Ex{"id": id})

	if _, err := query.Executor().ScanStruct(&user); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}
