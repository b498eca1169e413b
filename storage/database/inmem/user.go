package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/college/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func isExcluded(usr user.User, excludedUsers []user.User) bool {
	for _, excl := range excludedUsers {
		if excl.ID == usr.ID {
			return true
		}
	}
	return false
}

// conflict returns the uniqueness error usr would raise against the stored users.
func (repo *userRepository) conflict(username, email string, excludedUsers ...user.User) error {
	var emailTaken bool
	for _, usr := range repo.db.users {
		if isExcluded(usr, excludedUsers) {
			continue
		}
		if usr.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && usr.Email == email {
			emailTaken = true
		}
	}
	if emailTaken {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CheckUsernameUniqueness(_ context.Context, username, email string, excludedUsers ...user.User) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.conflict(username, email, excludedUsers...)
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if err := repo.conflict(usr.Username, usr.Email); err != nil {
		return user.User{}, err
	}
	usr.ID = newID(usr.ID)
	repo.db.users = append(repo.db.users, usr)
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	switch {
	case filter.ID != "":
		if usr, ok := repo.db.userByID(filter.ID); ok {
			return usr, nil
		}
	case filter.UsernameOrEmail != "":
		var byEmail *user.User
		for i, usr := range repo.db.users {
			if usr.Username == filter.UsernameOrEmail {
				return usr, nil
			}
			if byEmail == nil && usr.Email != "" && usr.Email == filter.UsernameOrEmail {
				byEmail = &repo.db.users[i]
			}
		}
		if byEmail != nil {
			return *byEmail, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsers(_ context.Context, filter *user.QueryFilter) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	users := make([]user.User, 0, len(repo.db.users))
	for _, usr := range repo.db.users {
		if filter != nil {
			if filter.Search != "" {
				search := strings.ToLower(filter.Search)
				if !strings.Contains(strings.ToLower(usr.Name), search) &&
					!strings.Contains(strings.ToLower(usr.Username), search) &&
					!strings.Contains(strings.ToLower(usr.Email), search) {
					continue
				}
			}
			if filter.IsActive != nil && usr.IsActive != *filter.IsActive {
				continue
			}
		}
		users = append(users, usr)
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i, orig := range repo.db.users {
		if orig.ID != usr.ID {
			continue
		}
		if err := repo.conflict(usr.Username, usr.Email, orig); err != nil {
			return user.User{}, err
		}
		repo.db.users[i] = usr
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) DeleteUsersByID(_ context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	kept := repo.db.users[:0]
	for _, usr := range repo.db.users {
		if !contains(ids, usr.ID) {
			kept = append(kept, usr)
		}
	}
	repo.db.users = kept
	return nil
}
