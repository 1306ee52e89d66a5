package backend

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/esperanza-dev/go-appstate"
)

// Users stores identity records, addressable by id or email
type Users interface {
	repository.Repository[*appstate.User]
}

func NewUsersRepository(db *bun.DB) Users {
	return repository.NewRepository[*appstate.User](db, repository.ModelHandlers[*appstate.User]{
		NewRecord: func() *appstate.User { return &appstate.User{} },
		GetID: func(u *appstate.User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *appstate.User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})
}

func NewPasswordResetsRepository(db *bun.DB) repository.Repository[*PasswordReset] {
	handlers := repository.ModelHandlers[*PasswordReset]{
		NewRecord: func() *PasswordReset {
			return &PasswordReset{}
		},
		GetID: func(record *PasswordReset) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *PasswordReset, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "email"
		},
	}
	return repository.NewRepository(db, handlers)
}

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	Profiles() *ProfilesRepository
	Donations() *DonationsRepository
	VolunteerApplications() *ApplicationsRepository
	PasswordResets() repository.Repository[*PasswordReset]
}

type mngr struct {
	db             *bun.DB
	users          Users
	profiles       *ProfilesRepository
	donations      *DonationsRepository
	applications   *ApplicationsRepository
	passwordResets repository.Repository[*PasswordReset]
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:             db,
		users:          NewUsersRepository(db),
		profiles:       NewProfilesRepository(db),
		donations:      NewDonationsRepository(db),
		applications:   NewApplicationsRepository(db),
		passwordResets: NewPasswordResetsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.profiles == nil {
		return errors.New("repository profiles should be initialized")
	}

	if m.donations == nil {
		return errors.New("repository donations should be initialized")
	}

	if m.applications == nil {
		return errors.New("repository applications should be initialized")
	}

	if m.passwordResets == nil {
		return errors.New("repository passwordResets should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Profiles() *ProfilesRepository {
	return m.profiles
}

func (m mngr) Donations() *DonationsRepository {
	return m.donations
}

func (m mngr) VolunteerApplications() *ApplicationsRepository {
	return m.applications
}

func (m mngr) PasswordResets() repository.Repository[*PasswordReset] {
	return m.passwordResets
}
