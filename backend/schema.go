package backend

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	"github.com/esperanza-dev/go-appstate"
)

// Setup creates the backing tables when missing. Deployments with real
// migrations can skip this; tests and the local backend rely on it.
func Setup(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*appstate.User)(nil),
		(*appstate.Profile)(nil),
		(*appstate.Donation)(nil),
		(*appstate.VolunteerApplication)(nil),
		(*PasswordReset)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create table")
		}
	}

	return nil
}
