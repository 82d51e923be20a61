package postgres

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fitcoach-api/internal/domain/user"
	idgen "github.com/riskibarqy/fitcoach-api/internal/platform/id"
	qb "github.com/riskibarqy/fitcoach-api/internal/platform/querybuilder"
)

type UserProfileRepository struct {
	db  *sqlx.DB
	ids idgen.Generator
}

func NewUserProfileRepository(db *sqlx.DB, ids idgen.Generator) *UserProfileRepository {
	if ids == nil {
		ids = idgen.NewUUIDGenerator()
	}
	return &UserProfileRepository{db: db, ids: ids}
}

func (r *UserProfileRepository) Create(ctx context.Context, profile user.Profile) (user.Profile, error) {
	if err := profile.Validate(); err != nil {
		return user.Profile{}, err
	}

	publicID, err := r.ids.NewID()
	if err != nil {
		return user.Profile{}, fmt.Errorf("generate user id: %w", err)
	}

	query, args, err := qb.InsertModel(userProfilesTable, userProfileInsertModel{
		PublicID: publicID,
		Name:     profile.Name,
		Email:    profile.Email,
		Age:      profile.Age,
		Height:   profile.Height,
		Weight:   profile.Weight,
		Goal:     profile.Goal,
	}, "RETURNING *")
	if err != nil {
		return user.Profile{}, fmt.Errorf("build insert user profile query: %w", err)
	}

	var row userProfileTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return user.Profile{}, classify(crerr.Wrap(err, "insert user profile"))
	}

	return userProfileFromRow(row), nil
}

func (r *UserProfileRepository) List(ctx context.Context) ([]user.Profile, error) {
	cols, err := qb.Columns(userProfileTableModel{})
	if err != nil {
		return nil, fmt.Errorf("user profile columns: %w", err)
	}

	query, _, err := qb.Select(cols...).From(userProfilesTable).OrderBy("id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select user profiles query: %w", err)
	}

	var rows []userProfileTableModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, classify(crerr.Wrap(err, "select user profiles"))
	}

	out := make([]user.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, userProfileFromRow(row))
	}

	return out, nil
}

func userProfileFromRow(row userProfileTableModel) user.Profile {
	return user.Profile{
		ID:        row.PublicID,
		Name:      row.Name,
		Email:     row.Email,
		Age:       row.Age,
		Height:    row.Height,
		Weight:    row.Weight,
		Goal:      row.Goal,
		CreatedAt: row.CreatedAt.UTC(),
	}
}
