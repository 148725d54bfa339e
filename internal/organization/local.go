package organization

import (
	"context"
	"errors"

	"casedesk/internal/model"
	"casedesk/internal/recordstore"
)

// LocalStore keeps organizations in the record store. It is used when no
// hosted backend is configured.
type LocalStore struct {
	coll *recordstore.Collection[model.Organization]
}

func NewLocalStore(store *recordstore.Store) *LocalStore {
	return &LocalStore{coll: recordstore.NewCollection[model.Organization](store, recordstore.KeyOrganizations)}
}

func (l *LocalStore) List(ctx context.Context) ([]model.Organization, error) {
	return l.coll.Load(ctx)
}

func (l *LocalStore) Insert(ctx context.Context, org model.Organization) (model.Organization, error) {
	if _, err := l.coll.Upsert(ctx, org); err != nil {
		return model.Organization{}, err
	}
	return org, nil
}

func (l *LocalStore) Update(ctx context.Context, org model.Organization) (model.Organization, error) {
	err := l.coll.Replace(ctx, org)
	if errors.Is(err, recordstore.ErrNotFound) {
		return model.Organization{}, ErrNotFound
	}
	if err != nil {
		return model.Organization{}, err
	}
	return org, nil
}
