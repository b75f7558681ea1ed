package memory

import (
	"context"
	"testing"

	"github.com/SscSPs/blood_bank_app/internal/apperrors"
	"github.com/SscSPs/blood_bank_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(NewStore())

	acc := domain.Account{AccountID: "org-1", Role: domain.RoleOrganisation, Name: "City Blood Bank", Email: "Desk@City.org"}
	require.NoError(t, repo.SaveAccount(ctx, acc))

	byID, err := repo.FindAccountByID(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, "desk@city.org", byID.Email)

	byEmail, err := repo.FindAccountByEmail(ctx, "  DESK@city.ORG ")
	require.NoError(t, err)
	assert.Equal(t, "org-1", byEmail.AccountID)

	err = repo.SaveAccount(ctx, domain.Account{AccountID: "org-2", Role: domain.RoleOrganisation, Email: "desk@city.org"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	_, err = repo.FindAccountByID(ctx, "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = repo.FindAccountByEmail(ctx, "nobody@nowhere.test")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
