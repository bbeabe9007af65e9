package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"mailramp/models"
)

func senderWithID(id uint, verified bool) models.Sender {
	return models.Sender{
		Model:        gorm.Model{ID: id},
		SMTPVerified: verified,
	}
}

func TestValidateAccountsAllUsable(t *testing.T) {
	pool := []models.Sender{
		senderWithID(1, true),
		senderWithID(2, true),
	}
	assert.NoError(t, ValidateAccounts(pool, []uint{1, 2}))
}

func TestValidateAccountsMissing(t *testing.T) {
	pool := []models.Sender{
		senderWithID(1, true),
		senderWithID(2, true),
	}

	err := ValidateAccounts(pool, []uint{1, 3})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []uint{3}, verr.Missing)
	assert.Empty(t, verr.Unverified)
}

func TestValidateAccountsUnverified(t *testing.T) {
	pool := []models.Sender{
		senderWithID(1, true),
		senderWithID(2, false),
	}

	err := ValidateAccounts(pool, []uint{1, 2})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, verr.Missing)
	assert.Equal(t, []uint{2}, verr.Unverified)
}

func TestValidateAccountsMixedFailures(t *testing.T) {
	pool := []models.Sender{
		senderWithID(1, false),
	}

	err := ValidateAccounts(pool, []uint{1, 9})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []uint{9}, verr.Missing)
	assert.Equal(t, []uint{1}, verr.Unverified)
}

func TestValidateAccountsEmptyRotation(t *testing.T) {
	assert.NoError(t, ValidateAccounts(nil, nil))
}
