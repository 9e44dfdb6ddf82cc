package credit

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/drivingschool_backend/internal/model"
	"github.com/Alijeyrad/drivingschool_backend/internal/testutil"
)

func TestGrantConsume(t *testing.T) {
	db := testutil.NewDB(t)
	st := testutil.Student(t, db, 0)

	row, err := Grant(db, st.ID, 4, model.CreditPurchase, Reference{Type: "purchase", ID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, 4, row.BalanceAvailableAfter)
	assert.Equal(t, 4, row.BalanceTotalAfter)

	row, err = Consume(db, st.ID, 1, Reference{Type: "appointment"})
	require.NoError(t, err)
	assert.Equal(t, -1, row.DeltaAvailable)
	assert.Equal(t, 3, row.BalanceAvailableAfter)
	assert.Equal(t, 4, row.BalanceTotalAfter)
	assert.Nil(t, row.ReferenceID)

	var n int64
	require.NoError(t, db.Model(&model.CreditTransaction{}).Where("student_id = ?", st.ID).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}

func TestConsume_Insufficient(t *testing.T) {
	db := testutil.NewDB(t)
	st := testutil.Student(t, db, 0)

	_, err := Consume(db, st.ID, 1, Reference{})
	assert.ErrorIs(t, err, ErrInsufficientCredits)

	bal, err := Balance(db, st.ID)
	require.NoError(t, err)
	assert.Zero(t, bal.AvailableCredits)

	_, err = Consume(db, uuid.New(), 1, Reference{})
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestGrant_Invalid(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := Grant(db, uuid.New(), 0, model.CreditAdjustment, Reference{})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = Grant(db, uuid.New(), 1, model.CreditAdjustment, Reference{})
	assert.ErrorIs(t, err, ErrStudentNotFound)
}
