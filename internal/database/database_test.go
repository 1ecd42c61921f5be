package database

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modpaypal/internal/domain"
)

func TestMigrate_PartialUniqueTxnID(t *testing.T) {
	db, err := Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	valid := domain.Transaction{TxnID: "TX1", UserID: 1, CourseID: 1, InstanceID: 1, TimeUpdated: 1}
	require.NoError(t, db.Create(&valid).Error)

	dup := domain.Transaction{TxnID: "TX1", UserID: 1, CourseID: 1, InstanceID: 1, TimeUpdated: 2}
	assert.Error(t, db.Create(&dup).Error, "second valid row with same txn_id must violate the index")

	flagged := domain.Transaction{TxnID: "TX1", UserID: 1, CourseID: 1, InstanceID: 1, Invalid: true, TimeUpdated: 3}
	assert.NoError(t, db.Create(&flagged).Error, "invalid rows are outside the unique index")
}
