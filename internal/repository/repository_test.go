package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"modpaypal/internal/database"
	"modpaypal/internal/domain"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestTransactionRepository_DuplicateTxnID(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository(setupDB(t))

	first := &domain.Transaction{TxnID: "TX1", UserID: 5, CourseID: 9, InstanceID: 3, PaymentStatus: "Completed", TimeUpdated: 100}
	require.NoError(t, repo.Create(ctx, first))

	exists, err := repo.ExistsByTxnID(ctx, "TX1")
	require.NoError(t, err)
	assert.True(t, exists)

	second := &domain.Transaction{TxnID: "TX1", UserID: 5, CourseID: 9, InstanceID: 3, PaymentStatus: "Completed", TimeUpdated: 101}
	err = repo.Create(ctx, second)
	assert.True(t, errors.Is(err, domain.ErrTransactionExists), "got %v", err)

	flagged := &domain.Transaction{TxnID: "TX1", UserID: 5, CourseID: 9, InstanceID: 3, Invalid: true, TimeUpdated: 102}
	require.NoError(t, repo.Create(ctx, flagged))

	list, err := repo.ListByInstance(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestTransactionRepository_LatestForUser(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository(setupDB(t))

	latest, err := repo.LatestForUser(ctx, 5, 3)
	require.NoError(t, err)
	assert.Nil(t, latest)

	require.NoError(t, repo.Create(ctx, &domain.Transaction{TxnID: "A", UserID: 5, InstanceID: 3, PaymentStatus: "Pending", TimeUpdated: 100}))
	require.NoError(t, repo.Create(ctx, &domain.Transaction{TxnID: "B", UserID: 5, InstanceID: 3, PaymentStatus: "Completed", TimeUpdated: 200}))
	require.NoError(t, repo.Create(ctx, &domain.Transaction{TxnID: "C", UserID: 5, InstanceID: 3, PaymentStatus: "Completed", Invalid: true, TimeUpdated: 300}))

	latest, err = repo.LatestForUser(ctx, 5, 3)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "B", latest.TxnID)

	ok, err := repo.HasCompleted(ctx, 5, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.HasCompleted(ctx, 6, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompletionRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewCompletionRepository(setupDB(t))

	state, err := repo.GetState(ctx, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.CompletionIncomplete, state)

	require.NoError(t, repo.SetState(ctx, 3, 5, domain.CompletionComplete))
	require.NoError(t, repo.SetState(ctx, 3, 5, domain.CompletionComplete))

	state, err = repo.GetState(ctx, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.CompletionComplete, state)
}

func TestCourseRepository_PrimaryTeacher(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	users := NewUserRepository(db)
	courses := NewCourseRepository(db)

	course := &domain.Course{ShortName: "GO", FullName: "Go 101"}
	require.NoError(t, courses.Create(ctx, course))

	teacher, err := courses.PrimaryTeacher(ctx, course.ID)
	require.NoError(t, err)
	assert.Nil(t, teacher)

	second := &domain.User{Email: "B@example.com", FirstName: "Bea"}
	first := &domain.User{Email: "a@example.com", FirstName: "Ann"}
	require.NoError(t, users.Create(ctx, second))
	require.NoError(t, users.Create(ctx, first))
	require.NoError(t, courses.AddTeacher(ctx, course.ID, second.ID, 2))
	require.NoError(t, courses.AddTeacher(ctx, course.ID, first.ID, 1))

	teacher, err = courses.PrimaryTeacher(ctx, course.ID)
	require.NoError(t, err)
	require.NotNil(t, teacher)
	assert.Equal(t, first.ID, teacher.ID)

	isTeacher, err := courses.IsTeacher(ctx, course.ID, second.ID)
	require.NoError(t, err)
	assert.True(t, isTeacher)

	byEmail, err := users.GetByEmail(ctx, " b@EXAMPLE.com ")
	require.NoError(t, err)
	assert.Equal(t, second.ID, byEmail.ID)
}

func TestInstanceRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	instances := NewInstanceRepository(db)
	completions := NewCompletionRepository(db)

	inst := &domain.Instance{
		CourseID:      9,
		Name:          "Pay to pass",
		BusinessEmail: "shop@example.com",
		Cost:          decimal.RequireFromString("10.00"),
		Currency:      "USD",
		ItemName:      "Course fee",
		ItemNumber:    "FEE-1",
		MailStudents:  true,
	}
	require.NoError(t, instances.Create(ctx, inst))

	inst.MailStudents = false
	inst.Cost = decimal.RequireFromString("12.50")
	require.NoError(t, instances.Update(ctx, inst))

	got, err := instances.GetByID(ctx, inst.ID)
	require.NoError(t, err)
	assert.False(t, got.MailStudents)
	assert.True(t, got.Cost.Equal(decimal.RequireFromString("12.5")))

	require.NoError(t, completions.SetState(ctx, inst.ID, 5, domain.CompletionComplete))
	require.NoError(t, instances.Delete(ctx, inst.ID))

	_, err = instances.GetByID(ctx, inst.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	state, err := completions.GetState(ctx, inst.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.CompletionIncomplete, state)

	assert.ErrorIs(t, instances.Delete(ctx, inst.ID), gorm.ErrRecordNotFound)
}

func TestIPNLogRepository_JournalLifecycle(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	repo := NewIPNLogRepository(db)

	entry := &domain.IPNLog{TxnID: "TX9", RawBody: "txn_id=TX9", Payload: []byte(`{"txn_id":"TX9"}`)}
	require.NoError(t, repo.Create(ctx, entry))
	require.NotEqual(t, "00000000-0000-0000-0000-000000000000", entry.ID.String())

	require.NoError(t, repo.Finish(ctx, entry.ID, "VERIFIED", domain.IPNOutcomeRecorded, ""))
	got, err := repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IPNOutcomeRecorded, got.Outcome)
	assert.Equal(t, "VERIFIED", got.Verification)

	old := &domain.IPNLog{TxnID: "TX8", CreatedAt: time.Now().Add(-100 * 24 * time.Hour)}
	require.NoError(t, repo.Create(ctx, old))

	n, err := repo.PurgeBefore(ctx, time.Now().Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	list, err := repo.ListByTxnID(ctx, "TX9")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
