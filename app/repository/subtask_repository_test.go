package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSetDoneScopedToParentTask(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubtaskRepository(db)

	mock.ExpectExec("UPDATE `subtasks` SET .* WHERE id = \\? AND task_id = \\?").
		WithArgs(true, sqlmock.AnyArg(), uint(5), uint(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetDone(3, 5, true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetDoneForeignTaskNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubtaskRepository(db)

	// id 5 belongs to another task; the scoped update matches nothing
	mock.ExpectExec("UPDATE `subtasks` SET .* WHERE id = \\? AND task_id = \\?").
		WithArgs(true, sqlmock.AnyArg(), uint(5), uint(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetDone(99, 5, true)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteScopedToParentTask(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubtaskRepository(db)

	mock.ExpectExec("DELETE FROM `subtasks` WHERE id = \\? AND task_id = \\?").
		WithArgs(uint(5), uint(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(3, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteForeignTaskNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubtaskRepository(db)

	mock.ExpectExec("DELETE FROM `subtasks` WHERE id = \\? AND task_id = \\?").
		WithArgs(uint(5), uint(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(99, 5)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
