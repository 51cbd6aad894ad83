package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"naco/internal/domain"
	"naco/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (sqlmock.Sqlmock, MySQLStore) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return mock, NewMySQLStore(db)
}

func TestUpdateBookingStatus_CompareAndSwap(t *testing.T) {
	mock, store := newMock(t)
	query := regexp.QuoteMeta(`UPDATE bookings SET status=?, updated_at=UTC_TIMESTAMP() WHERE id=? AND status=?`)

	mock.ExpectExec(query).
		WithArgs("confirmed", "b1", "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).
		WithArgs("declined", "b1", "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := store.UpdateBookingStatus(context.Background(), "b1", domain.StatusPending, domain.StatusConfirmed)
	require.NoError(t, err)
	assert.True(t, ok, "first writer should win")

	ok, err = store.UpdateBookingStatus(context.Background(), "b1", domain.StatusPending, domain.StatusDeclined)
	require.NoError(t, err)
	assert.False(t, ok, "stale writer must not overwrite")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBooking_DuplicateReferenceIsConflict(t *testing.T) {
	mock, store := newMock(t)
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'NACO-AAAAAAAA' for key 'reference'"})

	err := store.CreateBooking(context.Background(), models.Booking{ID: "b1", Reference: "NACO-AAAAAAAA", Status: domain.StatusPending})
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBooking_NotFound(t *testing.T) {
	mock, store := newMock(t)
	mock.ExpectQuery("FROM bookings WHERE id=").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetBooking(context.Background(), "missing")
	assert.True(t, domain.IsNotFound(err), "got %v", err)
}

func TestListBookingsFor_ScansRows(t *testing.T) {
	mock, store := newMock(t)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	cols := []string{"id", "client_id", "artisan_id", "service", "description", "location",
		"scheduled_date", "scheduled_time", "amount", "payment_method", "status", "reference",
		"created_at", "updated_at"}
	mock.ExpectQuery("FROM bookings\\s+WHERE client_id=\\? OR artisan_id=\\?").
		WithArgs("u1", "u1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("b2", "u1", "a1", "Plumbing", "leak", "Yaba", "2026-02-01", "10:00", 5500.0, "cash", "confirmed", "NACO-00000002", now, now).
			AddRow("b1", "u1", "a1", "Wiring", "socket", "Ikeja", "2026-01-20", "09:30", 3000.0, "card", "pending", "NACO-00000001", now, now))

	out, err := store.ListBookingsFor(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, domain.StatusConfirmed, out[0].Status)
	assert.Equal(t, domain.PaymentCard, out[1].PaymentMethod)
	assert.Equal(t, 5500.0, out[0].Amount)
}

func TestIncrementCompletedJobs_CountsBookingOnce(t *testing.T) {
	mock, store := newMock(t)
	insert := regexp.QuoteMeta(`INSERT INTO completed_jobs (booking_id, artisan_id) VALUES (?,?)`)
	update := regexp.QuoteMeta(`UPDATE users SET completed_jobs = completed_jobs + 1 WHERE id=? AND role=?`)

	mock.ExpectBegin()
	mock.ExpectExec(insert).WithArgs("b1", "a1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(update).WithArgs("a1", "artisan").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// A retry after an attempt that committed but reported an error.
	mock.ExpectBegin()
	mock.ExpectExec(insert).WithArgs("b1", "a1").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'b1' for key 'PRIMARY'"})
	mock.ExpectRollback()

	require.NoError(t, store.IncrementCompletedJobs(context.Background(), "a1", "b1"))
	require.NoError(t, store.IncrementCompletedJobs(context.Background(), "a1", "b1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementCompletedJobs_UnknownArtisan(t *testing.T) {
	mock, store := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO completed_jobs").WithArgs("b1", "ghost").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET completed_jobs = completed_jobs + 1 WHERE id=? AND role=?`)).
		WithArgs("ghost", "artisan").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.IncrementCompletedJobs(context.Background(), "ghost", "b1")
	assert.True(t, domain.IsNotFound(err), "got %v", err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetArtisanRating_UnchangedValueIsNotAnError(t *testing.T) {
	mock, store := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET rating=? WHERE id=? AND role=?`)).
		WithArgs(4.5, "a1", "artisan").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.SetArtisanRating(context.Background(), "a1", 4.5))
}

func TestCreateReview_DuplicateIsConflict(t *testing.T) {
	mock, store := newMock(t)
	mock.ExpectExec("INSERT INTO reviews").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry for key 'booking_id'"})

	err := store.CreateReview(context.Background(), models.Review{ID: "r1", BookingID: "b1", Rating: 5})
	assert.True(t, domain.IsConflict(err), "got %v", err)
}

func TestMarkNotificationRead_OtherRecipient(t *testing.T) {
	mock, store := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM notifications WHERE id=? AND recipient_id=?`)).
		WithArgs("n1", "intruder").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	ok, err := store.MarkNotificationRead(context.Background(), "n1", "intruder")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateNotification_EncodesData(t *testing.T) {
	mock, store := newMock(t)
	mock.ExpectExec("INSERT INTO notifications").
		WithArgs("n1", "c1", "booking_confirmed", "Booking confirmed", "msg", false, `{"bookingId":"b1"}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.CreateNotification(context.Background(), models.Notification{
		ID:          "n1",
		RecipientID: "c1",
		Type:        models.NotifBookingConfirmed,
		Title:       "Booking confirmed",
		Message:     "msg",
		Data:        map[string]any{"bookingId": "b1"},
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
