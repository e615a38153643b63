package bookings

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/medibot/internal/booking"
	"github.com/clinicdesk/medibot/pkg/logging"
)

// fakeNotifier records confirmation emails and optionally fails.
type fakeNotifier struct {
	calls int
	fail  bool
}

func (f *fakeNotifier) SendConfirmation(_ context.Context, _ string, _ int64, _ booking.Draft) error {
	f.calls++
	if f.fail {
		return errors.New("smtp down")
	}
	return nil
}

func expectSave(t *testing.T, mock pgxmock.PgxPoolIface, bookingID int64) {
	t.Helper()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO customers").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"customer_id"}).AddRow(int64(1)))
	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(bookingID))
	mock.ExpectCommit()
}

func TestConfirmPersistsAndSendsEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	expectSave(t, mock, 42)

	notifier := &fakeNotifier{}
	svc := NewService(NewRepository(mock), notifier, nil, logging.New("error"))

	res, err := svc.Confirm(context.Background(), completeDraft())
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.Booking.ID)
	assert.True(t, res.EmailSent)
	assert.Equal(t, 1, notifier.calls)
}

func TestConfirmEmailFailureIsNonFatal(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	expectSave(t, mock, 43)

	notifier := &fakeNotifier{fail: true}
	svc := NewService(NewRepository(mock), notifier, nil, logging.New("error"))

	res, err := svc.Confirm(context.Background(), completeDraft())
	require.NoError(t, err)
	assert.Equal(t, int64(43), res.Booking.ID)
	assert.False(t, res.EmailSent)
}

func TestConfirmPersistenceFailureSurfaces(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO customers").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	notifier := &fakeNotifier{}
	svc := NewService(NewRepository(mock), notifier, nil, logging.New("error"))

	_, err = svc.Confirm(context.Background(), completeDraft())
	assert.Error(t, err)
	assert.Equal(t, 0, notifier.calls, "no email on persistence failure")
}

func TestConfirmRejectsIncompleteDraft(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewService(NewRepository(mock), nil, nil, logging.New("error"))
	_, err = svc.Confirm(context.Background(), booking.Draft{Name: "Asha Rao"})
	assert.ErrorContains(t, err, "draft incomplete")
}
