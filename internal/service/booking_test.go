package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"parksmart/internal/auth"
	"parksmart/internal/database"
	"parksmart/internal/models"
	"parksmart/internal/notify"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockStore) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockStore) BookedSlots(ctx context.Context, date, location string) ([]int, error) {
	args := m.Called(ctx, date, location)
	return args.Get(0).([]int), args.Error(1)
}
func (m *mockStore) SettleBooking(ctx context.Context, id int64, exit time.Time, hours, amount int) error {
	return m.Called(ctx, id, exit, hours, amount).Error(0)
}
func (m *mockStore) ListBookings(ctx context.Context) ([]models.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockStore) EnsureUser(ctx context.Context, uid, email string) error {
	return m.Called(ctx, uid, email).Error(0)
}
func (m *mockStore) CreateMonthlyBooking(ctx context.Context, mb *models.MonthlyBooking) error {
	return m.Called(ctx, mb).Error(0)
}
func (m *mockStore) GetMonthlyBooking(ctx context.Context, id int64) (*models.MonthlyBooking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MonthlyBooking), args.Error(1)
}
func (m *mockStore) ListMonthlyBookings(ctx context.Context) ([]models.MonthlyBooking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.MonthlyBooking), args.Error(1)
}

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) RenderHourly(b *models.Booking) (string, error) {
	args := m.Called(b)
	return args.String(0), args.Error(1)
}
func (m *mockRenderer) RenderMonthly(mb *models.MonthlyBooking) (string, error) {
	args := m.Called(mb)
	return args.String(0), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, msg notify.Message) error {
	return m.Called(ctx, msg).Error(0)
}

// stubAuth resolves every uid to a fixed email and counts lookups.
type stubAuth struct {
	email   string
	err     error
	lookups int
}

func (s *stubAuth) Verify(ctx context.Context, idToken string) (*auth.Identity, error) {
	return &auth.Identity{UID: "uid-1", Email: s.email}, s.err
}
func (s *stubAuth) EmailForUID(ctx context.Context, uid string) (string, error) {
	s.lookups++
	return s.email, s.err
}

// writeTempPDF gives the detached email job a real file to attach.
func writeTempPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ticket.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func validInput() CreateBookingInput {
	return CreateBookingInput{
		Slot:      3,
		Vehicle:   "KA-01-AB-1234",
		Location:  "MG Road",
		Latitude:  12.9716,
		Longitude: 77.5946,
		Date:      "2026-09-01",
	}
}

func TestCreateBooking(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	t.Run("ValidationBeforeStore", func(t *testing.T) {
		store := new(mockStore)
		svc := New(store, &stubAuth{}, new(mockRenderer), &notify.NopNotifier{}, nil, logger)

		cases := []struct {
			name   string
			mutate func(*CreateBookingInput)
		}{
			{"MissingSlot", func(in *CreateBookingInput) { in.Slot = 0 }},
			{"MissingVehicle", func(in *CreateBookingInput) { in.Vehicle = "" }},
			{"MissingLocation", func(in *CreateBookingInput) { in.Location = "" }},
			{"MissingDate", func(in *CreateBookingInput) { in.Date = "" }},
			{"BadDateFormat", func(in *CreateBookingInput) { in.Date = "01-09-2026" }},
			{"LatitudeOutOfRange", func(in *CreateBookingInput) { in.Latitude = 91 }},
			{"LongitudeOutOfRange", func(in *CreateBookingInput) { in.Longitude = -181 }},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				in := validInput()
				tc.mutate(&in)
				_, err := svc.CreateBooking(ctx, "uid-1", in)
				assert.True(t, IsValidation(err), "expected validation error, got %v", err)
			})
		}
		store.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
	})

	t.Run("Success", func(t *testing.T) {
		store := new(mockStore)
		renderer := new(mockRenderer)
		notifier := new(mockNotifier)
		svc := New(store, &stubAuth{email: "driver@example.com"}, renderer, notifier, nil, logger)

		store.On("CreateBooking", ctx, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Booking).ID = 42
		}).Return(nil).Once()

		// The detached job loads the booking again, renders, and emails.
		booked := &models.Booking{ID: 42, FirebaseUID: "uid-1", SlotNo: 3, Location: "MG Road"}
		store.On("GetBooking", mock.Anything, int64(42)).Return(booked, nil).Once()
		renderer.On("RenderHourly", booked).Return(writeTempPDF(t), nil).Once()
		notifier.On("Send", mock.Anything, mock.MatchedBy(func(msg notify.Message) bool {
			return msg.To == "driver@example.com" && msg.Subject == "Parking Booking Confirmation"
		})).Return(nil).Once()

		res, err := svc.CreateBooking(ctx, "uid-1", validInput())
		assert.NoError(t, err)
		assert.Equal(t, int64(42), res.TicketID)
		assert.Equal(t, "/api/ticket-pdf/42", res.DownloadPath)

		svc.Wait()
		store.AssertExpectations(t)
		renderer.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("SlotTaken", func(t *testing.T) {
		store := new(mockStore)
		svc := New(store, &stubAuth{}, new(mockRenderer), &notify.NopNotifier{}, nil, logger)

		store.On("CreateBooking", ctx, mock.Anything).Return(database.ErrSlotTaken).Once()

		_, err := svc.CreateBooking(ctx, "uid-1", validInput())
		assert.ErrorIs(t, err, ErrSlotTaken)
	})

	t.Run("EmailFailureDoesNotAffectBooking", func(t *testing.T) {
		store := new(mockStore)
		renderer := new(mockRenderer)
		notifier := new(mockNotifier)
		svc := New(store, &stubAuth{email: "driver@example.com"}, renderer, notifier, nil, logger)

		store.On("CreateBooking", ctx, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Booking).ID = 7
		}).Return(nil).Once()
		booked := &models.Booking{ID: 7, FirebaseUID: "uid-1"}
		store.On("GetBooking", mock.Anything, int64(7)).Return(booked, nil).Once()
		renderer.On("RenderHourly", booked).Return(writeTempPDF(t), nil).Once()
		notifier.On("Send", mock.Anything, mock.Anything).Return(errors.New("brevo down")).Once()

		res, err := svc.CreateBooking(ctx, "uid-1", validInput())
		assert.NoError(t, err)
		assert.Equal(t, int64(7), res.TicketID)
		svc.Wait()
	})
}

func TestBookedSlots(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	t.Run("MissingParams", func(t *testing.T) {
		store := new(mockStore)
		svc := New(store, &stubAuth{}, new(mockRenderer), &notify.NopNotifier{}, nil, logger)

		_, err := svc.BookedSlots(ctx, "", "MG Road")
		assert.True(t, IsValidation(err))
		assert.EqualError(t, err, "Date and location required")

		_, err = svc.BookedSlots(ctx, "2026-09-01", "")
		assert.True(t, IsValidation(err))
		store.AssertNotCalled(t, "BookedSlots", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("FromStore", func(t *testing.T) {
		store := new(mockStore)
		svc := New(store, &stubAuth{}, new(mockRenderer), &notify.NopNotifier{}, nil, logger)

		store.On("BookedSlots", ctx, "2026-09-01", "MG Road").Return([]int{1, 4}, nil).Once()

		slots, err := svc.BookedSlots(ctx, "2026-09-01", "MG Road")
		assert.NoError(t, err)
		assert.Equal(t, []int{1, 4}, slots)
	})
}

func TestRevoke(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	t.Run("SettlesOpenBooking", func(t *testing.T) {
		store := new(mockStore)
		svc := New(store, &stubAuth{}, new(mockRenderer), &notify.NopNotifier{}, nil, logger)

		entry := time.Now().Add(-90 * time.Minute)
		open := &models.Booking{ID: 5, EntryTime: entry, BookingDate: "2026-09-01", Location: "MG Road"}
		store.On("GetBooking", ctx, int64(5)).Return(open, nil).Once()
		store.On("SettleBooking", ctx, int64(5), mock.Anything, 2, 100).Return(nil).Once()

		settlement, err := svc.Revoke(ctx, 5)
		assert.NoError(t, err)
		assert.Equal(t, 2, settlement.TotalHours)
		assert.Equal(t, 100, settlement.Amount)
		assert.Equal(t, entry, settlement.EntryTime)
		store.AssertExpectations(t)
	})

	t.Run("AlreadySettled", func(t *testing.T) {
		store := new(mockStore)
		svc := New(store, &stubAuth{}, new(mockRenderer), &notify.NopNotifier{}, nil, logger)

		exit := time.Now()
		closed := &models.Booking{ID: 5, ExitTime: &exit}
		store.On("GetBooking", ctx, int64(5)).Return(closed, nil).Once()

		_, err := svc.Revoke(ctx, 5)
		assert.ErrorIs(t, err, ErrNotFound)
		store.AssertNotCalled(t, "SettleBooking", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown", func(t *testing.T) {
		store := new(mockStore)
		svc := New(store, &stubAuth{}, new(mockRenderer), &notify.NopNotifier{}, nil, logger)

		store.On("GetBooking", ctx, int64(99)).Return(nil, database.ErrNotFound).Once()

		_, err := svc.Revoke(ctx, 99)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("LostRace", func(t *testing.T) {
		store := new(mockStore)
		svc := New(store, &stubAuth{}, new(mockRenderer), &notify.NopNotifier{}, nil, logger)

		open := &models.Booking{ID: 5, EntryTime: time.Now().Add(-time.Hour)}
		store.On("GetBooking", ctx, int64(5)).Return(open, nil).Once()
		store.On("SettleBooking", ctx, int64(5), mock.Anything, mock.Anything, mock.Anything).
			Return(database.ErrNotFound).Once()

		_, err := svc.Revoke(ctx, 5)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCreateMonthlyBooking(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	valid := func() CreateMonthlyInput {
		return CreateMonthlyInput{
			CustomerName:  "Asha Rao",
			VehicleNo:     "KA-01-AB-1234",
			PhoneNo:       "9876543210",
			Location:      "MG Road",
			PackageMonths: 3,
			Amount:        4500,
			Latitude:      12.9716,
			Longitude:     77.5946,
		}
	}

	t.Run("Validation", func(t *testing.T) {
		store := new(mockStore)
		svc := New(store, &stubAuth{}, new(mockRenderer), &notify.NopNotifier{}, nil, logger)

		cases := []struct {
			name   string
			mutate func(*CreateMonthlyInput)
			want   string
		}{
			{"MissingName", func(in *CreateMonthlyInput) { in.CustomerName = "" }, "customer_name is required"},
			{"MissingVehicle", func(in *CreateMonthlyInput) { in.VehicleNo = "" }, "vehicle_no is required"},
			{"MissingPhone", func(in *CreateMonthlyInput) { in.PhoneNo = "" }, "phone_no is required"},
			{"MissingLocation", func(in *CreateMonthlyInput) { in.Location = "" }, "location is required"},
			{"ZeroMonths", func(in *CreateMonthlyInput) { in.PackageMonths = 0 }, "package_months must be a positive integer"},
			{"ZeroAmount", func(in *CreateMonthlyInput) { in.Amount = 0 }, "amount is required"},
			{"BadPaymentStatus", func(in *CreateMonthlyInput) { in.PaymentStatus = "unpaid" }, "payment_status must be paid or pending"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				in := valid()
				tc.mutate(&in)
				_, err := svc.CreateMonthlyBooking(ctx, "uid-1", in)
				assert.True(t, IsValidation(err))
				assert.EqualError(t, err, tc.want)
			})
		}
		store.AssertNotCalled(t, "EnsureUser", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success", func(t *testing.T) {
		store := new(mockStore)
		renderer := new(mockRenderer)
		notifier := new(mockNotifier)
		authn := &stubAuth{email: "asha@example.com"}
		svc := New(store, authn, renderer, notifier, nil, logger)

		store.On("EnsureUser", ctx, "uid-1", "asha@example.com").Return(nil).Once()
		store.On("CreateMonthlyBooking", ctx, mock.MatchedBy(func(m *models.MonthlyBooking) bool {
			return m.Email == "asha@example.com" &&
				m.PaymentStatus == models.PaymentPaid &&
				m.EndDate.Equal(m.StartDate.AddDate(0, 0, 90))
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.MonthlyBooking).ID = 11
		}).Return(nil).Once()

		pass := &models.MonthlyBooking{
			ID: 11, FirebaseUID: "uid-1", Email: "asha@example.com",
			Location: "MG Road", PackageMonths: 3, Amount: 4500,
		}
		store.On("GetMonthlyBooking", mock.Anything, int64(11)).Return(pass, nil).Once()
		renderer.On("RenderMonthly", pass).Return(writeTempPDF(t), nil).Once()
		notifier.On("Send", mock.Anything, mock.MatchedBy(func(msg notify.Message) bool {
			return msg.To == "asha@example.com" &&
				msg.Subject == "Monthly Parking Pass Confirmation"
		})).Return(nil).Once()

		res, err := svc.CreateMonthlyBooking(ctx, "uid-1", valid())
		assert.NoError(t, err)
		assert.Equal(t, int64(11), res.MonthlyID)
		assert.Equal(t, float64(4500), res.Amount)

		svc.Wait()
		store.AssertExpectations(t)
		notifier.AssertExpectations(t)

		// The ticket job must reuse the email stored on the pass row; the
		// only directory lookup is the one made at creation time.
		assert.Equal(t, 1, authn.lookups)
	})

	t.Run("EmailLookupFails", func(t *testing.T) {
		store := new(mockStore)
		svc := New(store, &stubAuth{err: errors.New("lookup failed")}, new(mockRenderer), &notify.NopNotifier{}, nil, logger)

		_, err := svc.CreateMonthlyBooking(ctx, "uid-1", valid())
		assert.Error(t, err)
		store.AssertNotCalled(t, "CreateMonthlyBooking", mock.Anything, mock.Anything)
	})
}

func TestTicketPDFLookup(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	t.Run("HourlyNotFound", func(t *testing.T) {
		store := new(mockStore)
		svc := New(store, &stubAuth{}, new(mockRenderer), &notify.NopNotifier{}, nil, logger)

		store.On("GetBooking", ctx, int64(1)).Return(nil, database.ErrNotFound).Once()

		_, err := svc.HourlyTicketPDF(ctx, 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("MonthlyNotFound", func(t *testing.T) {
		store := new(mockStore)
		svc := New(store, &stubAuth{}, new(mockRenderer), &notify.NopNotifier{}, nil, logger)

		store.On("GetMonthlyBooking", ctx, int64(1)).Return(nil, database.ErrNotFound).Once()

		_, err := svc.MonthlyTicketPDF(ctx, 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
