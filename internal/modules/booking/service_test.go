package booking

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"equiherds/internal/domain"
	"equiherds/internal/modules/payment"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	if b != nil && args.Error(0) == nil {
		b.ID = 77
	}
	return args.Error(0)
}

func (m *MockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) ConfirmIfPending(ctx context.Context, id int64, chargeID string) (bool, error) {
	args := m.Called(ctx, id, chargeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepo) CancelIfPending(ctx context.Context, id int64, reason string) (bool, error) {
	args := m.Called(ctx, id, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepo) ResolveIfPending(ctx context.Context, id int64, to domain.BookingStatus, reason string) (bool, error) {
	args := m.Called(ctx, id, to, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepo) ListByBuyer(ctx context.Context, buyerID int64, limit, offset int) ([]domain.Booking, error) {
	args := m.Called(ctx, buyerID, limit, offset)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) ListBySeller(ctx context.Context, sellerID int64, limit, offset int) ([]domain.Booking, error) {
	args := m.Called(ctx, sellerID, limit, offset)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockListingSource struct {
	mock.Mock
}

func (m *MockListingSource) GetListing(ctx context.Context, id int64) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

type MockChargeProcessor struct {
	mock.Mock
}

func (m *MockChargeProcessor) Charge(ctx context.Context, token string, amount decimal.Decimal, bookingID int64) (*payment.ChargeResult, error) {
	args := m.Called(ctx, token, amount, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.ChargeResult), args.Error(1)
}

func i64Ptr(v int64) *int64 { return &v }

func day(d int) time.Time {
	return time.Date(2026, time.September, d, 0, 0, 0, 0, time.UTC)
}

func serviceListing(id, sellerID int64) *domain.Listing {
	return &domain.Listing{
		ID:        id,
		Category:  domain.CategoryService,
		Title:     "Lesson block",
		SellerID:  sellerID,
		UnitPrice: 50,
	}
}

func pendingServiceBooking(id int64) *domain.Booking {
	return &domain.Booking{
		ID:           id,
		Category:     domain.CategoryService,
		ListingID:    9,
		BuyerID:      1,
		SellerID:     2,
		StartDate:    day(1),
		EndDate:      day(3),
		TotalPrice:   150,
		PaymentToken: "tokn_abc",
		Status:       domain.BookingPending,
	}
}

func newTestService(repo *MockBookingRepo, listings *MockListingSource, proc *MockChargeProcessor) *Service {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewService(repo, listings, proc, log)
}

func TestCreate_ServiceBookingHappyPath(t *testing.T) {
	repo := new(MockBookingRepo)
	listings := new(MockListingSource)
	proc := new(MockChargeProcessor)

	listings.On("GetListing", mock.Anything, int64(9)).Return(serviceListing(9, 2), nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(repo, listings, proc)
	b, quote, err := svc.Create(context.Background(), 1, CreateBookingRequest{
		ServiceID:    i64Ptr(9),
		StartDate:    day(1),
		EndDate:      day(3),
		PaymentToken: "tokn_abc",
	})

	assert.NoError(t, err)
	assert.EqualValues(t, 77, b.ID)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, int64(2), b.SellerID)
	assert.Equal(t, int64(3), quote.Multiplier, "three inclusive days")
	assert.Equal(t, "150", quote.Total.String())
	proc.AssertNotCalled(t, "Charge")
}

func TestCreate_ExactlyOneListingID(t *testing.T) {
	svc := newTestService(new(MockBookingRepo), new(MockListingSource), new(MockChargeProcessor))

	_, _, err := svc.Create(context.Background(), 1, CreateBookingRequest{
		StartDate: day(1), EndDate: day(1), PaymentToken: "tokn_abc",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.Create(context.Background(), 1, CreateBookingRequest{
		ServiceID: i64Ptr(9), StableID: i64Ptr(4),
		StartDate: day(1), EndDate: day(1), PaymentToken: "tokn_abc",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreate_EquipmentNeedsQuantityAndLocation(t *testing.T) {
	svc := newTestService(new(MockBookingRepo), new(MockListingSource), new(MockChargeProcessor))

	_, _, err := svc.Create(context.Background(), 1, CreateBookingRequest{
		EquipmentID: i64Ptr(5),
		StartDate:   day(1), EndDate: day(1),
		Location:     "Barn 4",
		PaymentToken: "tokn_abc",
	})
	assert.ErrorIs(t, err, ErrValidation, "quantity below 1")

	_, _, err = svc.Create(context.Background(), 1, CreateBookingRequest{
		EquipmentID: i64Ptr(5),
		Quantity:    2,
		StartDate:   day(1), EndDate: day(1),
		PaymentToken: "tokn_abc",
	})
	assert.ErrorIs(t, err, ErrValidation, "missing delivery location")
}

func TestCreate_CaptureCategoriesRequireToken(t *testing.T) {
	svc := newTestService(new(MockBookingRepo), new(MockListingSource), new(MockChargeProcessor))

	_, _, err := svc.Create(context.Background(), 1, CreateBookingRequest{
		ServiceID: i64Ptr(9),
		StartDate: day(1), EndDate: day(1),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreate_HorseAppointmentNeedsNoToken(t *testing.T) {
	repo := new(MockBookingRepo)
	listings := new(MockListingSource)

	listings.On("GetListing", mock.Anything, int64(12)).Return(&domain.Listing{
		ID: 12, Category: domain.CategoryHorse, Title: "Gelding", SellerID: 2, UnitPrice: 9000,
	}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(repo, listings, new(MockChargeProcessor))
	b, _, err := svc.Create(context.Background(), 1, CreateBookingRequest{
		HorseID:   i64Ptr(12),
		StartDate: day(5), EndDate: day(5),
	})

	assert.NoError(t, err)
	assert.Empty(t, b.PaymentToken)
}

func TestCreate_HorseAppointmentMustBeSingleSlot(t *testing.T) {
	svc := newTestService(new(MockBookingRepo), new(MockListingSource), new(MockChargeProcessor))

	_, _, err := svc.Create(context.Background(), 1, CreateBookingRequest{
		HorseID:   i64Ptr(12),
		StartDate: day(5), EndDate: day(6),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreate_OwnListingRejected(t *testing.T) {
	listings := new(MockListingSource)
	listings.On("GetListing", mock.Anything, int64(9)).Return(serviceListing(9, 1), nil)

	svc := newTestService(new(MockBookingRepo), listings, new(MockChargeProcessor))
	_, _, err := svc.Create(context.Background(), 1, CreateBookingRequest{
		ServiceID: i64Ptr(9),
		StartDate: day(1), EndDate: day(1),
		PaymentToken: "tokn_abc",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreate_CategoryMismatchRejected(t *testing.T) {
	listings := new(MockListingSource)
	listings.On("GetListing", mock.Anything, int64(9)).Return(serviceListing(9, 2), nil)

	svc := newTestService(new(MockBookingRepo), listings, new(MockChargeProcessor))
	_, _, err := svc.Create(context.Background(), 1, CreateBookingRequest{
		StableID:  i64Ptr(9),
		StartDate: day(1), EndDate: day(1),
		PaymentToken: "tokn_abc",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestConfirm_ChargesOnceAndTransitions(t *testing.T) {
	repo := new(MockBookingRepo)
	proc := new(MockChargeProcessor)

	pending := pendingServiceBooking(77)
	confirmed := *pending
	confirmed.Status = domain.BookingConfirmed
	confirmed.ChargeID = "chrg_1"

	repo.On("GetByID", mock.Anything, int64(77)).Return(pending, nil).Once()
	proc.On("Charge", mock.Anything, "tokn_abc", mock.Anything, int64(77)).
		Return(&payment.ChargeResult{ChargeID: "chrg_1", Status: payment.StatusSucceeded}, nil).Once()
	repo.On("ConfirmIfPending", mock.Anything, int64(77), "chrg_1").Return(true, nil).Once()
	repo.On("GetByID", mock.Anything, int64(77)).Return(&confirmed, nil).Once()

	svc := newTestService(repo, new(MockListingSource), proc)
	b, err := svc.Confirm(context.Background(), 77, 2, domain.RoleSeller)

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	assert.Equal(t, "chrg_1", b.ChargeID)
	repo.AssertExpectations(t)
	proc.AssertExpectations(t)
}

func TestConfirm_AlreadyConfirmedIsIdempotent(t *testing.T) {
	repo := new(MockBookingRepo)
	proc := new(MockChargeProcessor)

	confirmed := pendingServiceBooking(77)
	confirmed.Status = domain.BookingConfirmed
	confirmed.ChargeID = "chrg_1"
	repo.On("GetByID", mock.Anything, int64(77)).Return(confirmed, nil)

	svc := newTestService(repo, new(MockListingSource), proc)
	b, err := svc.Confirm(context.Background(), 77, 2, domain.RoleSeller)

	assert.NoError(t, err)
	assert.Equal(t, "chrg_1", b.ChargeID)
	proc.AssertNotCalled(t, "Charge")
	repo.AssertNotCalled(t, "ConfirmIfPending")
}

func TestConfirm_OnlySellerOrAdmin(t *testing.T) {
	repo := new(MockBookingRepo)
	repo.On("GetByID", mock.Anything, int64(77)).Return(pendingServiceBooking(77), nil)

	svc := newTestService(repo, new(MockListingSource), new(MockChargeProcessor))
	_, err := svc.Confirm(context.Background(), 77, 1, domain.RoleBuyer)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestConfirm_CancelledBookingRejected(t *testing.T) {
	repo := new(MockBookingRepo)
	cancelled := pendingServiceBooking(77)
	cancelled.Status = domain.BookingCancelled
	repo.On("GetByID", mock.Anything, int64(77)).Return(cancelled, nil)

	svc := newTestService(repo, new(MockListingSource), new(MockChargeProcessor))
	_, err := svc.Confirm(context.Background(), 77, 2, domain.RoleSeller)
	assert.ErrorIs(t, err, ErrStateTransition)
}

func TestConfirm_ChargeFailureLeavesBookingPending(t *testing.T) {
	repo := new(MockBookingRepo)
	proc := new(MockChargeProcessor)

	repo.On("GetByID", mock.Anything, int64(77)).Return(pendingServiceBooking(77), nil)
	proc.On("Charge", mock.Anything, "tokn_abc", mock.Anything, int64(77)).
		Return(nil, payment.ErrCapture)

	svc := newTestService(repo, new(MockListingSource), proc)
	_, err := svc.Confirm(context.Background(), 77, 2, domain.RoleSeller)

	assert.ErrorIs(t, err, payment.ErrCapture)
	repo.AssertNotCalled(t, "ConfirmIfPending")
}

func TestConfirm_MissingTokenIsValidationError(t *testing.T) {
	repo := new(MockBookingRepo)
	proc := new(MockChargeProcessor)
	tokenless := pendingServiceBooking(77)
	tokenless.PaymentToken = ""
	repo.On("GetByID", mock.Anything, int64(77)).Return(tokenless, nil)

	svc := newTestService(repo, new(MockListingSource), proc)
	_, err := svc.Confirm(context.Background(), 77, 2, domain.RoleSeller)

	assert.ErrorIs(t, err, ErrValidation)
	proc.AssertNotCalled(t, "Charge")
	repo.AssertNotCalled(t, "ConfirmIfPending")
}

func TestConfirm_HorseAppointmentNotChargeable(t *testing.T) {
	repo := new(MockBookingRepo)
	appt := pendingServiceBooking(77)
	appt.Category = domain.CategoryHorse
	appt.PaymentToken = ""
	repo.On("GetByID", mock.Anything, int64(77)).Return(appt, nil)

	svc := newTestService(repo, new(MockListingSource), new(MockChargeProcessor))
	_, err := svc.Confirm(context.Background(), 77, 2, domain.RoleSeller)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestConfirm_NotFound(t *testing.T) {
	repo := new(MockBookingRepo)
	repo.On("GetByID", mock.Anything, int64(404)).Return(nil, gorm.ErrRecordNotFound)

	svc := newTestService(repo, new(MockListingSource), new(MockChargeProcessor))
	_, err := svc.Confirm(context.Background(), 404, 2, domain.RoleSeller)
	assert.ErrorIs(t, err, ErrNotFound)
}

// raceRepo is a tiny in-memory repository with real state so that two
// concurrent Confirm calls contend on the same row.
type raceRepo struct {
	mu        sync.Mutex
	booking   domain.Booking
	confirmed bool
}

func (r *raceRepo) Create(ctx context.Context, b *domain.Booking) error { return nil }

func (r *raceRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.booking
	return &b, nil
}

func (r *raceRepo) ConfirmIfPending(ctx context.Context, id int64, chargeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.confirmed {
		return false, nil
	}
	r.confirmed = true
	r.booking.Status = domain.BookingConfirmed
	r.booking.ChargeID = chargeID
	return true, nil
}

func (r *raceRepo) CancelIfPending(ctx context.Context, id int64, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.booking.Status != domain.BookingPending {
		return false, nil
	}
	r.booking.Status = domain.BookingCancelled
	r.booking.Reason = reason
	return true, nil
}

func (r *raceRepo) ResolveIfPending(ctx context.Context, id int64, to domain.BookingStatus, reason string) (bool, error) {
	return false, nil
}

func (r *raceRepo) ListByBuyer(ctx context.Context, buyerID int64, limit, offset int) ([]domain.Booking, error) {
	return nil, nil
}

func (r *raceRepo) ListBySeller(ctx context.Context, sellerID int64, limit, offset int) ([]domain.Booking, error) {
	return nil, nil
}

type countingProcessor struct {
	calls atomic.Int64
}

func (p *countingProcessor) Charge(ctx context.Context, token string, amount decimal.Decimal, bookingID int64) (*payment.ChargeResult, error) {
	p.calls.Add(1)
	return &payment.ChargeResult{ChargeID: "chrg_race", Status: payment.StatusSucceeded}, nil
}

func TestConfirm_ConcurrentRetriesChargeExactlyOnce(t *testing.T) {
	repo := &raceRepo{booking: *pendingServiceBooking(77)}
	proc := &countingProcessor{}

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	svc := NewService(repo, new(MockListingSource), proc, log)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := svc.Confirm(context.Background(), 77, 2, domain.RoleSeller)
			assert.NoError(t, err)
			assert.Equal(t, domain.BookingConfirmed, b.Status)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, proc.calls.Load())
}

// gatedProcessor blocks inside Charge until released, so a test can act
// while a capture is in flight.
type gatedProcessor struct {
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int64
}

func (p *gatedProcessor) Charge(ctx context.Context, token string, amount decimal.Decimal, bookingID int64) (*payment.ChargeResult, error) {
	p.calls.Add(1)
	close(p.entered)
	<-p.release
	return &payment.ChargeResult{ChargeID: "chrg_gate", Status: payment.StatusSucceeded}, nil
}

func TestCancel_WaitsOutInFlightCharge(t *testing.T) {
	repo := &raceRepo{booking: *pendingServiceBooking(77)}
	proc := &gatedProcessor{entered: make(chan struct{}), release: make(chan struct{})}

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	svc := NewService(repo, new(MockListingSource), proc, log)

	confirmDone := make(chan error, 1)
	go func() {
		_, err := svc.Confirm(context.Background(), 77, 2, domain.RoleSeller)
		confirmDone <- err
	}()
	<-proc.entered // capture now in flight, lock held

	cancelDone := make(chan error, 1)
	go func() {
		_, err := svc.Cancel(context.Background(), 77, 1, domain.RoleBuyer, "changed my mind")
		cancelDone <- err
	}()

	close(proc.release)

	assert.NoError(t, <-confirmDone)
	assert.ErrorIs(t, <-cancelDone, ErrStateTransition, "cancel must not land after funds moved")

	final, _ := repo.GetByID(context.Background(), 77)
	assert.Equal(t, domain.BookingConfirmed, final.Status)
	assert.Equal(t, "chrg_gate", final.ChargeID)
	assert.EqualValues(t, 1, proc.calls.Load())
}

func TestCancel_PendingByBuyer(t *testing.T) {
	repo := new(MockBookingRepo)
	pending := pendingServiceBooking(77)
	cancelled := *pending
	cancelled.Status = domain.BookingCancelled
	cancelled.Reason = "schedule conflict"

	repo.On("GetByID", mock.Anything, int64(77)).Return(pending, nil).Once()
	repo.On("CancelIfPending", mock.Anything, int64(77), "schedule conflict").Return(true, nil)
	repo.On("GetByID", mock.Anything, int64(77)).Return(&cancelled, nil).Once()

	svc := newTestService(repo, new(MockListingSource), new(MockChargeProcessor))
	b, err := svc.Cancel(context.Background(), 77, 1, domain.RoleBuyer, "schedule conflict")

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, b.Status)
}

func TestCancel_ConfirmedBookingRejected(t *testing.T) {
	repo := new(MockBookingRepo)
	confirmed := pendingServiceBooking(77)
	confirmed.Status = domain.BookingConfirmed
	repo.On("GetByID", mock.Anything, int64(77)).Return(confirmed, nil)
	repo.On("CancelIfPending", mock.Anything, int64(77), "").Return(false, nil)

	svc := newTestService(repo, new(MockListingSource), new(MockChargeProcessor))
	_, err := svc.Cancel(context.Background(), 77, 1, domain.RoleBuyer, "")
	assert.ErrorIs(t, err, ErrStateTransition)
}

func TestCancel_StrangerForbidden(t *testing.T) {
	repo := new(MockBookingRepo)
	repo.On("GetByID", mock.Anything, int64(77)).Return(pendingServiceBooking(77), nil)

	svc := newTestService(repo, new(MockListingSource), new(MockChargeProcessor))
	_, err := svc.Cancel(context.Background(), 77, 99, domain.RoleBuyer, "")
	assert.ErrorIs(t, err, ErrForbidden)
	repo.AssertNotCalled(t, "CancelIfPending")
}

func TestReject_RequiresReason(t *testing.T) {
	repo := new(MockBookingRepo)
	svc := newTestService(repo, new(MockListingSource), new(MockChargeProcessor))

	_, err := svc.Reject(context.Background(), 77, 2, domain.RoleSeller, "")
	assert.ErrorIs(t, err, ErrValidation)
	repo.AssertNotCalled(t, "GetByID")
}

func TestApprove_OnlyForAppointmentCategories(t *testing.T) {
	repo := new(MockBookingRepo)
	repo.On("GetByID", mock.Anything, int64(77)).Return(pendingServiceBooking(77), nil)

	svc := newTestService(repo, new(MockListingSource), new(MockChargeProcessor))
	_, err := svc.Approve(context.Background(), 77, 2, domain.RoleSeller)
	assert.ErrorIs(t, err, ErrValidation)
	repo.AssertNotCalled(t, "ResolveIfPending")
}

func TestReject_HorseAppointment(t *testing.T) {
	repo := new(MockBookingRepo)
	appt := pendingServiceBooking(77)
	appt.Category = domain.CategoryHorse
	rejected := *appt
	rejected.Status = domain.BookingRejected
	rejected.Reason = "horse already sold"

	repo.On("GetByID", mock.Anything, int64(77)).Return(appt, nil).Once()
	repo.On("ResolveIfPending", mock.Anything, int64(77), domain.BookingRejected, "horse already sold").Return(true, nil)
	repo.On("GetByID", mock.Anything, int64(77)).Return(&rejected, nil).Once()

	svc := newTestService(repo, new(MockListingSource), new(MockChargeProcessor))
	b, err := svc.Reject(context.Background(), 77, 2, domain.RoleSeller, "horse already sold")

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingRejected, b.Status)
}

func TestListForBuyer_AttachesDerivedStatus(t *testing.T) {
	repo := new(MockBookingRepo)
	past := *pendingServiceBooking(1)
	past.Status = domain.BookingConfirmed
	past.StartDate = time.Now().Add(-72 * time.Hour)
	past.EndDate = time.Now().Add(-48 * time.Hour)
	running := *pendingServiceBooking(2)
	running.Status = domain.BookingConfirmed
	running.StartDate = time.Now().Add(-time.Hour)
	running.EndDate = time.Now().Add(time.Hour)

	repo.On("ListByBuyer", mock.Anything, int64(1), 20, 0).Return([]domain.Booking{past, running}, nil)

	svc := newTestService(repo, new(MockListingSource), new(MockChargeProcessor))
	rows, err := svc.ListForBuyer(context.Background(), 1, 20, 0)

	assert.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, domain.BookingCompleted, rows[0].DerivedStatus)
	assert.Equal(t, domain.BookingActive, rows[1].DerivedStatus)
}
