package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"
	"time"

	"naco/internal/domain"
	"naco/internal/domain/models"
	"naco/internal/events"
	"naco/internal/metrics"
	"naco/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	referencePrefix   = "NACO-"
	referenceLength   = 8
	referenceAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	referenceAttempts = 5

	counterAttempts = 3

	DefaultPlatformFee  = 500
	DefaultStoreTimeout = 5 * time.Second
)

// counterRetryDelay is the pause between completed-job increment attempts.
var counterRetryDelay = 50 * time.Millisecond

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return domain.PaymentMethod(fl.Field().String()).Valid()
	})
	return v
}

// Lifecycle owns booking status from creation to a terminal state.
// Use it through a pointer; transitions on one booking are serialized.
// Notifier and Events are called while the booking is locked and must not
// block; wrap a broker in events.Async.
type Lifecycle struct {
	Bookings  BookingStore
	Directory Directory
	Reviews   ReviewStore
	Notifier  NotificationSink
	Events    events.Publisher
	Metrics   *metrics.Metrics

	PlatformFee   float64
	RequireFuture bool
	Location      *time.Location
	StoreTimeout  time.Duration
	Now           func() time.Time

	locks utils.KeyedMutex
}

func (l *Lifecycle) now() time.Time {
	if l.Now != nil {
		return l.Now().UTC()
	}
	return utils.NowUTC()
}

func (l *Lifecycle) location() *time.Location {
	if l.Location != nil {
		return l.Location
	}
	return time.UTC
}

func (l *Lifecycle) fee() float64 {
	if l.PlatformFee > 0 {
		return l.PlatformFee
	}
	return DefaultPlatformFee
}

// storeCtx bounds a single store call.
func (l *Lifecycle) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := l.StoreTimeout
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// CreateBooking validates in and stores a new pending booking.
func (l *Lifecycle) CreateBooking(ctx context.Context, in models.BookingInput) (models.Booking, error) {
	in.ClientID = strings.TrimSpace(in.ClientID)
	in.ArtisanID = strings.TrimSpace(in.ArtisanID)
	in.Service = utils.NormalizeSpace(in.Service)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = utils.NormalizeSpace(in.Location)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.PaymentMethod = strings.ToLower(strings.TrimSpace(in.PaymentMethod))

	if err := validate.Struct(in); err != nil {
		field, msg := firstFieldError(err)
		return models.Booking{}, domain.InvalidBooking(field, msg)
	}
	if in.Amount < l.fee() {
		return models.Booking{}, domain.InvalidBooking("amount", "must be at least the platform fee of "+utils.FormatNaira(l.fee()))
	}
	if in.ClientID == in.ArtisanID {
		return models.Booking{}, domain.InvalidBooking("artisanId", "cannot book yourself")
	}

	at, err := utils.ParseSchedule(in.Date, in.Time, l.location())
	if err != nil {
		return models.Booking{}, domain.InvalidBooking("date", "expected YYYY-MM-DD and HH:MM")
	}
	now := l.now()
	if l.RequireFuture && !at.After(now) {
		return models.Booking{}, domain.InvalidBooking("date", "must be in the future")
	}

	lookupCtx, cancel := l.storeCtx(ctx)
	artisan, err := l.Directory.GetUser(lookupCtx, in.ArtisanID)
	cancel()
	if err != nil {
		if domain.IsNotFound(err) {
			return models.Booking{}, domain.InvalidBooking("artisanId", "artisan not found")
		}
		return models.Booking{}, domain.InternalError{Msg: "load artisan", Err: err}
	}
	if artisan.Role != domain.RoleArtisan {
		return models.Booking{}, domain.InvalidBooking("artisanId", "user is not an artisan")
	}

	b := models.Booking{
		ID:            uuid.NewString(),
		ClientID:      in.ClientID,
		ArtisanID:     in.ArtisanID,
		Service:       in.Service,
		Description:   in.Description,
		Location:      in.Location,
		ScheduledDate: at.Format(utils.LayoutDate),
		ScheduledTime: at.Format(utils.LayoutTime),
		Amount:        utils.RoundTo(in.Amount, 2),
		PaymentMethod: domain.PaymentMethod(in.PaymentMethod),
		Status:        domain.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	stored := false
	for attempt := 1; attempt <= referenceAttempts && !stored; attempt++ {
		ref, err := newReference()
		if err != nil {
			return models.Booking{}, domain.InternalError{Msg: "generate reference", Err: err}
		}
		b.Reference = ref

		createCtx, cancel := l.storeCtx(ctx)
		err = l.Bookings.CreateBooking(createCtx, b)
		cancel()
		switch {
		case err == nil:
			stored = true
		case domain.IsConflict(err):
			utils.LogCtx(ctx, "booking", "create", fmt.Sprintf("reference collision attempt=%d ref=%s", attempt, ref))
		default:
			return models.Booking{}, domain.InternalError{Msg: "store booking", Err: err}
		}
	}
	if !stored {
		return models.Booking{}, domain.InternalError{Msg: "could not allocate a unique booking reference"}
	}

	l.Metrics.BookingCreated()
	utils.LogCtx(ctx, "booking", "create", fmt.Sprintf("booking_id=%s ref=%s client=%s artisan=%s", b.ID, b.Reference, b.ClientID, b.ArtisanID))

	l.notify(ctx, b.ArtisanID, models.NotifBookingCreated, "New booking request",
		fmt.Sprintf("New %s request for %s (%s).", b.Service, utils.FormatSchedule(b.ScheduledDate, b.ScheduledTime), b.Reference), b)
	l.publish(ctx, "booking.created", b)
	return b, nil
}

// firstFieldError turns a validator error into a field name and message.
func firstFieldError(err error) (string, string) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field(), describeTag(verrs[0])
	}
	return "", err.Error()
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "payment_method":
		return "must be one of: cash transfer card"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	case "required_if":
		return "is required"
	default:
		return "failed " + fe.Tag()
	}
}

// newReference returns NACO- followed by random base36 characters.
func newReference() (string, error) {
	var sb strings.Builder
	sb.WriteString(referencePrefix)
	base := big.NewInt(int64(len(referenceAlphabet)))
	for i := 0; i < referenceLength; i++ {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", err
		}
		sb.WriteByte(referenceAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// Transition applies action to a booking on behalf of actorID acting as role.
func (l *Lifecycle) Transition(ctx context.Context, bookingID, actorID string, role domain.Role, action string) (models.Booking, error) {
	bookingID = strings.TrimSpace(bookingID)
	actorID = strings.TrimSpace(actorID)
	if role != domain.RoleClient && role != domain.RoleArtisan {
		return models.Booking{}, domain.UnauthorizedError{ActorID: actorID, Msg: fmt.Sprintf("role %q cannot act on bookings", role)}
	}

	unlock := l.locks.Lock(bookingID)
	defer unlock()

	b, err := l.loadBooking(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}

	if (role == domain.RoleClient && b.ClientID != actorID) || (role == domain.RoleArtisan && b.ArtisanID != actorID) {
		l.Metrics.Transition("unknown", "unauthorized")
		return models.Booking{}, domain.UnauthorizedError{ActorID: actorID, Msg: fmt.Sprintf("not the %s of this booking", role)}
	}

	t, ok, known := domain.ResolveAction(role, action)
	if !known {
		l.Metrics.Transition("unknown", "invalid")
		return models.Booking{}, domain.TransitionError{From: b.Status, Action: action}
	}
	if !ok {
		l.Metrics.Transition(string(t), "unauthorized")
		return models.Booking{}, domain.UnauthorizedError{ActorID: actorID, Msg: fmt.Sprintf("only the %s can %s a booking", domain.ActorFor(t), t)}
	}

	from := b.Status
	to, legal := domain.Next(from, t)
	if !legal {
		l.Metrics.Transition(string(t), "invalid")
		return models.Booking{}, domain.TransitionError{From: from, Action: string(t)}
	}

	casCtx, cancel := l.storeCtx(ctx)
	swapped, err := l.Bookings.UpdateBookingStatus(casCtx, b.ID, from, to)
	cancel()
	if err != nil {
		l.Metrics.Transition(string(t), "error")
		return models.Booking{}, domain.InternalError{Msg: "update booking status", Err: err}
	}
	if !swapped {
		// Another process moved the booking first.
		current, err := l.loadBooking(ctx, b.ID)
		if err != nil {
			return models.Booking{}, err
		}
		l.Metrics.Transition(string(t), "invalid")
		return models.Booking{}, domain.TransitionError{From: current.Status, Action: string(t)}
	}

	if t == domain.TransitionConfirm {
		if err := l.incrementCompletedJobs(ctx, b.ArtisanID, b.ID); err != nil {
			l.compensate(ctx, b.ID, to, from)
			l.Metrics.Transition(string(t), "error")
			return models.Booking{}, domain.InternalError{Msg: "record completed job", Err: err}
		}
	}

	b.Status = to
	b.UpdatedAt = l.now()
	l.Metrics.Transition(string(t), "ok")
	utils.LogCtx(ctx, "booking", string(t), fmt.Sprintf("booking_id=%s actor=%s %s->%s", b.ID, actorID, from, to))

	l.afterTransition(ctx, t, b)
	return b, nil
}

func (l *Lifecycle) loadBooking(ctx context.Context, id string) (models.Booking, error) {
	getCtx, cancel := l.storeCtx(ctx)
	defer cancel()
	b, err := l.Bookings.GetBooking(getCtx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.Booking{}, err
		}
		return models.Booking{}, domain.InternalError{Msg: "load booking", Err: err}
	}
	return b, nil
}

// incrementCompletedJobs retries the counter update. The store counts a
// booking once, so retrying after an ambiguous failure cannot double count.
func (l *Lifecycle) incrementCompletedJobs(ctx context.Context, artisanID, bookingID string) error {
	var err error
	for attempt := 1; attempt <= counterAttempts; attempt++ {
		incCtx, cancel := l.storeCtx(ctx)
		err = l.Directory.IncrementCompletedJobs(incCtx, artisanID, bookingID)
		cancel()
		if err == nil {
			return nil
		}
		utils.LogCtx(ctx, "booking", "confirm", fmt.Sprintf("increment completed jobs attempt=%d artisan=%s err=%v", attempt, artisanID, err))
		if domain.IsNotFound(err) || attempt == counterAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(counterRetryDelay * time.Duration(attempt)):
		}
	}
	return err
}

// compensate puts the status back after a side effect that must not be lost failed.
func (l *Lifecycle) compensate(ctx context.Context, bookingID string, from, to domain.Status) {
	undoCtx, cancel := l.storeCtx(context.WithoutCancel(ctx))
	defer cancel()
	ok, err := l.Bookings.UpdateBookingStatus(undoCtx, bookingID, from, to)
	if err != nil || !ok {
		utils.LogCtx(ctx, "booking", "compensate", fmt.Sprintf("booking_id=%s restore %s->%s failed ok=%t err=%v", bookingID, from, to, ok, err))
		return
	}
	utils.LogCtx(ctx, "booking", "compensate", fmt.Sprintf("booking_id=%s restored to %s", bookingID, to))
}

func (l *Lifecycle) afterTransition(ctx context.Context, t domain.Transition, b models.Booking) {
	when := utils.FormatSchedule(b.ScheduledDate, b.ScheduledTime)
	switch t {
	case domain.TransitionAccept:
		l.notify(ctx, b.ClientID, models.NotifBookingConfirmed, "Booking confirmed",
			fmt.Sprintf("Your %s booking for %s has been accepted (%s).", b.Service, when, b.Reference), b)
	case domain.TransitionDecline:
		l.notify(ctx, b.ClientID, models.NotifBookingDeclined, "Booking declined",
			fmt.Sprintf("Your %s booking for %s was declined (%s).", b.Service, when, b.Reference), b)
	case domain.TransitionCancel:
		l.notify(ctx, b.ArtisanID, models.NotifBookingCancelled, "Booking cancelled",
			fmt.Sprintf("The client cancelled the %s booking for %s (%s).", b.Service, when, b.Reference), b)
	case domain.TransitionStart:
		l.notify(ctx, b.ClientID, models.NotifBookingStarted, "Job started",
			fmt.Sprintf("Work on your %s booking has started (%s).", b.Service, b.Reference), b)
	case domain.TransitionMarkDone:
		l.notify(ctx, b.ClientID, models.NotifCompletionRequested, "Confirm completion",
			fmt.Sprintf("The artisan marked your %s job as done. Please confirm completion (%s).", b.Service, b.Reference), b)
	case domain.TransitionConfirm:
		l.notify(ctx, b.ArtisanID, models.NotifCompletionConfirmed, "Payment can proceed",
			fmt.Sprintf("The client confirmed the %s job. Payment of %s can proceed (%s).", b.Service, utils.FormatNaira(b.Amount), b.Reference), b)
	case domain.TransitionReject:
		l.notify(ctx, b.ArtisanID, models.NotifCompletionRejected, "Completion rejected",
			fmt.Sprintf("The client rejected completion of the %s job. Please review the work (%s).", b.Service, b.Reference), b)
	}
	l.publish(ctx, "booking."+b.Status.String(), b)
}

func (l *Lifecycle) notify(ctx context.Context, recipientID string, typ models.NotificationType, title, message string, b models.Booking) {
	if l.Notifier == nil {
		return
	}
	l.Notifier.Enqueue(ctx, recipientID, typ, title, message, map[string]any{
		"bookingId": b.ID,
		"reference": b.Reference,
		"status":    b.Status.String(),
	})
}

func (l *Lifecycle) publish(ctx context.Context, key string, payload any) {
	if l.Events == nil {
		return
	}
	pubCtx, cancel := l.storeCtx(context.WithoutCancel(ctx))
	defer cancel()
	if err := l.Events.PublishJSON(pubCtx, key, payload); err != nil {
		utils.LogCtx(ctx, "events", "publish", fmt.Sprintf("key=%s err=%v", key, err))
	}
}

// GetBooking returns a booking by id.
func (l *Lifecycle) GetBooking(ctx context.Context, id string) (models.Booking, error) {
	return l.loadBooking(ctx, strings.TrimSpace(id))
}

// GetBookingFor returns a booking only when userID takes part in it.
func (l *Lifecycle) GetBookingFor(ctx context.Context, id, userID string) (models.Booking, error) {
	b, err := l.GetBooking(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	if !b.HasParticipant(userID) {
		return models.Booking{}, domain.UnauthorizedError{ActorID: userID, Msg: "not a participant of this booking"}
	}
	return b, nil
}

// ListBookingsFor returns the bookings where userID is client or artisan, newest first.
func (l *Lifecycle) ListBookingsFor(ctx context.Context, userID string) ([]models.Booking, error) {
	listCtx, cancel := l.storeCtx(ctx)
	defer cancel()
	out, err := l.Bookings.ListBookingsFor(listCtx, strings.TrimSpace(userID))
	if err != nil {
		return nil, domain.InternalError{Msg: "list bookings", Err: err}
	}
	return out, nil
}

// CreateReview records the client's review of a completed booking and
// refreshes the artisan's aggregate rating.
func (l *Lifecycle) CreateReview(ctx context.Context, in models.ReviewInput) (models.Review, error) {
	in.BookingID = strings.TrimSpace(in.BookingID)
	in.ReviewerID = strings.TrimSpace(in.ReviewerID)
	in.ArtisanID = strings.TrimSpace(in.ArtisanID)
	in.Text = strings.TrimSpace(in.Text)

	if in.Rating < 1 || in.Rating > 5 {
		return models.Review{}, domain.InvalidReview("rating", "must be between 1 and 5")
	}

	unlock := l.locks.Lock(in.BookingID)
	defer unlock()

	b, err := l.loadBooking(ctx, in.BookingID)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.Review{}, domain.InvalidReview("bookingId", "booking not found")
		}
		return models.Review{}, err
	}
	if b.Status != domain.StatusCompleted {
		return models.Review{}, domain.InvalidReview("bookingId", "booking is not completed")
	}
	if b.ClientID != in.ReviewerID {
		return models.Review{}, domain.InvalidReview("reviewerId", "only the booking's client can review")
	}
	if in.ArtisanID != "" && in.ArtisanID != b.ArtisanID {
		return models.Review{}, domain.InvalidReview("artisanId", "artisan does not match booking")
	}

	hasCtx, cancel := l.storeCtx(ctx)
	exists, err := l.Reviews.HasReviewForBooking(hasCtx, b.ID)
	cancel()
	if err != nil {
		return models.Review{}, domain.InternalError{Msg: "check review", Err: err}
	}
	if exists {
		return models.Review{}, domain.InvalidReview("bookingId", "booking already reviewed")
	}

	rv := models.Review{
		ID:         uuid.NewString(),
		BookingID:  b.ID,
		ReviewerID: in.ReviewerID,
		ArtisanID:  b.ArtisanID,
		Rating:     in.Rating,
		Text:       in.Text,
		CreatedAt:  l.now(),
	}
	createCtx, cancel := l.storeCtx(ctx)
	err = l.Reviews.CreateReview(createCtx, rv)
	cancel()
	if err != nil {
		if domain.IsConflict(err) {
			return models.Review{}, domain.InvalidReview("bookingId", "booking already reviewed")
		}
		return models.Review{}, domain.InternalError{Msg: "store review", Err: err}
	}

	l.Metrics.ReviewCreated()
	utils.LogCtx(ctx, "review", "create", fmt.Sprintf("booking_id=%s artisan=%s rating=%d", b.ID, b.ArtisanID, rv.Rating))
	l.refreshRating(ctx, b.ArtisanID)

	l.notify(ctx, b.ArtisanID, models.NotifNewReview, "New review",
		fmt.Sprintf("You received a %d-star review for %s (%s).", rv.Rating, b.Service, b.Reference), b)
	l.publish(ctx, "review.created", rv)
	return rv, nil
}

// refreshRating recomputes the artisan's rating from every stored review.
// Reads and writes of one artisan's aggregate are serialized so that a stale
// mean never lands after a fresher one. Failures are logged; the next review
// recomputes from scratch.
func (l *Lifecycle) refreshRating(ctx context.Context, artisanID string) {
	unlock := l.locks.Lock("artisan:" + artisanID)
	defer unlock()

	listCtx, cancel := l.storeCtx(ctx)
	ratings, err := l.Reviews.RatingsForArtisan(listCtx, artisanID)
	cancel()
	if err != nil {
		utils.LogCtx(ctx, "review", "rating", fmt.Sprintf("artisan=%s load ratings err=%v", artisanID, err))
		return
	}
	if len(ratings) == 0 {
		return
	}
	avg := AverageRating(ratings)

	setCtx, cancel := l.storeCtx(ctx)
	err = l.Directory.SetArtisanRating(setCtx, artisanID, avg)
	cancel()
	if err != nil {
		utils.LogCtx(ctx, "review", "rating", fmt.Sprintf("artisan=%s persist rating=%.1f err=%v", artisanID, avg, err))
		return
	}
	utils.LogCtx(ctx, "review", "rating", fmt.Sprintf("artisan=%s rating=%.1f reviews=%d", artisanID, avg, len(ratings)))
}

// AverageRating is the mean of ratings rounded to one decimal place.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	mean := float64(sum) / float64(len(ratings))
	return math.Round(mean*10) / 10
}
