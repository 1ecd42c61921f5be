package ipn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"modpaypal/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
)

type Options struct {
	SiteName string
	WWWRoot  string
}

// Result describes what happened to one notification.
type Result struct {
	LogID        uuid.UUID
	Verification string
	Outcome      domain.IPNOutcome
	Reason       string
	Transaction  *domain.Transaction
}

type Service struct {
	users       userReader
	courses     courseReader
	instances   instanceReader
	txns        transactionRepo
	completions completionWriter
	journal     journal
	verifier    Verifier
	notifier    notifier
	status      statusPublisher
	loggerf     func(format string, args ...interface{})
	opts        Options
	now         func() time.Time
}

func NewService(
	users userReader,
	courses courseReader,
	instances instanceReader,
	txns transactionRepo,
	completions completionWriter,
	journal journal,
	verifier Verifier,
	notifier notifier,
	status statusPublisher,
	opts Options,
	loggerf func(format string, args ...interface{}),
) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	if opts.SiteName == "" {
		opts.SiteName = "Moodle"
	}
	return &Service{
		users:       users,
		courses:     courses,
		instances:   instances,
		txns:        txns,
		completions: completions,
		journal:     journal,
		verifier:    verifier,
		notifier:    notifier,
		status:      status,
		loggerf:     loggerf,
		opts:        opts,
		now:         time.Now,
	}
}

// ipnContext carries what is known about a notification while it is processed.
type ipnContext struct {
	n        *Notification
	ref      domain.PaymentRef
	user     *domain.User
	course   *domain.Course
	instance *domain.Instance
	result   *Result
}

// Handle processes one IPN body. The returned error explains why processing
// stopped early; PayPal gets an empty 200 either way.
func (s *Service) Handle(ctx context.Context, rawBody string) (*Result, error) {
	n, err := ParseNotification(rawBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	if n.Len() == 0 {
		return nil, fmt.Errorf("%w: empty notification", ErrMalformedRequest)
	}

	ic := &ipnContext{n: n, result: &Result{Outcome: domain.IPNOutcomeReceived}}
	s.open(ctx, ic, rawBody)

	err = s.process(ctx, ic)
	if err != nil && ic.result.Outcome == domain.IPNOutcomeReceived {
		ic.result.Outcome = domain.IPNOutcomeRejected
		if ic.result.Reason == "" {
			ic.result.Reason = err.Error()
		}
	}
	s.close(ctx, ic)

	s.loggerf("level=info msg=ipn processed txn_id=%s verification=%s outcome=%s reason=%q",
		n.Get("txn_id"), ic.result.Verification, ic.result.Outcome, ic.result.Reason)
	return ic.result, err
}

func (s *Service) process(ctx context.Context, ic *ipnContext) error {
	n := ic.n

	ref, err := domain.ParsePaymentRef(n.Get("custom"))
	if err != nil {
		s.alertAdmin(ctx, ic, fmt.Sprintf("Not a valid custom field (%s)", n.Get("custom")))
		return err
	}
	ic.ref = ref

	if ic.user, err = s.users.GetByID(ctx, ref.UserID); err != nil {
		return s.lookupFailed(ctx, ic, err, ErrUnknownUser, "Not a valid user id")
	}
	if ic.course, err = s.courses.GetByID(ctx, ref.CourseID); err != nil {
		return s.lookupFailed(ctx, ic, err, ErrUnknownCourse, "Not a valid course id")
	}
	if ic.instance, err = s.instances.GetByID(ctx, ref.InstanceID); err != nil {
		return s.lookupFailed(ctx, ic, err, ErrUnknownInstance, "Not a valid instance id")
	}

	answer, err := s.verifier.Verify(ctx, n.VerificationBody())
	if err != nil {
		s.loggerf("level=error msg=paypal verification failed txn_id=%s err=%v", n.Get("txn_id"), err)
		s.alertAdmin(ctx, ic, "Could not access paypal.com to verify payment")
		ic.result.Outcome = domain.IPNOutcomeFailed
		ic.result.Reason = err.Error()
		return fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	ic.result.Verification = answer

	switch answer {
	case VerificationVerified:
		return s.applyVerified(ctx, ic)
	case VerificationInvalid:
		return s.applyInvalid(ctx, ic)
	default:
		s.loggerf("level=warn msg=unexpected paypal verification response txn_id=%s response=%q", n.Get("txn_id"), answer)
		ic.result.Outcome = domain.IPNOutcomeFailed
		ic.result.Reason = "unexpected verification response"
		return fmt.Errorf("%w: %q", ErrUnexpectedVerification, answer)
	}
}

func (s *Service) lookupFailed(ctx context.Context, ic *ipnContext, err, sentinel error, reason string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.alertAdmin(ctx, ic, reason)
		return sentinel
	}
	ic.result.Outcome = domain.IPNOutcomeFailed
	ic.result.Reason = err.Error()
	return fmt.Errorf("ipn lookup: %w", err)
}

// applyVerified runs the business rules in order and records the payment.
func (s *Service) applyVerified(ctx context.Context, ic *ipnContext) error {
	n, inst := ic.n, ic.instance
	status := n.Get("payment_status")
	pendingReason := n.Get("pending_reason")

	if status != domain.PaymentStatusCompleted && status != domain.PaymentStatusPending {
		s.alertAdmin(ctx, ic, "Status not completed or pending. User payment status updated")
	}

	if n.Get("mc_currency") != inst.Currency {
		s.alertAdmin(ctx, ic, "Currency does not match course settings, received: "+n.Get("mc_currency"))
		return ErrCurrencyMismatch
	}

	if status == domain.PaymentStatusPending && pendingReason != domain.PendingReasonEcheck {
		s.notifyPending(ctx, ic)
		s.alertAdmin(ctx, ic, "Payment pending")
	}

	if !(status == domain.PaymentStatusCompleted ||
		(status == domain.PaymentStatusPending && pendingReason == domain.PendingReasonEcheck)) {
		return fmt.Errorf("%w: %s", ErrStatusNotAccepted, status)
	}

	txnID := n.Get("txn_id")
	exists, err := s.txns.ExistsByTxnID(ctx, txnID)
	if err != nil {
		return s.storageFailed(ic, err)
	}
	if exists {
		s.alertAdmin(ctx, ic, fmt.Sprintf("Transaction %s is being repeated!", txnID))
		return ErrDuplicateTransaction
	}

	if !strings.EqualFold(n.Get("business"), inst.BusinessEmail) {
		s.alertAdmin(ctx, ic, fmt.Sprintf("Business email is %s (not %s)", n.Get("business"), inst.BusinessEmail))
		return ErrBusinessMismatch
	}

	if _, err := s.users.GetByID(ctx, ic.ref.UserID); err != nil {
		return s.lookupFailed(ctx, ic, err, ErrUnknownUser, fmt.Sprintf("User %d doesn't exist", ic.ref.UserID))
	}
	if _, err := s.courses.GetByID(ctx, ic.ref.CourseID); err != nil {
		return s.lookupFailed(ctx, ic, err, ErrUnknownCourse, fmt.Sprintf("Course %d doesn't exist", ic.ref.CourseID))
	}

	cost := inst.RequiredAmount()
	gross, err := decimal.NewFromString(strings.TrimSpace(n.Get("mc_gross")))
	if err != nil || gross.LessThan(cost) {
		s.alertAdmin(ctx, ic, fmt.Sprintf("Amount paid is not enough (%s < %s)", n.Get("mc_gross"), cost.StringFixed(2)))
		return ErrInsufficientAmount
	}

	t := s.transaction(ic, false)
	if err := s.txns.Create(ctx, t); err != nil {
		if errors.Is(err, domain.ErrTransactionExists) {
			s.alertAdmin(ctx, ic, fmt.Sprintf("Transaction %s is being repeated!", txnID))
			return ErrDuplicateTransaction
		}
		return s.storageFailed(ic, err)
	}
	ic.result.Transaction = t
	ic.result.Outcome = domain.IPNOutcomeRecorded

	if status == domain.PaymentStatusCompleted && ic.course.CompletionEnabled && inst.PaymentCompletionEnabled {
		if err := s.completions.SetState(ctx, inst.ID, ic.user.ID, domain.CompletionComplete); err != nil {
			// The completion query falls back to the recorded transaction.
			s.loggerf("level=error msg=completion update failed instance_id=%d user_id=%d err=%v", inst.ID, ic.user.ID, err)
		}
	}

	s.notifyRecorded(ctx, ic, t)
	return nil
}

func (s *Service) applyInvalid(ctx context.Context, ic *ipnContext) error {
	ic.result.Outcome = domain.IPNOutcomeInvalid
	t := s.transaction(ic, true)
	if err := s.txns.Create(ctx, t); err != nil {
		s.loggerf("level=error msg=store invalid transaction failed txn_id=%s err=%v", t.TxnID, err)
	} else {
		ic.result.Transaction = t
	}
	s.alertAdmin(ctx, ic, "Received an invalid payment notification!! (Fake payment?)")
	ic.result.Reason = "paypal answered INVALID"
	return ErrInvalidNotification
}

func (s *Service) storageFailed(ic *ipnContext, err error) error {
	ic.result.Outcome = domain.IPNOutcomeFailed
	ic.result.Reason = err.Error()
	return fmt.Errorf("ipn storage: %w", err)
}

func (s *Service) transaction(ic *ipnContext, invalid bool) *domain.Transaction {
	n := ic.n
	return &domain.Transaction{
		TxnID:           n.Get("txn_id"),
		UserID:          ic.ref.UserID,
		CourseID:        ic.ref.CourseID,
		InstanceID:      ic.ref.InstanceID,
		PaymentStatus:   n.Get("payment_status"),
		PaymentGross:    n.Get("mc_gross"),
		PaymentCurrency: n.Get("mc_currency"),
		PendingReason:   n.Get("pending_reason"),
		Business:        n.Get("business"),
		Invalid:         invalid,
		TimeUpdated:     s.now().Unix(),
	}
}

func (s *Service) open(ctx context.Context, ic *ipnContext, rawBody string) {
	if s.journal == nil {
		return
	}
	payload, _ := json.Marshal(ic.n)
	entry := &domain.IPNLog{
		TxnID:   ic.n.Get("txn_id"),
		RawBody: rawBody,
		Payload: payload,
		Outcome: domain.IPNOutcomeReceived,
	}
	if err := s.journal.Create(ctx, entry); err != nil {
		s.loggerf("level=error msg=ipn journal create failed err=%v", err)
		return
	}
	ic.result.LogID = entry.ID
}

func (s *Service) close(ctx context.Context, ic *ipnContext) {
	if s.journal == nil || ic.result.LogID == uuid.Nil {
		return
	}
	r := ic.result
	if err := s.journal.Finish(ctx, r.LogID, r.Verification, r.Outcome, r.Reason); err != nil {
		s.loggerf("level=error msg=ipn journal finish failed id=%s err=%v", r.LogID, err)
	}
}
