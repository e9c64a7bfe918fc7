// Package checkout drives a single checkout session from collecting
// shipping details through payment settlement to a persisted order.
// One attempt is in flight per session at a time; verification must
// succeed before anything is written to the order store.
package checkout

import (
	"context"
	"log"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"storefront/internal/domain"
	"storefront/internal/gateway"
	"storefront/internal/pricing"
	"storefront/internal/settings"
)

type State string

const (
	StateCollectingDetails State = "collecting_details"
	StateSelectingPayment  State = "selecting_payment_method"
	StateSettlingPayment   State = "settling_payment"
	StatePersisting        State = "persisting"
	StateComplete          State = "complete"
	StateFailed            State = "failed"
)

// Failure reasons for StateFailed.
const (
	FailPaymentRejected = "payment_rejected"
	FailPersistFailed   = "persist_failed"
)

// Details is the shipping contact block collected in the first step.
type Details struct {
	CustomerName    string `json:"customerName"`
	CustomerEmail   string `json:"customerEmail"`
	CustomerPhone   string `json:"customerPhone"`
	ShippingAddress string `json:"shippingAddress"`
}

// OrderPlacer persists a completed checkout. Implemented by the order
// service, which also fans out placement notifications and events.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, order *domain.Order) error
}

// Manager owns checkout sessions and their collaborators. State is
// explicit per session; there are no ambient singletons.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	source settings.Source
	placer OrderPlacer

	// selectGateway is swapped for a stub in tests.
	selectGateway func(method string, cfg settings.PaymentSettings) (gateway.PaymentGateway, error)
	now           func() time.Time
	seq           atomic.Int64
}

func NewManager(source settings.Source, placer OrderPlacer) *Manager {
	return &Manager{
		sessions:      make(map[string]*Session),
		source:        source,
		placer:        placer,
		selectGateway: gateway.Select,
		now:           time.Now,
	}
}

// StartSession opens a checkout for the given cart snapshot.
func (m *Manager) StartSession(lines []domain.CartLine) (*Session, error) {
	if len(lines) == 0 {
		return nil, &domain.ValidationError{Fields: []string{"cart"}}
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, &domain.ValidationError{Fields: []string{"quantity"}}
		}
	}

	s := &Session{
		id:       uuid.NewString(),
		state:    StateCollectingDetails,
		lines:    append([]domain.CartLine(nil), lines...),
		manager:  m,
		inflight: semaphore.NewWeighted(1),
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return s, nil
}

// Session looks up an open checkout session by id.
func (m *Manager) Session(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) nextOrderID() string {
	return domain.NewOrderID(m.now(), int(m.seq.Add(1)))
}

// Session is one customer's checkout. Methods are safe for concurrent
// use; the settlement window additionally holds the in-flight guard so
// a racing second attempt is rejected instead of double-charging.
type Session struct {
	id      string
	manager *Manager

	mu         sync.Mutex
	state      State
	failReason string
	lines      []domain.CartLine
	details    Details
	method     string
	gw         gateway.PaymentGateway
	intent     *gateway.PaymentIntent
	order      *domain.Order
	attempt    bool // an acquired in-flight slot is held

	inflight *semaphore.Weighted
}

func (s *Session) ID() string { return s.id }

// Method reports the selected payment method, empty until one is
// chosen.
func (s *Session) Method() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.method
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) FailReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failReason
}

// Order returns the persisted order once the session is complete.
func (s *Session) Order() *domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order
}

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// SubmitDetails validates the contact block and advances to payment
// method selection. Purely local; no network is touched. On validation
// failure the session stays in CollectingDetails.
func (s *Session) SubmitDetails(d Details) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireState(StateCollectingDetails); err != nil {
		return err
	}

	var bad []string
	if strings.TrimSpace(d.CustomerName) == "" {
		bad = append(bad, "customerName")
	}
	if !emailRe.MatchString(d.CustomerEmail) {
		bad = append(bad, "customerEmail")
	}
	if !phoneRe.MatchString(strings.ReplaceAll(d.CustomerPhone, " ", "")) {
		bad = append(bad, "customerPhone")
	}
	if strings.TrimSpace(d.ShippingAddress) == "" {
		bad = append(bad, "shippingAddress")
	}
	if len(bad) > 0 {
		return &domain.ValidationError{Fields: bad}
	}

	s.details = d
	s.state = StateSelectingPayment
	return nil
}

// SelectPaymentMethod picks a gateway from those enabled in the current
// payment settings. An empty method defaults to Cash on Delivery.
func (s *Session) SelectPaymentMethod(ctx context.Context, method string) error {
	snap, err := s.manager.source.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireState(StateSelectingPayment); err != nil {
		return err
	}

	gw, err := s.manager.selectGateway(method, snap.Payments)
	if err != nil {
		return err
	}

	if method == "" {
		method = gateway.MethodCOD
	}
	s.method = method
	s.gw = gw
	s.state = StateSettlingPayment
	return nil
}

// BeginPayment enters the settlement window. For online gateways it
// creates a fresh intent; a retry after a gateway error mints a new
// intent, never reusing a stale one. Cash on Delivery skips the gateway
// entirely. A second entry while an attempt is in flight yields
// ErrConcurrentAttempt.
func (s *Session) BeginPayment(ctx context.Context) (*gateway.PaymentIntent, error) {
	s.mu.Lock()
	if err := s.requireState(StateSettlingPayment); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	gw := s.gw
	method := s.method
	total := pricing.CartTotal(s.lines)
	s.mu.Unlock()

	if !s.inflight.TryAcquire(1) {
		return nil, domain.ErrConcurrentAttempt
	}
	s.mu.Lock()
	s.attempt = true
	s.mu.Unlock()

	if method == gateway.MethodCOD {
		return nil, nil
	}

	intent, err := gw.CreateIntent(ctx, total)
	if err != nil {
		// Retryable: give the attempt slot back so the caller can
		// re-enter with a fresh intent.
		s.releaseAttempt()
		return nil, err
	}

	s.mu.Lock()
	s.intent = intent
	s.mu.Unlock()
	return intent, nil
}

func (s *Session) releaseAttempt() {
	s.mu.Lock()
	held := s.attempt
	s.attempt = false
	s.mu.Unlock()
	if held {
		s.inflight.Release(1)
	}
}

// Abandon drops the in-flight attempt: the customer dismissed the
// payment UI before completing. Not an error and never marks anything
// failed; the order was never persisted. The session stays in
// SettlingPayment so a new attempt can begin.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSettlingPayment || !s.attempt {
		return
	}
	s.intent = nil
	s.attempt = false
	s.inflight.Release(1)
}

// ConfirmPayment verifies the client's completion proof and, on
// success, persists the order. A signature mismatch is terminal for
// the attempt (payment_rejected); a GatewayError leaves the session in
// SettlingPayment for the caller to retry. Once verification succeeds
// the persist step is not cancellable: a paid-but-unrecorded order is
// worse than a slow response.
func (s *Session) ConfirmPayment(ctx context.Context, proof gateway.ClientProof) (*domain.Order, error) {
	s.mu.Lock()
	if err := s.requireState(StateSettlingPayment); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	gw := s.gw
	method := s.method
	intent := s.intent
	attempt := s.attempt
	s.mu.Unlock()

	if !attempt || (method != gateway.MethodCOD && intent == nil) {
		return nil, &domain.ValidationError{Fields: []string{"paymentAttempt"}}
	}

	ok, err := gw.Verify(ctx, intent, proof)
	if err != nil {
		// Transport trouble. Stay in SettlingPayment; the caller may
		// retry with its own policy.
		return nil, err
	}
	if !ok {
		s.fail(FailPaymentRejected)
		return nil, nil
	}

	return s.persist(context.WithoutCancel(ctx), intent, proof)
}

func (s *Session) persist(ctx context.Context, intent *gateway.PaymentIntent, proof gateway.ClientProof) (*domain.Order, error) {
	s.mu.Lock()
	if s.state != StateSettlingPayment {
		// Re-entry after a completed attempt; idempotent answer.
		order := s.order
		s.mu.Unlock()
		return order, nil
	}
	s.state = StatePersisting
	order := s.buildOrder(intent, proof)
	s.mu.Unlock()

	if err := s.manager.placer.PlaceOrder(ctx, order); err != nil {
		if order.PaymentStatus == domain.PaymentCompleted {
			// Money has moved but no record exists. Operator must
			// reconcile manually; this is never dropped silently.
			log.Printf("CRITICAL: order persist failed after successful payment verification: gatewayOrder=%s payment=%s amount=%d: %v",
				order.GatewayOrderID, order.GatewayPayID, order.TotalAmount, err)
		}
		s.fail(FailPersistFailed)
		return nil, err
	}

	s.mu.Lock()
	s.state = StateComplete
	s.order = order
	s.lines = nil // cart cleared on completion
	s.mu.Unlock()
	s.releaseAttempt()
	return order, nil
}

// buildOrder snapshots the cart into a durable order record. Caller
// holds s.mu.
func (s *Session) buildOrder(intent *gateway.PaymentIntent, proof gateway.ClientProof) *domain.Order {
	now := s.manager.now()
	items := make([]domain.OrderItem, 0, len(s.lines))
	for _, line := range s.lines {
		items = append(items, domain.OrderItem{
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			ProductImage: line.ProductImage,
			VariantID:    line.VariantID,
			Quantity:     line.Quantity,
			UnitPrice:    pricing.EffectiveUnitPrice(line),
		})
	}

	order := &domain.Order{
		ID: s.manager.nextOrderID(),
		Customer: domain.Customer{
			Name:  s.details.CustomerName,
			Email: s.details.CustomerEmail,
			Phone: s.details.CustomerPhone,
		},
		ShippingAddress: s.details.ShippingAddress,
		Items:           items,
		TotalAmount:     pricing.CartTotal(s.lines),
		Status:          domain.StatusPending,
		PaymentMethod:   s.gw.Name(),
		PaymentStatus:   domain.PaymentPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if s.method != gateway.MethodCOD {
		order.PaymentStatus = domain.PaymentCompleted
		order.GatewayOrderID = intent.GatewayOrderID
		order.GatewayPayID = proof.GatewayPaymentID
	}
	return order
}

func (s *Session) fail(reason string) {
	s.mu.Lock()
	s.state = StateFailed
	s.failReason = reason
	s.mu.Unlock()
	s.releaseAttempt()
}

func (s *Session) requireState(want State) error {
	if s.state != want {
		return &StateError{Current: s.state, Expected: want}
	}
	return nil
}

// StateError reports an operation attempted out of order.
type StateError struct {
	Current  State
	Expected State
}

func (e *StateError) Error() string {
	return "checkout: session is in state " + string(e.Current) + ", expected " + string(e.Expected)
}
