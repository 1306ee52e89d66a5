package appstate

import (
	"context"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-print"
)

// ResetPasswordPath is appended to the configured origin to build the
// password-reset callback address.
const ResetPasswordPath = "/reset-password"

// State is the four-field view consumers read. Pointer fields are shared
// snapshots and must be treated as read-only.
type State struct {
	User    *User    `json:"user,omitempty"`
	Session *Session `json:"session,omitempty"`
	Profile *Profile `json:"profile,omitempty"`
	Loading bool     `json:"loading"`
}

// Authenticated reports whether a user is cached
func (s State) Authenticated() bool {
	return s.User != nil
}

type sessionChange struct {
	event   SessionEvent
	session *Session
}

// Synchronizer mirrors the backend's auth state into local state and
// forwards the table operations the client application needs. A single
// goroutine applies the initial load and every session-change
// notification in arrival order; a generation counter discards profile
// fetches that lost the race against a newer change.
type Synchronizer struct {
	client Client
	logger Logger
	origin string

	mu    sync.RWMutex
	state State
	gen   uint64

	listenersMu  sync.Mutex
	listeners    map[int]func(State)
	nextListener int

	events chan sessionChange
	sub    Subscription
	ready  chan struct{}
	done   chan struct{}

	startOnce sync.Once
	closeOnce sync.Once
}

// NewSynchronizer returns a Synchronizer for the given backend client.
// The zero state is {nil, nil, nil, loading} until Start settles.
func NewSynchronizer(client Client) *Synchronizer {
	return &Synchronizer{
		client:    client,
		logger:    defLogger{},
		listeners: map[int]func(State){},
		events:    make(chan sessionChange, 16),
		ready:     make(chan struct{}),
		done:      make(chan struct{}),
		state:     State{Loading: true},
	}
}

func (s *Synchronizer) WithLogger(logger Logger) *Synchronizer {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithOrigin sets the web origin used to derive the password-reset
// callback address.
func (s *Synchronizer) WithOrigin(origin string) *Synchronizer {
	s.origin = strings.TrimRight(origin, "/")
	return s
}

// Start subscribes to the backend's session-change stream and launches
// the apply loop. The loop begins with the initial session load; Ready
// unblocks once that load has settled. Start is a no-op after the first
// call.
func (s *Synchronizer) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.sub = s.client.OnSessionChange(func(event SessionEvent, session *Session) {
			select {
			case s.events <- sessionChange{event: event, session: session}:
			case <-s.done:
			}
		})
		go s.run(ctx)
	})
}

// Close cancels the session-change subscription and stops the apply
// loop. No other cleanup is performed.
func (s *Synchronizer) Close() {
	s.closeOnce.Do(func() {
		if s.sub != nil {
			s.sub.Unsubscribe()
		}
		close(s.done)
	})
}

// Ready is closed once the initial session load has been applied,
// regardless of the profile fetch outcome.
func (s *Synchronizer) Ready() <-chan struct{} {
	return s.ready
}

// Snapshot returns a copy of the current state
func (s *Synchronizer) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// OnChange registers a listener invoked after every state change. The
// listener runs on the goroutine that applied the change.
func (s *Synchronizer) OnChange(fn func(State)) Subscription {
	s.listenersMu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return &listenerSubscription{cancel: func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}}
}

// DebugState dumps the current state to the logger
func (s *Synchronizer) DebugState() {
	s.logger.Debug("state: %s", print.MaybeHighlightJSON(s.Snapshot()))
}

func (s *Synchronizer) run(ctx context.Context) {
	s.initialLoad(ctx)
	close(s.ready)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case change := <-s.events:
			s.apply(ctx, change)
		}
	}
}

func (s *Synchronizer) initialLoad(ctx context.Context) {
	session, err := s.client.CurrentSession(ctx)
	if err != nil {
		s.logger.Error("initial session lookup failed: %v", err)
		session = nil
	}

	event := SessionSignedOut
	if session != nil && session.User != nil {
		event = SessionSignedIn
	}

	s.apply(ctx, sessionChange{event: event, session: session})
}

// apply runs only on the run goroutine, so changes land strictly in
// arrival order. The generation counter keeps a profile fetch from
// overwriting state mutated while the fetch was in flight.
func (s *Synchronizer) apply(ctx context.Context, change sessionChange) {
	var user *User
	if change.session != nil {
		user = change.session.User
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.state.Session = change.session
	s.state.User = user
	if user == nil {
		s.state.Profile = nil
	}
	s.mu.Unlock()

	if user != nil {
		profile, err := s.client.FetchProfile(ctx, user.ID)
		if err != nil {
			s.logger.Error("profile fetch for user %s failed: %v", user.ID, err)
			profile = nil
		}

		s.mu.Lock()
		if s.gen == gen {
			s.state.Profile = profile
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.state.Loading = false
	st := s.state
	s.mu.Unlock()

	s.notify(st)
}

func (s *Synchronizer) notify(st State) {
	s.listenersMu.Lock()
	fns := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

func (s *Synchronizer) currentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User
}

// SignUp registers credentials plus a display-name attribute. Local state
// is not updated here; it updates when the backend emits the resulting
// session-change notification.
func (s *Synchronizer) SignUp(ctx context.Context, email, password, fullName string) error {
	payload := SignUpPayload{Email: email, Password: password, FullName: fullName}
	if err := payload.Validate(); err != nil {
		return validationError(err, "invalid sign up payload")
	}

	metadata := map[string]any{}
	if fullName != "" {
		metadata["full_name"] = fullName
	}

	return backendError(s.client.SignUp(ctx, email, password, metadata))
}

// SignIn authenticates with email and password. State updates arrive via
// the notification stream.
func (s *Synchronizer) SignIn(ctx context.Context, email, password string) error {
	return backendError(s.client.SignInWithPassword(ctx, email, password))
}

// SignOut invalidates the session and clears the cached profile
// synchronously. User and session clear via the resulting notification.
func (s *Synchronizer) SignOut(ctx context.Context) error {
	err := s.client.SignOut(ctx)

	s.mu.Lock()
	s.gen++
	s.state.Profile = nil
	st := s.state
	s.mu.Unlock()
	s.notify(st)

	return backendError(err)
}

// ResetPassword requests a password-reset email with a callback address
// derived from the configured origin plus ResetPasswordPath.
func (s *Synchronizer) ResetPassword(ctx context.Context, email string) error {
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return validationError(err, "invalid reset email")
	}

	return backendError(s.client.SendPasswordReset(ctx, email, s.origin+ResetPasswordPath))
}

// UpdateProfile updates the profile row for the cached user, stamping an
// updated timestamp. Only on success is the patch optimistically merged
// into the cached profile.
func (s *Synchronizer) UpdateProfile(ctx context.Context, patch ProfilePatch) error {
	user := s.currentUser()
	if user == nil {
		return ErrNotAuthenticated
	}

	if patch.Phone != nil && *patch.Phone != "" {
		normalized, err := NormalizePhone(*patch.Phone)
		if err != nil {
			return err
		}
		patch.Phone = &normalized
	}

	now := time.Now()
	patch.UpdatedAt = &now

	if err := s.client.UpdateProfile(ctx, user.ID, patch); err != nil {
		return backendError(err)
	}

	s.mu.Lock()
	s.gen++
	if s.state.Profile != nil {
		merged := s.state.Profile.Clone()
		patch.Apply(merged)
		s.state.Profile = merged
	}
	st := s.state
	s.mu.Unlock()
	s.notify(st)

	return nil
}

// FetchDonations returns the cached user's donations, most recent first.
// Unauthenticated callers get an empty slice without a backend call;
// backend failures are logged and swallowed.
func (s *Synchronizer) FetchDonations(ctx context.Context) []*Donation {
	user := s.currentUser()
	if user == nil {
		return []*Donation{}
	}

	donations, err := s.client.ListDonations(ctx, user.ID)
	if err != nil {
		s.logger.Error("donations fetch failed: %v", err)
		return []*Donation{}
	}

	if donations == nil {
		donations = []*Donation{}
	}

	return donations
}

// FetchVolunteerApplications has the same contract as FetchDonations,
// over the applications table.
func (s *Synchronizer) FetchVolunteerApplications(ctx context.Context) []*VolunteerApplication {
	user := s.currentUser()
	if user == nil {
		return []*VolunteerApplication{}
	}

	applications, err := s.client.ListVolunteerApplications(ctx, user.ID)
	if err != nil {
		s.logger.Error("volunteer applications fetch failed: %v", err)
		return []*VolunteerApplication{}
	}

	if applications == nil {
		applications = []*VolunteerApplication{}
	}

	return applications
}

// SaveDonation inserts a donation owned by the cached user, or an
// anonymous one when no user is cached.
func (s *Synchronizer) SaveDonation(ctx context.Context, payload DonationPayload) error {
	if payload.Status == "" {
		payload.Status = DonationPending
	}

	if err := payload.Validate(); err != nil {
		return validationError(err, "invalid donation payload")
	}

	return backendError(s.client.InsertDonation(ctx, payload.toDonation(s.currentUser())))
}

// SaveVolunteerApplication inserts an application owned by the cached
// user, or an anonymous one when no user is cached. Status, id, and
// timestamps are assigned by the backend.
func (s *Synchronizer) SaveVolunteerApplication(ctx context.Context, payload VolunteerApplicationPayload) error {
	if payload.Phone != "" {
		normalized, err := NormalizePhone(payload.Phone)
		if err != nil {
			return err
		}
		payload.Phone = normalized
	}

	if err := payload.Validate(); err != nil {
		return validationError(err, "invalid volunteer application payload")
	}

	return backendError(s.client.InsertVolunteerApplication(ctx, payload.toApplication(s.currentUser())))
}

type listenerSubscription struct {
	once   sync.Once
	cancel func()
}

func (l *listenerSubscription) Unsubscribe() {
	l.once.Do(l.cancel)
}
