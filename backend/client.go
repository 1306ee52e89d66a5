package backend

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/esperanza-dev/go-appstate"
)

// Client is a bun-backed appstate.Client: bcrypt credentials, HS256
// session pairs, and an in-process session-change stream. One process
// holds at most one signed-in session at a time, mirroring a browser tab.
type Client struct {
	repo   RepositoryManager
	tokens *tokenService
	mailer Mailer
	logger Logger

	mu           sync.Mutex
	session      *appstate.Session
	listeners    map[int]func(appstate.SessionEvent, *appstate.Session)
	nextListener int
}

// Logger matches appstate.Logger so callers can share one implementation
type Logger = appstate.Logger

var _ appstate.Client = (*Client)(nil)

func New(db *bun.DB, cfg Config) *Client {
	logger := defLogger{}
	return &Client{
		repo:      NewRepositoryManager(db),
		tokens:    newTokenService(cfg, logger),
		mailer:    printMailer{},
		logger:    logger,
		listeners: map[int]func(appstate.SessionEvent, *appstate.Session){},
	}
}

func (c *Client) WithLogger(logger Logger) *Client {
	if logger != nil {
		c.logger = logger
		c.tokens.logger = logger
	}
	return c
}

// WithMailer overrides the password-reset mail delivery
func (c *Client) WithMailer(mailer Mailer) *Client {
	if mailer != nil {
		c.mailer = mailer
	}
	return c
}

// Repositories exposes the storage layer for composition-root wiring
func (c *Client) Repositories() RepositoryManager {
	return c.repo
}

// CurrentSession returns the cached session, transparently refreshing the
// token pair when the access token has expired. A nil session with a nil
// error means nobody is signed in.
func (c *Client) CurrentSession(ctx context.Context) (*appstate.Session, error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == nil {
		return nil, nil
	}

	if !session.Expired(time.Now()) {
		return session.Clone(), nil
	}

	return c.RefreshSession(ctx)
}

// RefreshSession re-mints the token pair for the signed-in user and emits
// a token-refreshed notification. An expired refresh token ends the
// session and emits signed-out instead.
func (c *Client) RefreshSession(_ context.Context) (*appstate.Session, error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == nil || session.User == nil {
		return nil, nil
	}

	if _, err := c.tokens.validate(session.RefreshToken); err != nil {
		c.logger.Info("refresh token rejected, ending session: %v", err)
		c.mu.Lock()
		c.session = nil
		c.mu.Unlock()
		c.notify(appstate.SessionSignedOut, nil)
		return nil, nil
	}

	fresh, err := c.tokens.mintSession(session.User)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.session = fresh
	c.mu.Unlock()
	c.notify(appstate.SessionTokenRefreshed, fresh)

	return fresh.Clone(), nil
}

// OnSessionChange registers a listener for sign-in, sign-out, and token
// refresh notifications.
func (c *Client) OnSessionChange(fn func(event appstate.SessionEvent, session *appstate.Session)) appstate.Subscription {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.mu.Unlock()

	return &clientSubscription{cancel: func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}}
}

// SignUp registers credentials and implicitly creates the profile row in
// the same transaction. It does not sign the user in; the session arrives
// with the first SignInWithPassword.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) error {
	hash, err := HashPassword(password)
	if err != nil {
		var rich *goerrors.Error
		if goerrors.As(err, &rich) {
			return err
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	fullName := ""
	if metadata != nil {
		if v, ok := metadata["full_name"].(string); ok {
			fullName = v
		}
	}

	user := &appstate.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		Metadata:     metadata,
	}
	if id, err := hashid.NewUUID(email); err == nil {
		user.ID = id
	} else {
		user.ID = uuid.New()
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err = c.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if user, err = c.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		profile := &appstate.Profile{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
		}
		return c.repo.Profiles().CreateTx(ctx, tx, profile)
	})

	if err != nil {
		var rich *goerrors.Error
		if goerrors.As(err, &rich) {
			return err
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "sign up transaction failed")
	}

	return nil
}

// SignInWithPassword authenticates and emits a signed-in notification
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) error {
	user, err := c.repo.Users().GetByIdentifier(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrMismatchedHashAndPassword
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during sign in")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return err
	}

	session, err := c.tokens.mintSession(user)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	c.notify(appstate.SessionSignedIn, session)

	return nil
}

// SignOut drops the session and emits a signed-out notification. Signing
// out without a session is a no-op.
func (c *Client) SignOut(_ context.Context) error {
	c.mu.Lock()
	had := c.session != nil
	c.session = nil
	c.mu.Unlock()

	if had {
		c.notify(appstate.SessionSignedOut, nil)
	}

	return nil
}

// SendPasswordReset records a reset request and mails a link built from
// redirectURL. Unknown emails return nil so callers cannot enumerate
// accounts.
func (c *Client) SendPasswordReset(ctx context.Context, email, redirectURL string) error {
	user, err := c.repo.Users().GetByIdentifier(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			c.logger.Debug("password reset requested for unknown email")
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	reset := &PasswordReset{
		UserID:      &user.ID,
		Email:       email,
		Status:      ResetRequestedStatus,
		RedirectURL: redirectURL,
	}

	created, err := c.repo.PasswordResets().Create(ctx, reset)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create password reset record")
	}

	link := redirectURL + "?token=" + created.ID.String()
	if err := c.mailer.SendPasswordReset(ctx, email, link); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to deliver password reset email")
	}

	return nil
}

// FinalizePasswordReset redeems a reset token: the user's password is
// replaced and the row is marked changed so the token cannot be replayed.
// Tokens older than resetTokenTTL are marked expired instead.
func (c *Client) FinalizePasswordReset(ctx context.Context, token, password string) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	reset, err := c.repo.PasswordResets().GetByID(ctx, token)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return goerrors.New("invalid or expired password reset token", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve password reset request")
	}

	if reset.Status != ResetRequestedStatus {
		return goerrors.New("password reset token has already been used", goerrors.CategoryConflict).
			WithTextCode(TextCodeTokenUsed)
	}

	if reset.CreatedAt == nil {
		return goerrors.New("password reset record is missing creation date", goerrors.CategoryInternal)
	}

	if time.Since(*reset.CreatedAt) > resetTokenTTL {
		expired := &PasswordReset{ID: reset.ID, Status: ResetExpiredStatus}
		if _, err := c.repo.PasswordResets().Update(ctx, expired); err != nil {
			c.logger.Warn("failed to mark password reset as expired: %v", err)
		}
		return goerrors.New("password reset token has expired", goerrors.CategoryValidation).
			WithTextCode(TextCodeTokenExpired)
	}

	if reset.UserID == nil {
		return goerrors.New("password reset record is not associated with a user", goerrors.CategoryInternal)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
	}

	err = c.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := c.repo.Users().RawTx(ctx, tx, resetUserPasswordSQL, hash, reset.UserID.String()); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user password")
		}

		if _, err := c.repo.PasswordResets().UpdateTx(ctx, tx, MarkPasswordAsReseted(reset.ID)); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update password reset status")
		}

		return nil
	})

	if err != nil {
		var rich *goerrors.Error
		if goerrors.As(err, &rich) {
			return err
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to finalize password reset")
	}

	return nil
}

func (c *Client) FetchProfile(ctx context.Context, userID uuid.UUID) (*appstate.Profile, error) {
	return c.repo.Profiles().GetByID(ctx, userID)
}

func (c *Client) UpdateProfile(ctx context.Context, userID uuid.UUID, patch appstate.ProfilePatch) error {
	return c.repo.Profiles().Update(ctx, userID, patch)
}

func (c *Client) ListDonations(ctx context.Context, userID uuid.UUID) ([]*appstate.Donation, error) {
	return c.repo.Donations().ListByUser(ctx, userID)
}

func (c *Client) InsertDonation(ctx context.Context, donation *appstate.Donation) error {
	return c.repo.Donations().Insert(ctx, donation)
}

func (c *Client) ListVolunteerApplications(ctx context.Context, userID uuid.UUID) ([]*appstate.VolunteerApplication, error) {
	return c.repo.VolunteerApplications().ListByUser(ctx, userID)
}

func (c *Client) InsertVolunteerApplication(ctx context.Context, application *appstate.VolunteerApplication) error {
	return c.repo.VolunteerApplications().Insert(ctx, application)
}

func (c *Client) notify(event appstate.SessionEvent, session *appstate.Session) {
	c.mu.Lock()
	fns := make([]func(appstate.SessionEvent, *appstate.Session), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(event, session)
	}
}

type clientSubscription struct {
	once   sync.Once
	cancel func()
}

func (s *clientSubscription) Unsubscribe() {
	s.once.Do(s.cancel)
}
