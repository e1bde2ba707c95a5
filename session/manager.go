package session

import (
	"context"
	"crypto/rand"
	"net/http"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/docuvault/go-admin-core/resolver"
	"github.com/docuvault/go-admin-core/seed"
	"github.com/docuvault/go-admin-core/session/kvstore"
)

const (
	defaultRenewInterval  = 15 * time.Minute
	defaultRenewThreshold = 5 * time.Minute
	defaultSessionTTL     = time.Hour

	loginPath   = "/auth/login"
	refreshPath = "/auth/refresh"
	logoutPath  = "/auth/logout"

	localTokenIssuer = "docuvault-console"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	User        identityRecord `json:"user"`
	Token       string         `json:"token"`
	TokenExpiry int64          `json:"tokenExpiry"`
}

// Manager owns the session state machine. All lifecycle operations (login,
// logout, renewal, restore) are mutually exclusive: a renewal in flight is
// never started twice, and a logout issued during a renewal clears the
// session once the renewal settles.
type Manager struct {
	resolver *resolver.Resolver
	store    kvstore.Store
	seeds    *seed.Provider
	logger   zerolog.Logger
	nowTime  func() time.Time

	renewInterval  time.Duration
	renewThreshold time.Duration
	sessionTTL     time.Duration
	localKey       []byte

	// opMu serializes lifecycle operations end to end, network calls included.
	opMu sync.Mutex
	// mu guards the fields below; held only for short reads/writes so
	// Current() never blocks behind a network call.
	mu              sync.RWMutex
	session         *Session
	remember        bool
	cancelScheduler context.CancelFunc
	schedulerDone   chan struct{}
}

// ManagerOption modifies a Manager instance.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithManagerLogger sets the manager logger.
func WithManagerLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithRenewInterval sets how often the scheduler inspects the session.
func WithRenewInterval(interval time.Duration) ManagerOption {
	return func(m *Manager) {
		m.renewInterval = interval
	}
}

// WithRenewThreshold sets the remaining validity below which renewal fires.
func WithRenewThreshold(threshold time.Duration) ManagerOption {
	return func(m *Manager) {
		m.renewThreshold = threshold
	}
}

// WithSessionTTL sets the validity of locally issued degraded tokens.
func WithSessionTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		m.sessionTTL = ttl
	}
}

// NewManager initializes a Manager with required dependencies.
func NewManager(res *resolver.Resolver, store kvstore.Store, seeds *seed.Provider, options ...ManagerOption) (*Manager, error) {
	if res == nil {
		return nil, errors.New("[NewManager] resolver is required")
	}
	if store == nil {
		return nil, errors.New("[NewManager] store is required")
	}
	if seeds == nil {
		return nil, errors.New("[NewManager] seed provider is required")
	}

	localKey := make([]byte, 32)
	if _, err := rand.Read(localKey); err != nil {
		return nil, errors.Wrap(err, "[NewManager] rand.Read")
	}

	m := &Manager{
		resolver:       res,
		store:          store,
		seeds:          seeds,
		logger:         zerolog.Nop(),
		nowTime:        time.Now,
		renewInterval:  defaultRenewInterval,
		renewThreshold: defaultRenewThreshold,
		sessionTTL:     defaultSessionTTL,
		localKey:       localKey,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Login authenticates the credentials against the primary endpoint. An
// explicit remote rejection surfaces as ErrInvalidCredentials and is never
// retried offline; only when the endpoint could not be contacted are the
// seeded accounts consulted. On success the renewal scheduler starts and,
// if remember is set, the persisted record is written.
func (m *Manager) Login(ctx context.Context, email, secret string, remember bool) (*Session, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	// A new login replaces any existing session.
	if m.Current() != nil {
		m.logoutLocked(ctx)
	}

	d, err := resolver.ParseDescriptor(http.MethodPost, loginPath)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Login] descriptor")
	}
	d.Body = loginRequest{Email: email, Password: secret}

	res, execErr := m.resolver.Execute(ctx, d)
	if execErr == nil {
		var tr tokenResponse
		if err := res.Decode(&tr); err != nil {
			return nil, errors.Wrap(err, "[Manager.Login] decode response")
		}
		sess := &Session{
			Identity: tr.User.identity(),
			Token:    tr.Token,
			Expiry:   time.UnixMilli(tr.TokenExpiry),
		}
		m.installSession(sess, remember)
		m.logger.Info().Str("email", email).Msg("login succeeded")
		return m.Current(), nil
	}

	if resolver.IsRejection(execErr) {
		m.logger.Info().Str("email", email).Msg("login rejected by primary endpoint")
		return nil, ErrInvalidCredentials
	}

	// Primary endpoint unreachable: verify offline against seeded accounts.
	account, ok := m.seeds.Authenticate(email, secret)
	if !ok {
		return nil, errors.Wrapf(ErrUnreachable, "login for %s", email)
	}
	identity := Identity{
		ID:         account.ID,
		Name:       account.Name,
		Email:      account.Email,
		Role:       Role(account.Role),
		Department: account.Department,
	}
	token, expiry, err := m.mintLocalToken(identity)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Login] mint local token")
	}
	sess := &Session{Identity: identity, Token: token, Expiry: expiry}
	m.installSession(sess, remember)
	m.logger.Warn().Str("email", email).Err(execErr).Msg("login served offline, primary endpoint unavailable")
	return m.Current(), nil
}

// Logout clears the session. Remote invalidation is best effort: its errors
// are logged, never surfaced. The in-memory session, the renewal scheduler
// and the persisted record are always cleared.
func (m *Manager) Logout(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.logoutLocked(ctx)
}

func (m *Manager) logoutLocked(ctx context.Context) {
	sess := m.Current()
	if sess != nil {
		d, err := resolver.ParseDescriptor(http.MethodPost, logoutPath)
		if err == nil {
			d.Token = sess.Token
			if _, err := m.resolver.Execute(ctx, d); err != nil {
				m.logger.Warn().Err(err).Msg("remote logout failed, clearing local session anyway")
			}
		}
	}

	m.stopScheduler()

	m.mu.Lock()
	m.session = nil
	m.remember = false
	m.mu.Unlock()

	if err := m.store.Remove(StorageKey); err != nil {
		m.logger.Warn().Err(err).Msg("failed to remove persisted session record")
	}
}

// Restore reactivates a persisted session at startup. An absent or expired
// record yields a nil session; an expired record is also removed from
// storage. A restored session with little validity left is renewed at once.
func (m *Manager) Restore(ctx context.Context) (*Session, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	data, found, err := m.store.Get(StorageKey)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Restore] read record")
	}
	if !found {
		return nil, nil
	}

	sess, err := decodeRecord(data)
	if err != nil {
		m.logger.Warn().Err(err).Msg("discarding unreadable session record")
		_ = m.store.Remove(StorageKey)
		return nil, nil
	}

	now := m.nowTime()
	if !sess.Active(now) {
		m.logger.Info().Time("expiry", sess.Expiry).Msg("discarding expired session record")
		if err := m.store.Remove(StorageKey); err != nil {
			m.logger.Warn().Err(err).Msg("failed to remove expired session record")
		}
		return nil, nil
	}

	m.installSession(sess, true)
	if sess.Remaining(now) < m.renewThreshold {
		m.renewLocked(ctx, sess)
	}
	return m.Current(), nil
}

// Current returns a copy of the active session, or nil.
func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil
	}
	sess := *m.session
	return &sess
}

// Close disposes the renewal scheduler and drops the in-memory session. The
// persisted record is left in place so a later Restore can pick it up.
func (m *Manager) Close() {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.stopScheduler()
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()
}

// installSession stores the session, persists it when remembering, and
// (re)starts the renewal scheduler. Callers hold opMu.
func (m *Manager) installSession(sess *Session, remember bool) {
	m.mu.Lock()
	m.session = sess
	m.remember = remember
	m.mu.Unlock()

	if remember {
		m.persist(sess)
	}
	m.startScheduler()
}

func (m *Manager) persist(sess *Session) {
	data, err := encodeRecord(sess)
	if err != nil {
		m.logger.Warn().Err(err).Msg("failed to encode session record")
		return
	}
	if err := m.store.Set(StorageKey, data); err != nil {
		m.logger.Warn().Err(err).Msg("failed to persist session record")
	}
}

func (m *Manager) startScheduler() {
	m.stopScheduler()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	m.mu.Lock()
	m.cancelScheduler = cancel
	m.schedulerDone = done
	m.mu.Unlock()

	go m.renewLoop(ctx, done)
}

// stopScheduler cancels the renewal loop and waits for it to exit so no
// orphaned timer can act on a stale identity.
func (m *Manager) stopScheduler() {
	m.mu.Lock()
	cancel := m.cancelScheduler
	done := m.schedulerDone
	m.cancelScheduler = nil
	m.schedulerDone = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (m *Manager) renewLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.renewInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.renewTick(ctx)
		}
	}
}

// renewTick is the scheduler entry point. It skips the tick when a lifecycle
// operation holds opMu: blocking here would deadlock a logout that is
// waiting for this loop to exit, and an in-flight login/renewal makes the
// tick redundant anyway.
func (m *Manager) renewTick(ctx context.Context) {
	if !m.opMu.TryLock() {
		return
	}
	defer m.opMu.Unlock()

	if ctx.Err() != nil {
		return
	}
	sess := m.Current()
	if sess == nil {
		return
	}
	if sess.Remaining(m.nowTime()) >= m.renewThreshold {
		return
	}
	m.renewLocked(ctx, sess)
}

// RenewIfNeeded renews the session when its remaining validity has fallen
// below the threshold. The scheduler calls this on every tick; it is also
// safe to call manually.
func (m *Manager) RenewIfNeeded(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	sess := m.Current()
	if sess == nil {
		return
	}
	if sess.Remaining(m.nowTime()) >= m.renewThreshold {
		return
	}
	m.renewLocked(ctx, sess)
}

// renewLocked replaces the session's token and expiry, leaving the identity
// untouched. When the refresh endpoint cannot serve, it degrades to a
// locally minted token instead of forcing a logout. Callers hold opMu.
func (m *Manager) renewLocked(ctx context.Context, sess *Session) {
	var (
		token  string
		expiry time.Time
	)

	d, err := resolver.ParseDescriptor(http.MethodPost, refreshPath)
	if err == nil {
		d.Token = sess.Token
		res, execErr := m.resolver.Execute(ctx, d)
		if execErr == nil {
			var tr tokenResponse
			if decodeErr := res.Decode(&tr); decodeErr == nil && tr.Token != "" {
				token = tr.Token
				expiry = time.UnixMilli(tr.TokenExpiry)
			} else {
				m.logger.Warn().Err(decodeErr).Msg("refresh response unusable")
			}
		} else {
			m.logger.Warn().Err(execErr).Msg("remote renewal failed")
		}
	}

	if token == "" {
		token, expiry, err = m.mintLocalToken(sess.Identity)
		if err != nil {
			m.logger.Error().Err(err).Msg("degraded renewal failed, keeping current token")
			return
		}
		m.logger.Warn().Time("expiry", expiry).Msg("renewal degraded to locally issued token")
	}

	m.mu.Lock()
	if m.session == nil || m.session.Token != sess.Token {
		// Session was cleared or replaced while renewing; discard.
		m.mu.Unlock()
		return
	}
	m.session.Token = token
	m.session.Expiry = expiry
	renewed := *m.session
	remember := m.remember
	m.mu.Unlock()

	if remember {
		m.persist(&renewed)
	}
	m.logger.Info().Time("expiry", expiry).Msg("session renewed")
}

// mintLocalToken issues a short-lived token bound to the identity, signed
// with a per-process key.
func (m *Manager) mintLocalToken(id Identity) (string, time.Time, error) {
	now := m.nowTime()
	expiry := now.Add(m.sessionTTL)

	claims := jwtlib.MapClaims{
		"iss":        localTokenIssuer,
		"sub":        id.ID,
		"email":      id.Email,
		"role":       string(id.Role),
		"department": id.Department,
		"iat":        now.Unix(),
		"exp":        expiry.Unix(),
		"jti":        uuid.New().String(),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(m.localKey)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "[Manager.mintLocalToken] sign")
	}
	return token, expiry, nil
}
