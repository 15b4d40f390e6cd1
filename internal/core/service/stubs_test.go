package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/cloudnative/account-service/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Account repository
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	mu        sync.Mutex
	accounts  map[string]*domain.Account
	seq       int
	findErr   error
	updateErr error
	updates   int
	afterFind func()
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

func (r *stubAccountRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.accounts[email]
	return ok, nil
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	if r.findErr != nil {
		r.mu.Unlock()
		return nil, r.findErr
	}
	a, ok := r.accounts[email]
	c := cloneAccount(a)
	hook := r.afterFind
	r.mu.Unlock()

	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if hook != nil {
		hook()
	}
	return c, nil
}

func (r *stubAccountRepo) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[a.Email]; ok {
		return nil, domain.ErrAccountExists
	}
	r.seq++
	c := cloneAccount(a)
	c.ID = fmt.Sprintf("acct-%d", r.seq)
	r.accounts[c.Email] = c
	return cloneAccount(c), nil
}

func (r *stubAccountRepo) UpdateProfile(_ context.Context, a *domain.Account) error {
	return r.write(a.Email, func(stored *domain.Account) {
		stored.FirstName = a.FirstName
		stored.LastName = a.LastName
		stored.PasswordHash = a.PasswordHash
		stored.UpdatedAt = a.UpdatedAt
	})
}

func (r *stubAccountRepo) MarkVerified(_ context.Context, email string, at time.Time) error {
	return r.write(email, func(stored *domain.Account) {
		stored.Verified = true
		stored.UpdatedAt = at
	})
}

func (r *stubAccountRepo) SetProfileAsset(_ context.Context, email, assetID string, at time.Time) error {
	return r.write(email, func(stored *domain.Account) {
		stored.ProfileAssetID = assetID
		stored.UpdatedAt = at
	})
}

func (r *stubAccountRepo) write(email string, apply func(*domain.Account)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.accounts[email]
	if !ok {
		return domain.ErrAccountNotFound
	}
	apply(stored)
	r.updates++
	return nil
}

func (r *stubAccountRepo) get(email string) *domain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneAccount(r.accounts[email])
}

func (r *stubAccountRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.accounts)
}

// ---------------------------------------------------------------------------
// Token repository
// ---------------------------------------------------------------------------

type stubTokenRepo struct {
	mu        sync.Mutex
	tokens    map[string]*domain.VerificationToken
	order     []string
	insertErr error
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{tokens: make(map[string]*domain.VerificationToken)}
}

func (r *stubTokenRepo) Insert(_ context.Context, t *domain.VerificationToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	c := *t
	r.tokens[t.Token] = &c
	r.order = append(r.order, t.Token)
	return nil
}

func (r *stubTokenRepo) FindByToken(_ context.Context, token string) (*domain.VerificationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	c := *t
	return &c, nil
}

func (r *stubTokenRepo) MarkVerified(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok || t.Status != domain.TokenPending {
		return domain.ErrTokenUsed
	}
	t.Status = domain.TokenVerified
	return nil
}

func (r *stubTokenRepo) last() *domain.VerificationToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.order) == 0 {
		return nil
	}
	c := *r.tokens[r.order[len(r.order)-1]]
	return &c
}

// ---------------------------------------------------------------------------
// Asset repository and store
// ---------------------------------------------------------------------------

type stubAssetRepo struct {
	mu        sync.Mutex
	assets    map[string]*domain.ProfileAsset
	insertErr error
	deleteErr error
	findErr   error
}

func newStubAssetRepo() *stubAssetRepo {
	return &stubAssetRepo{assets: make(map[string]*domain.ProfileAsset)}
}

func (r *stubAssetRepo) Insert(_ context.Context, a *domain.ProfileAsset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	for _, existing := range r.assets {
		if existing.AccountEmail == a.AccountEmail {
			return errors.New("duplicate key: account_email")
		}
	}
	c := *a
	r.assets[a.ID] = &c
	return nil
}

func (r *stubAssetRepo) FindByID(_ context.Context, id string) (*domain.ProfileAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assets[id]
	if !ok {
		return nil, domain.ErrAssetNotFound
	}
	c := *a
	return &c, nil
}

func (r *stubAssetRepo) FindByAccountEmail(_ context.Context, email string) (*domain.ProfileAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, a := range r.assets {
		if a.AccountEmail == email {
			c := *a
			return &c, nil
		}
	}
	return nil, domain.ErrAssetNotFound
}

func (r *stubAssetRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.assets, id)
	return nil
}

func (r *stubAssetRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.assets)
}

type fakeStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	types     map[string]string
	putErr    error
	deleteErr error
	existsErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (s *fakeStore) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	if s.putErr != nil {
		return s.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = b
	s.types[key] = contentType
	return nil
}

func (s *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok, nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) URL(_ context.Context, key string) (string, error) {
	return "https://bucket.s3.us-east-1.amazonaws.com/" + key, nil
}

func (s *fakeStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

func (s *fakeStore) drop(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

type stubHasher struct{}

func (stubHasher) Hash(plaintext string) (string, error) {
	return "hashed:" + plaintext, nil
}

func (stubHasher) Compare(hash, plaintext string) error {
	if hash != "hashed:"+plaintext {
		return errors.New("mismatch")
	}
	return nil
}

type publishedMessage struct {
	topic   string
	payload []byte
}

type stubPublisher struct {
	mu       sync.Mutex
	err      error
	messages []publishedMessage
}

func (p *stubPublisher) Publish(_ context.Context, topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, publishedMessage{topic: topic, payload: bytes.Clone(payload)})
	return nil
}

type stubObserver struct {
	mu              sync.Mutex
	operations      []string
	inconsistencies []string
}

func (o *stubObserver) Operation(name, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.operations = append(o.operations, name+":"+outcome)
}

func (o *stubObserver) Inconsistency(kind string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inconsistencies = append(o.inconsistencies, kind)
}

func (o *stubObserver) sawInconsistency(kind string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, k := range o.inconsistencies {
		if k == kind {
			return true
		}
	}
	return false
}

// clock is a settable time source shared by the services under test.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func pngBody(s string) io.Reader {
	return strings.NewReader("\x89PNG" + s)
}
