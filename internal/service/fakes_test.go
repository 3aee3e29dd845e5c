package service

import (
	"context"
	"sync"
	"time"

	"github.com/nazirsaif/nexus-sub000/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes shared by the service tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[primitive.ObjectID]*model.User)}
	for _, u := range users {
		if u.ID == primitive.NilObjectID {
			u.ID = primitive.NewObjectID()
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) List(_ context.Context, role string, page, pageSize int) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.User
	for _, u := range r.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, id primitive.ObjectID, update bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil
	}
	if v, ok := update["emailVerified"].(bool); ok {
		u.EmailVerified = v
	}
	if v, ok := update["twoFactorEnabled"].(bool); ok {
		u.TwoFactorEnabled = v
	}
	return nil
}

func (r *fakeUserRepo) Credit(_ context.Context, id primitive.ObjectID, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.Balance += amount
	}
	return nil
}

func (r *fakeUserRepo) Debit(_ context.Context, id primitive.ObjectID, amount int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.Balance < amount {
		return false, nil
	}
	u.Balance -= amount
	return true, nil
}

func (r *fakeUserRepo) balance(id primitive.ObjectID) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u.Balance
	}
	return 0
}

type fakeMeetingRepo struct {
	mu       sync.Mutex
	meetings []*model.Meeting
}

func (r *fakeMeetingRepo) Create(_ context.Context, m *model.Meeting) (*model.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now()
	r.meetings = append(r.meetings, m)
	return m, nil
}

func (r *fakeMeetingRepo) FindByID(_ context.Context, id primitive.ObjectID) (*model.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.meetings {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (r *fakeMeetingRepo) FindForUser(_ context.Context, userID primitive.ObjectID, from, to *time.Time) ([]*model.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Meeting
	for _, m := range r.meetings {
		if !m.HasParticipant(userID) {
			continue
		}
		if from != nil && !m.EndTime.After(*from) {
			continue
		}
		if to != nil && !m.StartTime.Before(*to) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeMeetingRepo) FindOverlapping(_ context.Context, userID primitive.ObjectID, start, end time.Time, excludeID primitive.ObjectID) ([]*model.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Meeting
	for _, m := range r.meetings {
		if m.ID == excludeID || m.Status == model.MeetingCancelled {
			continue
		}
		if m.HasParticipant(userID) && m.Overlaps(start, end) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMeetingRepo) Update(_ context.Context, meeting *model.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.meetings {
		if m.ID == meeting.ID {
			r.meetings[i] = meeting
		}
	}
	return nil
}

func (r *fakeMeetingRepo) SetParticipantStatus(_ context.Context, meetingID, userID primitive.ObjectID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.meetings {
		if m.ID != meetingID {
			continue
		}
		for i := range m.Participants {
			if m.Participants[i].UserID == userID {
				m.Participants[i].Status = status
			}
		}
	}
	return nil
}

func (r *fakeMeetingRepo) SetStatus(_ context.Context, id primitive.ObjectID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.meetings {
		if m.ID == id {
			m.Status = status
		}
	}
	return nil
}

type fakeTxRepo struct {
	mu  sync.Mutex
	txs []*model.Transaction
}

func (r *fakeTxRepo) Create(_ context.Context, tx *model.Transaction) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx.ID = primitive.NewObjectID()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	r.txs = append(r.txs, tx)
	return tx, nil
}

func (r *fakeTxRepo) FindByID(_ context.Context, id primitive.ObjectID) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return nil, nil
}

func (r *fakeTxRepo) FindByPaymentIntent(_ context.Context, intentID string) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.txs {
		if tx.PaymentIntentID == intentID {
			return tx, nil
		}
	}
	return nil, nil
}

func (r *fakeTxRepo) FindForUser(_ context.Context, userID primitive.ObjectID, page, pageSize int) ([]*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Transaction
	for _, tx := range r.txs {
		if tx.UserID == userID || tx.CounterpartyID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *fakeTxRepo) FindSettleable(_ context.Context, cutoff time.Time) ([]*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Transaction
	for _, tx := range r.txs {
		if tx.Status == model.TxPending && tx.Gateway == model.GatewayInternal && !tx.CreatedAt.After(cutoff) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *fakeTxRepo) TransitionStatus(_ context.Context, id primitive.ObjectID, fromStatus, toStatus, failureReason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.txs {
		if tx.ID == id && tx.Status == fromStatus {
			tx.Status = toStatus
			tx.SettledAt = time.Now()
			if failureReason != "" {
				tx.FailureReason = failureReason
			}
			return true, nil
		}
	}
	return false, nil
}

type fakeRefreshRepo struct {
	mu     sync.Mutex
	tokens map[string]*model.RefreshToken // keyed by hash
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: make(map[string]*model.RefreshToken)}
}

func (r *fakeRefreshRepo) Create(_ context.Context, token *model.RefreshToken) (*model.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = primitive.NewObjectID()
	token.CreatedAt = time.Now()
	r.tokens[token.TokenHash] = token
	return token, nil
}

func (r *fakeRefreshRepo) FindByHash(_ context.Context, hash string) (*model.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tokens[hash], nil
}

func (r *fakeRefreshRepo) MarkRotated(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.ID == id {
			t.Rotated = true
			t.Revoked = true
		}
	}
	return nil
}

func (r *fakeRefreshRepo) Revoke(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.ID == id {
			t.Revoked = true
		}
	}
	return nil
}

func (r *fakeRefreshRepo) RevokeFamily(_ context.Context, familyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.FamilyID == familyID {
			t.Revoked = true
		}
	}
	return nil
}

func (r *fakeRefreshRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for hash, t := range r.tokens {
		if t.ExpiresAt.Before(before) {
			delete(r.tokens, hash)
			n++
		}
	}
	return n, nil
}

type fakeOTPRepo struct {
	mu         sync.Mutex
	challenges map[primitive.ObjectID]*model.OTPChallenge
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{challenges: make(map[primitive.ObjectID]*model.OTPChallenge)}
}

func (r *fakeOTPRepo) Create(_ context.Context, challenge *model.OTPChallenge) (*model.OTPChallenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	challenge.ID = primitive.NewObjectID()
	challenge.CreatedAt = time.Now()
	r.challenges[challenge.ID] = challenge
	return challenge, nil
}

func (r *fakeOTPRepo) FindByID(_ context.Context, id primitive.ObjectID) (*model.OTPChallenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.challenges[id], nil
}

func (r *fakeOTPRepo) IncrementAttempts(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.challenges[id]; ok {
		c.Attempts++
	}
	return nil
}

func (r *fakeOTPRepo) ResetCode(_ context.Context, id primitive.ObjectID, codeHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.challenges[id]; ok {
		c.CodeHash = codeHash
		c.ExpiresAt = expiresAt
		c.Attempts = 0
	}
	return nil
}

func (r *fakeOTPRepo) Consume(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.challenges[id]; ok {
		c.Consumed = true
	}
	return nil
}

type fakeEmailTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*model.EmailToken
}

func newFakeEmailTokenRepo() *fakeEmailTokenRepo {
	return &fakeEmailTokenRepo{tokens: make(map[string]*model.EmailToken)}
}

func (r *fakeEmailTokenRepo) Create(_ context.Context, token *model.EmailToken) (*model.EmailToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = primitive.NewObjectID()
	r.tokens[token.Token] = token
	return token, nil
}

func (r *fakeEmailTokenRepo) FindByToken(_ context.Context, token string) (*model.EmailToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tokens[token], nil
}

func (r *fakeEmailTokenRepo) MarkUsed(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.ID == id {
			t.Used = true
		}
	}
	return nil
}
