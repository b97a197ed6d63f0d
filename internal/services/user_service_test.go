package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/models"
	"eventhub/internal/verification"
)

type fakeUserRepo struct {
	nextID int
	users  map[int]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[int]*models.User{}}
}

func (r *fakeUserRepo) Create(u *models.User) error {
	u.ID = r.nextID
	r.nextID++
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsername(username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(u *models.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdateStatus(id int, status string) error {
	r.users[id].Status = status
	return nil
}

func (r *fakeUserRepo) MarkEmailVerified(email string) error {
	for _, u := range r.users {
		if u.Email == email {
			u.EmailVerified = true
		}
	}
	return nil
}

func (r *fakeUserRepo) Delete(id int) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(limit, offset int) ([]*models.User, error) {
	var res []*models.User
	for _, u := range r.users {
		cp := *u
		res = append(res, &cp)
	}
	return res, nil
}

func (r *fakeUserRepo) GetCount() (int, error) { return len(r.users), nil }

func newUserServiceForTest(t *testing.T) (UserService, *fakeUserRepo, *verification.Store) {
	t.Helper()
	repo := newFakeUserRepo()
	codes := verification.NewStore(time.Minute, 3, time.Minute)
	t.Cleanup(codes.Stop)
	// no email service in tests; sends are logged and skipped
	svc := NewUserService(repo, nil, NewAuthService(), codes)
	return svc, repo, codes
}

func TestRegisterNormalizesAndHashes(t *testing.T) {
	svc, repo, codes := newUserServiceForTest(t)

	user, err := svc.Register(&models.RegisterRequest{
		Username: "  Alice ",
		Email:    "Alice@Example.COM",
		Password: "hunter22",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "user", user.Role)
	assert.Equal(t, models.StatusActive, user.Status)
	assert.False(t, user.EmailVerified)
	assert.NotEqual(t, "hunter22", user.PasswordHash)
	assert.True(t, strings.Contains(user.PasswordHash, "."))

	stored, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.True(t, codes.HasValidCode("alice@example.com"), "registration issues a code")
}

func TestRegisterDuplicates(t *testing.T) {
	svc, _, _ := newUserServiceForTest(t)

	_, err := svc.Register(&models.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	_, err = svc.Register(&models.RegisterRequest{
		Username: "ALICE", Email: "other@example.com", Password: "hunter22",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Register(&models.RegisterRequest{
		Username: "bob", Email: "alice@example.com", Password: "hunter22",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestVerifyEmailLifecycle(t *testing.T) {
	svc, repo, codes := newUserServiceForTest(t)

	user, err := svc.Register(&models.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	// replace the random code with a known one
	codes.SetCode("alice@example.com", "123456")

	err = svc.VerifyEmail("alice@example.com", "000000")
	assert.ErrorIs(t, err, ErrCodeInvalid, "wrong code, entry still live")

	require.NoError(t, svc.VerifyEmail("Alice@Example.com", "123456"))
	stored, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified)

	err = svc.VerifyEmail("alice@example.com", "123456")
	assert.ErrorIs(t, err, ErrCodeExpired, "consumed code leaves no live entry")
}

func TestVerifyEmailNoCode(t *testing.T) {
	svc, _, _ := newUserServiceForTest(t)

	err := svc.VerifyEmail("ghost@example.com", "123456")
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestResendVerificationSilent(t *testing.T) {
	svc, repo, codes := newUserServiceForTest(t)

	// unknown address: no error, nothing stored
	require.NoError(t, svc.ResendVerification("ghost@example.com"))
	assert.False(t, codes.HasValidCode("ghost@example.com"))

	user, err := svc.Register(&models.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "hunter22",
	})
	require.NoError(t, err)
	codes.RemoveCode("alice@example.com")

	require.NoError(t, svc.ResendVerification("alice@example.com"))
	assert.True(t, codes.HasValidCode("alice@example.com"))

	// verified accounts are skipped
	require.NoError(t, repo.MarkEmailVerified("alice@example.com"))
	codes.RemoveCode("alice@example.com")
	require.NoError(t, svc.ResendVerification("alice@example.com"))
	assert.False(t, codes.HasValidCode("alice@example.com"))
	_ = user
}

func TestUpdateProfileEmailChangeResetsVerification(t *testing.T) {
	svc, repo, codes := newUserServiceForTest(t)

	user, err := svc.Register(&models.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "hunter22",
	})
	require.NoError(t, err)
	require.NoError(t, repo.MarkEmailVerified("alice@example.com"))

	updated, err := svc.UpdateProfile(user.ID, &models.UpdateProfileRequest{
		Email:       "new@example.com",
		CompanyName: "Acme",
	})
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, "Acme", updated.CompanyName)
	assert.False(t, updated.EmailVerified, "new address must be verified again")
	assert.True(t, codes.HasValidCode("new@example.com"))
	assert.False(t, codes.HasValidCode("alice@example.com"))
}
