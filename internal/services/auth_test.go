package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/everyskill/everyskill-backend/internal/logger"
	"github.com/everyskill/everyskill-backend/internal/requestdata"
	"github.com/everyskill/everyskill-backend/internal/types"
)

type fakeTenantRepo struct {
	tenants map[string]*types.Tenant // by slug
}

func newFakeTenantRepo() *fakeTenantRepo {
	return &fakeTenantRepo{tenants: make(map[string]*types.Tenant)}
}

func (f *fakeTenantRepo) Create(ctx context.Context, tx *gorm.DB, tenants []*types.Tenant) ([]*types.Tenant, error) {
	for _, t := range tenants {
		cp := *t
		f.tenants[t.Slug] = &cp
	}
	return tenants, nil
}

func (f *fakeTenantRepo) GetByID(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) (*types.Tenant, error) {
	for _, t := range f.tenants {
		if t.ID == tenantID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTenantRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Tenant, error) {
	t, ok := f.tenants[slug]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*types.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
	for _, u := range users {
		cp := *u
		f.users[u.ID] = &cp
	}
	return users, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, tx, email)
	return err == nil, nil
}

type fakeUserTokenRepo struct {
	tokens []*types.UserToken
}

func (f *fakeUserTokenRepo) Create(ctx context.Context, tx *gorm.DB, tokens []*types.UserToken) ([]*types.UserToken, error) {
	for _, t := range tokens {
		cp := *t
		f.tokens = append(f.tokens, &cp)
	}
	return tokens, nil
}

func (f *fakeUserTokenRepo) GetByAccessToken(ctx context.Context, tx *gorm.DB, accessToken string) (*types.UserToken, error) {
	for _, t := range f.tokens {
		if t.AccessToken == accessToken {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserTokenRepo) GetByRefreshToken(ctx context.Context, tx *gorm.DB, refreshToken string) (*types.UserToken, error) {
	for _, t := range f.tokens {
		if t.RefreshToken == refreshToken {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserTokenRepo) DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	kept := f.tokens[:0]
	for _, t := range f.tokens {
		if t.UserID != userID {
			kept = append(kept, t)
		}
	}
	f.tokens = kept
	return nil
}

type authFixture struct {
	service AuthService
	tenants *fakeTenantRepo
	users   *fakeUserRepo
	tokens  *fakeUserTokenRepo
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		tenants: newFakeTenantRepo(),
		users:   newFakeUserRepo(),
		tokens:  &fakeUserTokenRepo{},
	}
	f.service = NewAuthService(
		testDB(t), logger.NewNop(),
		f.tenants, f.users, f.tokens,
		"test-secret", time.Hour, 24*time.Hour,
	)
	return f
}

func registerInput() RegisterInput {
	return RegisterInput{
		TenantSlug: "acme",
		TenantName: "Acme Inc",
		Email:      "Dev@Acme.COM",
		Password:   "hunter2!",
		FirstName:  "Dev",
		LastName:   "Eloper",
	}
}

func TestRegisterCreatesTenantOnFirstUser(t *testing.T) {
	f := newAuthFixture(t)

	user, err := f.service.RegisterUser(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if user.Email != "dev@acme.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	tenant, err := f.tenants.GetBySlug(context.Background(), nil, "acme")
	if err != nil {
		t.Fatal("tenant not created on first register")
	}
	if user.TenantID != tenant.ID {
		t.Fatal("user not attached to new tenant")
	}

	// Second user in the same tenant reuses it.
	in := registerInput()
	in.Email = "two@acme.com"
	user2, err := f.service.RegisterUser(context.Background(), in)
	if err != nil {
		t.Fatalf("second RegisterUser: %v", err)
	}
	if user2.TenantID != tenant.ID {
		t.Fatal("second user must join the existing tenant")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	if _, err := f.service.RegisterUser(context.Background(), registerInput()); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if _, err := f.service.RegisterUser(context.Background(), registerInput()); err == nil {
		t.Fatal("duplicate email must fail")
	}
}

func TestLoginAndTokenRoundTrip(t *testing.T) {
	f := newAuthFixture(t)
	user, err := f.service.RegisterUser(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}

	access, refresh, err := f.service.LoginUser(context.Background(), "dev@acme.com", "hunter2!")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("empty tokens")
	}

	ctx, err := f.service.SetContextFromToken(context.Background(), access)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID != user.ID || rd.TenantID != user.TenantID {
		t.Fatalf("request data = %+v", rd)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	if _, err := f.service.RegisterUser(context.Background(), registerInput()); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if _, _, err := f.service.LoginUser(context.Background(), "dev@acme.com", "wrong"); err == nil {
		t.Fatal("wrong password must fail login")
	}
}

func TestSetContextFromTokenRejectsForgedToken(t *testing.T) {
	f := newAuthFixture(t)
	if _, err := f.service.SetContextFromToken(context.Background(), "not.a.jwt"); err == nil {
		t.Fatal("garbage token must be rejected")
	}

	// A token signed with a different secret must not verify.
	other := newAuthFixtureWithSecret(t, "other-secret")
	if _, err := other.service.RegisterUser(context.Background(), registerInput()); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	access, _, err := other.service.LoginUser(context.Background(), "dev@acme.com", "hunter2!")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if _, err := f.service.SetContextFromToken(context.Background(), access); err == nil {
		t.Fatal("token signed with another secret must be rejected")
	}
}

func newAuthFixtureWithSecret(t *testing.T, secret string) *authFixture {
	t.Helper()
	f := &authFixture{
		tenants: newFakeTenantRepo(),
		users:   newFakeUserRepo(),
		tokens:  &fakeUserTokenRepo{},
	}
	f.service = NewAuthService(
		testDB(t), logger.NewNop(),
		f.tenants, f.users, f.tokens,
		secret, time.Hour, 24*time.Hour,
	)
	return f
}

func TestRefreshRotatesTokens(t *testing.T) {
	f := newAuthFixture(t)
	if _, err := f.service.RegisterUser(context.Background(), registerInput()); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	_, refresh, err := f.service.LoginUser(context.Background(), "dev@acme.com", "hunter2!")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}

	access2, refresh2, err := f.service.RefreshUser(context.Background(), refresh)
	if err != nil {
		t.Fatalf("RefreshUser: %v", err)
	}
	if refresh2 == refresh {
		t.Fatal("refresh token must rotate")
	}
	if access2 == "" {
		t.Fatal("empty rotated access token")
	}

	// The old refresh token is burned.
	if _, _, err := f.service.RefreshUser(context.Background(), refresh); err == nil {
		t.Fatal("spent refresh token must be rejected")
	}
}

func TestLogoutDeletesTokens(t *testing.T) {
	f := newAuthFixture(t)
	user, err := f.service.RegisterUser(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if _, _, err := f.service.LoginUser(context.Background(), "dev@acme.com", "hunter2!"); err != nil {
		t.Fatalf("LoginUser: %v", err)
	}

	ctx := authedCtx(user.TenantID, user.ID)
	if err := f.service.LogoutUser(ctx); err != nil {
		t.Fatalf("LogoutUser: %v", err)
	}
	if len(f.tokens.tokens) != 0 {
		t.Fatalf("tokens remain after logout: %d", len(f.tokens.tokens))
	}
}
