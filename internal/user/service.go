package user

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// bcrypt only looks at the first 72 bytes and refuses anything longer.
const maxPasswordBytes = 72

// AvatarPicker supplies the default profile picture for new users.
type AvatarPicker interface {
	PickDefault(ctx context.Context) (string, error)
}

type Service struct {
	store  Store
	hasher Hasher
	avatar AvatarPicker
	log    *zap.Logger

	// hash compared against on unknown identifiers so login takes the same
	// time whether or not the user exists
	dummyHash func() string
}

func NewService(store Store, hasher Hasher, avatar AvatarPicker, log *zap.Logger) *Service {
	s := &Service{
		store:  store,
		hasher: hasher,
		avatar: avatar,
		log:    log,
	}
	s.dummyHash = sync.OnceValue(func() string {
		h, err := hasher.Hash(context.Background(), "dummy-password-for-timing")
		if err != nil {
			log.Error("dummy hash", zap.Error(err))
		}
		return h
	})
	return s
}

// Signup creates the user. Nothing is persisted unless every step before
// the insert succeeded, including the avatar fetch.
func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*MessageResponse, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" ||
		strings.TrimSpace(req.Contact) == "" || strings.TrimSpace(req.ContactType) == "" {
		return nil, ErrInvalidInput
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, ErrInvalidInput
	}

	hashedPwd, err := s.hasher.Hash(ctx, req.Password)
	if err != nil {
		s.log.Error("hash password", zap.Error(err))
		return nil, ErrInternal
	}

	pic, err := s.avatar.PickDefault(ctx)
	if err != nil {
		s.log.Warn("pick default avatar", zap.String("username", req.Username), zap.Error(err))
		return nil, ErrExternalUnavailable
	}

	u := &User{
		Username:       req.Username,
		Password:       hashedPwd,
		Contact:        req.Contact,
		ContactType:    req.ContactType,
		ProfilePicture: &pic,
	}

	if _, err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			return nil, ErrUsernameTaken
		}
		s.log.Error("create user", zap.String("username", req.Username), zap.Error(err))
		return nil, ErrInternal
	}

	s.log.Info("user created", zap.String("username", u.Username))
	return &MessageResponse{Message: "User created successfully"}, nil
}

// Login checks the password of the user whose username or contact equals
// the identifier. Unknown users and wrong passwords are reported the same way.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*MessageResponse, error) {
	u, err := s.store.FindByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_, _ = s.hasher.Verify(ctx, req.Password, s.dummyHash())
			return nil, ErrInvalidCredentials
		}
		s.log.Error("find user", zap.Error(err))
		return nil, ErrInternal
	}

	ok, err := s.hasher.Verify(ctx, req.Password, u.Password)
	if err != nil {
		s.log.Error("verify password", zap.Error(err))
		return nil, ErrInternal
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return &MessageResponse{Message: "Login successful"}, nil
}

// GetAvatar returns the stored profile picture, which may be nil.
func (s *Service) GetAvatar(ctx context.Context, username string) (*string, error) {
	u, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.log.Error("find user", zap.String("username", username), zap.Error(err))
		return nil, ErrInternal
	}
	return u.ProfilePicture, nil
}
