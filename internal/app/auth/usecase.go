package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"turfcontrol/internal/app/ports"
)

const (
	CredentialStatusActive = "active"
)

var (
	ErrInvalidRequest     = errors.New("invalid auth request")
	ErrInvalidCredentials = errors.New("invalid player credentials")
)

type RegisterRequest struct{}

type RegisterResponse struct {
	PlayerID  string `json:"player_id"`
	PlayerKey string `json:"player_key"`
	IssuedAt  string `json:"issued_at"`
}

type VerifyRequest struct {
	PlayerID  string
	PlayerKey string
}

type RegisterUseCase struct {
	Credentials ports.PlayerCredentialRepository
	TxManager   ports.TxManager
	Now         func() time.Time
}

type VerifyUseCase struct {
	Credentials ports.PlayerCredentialRepository
}

// Execute issues a new player id and key. Only the salted hash of the key is
// stored; the plain key is returned once.
func (u RegisterUseCase) Execute(ctx context.Context, _ RegisterRequest) (RegisterResponse, error) {
	if u.Credentials == nil || u.TxManager == nil {
		return RegisterResponse{}, ErrInvalidRequest
	}
	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	now := nowFn().UTC()

	for i := 0; i < 3; i++ {
		playerID, err := newPlayerID(now)
		if err != nil {
			return RegisterResponse{}, err
		}
		playerKey, err := randomToken(32)
		if err != nil {
			return RegisterResponse{}, err
		}
		salt, err := randomBytes(16)
		if err != nil {
			return RegisterResponse{}, err
		}
		hash := credentialHash(salt, playerKey)

		err = u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
			return u.Credentials.Create(txCtx, ports.PlayerCredentialRecord{
				PlayerID:  playerID,
				KeySalt:   salt,
				KeyHash:   hash,
				Status:    CredentialStatusActive,
				CreatedAt: now,
			})
		})
		if errors.Is(err, ports.ErrConflict) {
			continue
		}
		if err != nil {
			return RegisterResponse{}, err
		}
		return RegisterResponse{
			PlayerID:  playerID,
			PlayerKey: playerKey,
			IssuedAt:  now.Format(time.RFC3339),
		}, nil
	}

	return RegisterResponse{}, ports.ErrConflict
}

func (u VerifyUseCase) Execute(ctx context.Context, req VerifyRequest) error {
	req.PlayerID = strings.TrimSpace(req.PlayerID)
	req.PlayerKey = strings.TrimSpace(req.PlayerKey)
	if req.PlayerID == "" || req.PlayerKey == "" || u.Credentials == nil {
		return ErrInvalidRequest
	}

	cred, err := u.Credentials.GetByPlayerID(ctx, req.PlayerID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if cred.Status != CredentialStatusActive {
		return ErrInvalidCredentials
	}

	got := credentialHash(cred.KeySalt, req.PlayerKey)
	if subtle.ConstantTimeCompare(got, cred.KeyHash) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

func credentialHash(salt []byte, key string) []byte {
	b := make([]byte, 0, len(salt)+len(key))
	b = append(b, salt...)
	b = append(b, key...)
	sum := sha256.Sum256(b)
	return sum[:]
}

func newPlayerID(now time.Time) (string, error) {
	randPart, err := randomToken(9)
	if err != nil {
		return "", err
	}
	return "plr_" + now.Format("20060102") + "_" + randPart, nil
}

func randomToken(n int) (string, error) {
	b, err := randomBytes(n)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
