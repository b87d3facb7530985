package users_repositories

import (
	"errors"
	"sync"

	users_models "crmm/internal/features/users/models"
	"crmm/internal/storage"
)

// SecretKeyRepository reads the JWT signing secret seeded by the initial
// migration. The secret never changes at runtime, so it is read once.
type SecretKeyRepository struct {
	mu     sync.Mutex
	secret string
}

func (r *SecretKeyRepository) GetSecretKey() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.secret != "" {
		return r.secret, nil
	}

	var secretKey users_models.SecretKey
	if err := storage.GetDb().First(&secretKey).Error; err != nil {
		return "", err
	}

	if secretKey.Secret == "" {
		return "", errors.New("secret key is empty")
	}

	r.secret = secretKey.Secret

	return r.secret, nil
}
