package downdetect

import (
	"fmt"

	"crmm/internal/features/search"
	"crmm/internal/storage"
	cache_utils "crmm/internal/util/cache"
)

type DowndetectService struct {
	searchRepository *search.SearchRepository
}

func (s *DowndetectService) IsAvailable() error {
	if err := storage.GetDb().Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database check failed: %w", err)
	}

	if err := s.testCacheConnection(); err != nil {
		return fmt.Errorf("cache check failed: %w", err)
	}

	if err := s.searchRepository.TestOpenSearchConnection(); err != nil {
		return fmt.Errorf("OpenSearch check failed: %w", err)
	}

	return nil
}

func (s *DowndetectService) testCacheConnection() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cache connection test panicked: %v", r)
		}
	}()

	cache_utils.TestCacheConnection()
	return nil
}
