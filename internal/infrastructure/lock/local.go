package lock

import (
	"context"
	"sync"

	"github.com/kurochkinivan/onboarding_ai/internal/domain"
)

// Local serializes generation runs inside one process.
type Local struct {
	mu sync.Mutex
}

func NewLocal() *Local {
	return &Local{}
}

func (l *Local) Lock(_ context.Context) (func(), error) {
	if !l.mu.TryLock() {
		return nil, domain.ErrGenerationInProgress
	}

	var once sync.Once
	return func() { once.Do(l.mu.Unlock) }, nil
}
