package service

import (
	"sync"

	"github.com/ridershield/ridershield/internal/domain/model"
)

// profileStore holds the rider profile. It is replaced wholesale, never
// edited field by field.
type profileStore struct {
	mu      sync.RWMutex
	profile model.RiderProfile
}

func (p *profileStore) Profile() model.RiderProfile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.profile
}

func (p *profileStore) Replace(profile model.RiderProfile) { //nolint:gocritic // hugeParam: stored by value
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profile = profile
}
