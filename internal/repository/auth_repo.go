package repository

import (
	"errors"
	"fmt"
	"sync"

	"wrcheck/internal/models"
)

var ErrUserExists = errors.New("username already taken")

type OperatorMemory struct {
	mu     sync.RWMutex
	nextID int
	byName map[string]models.Operator
}

func NewOperatorMemory() *OperatorMemory {
	return &OperatorMemory{byName: make(map[string]models.Operator)}
}

// Ensure implementation of Authorization interface at compile time.
var _ Authorization = (*OperatorMemory)(nil)

// Create stores a new operator and returns its ID.
func (r *OperatorMemory) Create(username, passwordHash string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[username]; ok {
		return 0, fmt.Errorf("insert operator %q: %w", username, ErrUserExists)
	}
	r.nextID++
	r.byName[username] = models.Operator{ID: r.nextID, Username: username, PasswordHash: passwordHash}
	return r.nextID, nil
}

// GetByUsername fetches an operator by username. Returns (nil, nil) if not found.
func (r *OperatorMemory) GetByUsername(username string) (*models.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byName[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
