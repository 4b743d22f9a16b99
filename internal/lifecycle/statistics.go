package lifecycle

import (
	"strings"

	"github.com/julianstephens/tracklit/internal/models"
)

// GetStatistics reconciles userID and returns its counters. A user without
// any recorded activity gets a zeroed record dated today.
func (e *Engine) GetStatistics(userID string) (models.UserStatistics, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.UserStatistics{}, invalidInput(entityStatistics, "", "user_id is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	now, today := e.now()

	e.reconcile(now, today, []string{userID})
	return *e.store.statsFor(userID), nil
}
