package quota

import (
	"errors"

	"github.com/google/uuid"
)

// ErrQuotaExceeded is returned when a tenant has exhausted a quota limit.
var ErrQuotaExceeded = errors.New("quota exceeded")

func mustParseTenantID(tenantID string) uuid.UUID {
	id, err := uuid.Parse(tenantID)
	if err != nil {
		return uuid.Nil
	}
	return id
}
