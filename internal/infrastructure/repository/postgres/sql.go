package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
	"github.com/riskibarqy/fitcoach-api/internal/usecase"
)

// classify marks connectivity failures as dependency outages so callers can
// tell them apart from statement errors.
func classify(err error) error {
	if isConnectivityError(err) {
		return fmt.Errorf("%w: %w", usecase.ErrDependencyUnavailable, err)
	}
	return err
}

func isConnectivityError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Class 08: connection exception, 57P: operator intervention.
		class := pqErr.Code.Class()
		return class == "08" || (class == "57" && pqErr.Code != "57014")
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
