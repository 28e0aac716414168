// Package clock abstracts time so services stay deterministic under test.
package clock

import (
	"context"
	"time"
)

type Clock interface {
	Now(ctx context.Context) time.Time
}
