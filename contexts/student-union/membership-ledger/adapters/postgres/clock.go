package postgresadapter

import (
	"time"

	"unionhub/contexts/student-union/membership-ledger/ports"
)

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

var _ ports.Clock = SystemClock{}
