package postgresadapter

import (
	"time"

	"unionhub/contexts/identity-access/session-service/ports"
)

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

var _ ports.Clock = SystemClock{}
