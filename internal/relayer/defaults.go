package relayer

import "time"

const (
	defaultWorkerCount = 8
	defaultBatchSize   = 500
	defaultMaxLookback = 1000

	sleepDuration     = 5 * time.Second
	longSleepDuration = 30 * time.Second

	submitKindHeader      = "header"
	submitKindTransaction = "transaction"
)
