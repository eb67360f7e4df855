package tinylog

import "github.com/coredump-systems/tinylog/internal/constants"

// Re-exported sizing defaults, for callers that want DefaultConfig's
// numbers without constructing a whole Config.
const (
	DefaultNumTasks           = constants.DefaultNumTasks
	DefaultNumTopics          = constants.DefaultNumTopics
	DefaultQueueCapacity      = constants.DefaultQueueCapacity
	DefaultCircularCapacity   = constants.DefaultCircularCapacity
	DefaultTransmitBufferSize = constants.DefaultTransmitBufferSize
	DefaultRefreshPeriod      = constants.DefaultRefreshPeriod
	FieldSeparator            = constants.FieldSeparator
	EndOfLine                 = constants.EndOfLine
)
