package monitor

import "time"

type Status struct {
	StorageDriver string    `json:"storage_driver"`
	Storage       bool      `json:"storage"`
	RedisEnabled  bool      `json:"redis_enabled"`
	Redis         bool      `json:"redis"`
	LastCheck     time.Time `json:"last_check"`
}

// Healthy reports whether every enabled dependency responded.
func (s Status) Healthy() bool {
	if !s.Storage {
		return false
	}
	if s.RedisEnabled && !s.Redis {
		return false
	}
	return true
}
