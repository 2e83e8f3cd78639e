package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// HealthStatus represents the health status of a service
type HealthStatus struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// SlotRequirements maps a lineup slot name (QB, FLEX, BN, ...) to its configured count
type SlotRequirements map[string]int

// Scan implements the sql.Scanner interface for JSONB
func (sr *SlotRequirements) Scan(value interface{}) error {
	if value == nil {
		*sr = make(SlotRequirements)
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into SlotRequirements", value)
	}

	var result map[string]int
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}

	*sr = SlotRequirements(result)
	return nil
}

// Value implements the driver.Valuer interface for JSONB
func (sr SlotRequirements) Value() (driver.Value, error) {
	if sr == nil {
		return nil, nil
	}
	return json.Marshal(sr)
}

// Total returns the sum of all configured counts
func (sr SlotRequirements) Total() int {
	total := 0
	for _, count := range sr {
		total += count
	}
	return total
}
