package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoolForConcurrency(t *testing.T) {
	tests := []struct {
		name        string
		concurrency int
		maxOpen     int
	}{
		{"floor applies to small fan-out", 4, 20},
		{"zero treated as one worker", 0, 20},
		{"wide fan-out doubles", 16, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := PoolForConcurrency(tt.concurrency)
			assert.Equal(t, tt.maxOpen, pool.MaxOpenConns)
			assert.Equal(t, 5, pool.MaxIdleConns)
			assert.Equal(t, time.Hour, pool.ConnMaxLifetime)
		})
	}
}
