package models

import "time"

// Snapshot is one CPU and memory reading taken by the monitoring loop.
// MemoryUsedBytes never exceeds MemoryTotalBytes.
type Snapshot struct {
	ID               int64     `json:"id"`
	CPUPercent       float64   `json:"cpu_percent"`
	MemoryUsedBytes  uint64    `json:"memory_used_bytes"`
	MemoryTotalBytes uint64    `json:"memory_total_bytes"`
	MemoryPercent    float64   `json:"memory_percent"`
	TakenAt          time.Time `json:"taken_at"`
}

func (s *Snapshot) MemoryUsedMB() uint64 {
	return s.MemoryUsedBytes / (1024 * 1024)
}
