package models

import (
	"time"
)

// BulkOperationResult represents the result of a bulk operation
type BulkOperationResult struct {
	OperationID    string               `json:"operation_id"`              // Unique operation ID
	Operation      string               `json:"operation"`                 // e.g. "approve", "cancel"
	Status         string               `json:"status"`                    // Status: "completed", "failed", "partial"
	TotalItems     int                  `json:"total_items"`               // Total items to process
	ProcessedItems int                  `json:"processed_items"`           // Successfully processed items
	FailedItems    int                  `json:"failed_items"`              // Failed items
	Progress       float64              `json:"progress"`                  // Progress percentage (0-100)
	StartTime      time.Time            `json:"start_time"`                // Operation start time
	CompletionTime *time.Time           `json:"completion_time,omitempty"` // Operation completion time
	Errors         []BulkOperationError `json:"errors,omitempty"`          // List of errors encountered
	Items          []BulkOperationItem  `json:"items,omitempty"`           // Results per item
}

// BulkOperationError represents an error for a specific item in bulk operation
type BulkOperationError struct {
	ItemIndex int    `json:"item_index"` // Index of the item that failed
	ItemID    string `json:"item_id"`    // ID of the item that failed
	Kind      string `json:"kind"`       // Ledger error kind
	Error     string `json:"error"`      // Error message
}

// BulkOperationItem represents the result for a specific item
type BulkOperationItem struct {
	ItemIndex int     `json:"item_index"`      // Index of the item
	ItemID    string  `json:"item_id"`         // ID of the item
	Status    string  `json:"status"`          // Status: "success", "failed"
	Error     *string `json:"error,omitempty"` // Error message if failed
}

// Finish fills in progress, completion time and overall status
func (r *BulkOperationResult) Finish(now time.Time) {
	r.CompletionTime = &now
	if r.TotalItems > 0 {
		r.Progress = float64(r.ProcessedItems+r.FailedItems) / float64(r.TotalItems) * 100
	}
	switch {
	case r.FailedItems == 0:
		r.Status = "completed"
	case r.ProcessedItems == 0:
		r.Status = "failed"
	default:
		r.Status = "partial"
	}
}
