package dto

import "github.com/spec-kit/complaint-service/internal/domain"

// StatusCountResponse one status bucket.
type StatusCountResponse struct {
	Status domain.ComplaintStatus `json:"status"`
	Count  int64                  `json:"count"`
}

// CategoryCountResponse one category bucket.
type CategoryCountResponse struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}
