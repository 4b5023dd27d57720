package domain

import "time"

// MaxReportDetailsLength bounds the free-text details of a report
const MaxReportDetailsLength = 2000

// ReportReason why something was reported
type ReportReason string

const (
	ReportReasonInappropriate ReportReason = "inappropriate"
	ReportReasonSpam          ReportReason = "spam"
	ReportReasonScam          ReportReason = "scam"
	ReportReasonHarassment    ReportReason = "harassment"
	ReportReasonOther         ReportReason = "other"
)

func (r ReportReason) IsValid() bool {
	switch r {
	case ReportReasonInappropriate, ReportReasonSpam, ReportReasonScam, ReportReasonHarassment, ReportReasonOther:
		return true
	}
	return false
}

// ReportStatus moderation state. Only "open" is ever written by this service.
type ReportStatus string

const (
	ReportStatusOpen     ReportStatus = "open"
	ReportStatusReview   ReportStatus = "review"
	ReportStatusResolved ReportStatus = "resolved"
)

func (s ReportStatus) IsValid() bool {
	return s == ReportStatusOpen || s == ReportStatusReview || s == ReportStatusResolved
}

// Report targets exactly one of a user, a listing or a message
type Report struct {
	ID           uint64       `gorm:"primaryKey" json:"id"`
	ReporterID   uint64       `gorm:"column:reporter_id;not null;index" json:"reporter_id"`
	TargetUserID *uint64      `gorm:"column:target_user_id;index" json:"target_user_id,omitempty"`
	ListingID    *uint64      `gorm:"column:listing_id;index" json:"listing_id,omitempty"`
	MessageID    *uint64      `gorm:"column:message_id;index" json:"message_id,omitempty"`
	Reason       ReportReason `gorm:"column:reason;size:20;not null" json:"reason"`
	Details      string       `gorm:"column:details;type:text" json:"details"`
	Status       ReportStatus `gorm:"column:status;size:20;default:open;index" json:"status"`
	CreatedAt    time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Report) TableName() string {
	return "reports"
}

// TargetCount returns how many target fields are set
func (r *Report) TargetCount() int {
	n := 0
	for _, p := range []*uint64{r.TargetUserID, r.ListingID, r.MessageID} {
		if p != nil {
			n++
		}
	}
	return n
}

// TargetType returns "user", "listing" or "message"
func (r *Report) TargetType() string {
	switch {
	case r.TargetUserID != nil:
		return "user"
	case r.ListingID != nil:
		return "listing"
	case r.MessageID != nil:
		return "message"
	}
	return ""
}

// SubmitReportRequest report form. Exactly one target id must be set.
type SubmitReportRequest struct {
	TargetUserID *uint64      `json:"target_user_id"`
	ListingID    *uint64      `json:"listing_id"`
	MessageID    *uint64      `json:"message_id"`
	Reason       ReportReason `json:"reason" binding:"required,enum"`
	Details      string       `json:"details" binding:"max=2000"`
}

// ReportResponse report as returned to the reporter or an admin
type ReportResponse struct {
	ID           uint64       `json:"id"`
	ReporterID   uint64       `json:"reporter_id"`
	TargetType   string       `json:"target_type"`
	TargetUserID *uint64      `json:"target_user_id,omitempty"`
	ListingID    *uint64      `json:"listing_id,omitempty"`
	MessageID    *uint64      `json:"message_id,omitempty"`
	Reason       ReportReason `json:"reason"`
	Details      string       `json:"details"`
	Status       ReportStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
}

// ToResponse converts Report to ReportResponse
func (r *Report) ToResponse() *ReportResponse {
	return &ReportResponse{
		ID:           r.ID,
		ReporterID:   r.ReporterID,
		TargetType:   r.TargetType(),
		TargetUserID: r.TargetUserID,
		ListingID:    r.ListingID,
		MessageID:    r.MessageID,
		Reason:       r.Reason,
		Details:      r.Details,
		Status:       r.Status,
		CreatedAt:    r.CreatedAt,
	}
}
