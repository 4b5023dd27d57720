package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/titanmarket/titanmarket-backend/internal/common"
	"github.com/titanmarket/titanmarket-backend/internal/domain"
	"github.com/titanmarket/titanmarket-backend/internal/repository"
	pkglogger "github.com/titanmarket/titanmarket-backend/pkg/logger"
)

// ReportService report business logic. Reports are write-once here; moderation
// happens outside this service, so there is no status update.
type ReportService interface {
	Submit(ctx context.Context, reporterID uint64, req *domain.SubmitReportRequest) (*domain.ReportResponse, error)
	ListMine(ctx context.Context, reporterID uint64, page, limit int) ([]*domain.ReportResponse, *common.Meta, error)
	AdminList(ctx context.Context, status *domain.ReportStatus, page, limit int) ([]*domain.ReportResponse, *common.Meta, error)
}

type reportService struct {
	reportRepo  repository.ReportRepository
	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository
	msgRepo     repository.MessageRepository
	convRepo    repository.ConversationRepository
}

// NewReportService creates a new ReportService
func NewReportService(
	reportRepo repository.ReportRepository,
	userRepo repository.UserRepository,
	listingRepo repository.ListingRepository,
	msgRepo repository.MessageRepository,
	convRepo repository.ConversationRepository,
) ReportService {
	return &reportService{
		reportRepo:  reportRepo,
		userRepo:    userRepo,
		listingRepo: listingRepo,
		msgRepo:     msgRepo,
		convRepo:    convRepo,
	}
}

// Submit stores a report against exactly one user, listing or message
func (s *reportService) Submit(ctx context.Context, reporterID uint64, req *domain.SubmitReportRequest) (*domain.ReportResponse, error) {
	report := &domain.Report{
		ReporterID:   reporterID,
		TargetUserID: req.TargetUserID,
		ListingID:    req.ListingID,
		MessageID:    req.MessageID,
		Reason:       req.Reason,
		Details:      strings.TrimSpace(req.Details),
		Status:       domain.ReportStatusOpen,
	}
	if report.TargetCount() != 1 {
		return nil, common.ErrReportTarget
	}
	if !report.Reason.IsValid() {
		return nil, invalidInput("unknown reason %q", report.Reason)
	}
	if utf8.RuneCountInString(report.Details) > domain.MaxReportDetailsLength {
		return nil, invalidInput("details exceed %d characters", domain.MaxReportDetailsLength)
	}
	if err := s.checkTarget(ctx, report); err != nil {
		return nil, err
	}

	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}

	pkglogger.GetLogger().Info().
		Uint64("report_id", report.ID).
		Str("target_type", report.TargetType()).
		Str("reason", string(report.Reason)).
		Msg("report submitted")
	return report.ToResponse(), nil
}

// checkTarget verifies the target exists and is not the reporter's own
func (s *reportService) checkTarget(ctx context.Context, r *domain.Report) error {
	switch {
	case r.TargetUserID != nil:
		if *r.TargetUserID == r.ReporterID {
			return common.ErrReportTargetSelf
		}
		user, err := s.userRepo.FindByID(ctx, *r.TargetUserID)
		if err != nil {
			return err
		}
		if user == nil {
			return common.ErrUserNotFound
		}

	case r.ListingID != nil:
		listing, err := s.listingRepo.FindByID(ctx, *r.ListingID)
		if err != nil {
			return err
		}
		if listing == nil {
			return common.ErrListingNotFound
		}
		if listing.SellerID == r.ReporterID {
			return common.ErrReportTargetSelf
		}

	case r.MessageID != nil:
		msg, err := s.msgRepo.FindByID(ctx, *r.MessageID)
		if err != nil {
			return err
		}
		if msg == nil {
			return common.ErrNotFound
		}
		if msg.SenderID == r.ReporterID {
			return common.ErrReportTargetSelf
		}
		// only messages the reporter could read are reportable
		conv, err := s.convRepo.FindByID(ctx, msg.ConversationID)
		if err != nil {
			return err
		}
		if conv == nil || !conv.IsParticipant(r.ReporterID) {
			return common.ErrNotFound
		}
	}
	return nil
}

func (s *reportService) ListMine(ctx context.Context, reporterID uint64, page, limit int) ([]*domain.ReportResponse, *common.Meta, error) {
	page, limit = pageDefaults(page, limit)
	reports, total, err := s.reportRepo.ListByReporter(ctx, reporterID, page, limit)
	if err != nil {
		return nil, nil, err
	}
	return toReportResponses(reports), common.NewMeta(page, limit, total), nil
}

// AdminList lists reports for moderators, optionally filtered by status
func (s *reportService) AdminList(ctx context.Context, status *domain.ReportStatus, page, limit int) ([]*domain.ReportResponse, *common.Meta, error) {
	if status != nil && !status.IsValid() {
		return nil, nil, invalidInput("unknown status %q", *status)
	}
	page, limit = pageDefaults(page, limit)
	reports, total, err := s.reportRepo.List(ctx, status, page, limit)
	if err != nil {
		return nil, nil, err
	}
	return toReportResponses(reports), common.NewMeta(page, limit, total), nil
}

func toReportResponses(reports []*domain.Report) []*domain.ReportResponse {
	resp := make([]*domain.ReportResponse, len(reports))
	for i, r := range reports {
		resp[i] = r.ToResponse()
	}
	return resp
}

func pageDefaults(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}
