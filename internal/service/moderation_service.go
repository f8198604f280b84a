package service

import (
	"UniMarket/internal/api/dto"
	"UniMarket/internal/pkg/consts"
	"UniMarket/internal/pkg/util"
	"UniMarket/internal/repository"
	"context"
	log "log/slog"
)

const (
	reviewActionApprove = "approve"
	reviewActionReject  = "reject"
)

// ModerationService 商品审核流水线
type ModerationService interface {
	ListPendingReview(ctx context.Context, page, size int) (*dto.PageResult, error)
	ListAll(ctx context.Context, query *dto.ModerationQueryDTO) (*dto.PageResult, error)
	Decide(ctx context.Context, reviewerID uint64, listingID uint64, req *dto.ReviewDecisionDTO) error
	Reopen(ctx context.Context, listingID uint64) error
	StatusBreakdown(ctx context.Context) ([]*dto.ApprovalCountDTO, error)
}

type moderationServiceImpl struct {
	listingRepo repository.ListingRepo
}

func NewModerationService(listingRepo repository.ListingRepo) ModerationService {
	return &moderationServiceImpl{listingRepo: listingRepo}
}

// ListPendingReview 待审核队列，先提交先审
func (s *moderationServiceImpl) ListPendingReview(ctx context.Context, page, size int) (*dto.PageResult, error) {
	page, size = normalizePage(page, size)

	listings, total, err := s.listingRepo.ListPendingReview(ctx, page, size)
	if err != nil {
		log.ErrorContext(ctx, "list pending review error", "err", err)
		return nil, UnExpectedError
	}

	list := make([]*dto.ListingDTO, 0, len(listings))
	for _, l := range listings {
		list = append(list, toListingDTO(l))
	}
	return dto.NewPageResult(list, total, page, size), nil
}

// ListAll 管理端全量视图，不做审核与可见性过滤
func (s *moderationServiceImpl) ListAll(ctx context.Context, query *dto.ModerationQueryDTO) (*dto.PageResult, error) {
	page, size := normalizePage(query.Page, query.Size)

	filter := &repository.ListingFilter{
		IncludeHidden:  true,
		ApprovalStatus: query.ApprovalStatus,
		Status:         query.Status,
		Category:       query.Category,
		Page:           page,
		Size:           size,
	}

	listings, total, err := s.listingRepo.QueryListings(ctx, filter)
	if err != nil {
		log.ErrorContext(ctx, "list all listings error", "err", err)
		return nil, UnExpectedError
	}

	list := make([]*dto.ListingDTO, 0, len(listings))
	for _, l := range listings {
		list = append(list, toListingDTO(l))
	}
	return dto.NewPageResult(list, total, page, size), nil
}

// StatusBreakdown 全量商品按审核状态分布，每次调用实时统计
func (s *moderationServiceImpl) StatusBreakdown(ctx context.Context) ([]*dto.ApprovalCountDTO, error) {
	breakdown, err := s.listingRepo.GetApprovalBreakdown(ctx)
	if err != nil {
		log.ErrorContext(ctx, "get approval breakdown error", "err", err)
		return nil, UnExpectedError
	}

	result := make([]*dto.ApprovalCountDTO, 0, len(breakdown))
	for _, b := range breakdown {
		result = append(result, &dto.ApprovalCountDTO{
			ApprovalStatus: b.ApprovalStatus,
			Count:          b.Count,
		})
	}
	return result, nil
}

// Decide 审核裁决
// 只有 pending 状态可以裁决，并发裁决由 WHERE 条件保证只生效一次，
// 落空即返回冲突，不允许覆盖已有结论。
func (s *moderationServiceImpl) Decide(ctx context.Context, reviewerID uint64, listingID uint64, req *dto.ReviewDecisionDTO) error {
	if err := util.ValidateDTO(req); err != nil {
		return ErrParamInvalid
	}

	var decision string
	switch req.Action {
	case reviewActionApprove:
		decision = consts.ApprovalApproved
	case reviewActionReject:
		if req.Reason == "" {
			return ErrReasonRequired
		}
		decision = consts.ApprovalRejected
	default:
		return ErrActionInvalid
	}

	listing, err := s.listingRepo.GetListing(ctx, listingID)
	if err != nil {
		log.ErrorContext(ctx, "get listing error", "id", listingID, "err", err)
		return UnExpectedError
	}
	if listing == nil {
		return ErrListingNotFound
	}

	ok, err := s.listingRepo.DecideApproval(ctx, listingID, decision, reviewerID, req.Reason)
	if err != nil {
		log.ErrorContext(ctx, "decide approval error", "id", listingID, "err", err)
		return UnExpectedError
	}
	if !ok {
		return ErrReviewFinished
	}

	log.InfoContext(ctx, "listing review decided",
		"listing_id", listingID,
		"reviewer_id", reviewerID,
		"decision", decision)
	return nil
}

// Reopen 把已裁决的商品重新放回待审核队列
func (s *moderationServiceImpl) Reopen(ctx context.Context, listingID uint64) error {
	listing, err := s.listingRepo.GetListing(ctx, listingID)
	if err != nil {
		log.ErrorContext(ctx, "get listing error", "id", listingID, "err", err)
		return UnExpectedError
	}
	if listing == nil {
		return ErrListingNotFound
	}

	ok, err := s.listingRepo.ReopenApproval(ctx, listingID)
	if err != nil {
		log.ErrorContext(ctx, "reopen approval error", "id", listingID, "err", err)
		return UnExpectedError
	}
	if !ok {
		return ErrAlreadyPending
	}

	log.InfoContext(ctx, "listing review reopened", "listing_id", listingID)
	return nil
}
