package service

import (
	"UniMarket/internal/api/dto"
	"UniMarket/internal/model"
	"UniMarket/internal/pkg/consts"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingListing(id uint64) *model.Listing {
	return &model.Listing{
		ID:             id,
		SellerID:       7,
		ApprovalStatus: consts.ApprovalPending,
		Status:         consts.ListingStatusActive,
	}
}

func TestDecideApprove(t *testing.T) {
	repo := newFakeListingRepo()
	repo.listings[1] = pendingListing(1)
	svc := NewModerationService(repo)

	err := svc.Decide(context.Background(), 42, 1, &dto.ReviewDecisionDTO{Action: "approve"})
	require.NoError(t, err)

	assert.Equal(t, consts.ApprovalApproved, repo.lastDecision)
	assert.Equal(t, uint64(42), repo.lastReviewerID)
	assert.Equal(t, consts.ApprovalApproved, repo.listings[1].ApprovalStatus)
}

func TestDecideRejectRequiresReason(t *testing.T) {
	repo := newFakeListingRepo()
	repo.listings[1] = pendingListing(1)
	svc := NewModerationService(repo)

	err := svc.Decide(context.Background(), 42, 1, &dto.ReviewDecisionDTO{Action: "reject"})
	assert.ErrorIs(t, err, ErrReasonRequired)

	err = svc.Decide(context.Background(), 42, 1, &dto.ReviewDecisionDTO{Action: "reject", Reason: "含违禁内容"})
	require.NoError(t, err)
	assert.Equal(t, consts.ApprovalRejected, repo.lastDecision)
	assert.Equal(t, "含违禁内容", repo.lastReason)
}

func TestDecideInvalidAction(t *testing.T) {
	repo := newFakeListingRepo()
	repo.listings[1] = pendingListing(1)
	svc := NewModerationService(repo)

	err := svc.Decide(context.Background(), 42, 1, &dto.ReviewDecisionDTO{Action: "maybe"})
	assert.ErrorIs(t, err, ErrActionInvalid)
}

func TestDecideConflictOnDecidedListing(t *testing.T) {
	repo := newFakeListingRepo()
	repo.listings[1] = pendingListing(1)
	repo.decideOK = false
	svc := NewModerationService(repo)

	err := svc.Decide(context.Background(), 42, 1, &dto.ReviewDecisionDTO{Action: "approve"})
	assert.ErrorIs(t, err, ErrReviewFinished)
}

func TestDecideListingNotFound(t *testing.T) {
	svc := NewModerationService(newFakeListingRepo())

	err := svc.Decide(context.Background(), 42, 999, &dto.ReviewDecisionDTO{Action: "approve"})
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestReopenDecidedListing(t *testing.T) {
	repo := newFakeListingRepo()
	l := pendingListing(1)
	l.ApprovalStatus = consts.ApprovalRejected
	repo.listings[1] = l
	svc := NewModerationService(repo)

	err := svc.Reopen(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, consts.ApprovalPending, repo.listings[1].ApprovalStatus)
}

func TestReopenAlreadyPending(t *testing.T) {
	repo := newFakeListingRepo()
	repo.listings[1] = pendingListing(1)
	repo.reopenOK = false
	svc := NewModerationService(repo)

	err := svc.Reopen(context.Background(), 1)
	assert.ErrorIs(t, err, ErrAlreadyPending)
}

func TestListAllBypassesVisibility(t *testing.T) {
	repo := newFakeListingRepo()
	svc := NewModerationService(repo)

	_, err := svc.ListAll(context.Background(), &dto.ModerationQueryDTO{ApprovalStatus: consts.ApprovalRejected})
	require.NoError(t, err)
	assert.True(t, repo.lastFilter.IncludeHidden)
	assert.Equal(t, consts.ApprovalRejected, repo.lastFilter.ApprovalStatus)
}

func TestStatusBreakdownCounts(t *testing.T) {
	repo := newFakeListingRepo()
	repo.listings[1] = &model.Listing{ID: 1, ApprovalStatus: consts.ApprovalPending}
	repo.listings[2] = &model.Listing{ID: 2, ApprovalStatus: consts.ApprovalApproved}
	repo.listings[3] = &model.Listing{ID: 3, ApprovalStatus: consts.ApprovalApproved}
	svc := NewModerationService(repo)

	breakdown, err := svc.StatusBreakdown(context.Background())
	require.NoError(t, err)

	counts := map[string]int64{}
	for _, b := range breakdown {
		counts[b.ApprovalStatus] = b.Count
	}
	assert.Equal(t, int64(1), counts[consts.ApprovalPending])
	assert.Equal(t, int64(2), counts[consts.ApprovalApproved])
}
