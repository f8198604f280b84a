package service

import (
	"UniMarket/internal/api/dto"
	"UniMarket/internal/model"
	"UniMarket/internal/pkg/consts"
	"UniMarket/internal/pkg/es"
	"UniMarket/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeListingRepo 内存实现，记录最近一次调用的参数
type fakeListingRepo struct {
	listings   map[uint64]*model.Listing
	lastFilter *repository.ListingFilter
	created    *model.Listing

	decideOK bool
	reopenOK bool

	lastDecision   string
	lastReviewerID uint64
	lastReason     string

	statusFrom string
	statusTo   string
	statusOK   bool
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{
		listings: make(map[uint64]*model.Listing),
		decideOK: true,
		reopenOK: true,
		statusOK: true,
	}
}

func (f *fakeListingRepo) CreateListing(_ context.Context, listing *model.Listing) error {
	listing.ID = uint64(len(f.listings) + 1)
	f.listings[listing.ID] = listing
	f.created = listing
	return nil
}

func (f *fakeListingRepo) GetListing(_ context.Context, id uint64) (*model.Listing, error) {
	return f.listings[id], nil
}

func (f *fakeListingRepo) UpdateListing(_ context.Context, listing *model.Listing, _ []*model.ListingImage, _ []*model.ListingTag, _ []*model.ListingLocation) error {
	f.listings[listing.ID] = listing
	return nil
}

func (f *fakeListingRepo) QueryListings(_ context.Context, filter *repository.ListingFilter) ([]*model.Listing, int64, error) {
	f.lastFilter = filter
	return nil, 0, nil
}

func (f *fakeListingRepo) GetListingStats(_ context.Context, filter *repository.ListingFilter) (*repository.ListingStats, error) {
	f.lastFilter = filter
	return &repository.ListingStats{}, nil
}

func (f *fakeListingRepo) GetCategoryBreakdown(_ context.Context, filter *repository.ListingFilter) ([]*repository.CategoryCount, error) {
	f.lastFilter = filter
	return nil, nil
}

func (f *fakeListingRepo) GetApprovalBreakdown(_ context.Context) ([]*repository.ApprovalCount, error) {
	counts := map[string]int64{}
	for _, l := range f.listings {
		counts[l.ApprovalStatus]++
	}
	breakdown := make([]*repository.ApprovalCount, 0, len(counts))
	for status, count := range counts {
		breakdown = append(breakdown, &repository.ApprovalCount{ApprovalStatus: status, Count: count})
	}
	return breakdown, nil
}

func (f *fakeListingRepo) GetDistinctValues(_ context.Context, _ string, filter *repository.ListingFilter) ([]string, error) {
	f.lastFilter = filter
	return nil, nil
}

func (f *fakeListingRepo) UpdateListingStatus(_ context.Context, id uint64, fromStatus, toStatus string) (bool, error) {
	f.statusFrom = fromStatus
	f.statusTo = toStatus
	if l, ok := f.listings[id]; ok && f.statusOK && l.Status == fromStatus {
		l.Status = toStatus
		return true, nil
	}
	return false, nil
}

func (f *fakeListingRepo) DecideApproval(_ context.Context, id uint64, decision string, reviewerID uint64, reason string) (bool, error) {
	f.lastDecision = decision
	f.lastReviewerID = reviewerID
	f.lastReason = reason
	if !f.decideOK {
		return false, nil
	}
	if l, ok := f.listings[id]; ok {
		l.ApprovalStatus = decision
	}
	return true, nil
}

func (f *fakeListingRepo) ReopenApproval(_ context.Context, id uint64) (bool, error) {
	if !f.reopenOK {
		return false, nil
	}
	if l, ok := f.listings[id]; ok {
		l.ApprovalStatus = consts.ApprovalPending
	}
	return true, nil
}

func (f *fakeListingRepo) ListPendingReview(_ context.Context, _, _ int) ([]*model.Listing, int64, error) {
	var pending []*model.Listing
	for _, l := range f.listings {
		if l.ApprovalStatus == consts.ApprovalPending {
			pending = append(pending, l)
		}
	}
	return pending, int64(len(pending)), nil
}

func (f *fakeListingRepo) ExpireListingsBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeListingRepo) AddListingViews(_ context.Context, _ uint64, _ uint64) error {
	return nil
}

type fakeListingESRepo struct {
	docs           []*es.ListingES
	lastKeyword    string
	lastUniversity string
}

func (f *fakeListingESRepo) SearchListings(_ context.Context, keyword string, university string, _, _ int) ([]*es.ListingES, error) {
	f.lastKeyword = keyword
	f.lastUniversity = university
	return f.docs, nil
}

func (f *fakeListingESRepo) GetListingById(_ context.Context, _ uint64) (*es.ListingES, error) {
	return nil, nil
}

func (f *fakeListingESRepo) IndexListing(_ context.Context, _ *es.ListingES, _ int64) error {
	return nil
}

func (f *fakeListingESRepo) DeleteListing(_ context.Context, _ uint64) error {
	return nil
}

func validListingReq() *dto.ListingBaseDTO {
	return &dto.ListingBaseDTO{
		Title:       "高等数学教材",
		Description: "九成新，无笔记",
		Category:    consts.CategoryItem,
		Price:       20,
		PricingType: consts.PricingFixed,
		Condition:   "九成新",
		Visibility:  consts.VisibilityUniversity,
		Images:      []string{"http://img/1.jpg"},
		Tags:        []string{" 教材 ", "教材", "数学"},
		Locations:   []*dto.LocationDTO{{Longitude: 116.39, Latitude: 39.91, Label: "图书馆门口"}},
	}
}

func newListingService(repo *fakeListingRepo) ListingService {
	return NewListingService(repo, &fakeListingESRepo{})
}

func TestCreateListingEntersPendingReview(t *testing.T) {
	repo := newFakeListingRepo()
	svc := newListingService(repo)
	viewer := &Viewer{UserID: 7, University: "清华大学"}

	result, err := svc.CreateListing(context.Background(), viewer, validListingReq())
	require.NoError(t, err)

	assert.Equal(t, consts.ApprovalPending, result.ApprovalStatus)
	assert.Equal(t, consts.ListingStatusActive, result.Status)
	assert.Equal(t, "清华大学", repo.created.SellerUniversity)
	assert.Equal(t, uint64(7), repo.created.SellerID)
}

func TestCreateListingNormalizesTags(t *testing.T) {
	repo := newFakeListingRepo()
	svc := newListingService(repo)

	result, err := svc.CreateListing(context.Background(), &Viewer{UserID: 1}, validListingReq())
	require.NoError(t, err)
	assert.Equal(t, []string{"教材", "数学"}, result.Tags)
}

func TestCreateListingItemRules(t *testing.T) {
	svc := newListingService(newFakeListingRepo())
	viewer := &Viewer{UserID: 1}

	noImage := validListingReq()
	noImage.Images = nil
	_, err := svc.CreateListing(context.Background(), viewer, noImage)
	assert.ErrorIs(t, err, ErrImageRequired)

	noCondition := validListingReq()
	noCondition.Condition = ""
	_, err = svc.CreateListing(context.Background(), viewer, noCondition)
	assert.ErrorIs(t, err, ErrConditionRequired)

	// 服务类商品不需要图片和成色
	service := validListingReq()
	service.Category = consts.CategoryService
	service.Images = nil
	service.Condition = ""
	_, err = svc.CreateListing(context.Background(), viewer, service)
	assert.NoError(t, err)
}

func TestCreateListingRejectsNegativePrice(t *testing.T) {
	svc := newListingService(newFakeListingRepo())
	req := validListingReq()
	req.Price = -1

	_, err := svc.CreateListing(context.Background(), &Viewer{UserID: 1}, req)
	assert.ErrorIs(t, err, ErrPriceInvalid)
}

func TestCreateListingRejectsBadCoordinates(t *testing.T) {
	svc := newListingService(newFakeListingRepo())
	viewer := &Viewer{UserID: 1}

	badLon := validListingReq()
	badLon.Locations = []*dto.LocationDTO{{Longitude: 181, Latitude: 0}}
	_, err := svc.CreateListing(context.Background(), viewer, badLon)
	assert.ErrorIs(t, err, ErrGeoInvalid)

	noLoc := validListingReq()
	noLoc.Locations = nil
	_, err = svc.CreateListing(context.Background(), viewer, noLoc)
	assert.ErrorIs(t, err, ErrGeoInvalid)
}

func TestGetListingHidesPendingFromStranger(t *testing.T) {
	repo := newFakeListingRepo()
	repo.listings[1] = &model.Listing{
		ID:             1,
		SellerID:       7,
		ApprovalStatus: consts.ApprovalPending,
		Status:         consts.ListingStatusActive,
		Visibility:     consts.VisibilityAll,
	}
	svc := newListingService(repo)

	_, err := svc.GetListing(context.Background(), &Viewer{UserID: 99}, 1)
	assert.ErrorIs(t, err, ErrListingNotFound)

	// 卖家本人和审核员可以看到
	owner, err := svc.GetListing(context.Background(), &Viewer{UserID: 7}, 1)
	require.NoError(t, err)
	assert.Equal(t, consts.ApprovalPending, owner.ApprovalStatus)

	_, err = svc.GetListing(context.Background(), &Viewer{UserID: 99, Moderator: true}, 1)
	assert.NoError(t, err)
}

func TestGetListingUniversityScope(t *testing.T) {
	repo := newFakeListingRepo()
	repo.listings[1] = &model.Listing{
		ID:               1,
		SellerID:         7,
		ApprovalStatus:   consts.ApprovalApproved,
		Status:           consts.ListingStatusActive,
		Visibility:       consts.VisibilityUniversity,
		SellerUniversity: "清华大学",
	}
	svc := newListingService(repo)

	_, err := svc.GetListing(context.Background(), &Viewer{UserID: 2, University: "北京大学"}, 1)
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestMarkSoldOnlySeller(t *testing.T) {
	repo := newFakeListingRepo()
	repo.listings[1] = &model.Listing{ID: 1, SellerID: 7, Status: consts.ListingStatusActive}
	svc := newListingService(repo)

	err := svc.MarkSold(context.Background(), 99, 1)
	assert.ErrorIs(t, err, ForbiddenError)

	err = svc.MarkSold(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, consts.ListingStatusSold, repo.listings[1].Status)

	// 已售出的商品不能再次流转
	err = svc.MarkSold(context.Background(), 7, 1)
	assert.ErrorIs(t, err, ErrActionInvalid)
}

func TestListListingsFilterByViewer(t *testing.T) {
	repo := newFakeListingRepo()
	svc := newListingService(repo)

	_, err := svc.ListListings(context.Background(), &Viewer{UserID: 1, University: "清华大学"}, &dto.ListingQueryDTO{})
	require.NoError(t, err)
	assert.False(t, repo.lastFilter.IncludeHidden)
	assert.Equal(t, "清华大学", repo.lastFilter.ViewerUniversity)
	assert.Equal(t, consts.ListingStatusActive, repo.lastFilter.Status)

	_, err = svc.ListListings(context.Background(), &Viewer{UserID: 1, Moderator: true}, &dto.ListingQueryDTO{})
	require.NoError(t, err)
	assert.True(t, repo.lastFilter.IncludeHidden)
	assert.Empty(t, repo.lastFilter.ViewerUniversity)
}

func TestStatsShareFilterWithList(t *testing.T) {
	repo := newFakeListingRepo()
	svc := newListingService(repo)
	viewer := &Viewer{UserID: 1, University: "清华大学"}
	query := &dto.ListingQueryDTO{Category: consts.CategoryItem}

	_, err := svc.GetListingStats(context.Background(), viewer, query)
	require.NoError(t, err)
	statsFilter := repo.lastFilter

	_, err = svc.ListListings(context.Background(), viewer, query)
	require.NoError(t, err)

	assert.Equal(t, statsFilter.Category, repo.lastFilter.Category)
	assert.Equal(t, statsFilter.ViewerUniversity, repo.lastFilter.ViewerUniversity)
	assert.Equal(t, statsFilter.Status, repo.lastFilter.Status)
}

func TestSearchListingsScopesUniversity(t *testing.T) {
	repo := newFakeListingRepo()
	esRepo := &fakeListingESRepo{}
	svc := NewListingService(repo, esRepo)

	_, err := svc.SearchListings(context.Background(), &Viewer{UserID: 1, University: "清华大学"}, &dto.SearchQueryDTO{Keyword: "教材"})
	require.NoError(t, err)
	assert.Equal(t, "清华大学", esRepo.lastUniversity)

	_, err = svc.SearchListings(context.Background(), &Viewer{UserID: 1, University: "清华大学", Moderator: true}, &dto.SearchQueryDTO{Keyword: "教材"})
	require.NoError(t, err)
	assert.Empty(t, esRepo.lastUniversity)
}

func TestCreateListingDropsInvalidLocations(t *testing.T) {
	repo := newFakeListingRepo()
	svc := newListingService(repo)

	req := validListingReq()
	req.Locations = []*dto.LocationDTO{
		{Longitude: 116.39, Latitude: 39.91, Label: "图书馆门口"},
		{Longitude: 181, Latitude: 0, Label: "非法点"},
	}

	result, err := svc.CreateListing(context.Background(), &Viewer{UserID: 1, University: "清华大学"}, req)
	require.NoError(t, err)
	require.Len(t, result.Locations, 1)
	assert.Equal(t, "图书馆门口", result.Locations[0].Label)
}

func TestListListingsKeywordFilter(t *testing.T) {
	repo := newFakeListingRepo()
	svc := newListingService(repo)

	_, err := svc.ListListings(context.Background(), &Viewer{UserID: 1}, &dto.ListingQueryDTO{Keyword: "教材"})
	require.NoError(t, err)
	assert.Equal(t, "教材", repo.lastFilter.Keyword)
}
