package es

import (
	"UniMarket/internal/pkg/consts"
	"context"
	"errors"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/versiontype"
	"github.com/goccy/go-json"
)

// MaxSearchDepth ES 深分页限制
const MaxSearchDepth = 400

type ListingRepo interface {
	SearchListings(ctx context.Context, keyword string, university string, from, size int) ([]*ListingES, error)
	GetListingById(ctx context.Context, id uint64) (*ListingES, error)
	IndexListing(ctx context.Context, listing *ListingES, version int64) error
	DeleteListing(ctx context.Context, id uint64) error
}

type ListingRepoImpl struct {
	client *elasticsearch.TypedClient
}

func NewListingRepo(client *elasticsearch.TypedClient) ListingRepo {
	return &ListingRepoImpl{client: client}
}

// SearchListings 关键词检索
// 只返回已过审且在售的商品；可见性规则与 DB 查询路径保持一致。
func (s *ListingRepoImpl) SearchListings(ctx context.Context, keyword string, university string, from, size int) ([]*ListingES, error) {
	if from >= MaxSearchDepth {
		return []*ListingES{}, nil
	}

	boolQuery := &types.BoolQuery{
		Filter: []types.Query{
			{Term: map[string]types.TermQuery{"approval_status": {Value: consts.ApprovalApproved}}},
			{Term: map[string]types.TermQuery{"status": {Value: consts.ListingStatusActive}}},
		},
	}

	if university != "" {
		boolQuery.Filter = append(boolQuery.Filter, types.Query{
			Bool: &types.BoolQuery{
				Should: []types.Query{
					{Term: map[string]types.TermQuery{"visibility": {Value: consts.VisibilityAll}}},
					{Bool: &types.BoolQuery{
						Filter: []types.Query{
							{Term: map[string]types.TermQuery{"visibility": {Value: consts.VisibilityUniversity}}},
							{Term: map[string]types.TermQuery{"seller_university": {Value: university}}},
						},
					}},
				},
				MinimumShouldMatch: 1,
			},
		})
	}

	if keyword != "" {
		boolQuery.Must = []types.Query{{
			MultiMatch: &types.MultiMatchQuery{
				Query:  keyword,
				Fields: []string{"title^2", "description", "tags"},
			},
		}}
	}

	searchReq := s.client.Search().
		Index(ListingIndex).
		Query(&types.Query{Bool: boolQuery}).
		Sort(types.SortOptions{SortOptions: map[string]types.FieldSort{
			"_score":     {Order: &sortorder.Desc},
			"created_at": {Order: &sortorder.Desc},
		}}).
		From(from).
		Size(size)

	return s.executeSearch(ctx, searchReq)
}

func (s *ListingRepoImpl) GetListingById(ctx context.Context, id uint64) (*ListingES, error) {
	docID := strconv.FormatUint(id, 10)
	result, err := s.client.Get(ListingIndex, docID).Do(ctx)
	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) {
			if e.Status == NotFoundCode {
				return nil, nil
			}
		}
		return nil, err
	}
	if result.Source_ == nil {
		return nil, nil
	}
	var listing ListingES
	if err = json.Unmarshal(result.Source_, &listing); err != nil {
		return nil, err
	}
	if listing.Tags == nil {
		listing.Tags = make([]string, 0)
	}
	if listing.Images == nil {
		listing.Images = make([]string, 0)
	}
	return &listing, nil
}

// IndexListing 外部版本号写入，旧版本写入冲突直接忽略
func (s *ListingRepoImpl) IndexListing(ctx context.Context, listing *ListingES, version int64) error {
	docID := strconv.FormatUint(listing.ID, 10)

	_, err := s.client.Index(ListingIndex).
		Id(docID).
		Document(listing).
		Version(strconv.FormatInt(version, 10)).
		VersionType(versiontype.External).
		Do(ctx)

	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) {
			if e.Status == ConflictCode {
				return nil
			}
		}
		return err
	}

	return nil
}

func (s *ListingRepoImpl) DeleteListing(ctx context.Context, id uint64) error {
	docID := strconv.FormatUint(id, 10)

	_, err := s.client.Delete(ListingIndex, docID).Do(ctx)

	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) {
			if e.Status == NotFoundCode {
				return nil
			}
		}
		return err
	}

	return nil
}

func (s *ListingRepoImpl) executeSearch(ctx context.Context, req *search.Search) ([]*ListingES, error) {
	resp, err := req.Do(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*ListingES, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		var listing ListingES
		if hit.Source_ == nil {
			continue
		}
		if err = json.Unmarshal(hit.Source_, &listing); err != nil {
			continue
		}
		results = append(results, &listing)
	}
	return results, nil
}
