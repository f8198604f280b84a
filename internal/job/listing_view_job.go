package job

import (
	"UniMarket/internal/pkg/consts"
	"UniMarket/internal/pkg/logger"
	"UniMarket/internal/pkg/redis"
	"UniMarket/internal/pkg/util"
	"UniMarket/internal/repository"
	"context"
	log "log/slog"
	"strconv"

	"github.com/google/uuid"
)

// ListingViewJob 将 Redis 里累积的浏览计数批量刷回 DB
type ListingViewJob struct {
	listingRepo repository.ListingRepo
}

func NewListingViewJob(listingRepo repository.ListingRepo) *ListingViewJob {
	return &ListingViewJob{listingRepo: listingRepo}
}

func (s *ListingViewJob) Run() {
	traceID := "job-view-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	processingKey := consts.ListingViewDirtyKey + ":processing"
	err := redis.Rename(ctx, consts.ListingViewDirtyKey, processingKey)
	if err != nil {
		// 脏集合不存在说明本周期没有新浏览
		return
	}

	tempSet, err := redis.GetSet(ctx, processingKey)
	if err != nil {
		log.ErrorContext(ctx, "get listing view dirty set error", "err", err)
		return
	}

	listingIDs, err := util.StrSliceToUInt64Slice(tempSet)
	if err != nil {
		log.ErrorContext(ctx, "convert listing set to int slice error", "err", err)
		return
	}

	flushed := 0
	for _, id := range listingIDs {
		countKey := consts.ListingViewKey + strconv.FormatUint(id, 10)
		raw, err := redis.GetDel(ctx, countKey)
		if err != nil {
			log.ErrorContext(ctx, "get listing view counter error", "id", id, "err", err)
			continue
		}
		if raw == "" {
			continue
		}
		delta, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || delta == 0 {
			continue
		}

		if err = s.listingRepo.AddListingViews(ctx, id, delta); err != nil {
			log.ErrorContext(ctx, "flush listing views error", "id", id, "err", err)
			continue
		}
		flushed++
	}

	err = redis.DeleteKey(ctx, processingKey)
	if err != nil {
		log.ErrorContext(ctx, "delete listing processing set error", "err", err)
	}

	log.InfoContext(ctx, "flush listing views success",
		"dirty_count", len(listingIDs),
		"flushed_count", flushed)
}
