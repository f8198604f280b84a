package kafka

import (
	"UniMarket/internal/pkg/consts"
	"UniMarket/internal/pkg/es"
	"UniMarket/internal/repository"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

// ListingsHandler 消费 listings 表的 Canal 变更，保持 ES 索引与 DB 一致
// 子表（图片/标签）不单独走 CDC，每次变更都从 DB 回读完整商品后覆写 ES。
type ListingsHandler struct {
	listingDBRepo repository.ListingRepo
	listingESRepo es.ListingRepo
}

func NewListingsHandler(listingDBRepo repository.ListingRepo, listingESRepo es.ListingRepo) *ListingsHandler {
	return &ListingsHandler{
		listingDBRepo: listingDBRepo,
		listingESRepo: listingESRepo,
	}
}

func (s *ListingsHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("listing consumer setup")
	return nil
}

func (s *ListingsHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("listing consumer cleanup")
	return nil
}

func (s *ListingsHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-listing consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-listing process batch error", "err", err)
		return err
	}
	log.Info("topic-listing consume claim end")
	return nil
}

func (s *ListingsHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, "listings")
	if err != nil {
		return err
	}

	if len(canalMsg.Data) == 0 {
		return nil
	}

	row := canalMsg.Data[0]
	listingID := StrToUint64(row["id"])
	if listingID == 0 {
		return errors.New("listing id is empty")
	}

	if canalMsg.Type == DELETE {
		return s.listingESRepo.DeleteListing(ctx, listingID)
	}

	// 下架/移除的商品不保留在索引里
	status := StrToString(row["status"])
	approval := StrToString(row["approval_status"])
	if status == consts.ListingStatusRemoved || approval == consts.ApprovalRejected {
		return s.listingESRepo.DeleteListing(ctx, listingID)
	}

	// 回读完整商品，补全标签与图片
	listing, err := s.listingDBRepo.GetListing(ctx, listingID)
	if err != nil {
		return err
	}
	if listing == nil {
		// DB 已删除，索引同步删除
		return s.listingESRepo.DeleteListing(ctx, listingID)
	}

	doc := &es.ListingES{
		ID:               listing.ID,
		SellerID:         listing.SellerID,
		Title:            listing.Title,
		Description:      listing.Description,
		Category:         listing.Category,
		SubCategory:      listing.SubCategory,
		Price:            listing.Price,
		PricingType:      listing.PricingType,
		Condition:        listing.Condition,
		SellerUniversity: listing.SellerUniversity,
		Visibility:       listing.Visibility,
		Status:           listing.Status,
		ApprovalStatus:   listing.ApprovalStatus,
		Views:            listing.Views,
		CreatedAt:        listing.CreatedAt,
		UpdatedAt:        listing.UpdatedAt,
	}
	doc.Tags = make([]string, 0, len(listing.Tags))
	for _, t := range listing.Tags {
		doc.Tags = append(doc.Tags, t.Name)
	}
	doc.Images = make([]string, 0, len(listing.Images))
	for _, img := range listing.Images {
		doc.Images = append(doc.Images, img.URL)
	}

	// Canal 的 binlog 时间戳做外部版本号，乱序消息不会回退索引
	return s.listingESRepo.IndexListing(ctx, doc, canalMsg.TS)
}
