package catalog

import (
	"context"
	"fmt"

	"podstore/internal/infra/printful"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Printful未接続の環境で使うダミー。注文を受け取ってログに残すだけ。
type NoopFulfillment struct{}

func NewNoopFulfillment() *NoopFulfillment {
	return &NoopFulfillment{}
}

func (f *NoopFulfillment) SubmitOrder(ctx context.Context, req printful.OrderRequest) (string, error) {
	id := fmt.Sprintf("noop-%s", uuid.NewString())
	log.WithFields(log.Fields{
		"external_id":    req.ExternalID,
		"items":          len(req.Items),
		"fulfillment_id": id,
	}).Info("noop fulfillment accepted order")
	return id, nil
}
