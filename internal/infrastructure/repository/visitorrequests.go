package repository

import (
	"context"
	"fmt"

	"expopanel/internal/domain/visitorrequest"
	"expopanel/internal/shared/logger"
)

// VisitorRequestRepository reads and resolves pending visitor requests.
type VisitorRequestRepository struct {
	client Transport
	list   string
	base   string
	logger logger.Interface
}

func NewVisitorRequestRepository(client Transport, listPath, base string, log logger.Interface) *VisitorRequestRepository {
	return &VisitorRequestRepository{
		client: client,
		list:   listPath,
		base:   base,
		logger: log.Named("repository.visitor_request"),
	}
}

func (r *VisitorRequestRepository) List(ctx context.Context) ([]visitorrequest.Request, error) {
	items, err := FetchAll[visitorrequest.Request](ctx, r.client, r.list)
	if err != nil {
		return nil, fmt.Errorf("failed to list visitor requests: %w", err)
	}
	return items, nil
}

func (r *VisitorRequestRepository) Approve(ctx context.Context, id int64, asAdmin bool) (visitorrequest.Status, error) {
	var res visitorrequest.ApproveResult
	body := visitorrequest.NewApproveBody(id, asAdmin)
	if err := r.client.Post(ctx, visitorrequest.ApprovePath(r.base), body, &res); err != nil {
		return "", fmt.Errorf("failed to approve visitor request %d: %w", id, err)
	}
	r.logger.Infow("visitor request approved", "id", id, "admin", asAdmin, "status", res.Status)
	return res.Status, nil
}

func (r *VisitorRequestRepository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Delete(ctx, visitorrequest.DeletePath(r.base, id), nil); err != nil {
		return fmt.Errorf("failed to delete visitor request %d: %w", id, err)
	}
	return nil
}
