package pocket

import (
	"context"

	"pocketkit/internal/models"
)

// ClientInterface defines the interface for the Pocket API client.
type ClientInterface interface {
	Add(ctx context.Context, req models.AddRequest) (*models.AddResult, error)
	Modify(ctx context.Context, req models.ModifyRequest) (*models.ModifyResult, error)
	Retrieve(ctx context.Context, req models.RetrieveRequest) (*models.RetrieveResult, error)
}
