package handlers

import (
	"context"

	"github.com/codyseavey/goblin-bookie/internal/models"
	"github.com/codyseavey/goblin-bookie/internal/services"
)

// CardStore is what the handlers need from the card service
type CardStore interface {
	Search(ctx context.Context, name string, page int) ([]models.Card, error)
	GetCard(ctx context.Context, uuid string) (*services.DetailResult, error)
	Refresh(ctx context.Context, uuid string) (*services.DetailResult, error)
	RecordView(card *models.CardDetail) error
	RecentlyViewed(limit int) ([]models.CardView, error)
}

// SampleSource serves the sample-card demo feed
type SampleSource interface {
	FetchSampleCards(ctx context.Context) ([]models.SampleCard, error)
}

// RefreshQueue is the background refresh worker
type RefreshQueue interface {
	QueueRefresh(uuid string) int
	GetStatus() services.RefreshStatus
}
