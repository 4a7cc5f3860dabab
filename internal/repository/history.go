package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pemapp/internal/history"
	"pemapp/internal/models"
)

// HistoryRepository is the Postgres-backed history.Store. Rows carry the
// full result as JSON so a stored item round-trips field-for-field, plus a
// few denormalized columns for listing.
type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

var _ history.Store = (*HistoryRepository)(nil)

func (r *HistoryRepository) Append(ctx context.Context, namespace string, item models.HistoryItem) error {
	payload, err := json.Marshal(item.Result)
	if err != nil {
		return fmt.Errorf("marshal analysis result: %w", err)
	}

	record := models.HistoryRecord{
		ID:              item.ID,
		Namespace:       namespace,
		Timestamp:       item.Timestamp,
		PreviewURL:      item.PreviewURL,
		Title:           item.Result.Title,
		OverallScore:    item.Result.OverallScore,
		RatingLevel:     item.Result.RatingLevel,
		Recommendations: item.Result.Recommendations,
		Result:          payload,
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		// Evict everything beyond the cap, oldest first.
		var stale []string
		err := tx.Model(&models.HistoryRecord{}).
			Where("namespace = ?", namespace).
			Order("timestamp DESC").
			Offset(history.MaxItems).
			Pluck("id", &stale).Error
		if err != nil {
			return err
		}
		if len(stale) == 0 {
			return nil
		}
		return tx.Where("namespace = ? AND id IN ?", namespace, stale).
			Delete(&models.HistoryRecord{}).Error
	})
}

func (r *HistoryRepository) List(ctx context.Context, namespace string) ([]models.HistoryItem, error) {
	var records []models.HistoryRecord
	err := r.db.WithContext(ctx).
		Where("namespace = ?", namespace).
		Order("timestamp DESC").
		Limit(history.MaxItems).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	items := make([]models.HistoryItem, 0, len(records))
	for _, rec := range records {
		item, err := recordToItem(rec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *HistoryRepository) Get(ctx context.Context, namespace, id string) (models.HistoryItem, error) {
	var rec models.HistoryRecord
	err := r.db.WithContext(ctx).
		First(&rec, "namespace = ? AND id = ?", namespace, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.HistoryItem{}, history.ErrNotFound
	}
	if err != nil {
		return models.HistoryItem{}, err
	}
	return recordToItem(rec)
}

func (r *HistoryRepository) Remove(ctx context.Context, namespace, id string) error {
	result := r.db.WithContext(ctx).
		Where("namespace = ? AND id = ?", namespace, id).
		Delete(&models.HistoryRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return history.ErrNotFound
	}
	return nil
}

func recordToItem(rec models.HistoryRecord) (models.HistoryItem, error) {
	var result models.AnalysisResult
	if err := json.Unmarshal(rec.Result, &result); err != nil {
		return models.HistoryItem{}, fmt.Errorf("unmarshal stored result %s: %w", rec.ID, err)
	}
	return models.HistoryItem{
		ID:         rec.ID,
		Timestamp:  rec.Timestamp,
		PreviewURL: rec.PreviewURL,
		Result:     result,
	}, nil
}
