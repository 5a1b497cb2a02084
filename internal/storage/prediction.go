package storage

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"inferd/internal/types"
)

// PredictionRecord is the persisted snapshot of a prediction outcome.
// Input, output and metrics are stored as JSON text.
type PredictionRecord struct {
	Id           int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	PredictionId string `gorm:"uniqueIndex;not null" json:"id"`
	Status       string `gorm:"index" json:"status"`
	Input        string `json:"input,omitempty"`
	Output       string `json:"output,omitempty"`
	Metrics      string `json:"metrics,omitempty"`
	Error        string `json:"error,omitempty"`
	Logs         string `json:"logs"`
	WebhookURL   string `json:"webhook_url,omitempty"`

	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RecordFromResponse flattens a terminal response into its storable form.
func RecordFromResponse(resp types.Response, webhookURL string) *PredictionRecord {
	record := &PredictionRecord{
		PredictionId: resp.ID,
		Status:       resp.Status.String(),
		Error:        resp.Error,
		Logs:         resp.Logs,
		WebhookURL:   webhookURL,
		StartedAt:    resp.StartedAt,
		CompletedAt:  resp.CompletedAt,
	}

	if resp.Input != nil {
		if data, err := json.Marshal(resp.Input); err == nil {
			record.Input = string(data)
		}
	}
	if resp.Output != nil {
		if data, err := json.Marshal(resp.Output); err == nil {
			record.Output = string(data)
		}
	}
	if resp.Metrics != nil {
		if data, err := json.Marshal(resp.Metrics); err == nil {
			record.Metrics = string(data)
		}
	}

	return record
}

// ToResponse rebuilds the API response shape from a stored record, decoding
// the JSON columns, so history lookups answer with the same payload the live
// slot produced.
func (r *PredictionRecord) ToResponse() (types.Response, error) {
	status, err := types.ParseStatus(r.Status)
	if err != nil {
		return types.Response{}, err
	}

	createdAt := r.CreatedAt
	resp := types.Response{
		ID:          r.PredictionId,
		Status:      status,
		Error:       r.Error,
		Logs:        r.Logs,
		CreatedAt:   &createdAt,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
	}

	if r.Input != "" {
		if err := json.Unmarshal([]byte(r.Input), &resp.Input); err != nil {
			return types.Response{}, err
		}
	}
	if r.Output != "" {
		if err := json.Unmarshal([]byte(r.Output), &resp.Output); err != nil {
			return types.Response{}, err
		}
	}
	if r.Metrics != "" {
		if err := json.Unmarshal([]byte(r.Metrics), &resp.Metrics); err != nil {
			return types.Response{}, err
		}
	}

	return resp, nil
}

// SaveRecord upserts a record keyed by prediction id.
func SaveRecord(record *PredictionRecord) error {
	if DB == nil {
		return errors.New("database not initialized")
	}

	var existing PredictionRecord
	result := DB.Where("prediction_id = ?", record.PredictionId).First(&existing)

	if result.Error == nil {
		record.Id = existing.Id
		record.CreatedAt = existing.CreatedAt
		return DB.Save(record).Error
	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return DB.Create(record).Error
	}
	return result.Error
}

// GetRecord looks up one record by prediction id.
func GetRecord(predictionId string) (*PredictionRecord, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var record PredictionRecord
	if err := DB.Where("prediction_id = ?", predictionId).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ListRecords returns the most recent records, newest first.
func ListRecords(limit int) ([]PredictionRecord, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var records []PredictionRecord
	if err := DB.Order("created_at desc").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteRecord removes one record by prediction id.
func DeleteRecord(predictionId string) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Where("prediction_id = ?", predictionId).Delete(&PredictionRecord{}).Error
}

// MarkStaleRecords flags rows left in a non-terminal status by a previous
// process as failed. Called once on server startup.
func MarkStaleRecords() (int64, error) {
	if DB == nil {
		return 0, errors.New("database not initialized")
	}
	result := DB.Model(&PredictionRecord{}).
		Where("status IN ?", []string{
			types.StatusStarting.String(),
			types.StatusProcessing.String(),
		}).
		Updates(map[string]interface{}{
			"status": types.StatusFailed.String(),
			"error":  "prediction interrupted by worker restart",
		})
	return result.RowsAffected, result.Error
}
