package repository

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"github.com/sandy2008/recovery-compass/internal/config"
	"github.com/sandy2008/recovery-compass/internal/models"
	"google.golang.org/api/iterator"
)

// ErrDuplicateDate is returned when a log for the same date already exists
var ErrDuplicateDate = errors.New("log already exists for this date")

type LogRepository struct {
	client *firestore.Client
}

func NewLogRepository() *LogRepository {
	return &LogRepository{
		client: config.FirestoreClient,
	}
}

func (r *LogRepository) logs(userID string) *firestore.CollectionRef {
	return r.client.Collection("users").Doc(userID).Collection("dailyLogs")
}

// CreateLog creates a new daily log. The date-uniqueness check and the
// create run inside one transaction so two concurrent submissions for the
// same date cannot both commit.
func (r *LogRepository) CreateLog(ctx context.Context, userID string, log *models.DailyLog) (string, error) {
	col := r.logs(userID)
	ref := col.NewDoc()

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docs, err := tx.Documents(col.Where("date", "==", log.Date).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(docs) > 0 {
			return ErrDuplicateDate
		}
		return tx.Create(ref, log)
	})
	if err != nil {
		return "", err
	}

	log.ID = ref.ID
	return ref.ID, nil
}

// UpdateLog overwrites an existing daily log document
func (r *LogRepository) UpdateLog(ctx context.Context, userID, logID string, log *models.DailyLog) error {
	_, err := r.logs(userID).Doc(logID).Set(ctx, log)
	if err != nil {
		return err
	}
	log.ID = logID
	return nil
}

// SetLogFields merges individual fields onto an existing log document.
// Used for the tips write-back and the mood quick-update.
func (r *LogRepository) SetLogFields(ctx context.Context, userID, logID string, fields map[string]interface{}) error {
	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	_, err := r.logs(userID).Doc(logID).Update(ctx, updates)
	return err
}

// GetLogByID retrieves a single daily log by document ID
func (r *LogRepository) GetLogByID(ctx context.Context, userID, logID string) (*models.DailyLog, error) {
	doc, err := r.logs(userID).Doc(logID).Get(ctx)
	if err != nil {
		return nil, err
	}

	var log models.DailyLog
	if err := doc.DataTo(&log); err != nil {
		return nil, err
	}
	log.ID = doc.Ref.ID

	return &log, nil
}

// FindLogByDate retrieves the log for a calendar date, or nil when none exists
func (r *LogRepository) FindLogByDate(ctx context.Context, userID, date string) (*models.DailyLog, error) {
	iter := r.logs(userID).Where("date", "==", date).Limit(1).Documents(ctx)
	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var log models.DailyLog
	if err := doc.DataTo(&log); err != nil {
		return nil, err
	}
	log.ID = doc.Ref.ID

	return &log, nil
}

// GetLatestLog retrieves the most recent log by date, or nil when none exists
func (r *LogRepository) GetLatestLog(ctx context.Context, userID string) (*models.DailyLog, error) {
	iter := r.logs(userID).OrderBy("date", firestore.Desc).Limit(1).Documents(ctx)
	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var log models.DailyLog
	if err := doc.DataTo(&log); err != nil {
		return nil, err
	}
	log.ID = doc.Ref.ID

	return &log, nil
}

// ListLogs retrieves the user's logs ordered by date ascending, paginated
func (r *LogRepository) ListLogs(ctx context.Context, userID string, page, limit int) ([]*models.DailyLog, int, error) {
	iter := r.logs(userID).OrderBy("date", firestore.Asc).Documents(ctx)

	var all []*models.DailyLog
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, err
		}

		var log models.DailyLog
		if err := doc.DataTo(&log); err != nil {
			continue
		}
		log.ID = doc.Ref.ID
		all = append(all, &log)
	}

	total := len(all)

	// Paginate
	offset := (page - 1) * limit
	if offset >= total {
		return []*models.DailyLog{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return all[offset:end], total, nil
}
