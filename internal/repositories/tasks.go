package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
)

const DefaultListLimit = 100

var ErrTaskNotFound = errors.New("task not found")

// TaskRepository queries the tasks table. Every method runs on the session
// it is handed so callers decide the transaction scope.
type TaskRepository struct{}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{}
}

// byETA orders undated rows last on every driver.
func byETA(db *gorm.DB) *gorm.DB {
	return db.Order("CASE WHEN eta IS NULL THEN 1 ELSE 0 END").Order("eta").Order("id")
}

func (r *TaskRepository) List(db *gorm.DB, skip, limit int) ([]models.StoredTask, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if skip < 0 {
		skip = 0
	}

	var tasks []models.StoredTask
	err := db.Scopes(byETA).Offset(skip).Limit(limit).Find(&tasks).Error
	return tasks, err
}

// ListByDateRange returns rows whose ETA falls inside the inclusive range.
// A nil bound is open; undated rows never match a bound.
func (r *TaskRepository) ListByDateRange(db *gorm.DB, start, end *time.Time) ([]models.StoredTask, error) {
	q := db.Model(&models.StoredTask{})
	if start != nil {
		q = q.Where("eta >= ?", *start)
	}
	if end != nil {
		q = q.Where("eta <= ?", *end)
	}

	var tasks []models.StoredTask
	err := q.Scopes(byETA).Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) ListByStatus(db *gorm.DB, status string, limit int) ([]models.StoredTask, error) {
	var tasks []models.StoredTask
	err := db.Where("status = ?", status).Scopes(byETA).Limit(limit).Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) Create(db *gorm.DB, task *models.StoredTask) error {
	if task.Status == "" {
		task.Status = models.StoredStatusPending
	}
	return db.Create(task).Error
}

func (r *TaskRepository) CreateBatch(db *gorm.DB, tasks []models.StoredTask) error {
	if len(tasks) == 0 {
		return nil
	}
	for i := range tasks {
		if tasks[i].Status == "" {
			tasks[i].Status = models.StoredStatusPending
		}
	}
	return db.Create(&tasks).Error
}

func (r *TaskRepository) Get(db *gorm.DB, id uint) (models.StoredTask, error) {
	var task models.StoredTask
	err := db.First(&task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return task, ErrTaskNotFound
	}
	return task, err
}

func (r *TaskRepository) UpdateStatus(db *gorm.DB, id uint, status string) (models.StoredTask, error) {
	result := db.Model(&models.StoredTask{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return models.StoredTask{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.StoredTask{}, ErrTaskNotFound
	}
	return r.Get(db, id)
}

func (r *TaskRepository) Delete(db *gorm.DB, id uint) error {
	result := db.Delete(&models.StoredTask{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) DeleteAll(db *gorm.DB) error {
	return db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.StoredTask{}).Error
}

func (r *TaskRepository) Count(db *gorm.DB) (int64, error) {
	var n int64
	err := db.Model(&models.StoredTask{}).Count(&n).Error
	return n, err
}

// CountByPriority groups rows by priority; an empty priority is reported
// as "Unknown".
func (r *TaskRepository) CountByPriority(db *gorm.DB) (map[string]int64, error) {
	var rows []struct {
		Priority string
		N        int64
	}
	err := db.Model(&models.StoredTask{}).
		Select("priority, count(*) as n").
		Group("priority").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		p := row.Priority
		if p == "" {
			p = "Unknown"
		}
		out[p] += row.N
	}
	return out, nil
}
