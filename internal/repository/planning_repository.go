package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agroplan/agroplan-api/internal/models"
)

// GormPlanningRepository is a GORM implementation of PlanningRepository
type GormPlanningRepository struct {
	db *gorm.DB
}

// NewPlanningRepository creates a new PlanningRepository
func NewPlanningRepository(db *gorm.DB) PlanningRepository {
	return &GormPlanningRepository{db: db}
}

// Create inserts a planning record with its relations after the overlap
// check passes. Everything runs in one transaction so a concurrent create
// on the same fields or vehicle cannot interleave between check and insert.
func (r *GormPlanningRepository) Create(rec *models.PlanningRecord, check ConflictCheck, fieldIDs []uuid.UUID, products []ProductLine) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := r.checkConflicts(tx, rec.CompanyID, check); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(rec).Error; err != nil {
			return err
		}

		if err := r.insertFieldRows(tx, rec.ID, fieldIDs); err != nil {
			return err
		}

		return r.insertProductRows(tx, rec.ID, products)
	})
}

// Update saves the patched record. A non-nil fieldIDs or products slice
// fully replaces the corresponding association set: delete all, re-insert.
func (r *GormPlanningRepository) Update(rec *models.PlanningRecord, check *ConflictCheck, fieldIDs *[]uuid.UUID, products *[]ProductLine) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if check != nil {
			if err := r.checkConflicts(tx, rec.CompanyID, *check); err != nil {
				return err
			}
		}

		if err := tx.Omit(clause.Associations).Save(rec).Error; err != nil {
			return err
		}

		if fieldIDs != nil {
			if err := tx.Where("planning_record_id = ?", rec.ID).Delete(&models.PlanningField{}).Error; err != nil {
				return err
			}
			if err := r.insertFieldRows(tx, rec.ID, *fieldIDs); err != nil {
				return err
			}
		}

		if products != nil {
			if err := tx.Where("planning_record_id = ?", rec.ID).Delete(&models.PlanningProduct{}).Error; err != nil {
				return err
			}
			if err := r.insertProductRows(tx, rec.ID, *products); err != nil {
				return err
			}
		}

		return nil
	})
}

// FindByID finds a record by ID within a tenant with optional preloading
func (r *GormPlanningRepository) FindByID(companyID, id uuid.UUID, preload ...string) (*models.PlanningRecord, error) {
	var rec models.PlanningRecord
	query := r.db.Where("company_id = ?", companyID)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}

	return &rec, nil
}

// List retrieves planning records with filtering and pagination
func (r *GormPlanningRepository) List(filter PlanningFilter) ([]models.PlanningRecord, int64, error) {
	var records []models.PlanningRecord

	query := r.db.Model(&models.PlanningRecord{}).
		Where("planning_records.company_id = ?", filter.CompanyID)

	if filter.DisabledOnly {
		query = query.Where("planning_records.enabled = ?", false)
	} else if !filter.IncludeDisabled {
		query = query.Where("planning_records.enabled = ?", true)
	}
	if !filter.IncludeCanceled {
		query = query.Where("planning_records.status <> ?", models.StatusCancelled)
	}

	// Date-range filter keeps any record intersecting [From, To]
	if filter.From != nil {
		query = query.Where("planning_records.end_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("planning_records.start_at <= ?", *filter.To)
	}

	if filter.ActivityType != nil {
		query = query.Where("planning_records.activity_type = ?", *filter.ActivityType)
	}
	if filter.OverdueOnly {
		// "overdue" is derived; translate it back to the stored columns
		query = query.
			Where("planning_records.status NOT IN ?", []models.PlanningStatus{models.StatusCompleted, models.StatusCancelled}).
			Where("planning_records.end_at < ?", filter.Now)
	} else if filter.Status != nil {
		query = query.Where("planning_records.status = ?", *filter.Status)
	}
	if filter.ResponsibleID != nil {
		query = query.Where("planning_records.responsible_id = ?", *filter.ResponsibleID)
	}
	if filter.FieldID != nil {
		fieldSubQuery := r.db.Model(&models.PlanningField{}).
			Select("1").
			Where("planning_fields.planning_record_id = planning_records.id").
			Where("planning_fields.field_id = ?", *filter.FieldID)
		query = query.Where("EXISTS (?)", fieldSubQuery)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("planning_records.title LIKE ? OR planning_records.description LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("planning_records.start_at ASC")

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	err := listQuery.
		Preload("Responsible").
		Preload("Vehicle").
		Preload("Fields.Field").
		Preload("Products.Product").
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// Cancel hides the record and forces cancelled status unless the record
// already completed. Scoped to the tenant; zero rows means not found.
func (r *GormPlanningRepository) Cancel(companyID, id uuid.UUID) error {
	res := r.db.Model(&models.PlanningRecord{}).
		Where("id = ? AND company_id = ? AND enabled = ?", id, companyID, true).
		Updates(map[string]interface{}{
			"enabled": false,
			"status":  gorm.Expr("CASE WHEN status = ? THEN status ELSE ? END", models.StatusCompleted, models.StatusCancelled),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Restore re-enables a hidden record. Status stays whatever it was.
func (r *GormPlanningRepository) Restore(companyID, id uuid.UUID) error {
	res := r.db.Model(&models.PlanningRecord{}).
		Where("id = ? AND company_id = ? AND enabled = ?", id, companyID, false).
		Update("enabled", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// checkConflicts scans live records of the tenant for closed-interval
// overlap on the requested fields and vehicle. Runs inside the caller's
// transaction. On postgres/mysql the catalog rows for the requested
// resources are locked FOR UPDATE before the scan, so two writers booking
// the same field or vehicle serialize even when neither sees the other's
// uncommitted insert. sqlite serializes writers on its own.
func (r *GormPlanningRepository) checkConflicts(tx *gorm.DB, companyID uuid.UUID, check ConflictCheck) error {
	if err := r.lockResourceRows(tx, companyID, check); err != nil {
		return err
	}

	if len(check.FieldIDs) > 0 {
		var collided []uuid.UUID
		q := r.liveOverlapQuery(tx, companyID, check).
			Joins("JOIN planning_fields ON planning_fields.planning_record_id = planning_records.id").
			Where("planning_fields.field_id IN ?", check.FieldIDs)
		if err := q.Pluck("planning_fields.field_id", &collided).Error; err != nil {
			return err
		}
		if len(collided) > 0 {
			return &ConflictError{Resource: "field", FieldIDs: UniqueIDs(collided)}
		}
	}

	if check.VehicleID != nil {
		var ids []uuid.UUID
		q := r.liveOverlapQuery(tx, companyID, check).
			Where("planning_records.vehicle_id = ?", *check.VehicleID)
		if err := q.Pluck("planning_records.id", &ids).Error; err != nil {
			return err
		}
		if len(ids) > 0 {
			return &ConflictError{Resource: "vehicle", VehicleID: check.VehicleID}
		}
	}

	return nil
}

// lockResourceRows takes FOR UPDATE locks on the field and vehicle rows
// the proposal wants to book. An overlap scan alone cannot see a racing
// writer's uncommitted insert, so both scanning zero rows and inserting
// would double-book; serializing on the catalog rows closes that window.
func (r *GormPlanningRepository) lockResourceRows(tx *gorm.DB, companyID uuid.UUID, check ConflictCheck) error {
	switch tx.Dialector.Name() {
	case "postgres", "mysql":
	default:
		return nil
	}

	if len(check.FieldIDs) > 0 {
		var ids []uuid.UUID
		err := tx.Model(&models.Field{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("company_id = ? AND id IN ?", companyID, check.FieldIDs).
			Pluck("id", &ids).Error
		if err != nil {
			return err
		}
	}

	if check.VehicleID != nil {
		var ids []uuid.UUID
		err := tx.Model(&models.Vehicle{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("company_id = ? AND id = ?", companyID, *check.VehicleID).
			Pluck("id", &ids).Error
		if err != nil {
			return err
		}
	}

	return nil
}

// liveOverlapQuery builds the base query for conflict candidates: enabled,
// non-cancelled records of the tenant whose range intersects the proposal
// under closed-interval semantics (touching endpoints overlap).
func (r *GormPlanningRepository) liveOverlapQuery(tx *gorm.DB, companyID uuid.UUID, check ConflictCheck) *gorm.DB {
	q := tx.Model(&models.PlanningRecord{}).
		Where("planning_records.company_id = ?", companyID).
		Where("planning_records.enabled = ?", true).
		Where("planning_records.status <> ?", models.StatusCancelled).
		Where("planning_records.start_at <= ? AND planning_records.end_at >= ?", check.EndAt, check.StartAt)

	if check.ExcludeID != uuid.Nil {
		q = q.Where("planning_records.id <> ?", check.ExcludeID)
	}

	switch tx.Dialector.Name() {
	case "postgres", "mysql":
		q = q.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "planning_records"}})
	}

	return q
}

func (r *GormPlanningRepository) insertFieldRows(tx *gorm.DB, recordID uuid.UUID, fieldIDs []uuid.UUID) error {
	if len(fieldIDs) == 0 {
		return nil
	}
	rows := make([]models.PlanningField, len(fieldIDs))
	for i, fid := range fieldIDs {
		rows[i] = models.PlanningField{
			PlanningRecordID: recordID,
			FieldID:          fid,
		}
	}
	return tx.Create(&rows).Error
}

func (r *GormPlanningRepository) insertProductRows(tx *gorm.DB, recordID uuid.UUID, products []ProductLine) error {
	if len(products) == 0 {
		return nil
	}
	rows := make([]models.PlanningProduct, len(products))
	for i, p := range products {
		rows[i] = models.PlanningProduct{
			PlanningRecordID: recordID,
			ProductID:        p.ProductID,
			Amount:           p.Amount,
			Unit:             p.Unit,
		}
	}
	return tx.Create(&rows).Error
}
