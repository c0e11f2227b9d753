package tickettypes

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ticketType *TicketType) error
	GetByID(id uuid.UUID) (*TicketType, error)
	GetByEventID(eventID uuid.UUID) ([]TicketType, error)
	Update(id uuid.UUID, updates map[string]interface{}) (*TicketType, error)
	Delete(id uuid.UUID) error
	// CountSold returns the number of tickets issued against the type
	// that still consume inventory (any status except refunded).
	CountSold(typeID uuid.UUID) (int, error)
	CountSoldBatch(typeIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ticketType *TicketType) error {
	return r.db.Create(ticketType).Error
}

func (r *repository) GetByID(id uuid.UUID) (*TicketType, error) {
	var ticketType TicketType
	err := r.db.Where("id = ?", id).First(&ticketType).Error
	if err != nil {
		return nil, err
	}
	return &ticketType, nil
}

func (r *repository) GetByEventID(eventID uuid.UUID) ([]TicketType, error) {
	var types []TicketType
	err := r.db.
		Where("event_id = ?", eventID).
		Order("price ASC, name ASC").
		Find(&types).Error
	return types, err
}

func (r *repository) Update(id uuid.UUID, updates map[string]interface{}) (*TicketType, error) {
	var ticketType TicketType

	if err := r.db.Where("id = ?", id).First(&ticketType).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&ticketType).Updates(updates).Error; err != nil {
		return nil, err
	}

	if err := r.db.Where("id = ?", id).First(&ticketType).Error; err != nil {
		return nil, err
	}

	return &ticketType, nil
}

func (r *repository) Delete(id uuid.UUID) error {
	var sold int64
	if err := r.db.Table("tickets").
		Where("ticket_type_id = ? AND status != ?", id, "refunded").
		Count(&sold).Error; err != nil {
		return err
	}
	if sold > 0 {
		return ErrTypeHasSales
	}

	return r.db.Where("id = ?", id).Delete(&TicketType{}).Error
}

func (r *repository) CountSold(typeID uuid.UUID) (int, error) {
	var count int64
	err := r.db.Table("tickets").
		Where("ticket_type_id = ? AND status != ?", typeID, "refunded").
		Count(&count).Error
	return int(count), err
}

func (r *repository) CountSoldBatch(typeIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	if len(typeIDs) == 0 {
		return map[uuid.UUID]int{}, nil
	}

	var rows []struct {
		TicketTypeID uuid.UUID
		Sold         int
	}

	err := r.db.Table("tickets").
		Select("ticket_type_id, COUNT(*) AS sold").
		Where("ticket_type_id IN ? AND status != ?", typeIDs, "refunded").
		Group("ticket_type_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int, len(typeIDs))
	for _, id := range typeIDs {
		counts[id] = 0
	}
	for _, row := range rows {
		counts[row.TicketTypeID] = row.Sold
	}

	return counts, nil
}
