package mapper

import (
	"time"

	"citizen-helpdesk-be/internal/entity"
	"citizen-helpdesk-be/internal/model"

	"gorm.io/gorm"
)

type KbDocumentMapper struct{}

func NewKbDocumentMapper() *KbDocumentMapper {
	return &KbDocumentMapper{}
}

func (m *KbDocumentMapper) ToEntity(d *model.KbDocument) *entity.KbDocument {
	if d == nil {
		return nil
	}

	var deletedAt *time.Time
	if d.DeletedAt.Valid {
		t := d.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &entity.KbDocument{
		Id:          d.Id,
		Title:       d.Title,
		SourceUrl:   d.SourceUrl,
		Category:    d.Category,
		TotalChunks: d.TotalChunks,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   d.DeletedAt.Valid,
	}
}

func (m *KbDocumentMapper) ToModel(d *entity.KbDocument) *model.KbDocument {
	if d == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if d.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *d.DeletedAt, Valid: true}
	} else if d.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.KbDocument{
		Id:          d.Id,
		Title:       d.Title,
		SourceUrl:   d.SourceUrl,
		Category:    d.Category,
		TotalChunks: d.TotalChunks,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}
