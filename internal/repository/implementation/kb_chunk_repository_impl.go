package implementation

import (
	"context"
	"errors"

	"citizen-helpdesk-be/internal/entity"
	"citizen-helpdesk-be/internal/mapper"
	"citizen-helpdesk-be/internal/model"
	"citizen-helpdesk-be/internal/repository/contract"
	"citizen-helpdesk-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type KbChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KbChunkMapper
}

func NewKbChunkRepository(db *gorm.DB) contract.KbChunkRepository {
	return &KbChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewKbChunkMapper(),
	}
}

func (r *KbChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *KbChunkRepositoryImpl) Create(ctx context.Context, chunk *entity.KbChunk) error {
	m := r.mapper.ToModel(chunk)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

func (r *KbChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.KbChunk) error {
	models := make([]*model.KbChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ToModel(c)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *KbChunkRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.KbChunk{}, id).Error
}

func (r *KbChunkRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.KbChunk{}).Error
}

func (r *KbChunkRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KbChunk, error) {
	var m model.KbChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *KbChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KbChunk, error) {
	var models []*model.KbChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *KbChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.KbChunk{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithDistance returns the nearest chunks with their parent
// documents, ordered by cosine distance ascending.
func (r *KbChunkRepositoryImpl) SearchSimilarWithDistance(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredKbChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	// Cosine distance in pgvector is: 1 - cosine_similarity.
	// Document columns are aliased so the single scan fills both records.
	type result struct {
		model.KbChunk
		Distance       float64
		DocTitle       string
		DocSourceUrl   string
		DocCategory    string
		DocTotalChunks int
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("kb_chunks").
		Select("kb_chunks.*, (embedding_value <=> ?) as distance, "+
			"kb_documents.title as doc_title, kb_documents.source_url as doc_source_url, "+
			"kb_documents.category as doc_category, kb_documents.total_chunks as doc_total_chunks", queryVector).
		Joins("JOIN kb_documents ON kb_documents.id = kb_chunks.document_id").
		Where("kb_chunks.deleted_at IS NULL").
		Where("kb_documents.deleted_at IS NULL").
		Order("distance ASC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredKbChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredKbChunk{
			Chunk: r.mapper.ToEntity(&res.KbChunk),
			Document: &entity.KbDocument{
				Id:          res.KbChunk.DocumentId,
				Title:       res.DocTitle,
				SourceUrl:   res.DocSourceUrl,
				Category:    res.DocCategory,
				TotalChunks: res.DocTotalChunks,
			},
			Distance: res.Distance,
		}
	}
	return scored, nil
}
