package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"cybersite/internal/events"
	"cybersite/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// BaseService interface defines common CRUD operations
type BaseService[T any] interface {
	Create(ctx context.Context, entity *T) error
	Get(ctx context.Context, id string) (*T, error)
	GetBy(ctx context.Context, column string, value interface{}) (*T, error)
	List(ctx context.Context, params ListParams) (*ListResult[T], error)
	Update(ctx context.Context, id string, apply func(*T) error) (*T, error)
	Delete(ctx context.Context, id string) error
	Spec() ListSpec
}

// ListSpec describes how the collection endpoint of one entity is queried.
type ListSpec struct {
	// Collection is the JSON key the items are returned under.
	Collection string
	// SearchColumns are matched case-insensitively against ?search=.
	SearchColumns []string
	// Filters maps query parameters onto columns compared with equality.
	Filters map[string]string
	// BoolFilters are like Filters but parse the value as a boolean.
	BoolFilters map[string]string
	// Order is applied before the id tie-breaker.
	Order []string
	// StatusColumn, when set, adds a statusCounts map to list results.
	StatusColumn string
	// Counters are bumped in place by other writers and never saved by Update.
	Counters []string
}

type ListParams struct {
	Page    int
	Limit   int
	Search  string
	Filters map[string]string
	// Exclude drops rows whose filter column holds one of the values.
	Exclude map[string][]string
}

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Normalise clamps page and limit into range.
func (p *ListParams) Normalise() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type ListResult[T any] struct {
	Items        []T
	Pagination   Pagination
	StatusCounts map[string]int64
}

// Hooks let entity services add rules around the generic writes. All run
// inside the write transaction.
type Hooks[T any] struct {
	BeforeCreate func(ctx context.Context, tx *gorm.DB, entity *T) error
	BeforeUpdate func(ctx context.Context, tx *gorm.DB, current, next *T) error
	BeforeDelete func(ctx context.Context, tx *gorm.DB, current *T) error
}

// BaseServiceImpl implements BaseService
type BaseServiceImpl[T any] struct {
	db        *gorm.DB
	modelType T
	spec      ListSpec
	hooks     Hooks[T]
}

// GormTableName resolves the table of a model, honouring TableName overrides.
func GormTableName(db *gorm.DB, v any) string {
	if tabler, ok := v.(schema.Tabler); ok {
		return tabler.TableName()
	}
	structName := reflect.TypeOf(v).Name()
	return db.NamingStrategy.TableName(structName)
}

// NewBaseService creates a new base service
func NewBaseService[T any](db *gorm.DB, modelType T, spec ListSpec, hooks ...Hooks[T]) *BaseServiceImpl[T] {
	s := &BaseServiceImpl[T]{
		db:        db,
		modelType: modelType,
		spec:      spec,
	}
	if len(hooks) > 0 {
		s.hooks = hooks[0]
	}
	return s
}

func (s *BaseServiceImpl[T]) Spec() ListSpec {
	return s.spec
}

func (s *BaseServiceImpl[T]) table() string {
	return GormTableName(s.db, s.modelType)
}

func entityID(entity any) string {
	if e, ok := entity.(models.Entity); ok {
		return e.BaseModel().ID
	}
	return ""
}

// checkSlug rejects a slug already used by another row of the same table.
func (s *BaseServiceImpl[T]) checkSlug(tx *gorm.DB, entity *T) error {
	sluggable, ok := any(entity).(models.Sluggable)
	if !ok {
		return nil
	}
	slug := sluggable.GetSlug()
	if slug == "" {
		return fmt.Errorf("%w: slug is required", ErrInvalidInput)
	}
	var count int64
	q := tx.Model(new(T)).Where("slug = ?", slug)
	if id := entityID(entity); id != "" {
		q = q.Where("id <> ?", id)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: slug %q is already in use", ErrConflict, slug)
	}
	return nil
}

func (s *BaseServiceImpl[T]) Create(ctx context.Context, entity *T) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.hooks.BeforeCreate != nil {
			if err := s.hooks.BeforeCreate(ctx, tx, entity); err != nil {
				return err
			}
		}
		if err := s.checkSlug(tx, entity); err != nil {
			return err
		}
		return tx.Create(entity).Error
	})
	if err != nil {
		return translate(err)
	}

	events.Emit(fmt.Sprintf("%s.created", s.table()), entity)
	return nil
}

func (s *BaseServiceImpl[T]) Get(ctx context.Context, id string) (*T, error) {
	var entity T
	if err := s.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &entity, nil
}

// GetBy loads the first row whose column equals value.
func (s *BaseServiceImpl[T]) GetBy(ctx context.Context, column string, value interface{}) (*T, error) {
	var entity T
	if err := s.db.WithContext(ctx).Where(column+" = ?", value).First(&entity).Error; err != nil {
		return nil, translate(err)
	}
	return &entity, nil
}

// List returns one page of the collection. Pages past the end come back
// empty with the requested page number and the real totals.
func (s *BaseServiceImpl[T]) List(ctx context.Context, params ListParams) (*ListResult[T], error) {
	return s.listWhere(ctx, params, "")
}

// listWhere is List restricted by an extra condition, e.g. to one parent row.
func (s *BaseServiceImpl[T]) listWhere(ctx context.Context, params ListParams, cond string, args ...interface{}) (*ListResult[T], error) {
	params.Normalise()

	query := s.db.WithContext(ctx).Model(new(T))
	if cond != "" {
		query = query.Where(cond, args...)
	}
	query = s.applyFilters(query, params).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	entities := make([]T, 0)
	page := query
	for _, order := range s.spec.Order {
		page = page.Order(order)
	}
	page = page.Order("id ASC")
	if err := page.Offset((params.Page - 1) * params.Limit).Limit(params.Limit).Find(&entities).Error; err != nil {
		return nil, err
	}

	result := &ListResult[T]{
		Items: entities,
		Pagination: Pagination{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(params.Limit))),
		},
	}

	if s.spec.StatusColumn != "" {
		counts, err := s.statusCounts(ctx)
		if err != nil {
			return nil, err
		}
		result.StatusCounts = counts
	}

	return result, nil
}

func (s *BaseServiceImpl[T]) applyFilters(query *gorm.DB, params ListParams) *gorm.DB {
	if search := strings.ToLower(strings.TrimSpace(params.Search)); search != "" && len(s.spec.SearchColumns) > 0 {
		clauses := make([]string, 0, len(s.spec.SearchColumns))
		args := make([]interface{}, 0, len(s.spec.SearchColumns))
		like := "%" + escapeLike(search) + "%"
		for _, col := range s.spec.SearchColumns {
			clauses = append(clauses, fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '\\'", col))
			args = append(args, like)
		}
		query = query.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}

	for param, value := range params.Filters {
		value = strings.TrimSpace(value)
		if value == "" || value == "all" {
			continue
		}
		if col, ok := s.spec.Filters[param]; ok {
			query = query.Where(col+" = ?", value)
			continue
		}
		if col, ok := s.spec.BoolFilters[param]; ok {
			if b, err := strconv.ParseBool(value); err == nil {
				query = query.Where(col+" = ?", b)
			}
		}
	}
	for param, values := range params.Exclude {
		if col, ok := s.spec.Filters[param]; ok && len(values) > 0 {
			query = query.Where(col+" NOT IN ?", values)
		}
	}
	return query
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (s *BaseServiceImpl[T]) statusCounts(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	col := s.spec.StatusColumn
	if err := s.db.WithContext(ctx).Model(new(T)).
		Select(col + " AS status, COUNT(*) AS count").
		Group(col).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// Update loads the row, lets apply overlay the changes on a fresh copy and
// saves the result. The id and creation time of the stored row always win.
func (s *BaseServiceImpl[T]) Update(ctx context.Context, id string, apply func(*T) error) (*T, error) {
	var next T
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current T
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.First(&next, "id = ?", id).Error; err != nil {
			return err
		}

		if err := apply(&next); err != nil {
			return err
		}
		if cur, ok := any(&current).(models.Entity); ok {
			base := any(&next).(models.Entity).BaseModel()
			base.ID = cur.BaseModel().ID
			base.CreatedAt = cur.BaseModel().CreatedAt
		}

		if s.hooks.BeforeUpdate != nil {
			if err := s.hooks.BeforeUpdate(ctx, tx, &current, &next); err != nil {
				return err
			}
		}
		if err := s.checkSlug(tx, &next); err != nil {
			return err
		}
		if len(s.spec.Counters) > 0 {
			tx = tx.Omit(s.spec.Counters...)
		}
		return tx.Save(&next).Error
	})
	if err != nil {
		return nil, translate(err)
	}

	events.Emit(fmt.Sprintf("%s.updated", s.table()), &next)
	return &next, nil
}

func (s *BaseServiceImpl[T]) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current T
		if err := tx.First(&current, "id = ?", id).Error; err != nil {
			return err
		}
		if s.hooks.BeforeDelete != nil {
			if err := s.hooks.BeforeDelete(ctx, tx, &current); err != nil {
				return err
			}
		}
		res := tx.Delete(&current)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return translate(err)
	}

	events.Emit(fmt.Sprintf("%s.deleted", s.table()), id)
	return nil
}

// IsNotFound reports whether err means the entity does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
