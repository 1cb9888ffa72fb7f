package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"courseware_backend/internal/model"
	"courseware_backend/internal/util"
	"courseware_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultAncestryTTL = 10 * time.Minute

// AncestryRepository resolves the chain of parents of a courseware element.
// Deployed courseware is immutable, so chains are cached in redis when a
// client is configured.
type AncestryRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
	TTL   time.Duration
}

func NewAncestryRepository(db *gorm.DB, rdb *redis.Client, ttl time.Duration) *AncestryRepository {
	if ttl <= 0 {
		ttl = defaultAncestryTTL
	}
	return &AncestryRepository{DB: db, Redis: rdb, TTL: ttl}
}

func ancestryKey(deploymentID, elementID string) string {
	return fmt.Sprintf("courseware:ancestry:%s:%s", deploymentID, elementID)
}

// GetAncestry 返回元素自身及其所有祖先, 直到根活动
func (r *AncestryRepository) GetAncestry(ctx context.Context, deploymentID, elementID string, elementType model.CoursewareElementType) ([]model.CoursewareElement, error) {
	key := ancestryKey(deploymentID, elementID)

	// 1. 先查缓存
	if r.Redis != nil {
		cached, err := r.Redis.Get(ctx, key).Bytes()
		if err == nil {
			var ancestry []model.CoursewareElement
			if jsonErr := json.Unmarshal(cached, &ancestry); jsonErr == nil && len(ancestry) > 0 {
				return ancestry, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("Ancestry cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	// 2. 回源数据库
	ancestry, err := r.walk(ctx, deploymentID, elementID, elementType)
	if err != nil {
		return nil, err
	}

	// 3. 写回缓存
	if r.Redis != nil {
		if data, jsonErr := json.Marshal(ancestry); jsonErr == nil {
			if err := r.Redis.Set(ctx, key, data, r.TTL).Err(); err != nil {
				logger.Log.Warn("Ancestry cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return ancestry, nil
}

func (r *AncestryRepository) walk(ctx context.Context, deploymentID, elementID string, elementType model.CoursewareElementType) ([]model.CoursewareElement, error) {
	node, err := r.find(ctx, deploymentID, elementID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: element %s", util.ErrNotFound, elementID)
	}
	if err != nil {
		return nil, err
	}

	ancestry := []model.CoursewareElement{model.NewElement(elementID, elementType)}
	seen := map[string]bool{elementID: true}
	for node.ParentID != "" {
		if seen[node.ParentID] {
			return nil, fmt.Errorf("%w: cycle at %s", util.ErrIllegalArgument, node.ParentID)
		}
		seen[node.ParentID] = true

		parentID := node.ParentID
		node, err = r.find(ctx, deploymentID, parentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", util.ErrParentNotFound, parentID)
		}
		if err != nil {
			return nil, err
		}
		ancestry = append(ancestry, node.Element())
	}
	return ancestry, nil
}

func (r *AncestryRepository) find(ctx context.Context, deploymentID, elementID string) (*model.CoursewareNode, error) {
	var node model.CoursewareNode
	err := r.DB.WithContext(ctx).
		Where("deployment_id = ? AND element_id = ?", deploymentID, elementID).
		First(&node).Error
	if err != nil {
		return nil, err
	}
	return &node, nil
}
