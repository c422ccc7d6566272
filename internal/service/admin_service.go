package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	"wcircle.app/watchcircle/internal/model"
	"wcircle.app/watchcircle/internal/repository"
)

type AdminService interface {
	GetStreamingAllowlist(ctx context.Context) ([]string, error)
	// SetStreamingAllowlist normalizes the given platform names, persists
	// them and invalidates the enrichment cache.
	SetStreamingAllowlist(ctx context.Context, platforms []string) ([]string, error)
}

type adminService struct {
	settingRepo repository.SettingRepository
	redisClient *redis.Client
}

func NewAdminService(settingRepo repository.SettingRepository, redisClient *redis.Client) AdminService {
	return &adminService{
		settingRepo: settingRepo,
		redisClient: redisClient,
	}
}

func (s *adminService) GetStreamingAllowlist(ctx context.Context) ([]string, error) {
	setting, err := s.settingRepo.Get(ctx, model.SettingStreamingAllowlist)
	if err != nil {
		return nil, err
	}
	if setting == nil || setting.Value == "" {
		return []string{}, nil
	}

	var platforms []string
	if err := json.Unmarshal([]byte(setting.Value), &platforms); err != nil {
		return nil, fmt.Errorf("streaming allowlist is not valid JSON: %w", err)
	}
	return platforms, nil
}

func (s *adminService) SetStreamingAllowlist(ctx context.Context, platforms []string) ([]string, error) {
	normalized := NormalizePlatforms(platforms)

	value, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}

	if err := s.settingRepo.Upsert(ctx, &model.AppSetting{
		Key:   model.SettingStreamingAllowlist,
		Value: string(value),
	}); err != nil {
		return nil, err
	}

	if s.redisClient != nil {
		if err := s.redisClient.Del(ctx, allowlistCacheKey).Err(); err != nil {
			log.Printf("admin: failed to invalidate allowlist cache: %v", err)
		}
	}

	return normalized, nil
}
