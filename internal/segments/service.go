package segments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/kliva/kliva/internal/logging"
	"github.com/kliva/kliva/internal/memo"
	"github.com/kliva/kliva/internal/settings"
	"github.com/kliva/kliva/internal/strava"
	"github.com/kliva/kliva/internal/units"
)

// ErrInvalidID 表示调用方传入了空的分段或运动员 ID，此类请求不会进入缓存。
var ErrInvalidID = errors.New("id is required")

const currentAthleteKey = "current"

// Options 控制 Service 的缓存与日志行为。
type Options struct {
	// TTL 为 0 时缓存条目在进程生命周期内有效，失败结果同样被缓存。
	TTL    time.Duration
	Logger *logrus.Logger
}

// Service 负责“读取令牌/单位 → 请求 → 解码 → 单位换算”的流程，并按 ID 记忆结果。
// 返回的对象被所有调用方共享，调用方不应修改。
type Service struct {
	client   *strava.Client
	settings settings.Store
	logger   *logrus.Entry

	segments *memo.Cache[*Segment]
	starred  *memo.Cache[[]SegmentSummary]
	current  singleflight.Group
}

// NewService constructs a segment service over the shared API client and settings store.
func NewService(client *strava.Client, store settings.Store, opts Options) (*Service, error) {
	if client == nil {
		return nil, errors.New("strava client is required")
	}
	if store == nil {
		return nil, errors.New("settings store is required")
	}
	cacheOpts := memo.Options{TTL: opts.TTL}
	return &Service{
		client:   client,
		settings: store,
		logger:   logging.ForComponent(opts.Logger, "segments"),
		segments: memo.New[*Segment](cacheOpts),
		starred:  memo.New[[]SegmentSummary](cacheOpts),
	}, nil
}

// GetSegment 返回分段详情。同一 segmentID 只会请求一次，后续调用（包括失败）共享首个结果。
func (s *Service) GetSegment(ctx context.Context, segmentID string) (*Segment, error) {
	segmentID = strings.TrimSpace(segmentID)
	if segmentID == "" {
		return nil, ErrInvalidID
	}

	var fetched atomic.Bool
	segment, err := s.segments.Do(ctx, segmentID, func(ctx context.Context, key string) (*Segment, error) {
		fetched.Store(true)
		return s.fetchSegment(ctx, key)
	})
	s.logAccess("segment", segmentID, !fetched.Load(), err)
	return segment, err
}

// GetAthleteStarredSegments 返回指定运动员收藏的分段，按 athleteID 记忆。
func (s *Service) GetAthleteStarredSegments(ctx context.Context, athleteID string) ([]SegmentSummary, error) {
	athleteID = strings.TrimSpace(athleteID)
	if athleteID == "" {
		return nil, ErrInvalidID
	}

	var fetched atomic.Bool
	list, err := s.starred.Do(ctx, athleteID, func(ctx context.Context, key string) ([]SegmentSummary, error) {
		fetched.Store(true)
		return s.fetchSummaries(ctx, "athlete_starred", key, strava.AthleteStarredPath(key))
	})
	s.logAccess("athlete_starred", athleteID, !fetched.Load(), err)
	return list, err
}

// GetStarredSegments 返回当前用户收藏的分段。结果不做缓存，仅合并同时发生的请求。
func (s *Service) GetStarredSegments(ctx context.Context) ([]SegmentSummary, error) {
	ch := s.current.DoChan(currentAthleteKey, func() (interface{}, error) {
		return s.fetchSummaries(context.WithoutCancel(ctx), "starred", currentAthleteKey, strava.StarredPath)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]SegmentSummary), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// InvalidateSegment 丢弃缓存的分段结果，下一次 GetSegment 将重新请求。
func (s *Service) InvalidateSegment(segmentID string) bool {
	return s.segments.Invalidate(strings.TrimSpace(segmentID))
}

// InvalidateAthleteStarred 丢弃缓存的运动员收藏列表。
func (s *Service) InvalidateAthleteStarred(athleteID string) bool {
	return s.starred.Invalidate(strings.TrimSpace(athleteID))
}

// CachedSegments 返回当前缓存的分段条目数（含进行中的请求）。
func (s *Service) CachedSegments() int {
	return s.segments.Len()
}

// CachedStarredLists 返回当前缓存的收藏列表条目数。
func (s *Service) CachedStarredLists() int {
	return s.starred.Len()
}

func (s *Service) fetchSegment(ctx context.Context, segmentID string) (*Segment, error) {
	token, unit, err := s.credentials(ctx)
	if err != nil {
		s.logFailure("segment", segmentID, err)
		return nil, err
	}

	var segment Segment
	if err := s.client.GetJSON(ctx, strava.SegmentPath(segmentID), token, &segment); err != nil {
		s.logFailure("segment", segmentID, err)
		return nil, err
	}
	segment.Normalize(unit)
	s.logFetched("segment", segmentID, unit)
	return &segment, nil
}

func (s *Service) fetchSummaries(ctx context.Context, resource, key, endpoint string) ([]SegmentSummary, error) {
	token, unit, err := s.credentials(ctx)
	if err != nil {
		s.logFailure(resource, key, err)
		return nil, err
	}

	var list []SegmentSummary
	if err := s.client.GetJSON(ctx, endpoint, token, &list); err != nil {
		s.logFailure(resource, key, err)
		return nil, err
	}
	if list == nil {
		list = []SegmentSummary{}
	}
	for i := range list {
		list[i].Normalize(unit)
	}
	s.logFetched(resource, key, unit)
	return list, nil
}

func (s *Service) credentials(ctx context.Context) (string, units.DistanceUnitType, error) {
	token, err := s.settings.AccessToken(ctx)
	if err != nil {
		return "", "", fmt.Errorf("load access token: %w", err)
	}
	unit, err := s.settings.DistanceUnit(ctx)
	if err != nil {
		return "", "", fmt.Errorf("load distance unit: %w", err)
	}
	return token, unit, nil
}

func (s *Service) logAccess(resource, key string, cacheHit bool, err error) {
	entry := s.logger.WithFields(logging.FetchFields(resource, key, cacheHit))
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Debug("segment_access")
}

func (s *Service) logFetched(resource, key string, unit units.DistanceUnitType) {
	fields := logging.FetchFields(resource, key, false)
	fields["unit"] = unit.String()
	fields["distance_in"] = unit.DistanceLabel()
	fields["elevation_in"] = unit.ElevationLabel()
	s.logger.WithFields(fields).Info("segment_fetched")
}

func (s *Service) logFailure(resource, key string, err error) {
	fields := logging.FetchFields(resource, key, false)
	if kind := strava.KindOf(err); kind != "" {
		fields["error_kind"] = string(kind)
	}
	s.logger.WithFields(fields).WithError(err).Warn("segment_fetch_failed")
}
