// Package stats is the read-only statistics aggregator: it reports over
// need and accepted-match history and never writes back.
package stats

import (
	"context"
	"fmt"
	"time"

	"helplink/pkg/types"
)

const monthLayout = "200601"

// Source is the read surface the aggregator consumes. Keys of the monthly
// maps are "YYYY-MM".
type Source interface {
	MonthlyNeedCounts(ctx context.Context, from, to time.Time, regionID, category string) (map[string]int, error)
	MonthlyMatchCounts(ctx context.Context, from, to time.Time, regionID, category string) (map[string]int, error)
	Totals(ctx context.Context) (Totals, error)
}

type Totals struct {
	Users           int `json:"total_users"`
	Needs           int `json:"total_needs"`
	PublishedNeeds  int `json:"published_needs"`
	Responses       int `json:"total_responses"`
	AcceptedMatches int `json:"total_accepted"`
}

type Series struct {
	Labels   []string `json:"labels"`
	Needs    []int    `json:"needs"`
	Accepted []int    `json:"accepted"`
}

type Summary struct {
	TotalNeeds    int `json:"total_needs"`
	TotalAccepted int `json:"total_accepted"`
}

type MonthlyReport struct {
	ChartData Series  `json:"chart_data"`
	Summary   Summary `json:"summary"`
}

type Service struct {
	source Source
	now    func() time.Time
}

func New(source Source) *Service {
	return &Service{source: source, now: time.Now}
}

// Monthly builds the per-month need/accepted series. Without explicit
// bounds it covers the trailing six months.
func (s *Service) Monthly(ctx context.Context, q types.StatsQuery) (*MonthlyReport, error) {
	from, to, err := s.monthRange(q.StartMonth, q.EndMonth)
	if err != nil {
		return nil, err
	}

	needCounts, err := s.source.MonthlyNeedCounts(ctx, from, to, q.RegionID, q.Category)
	if err != nil {
		return nil, fmt.Errorf("aggregate needs: %w", err)
	}
	matchCounts, err := s.source.MonthlyMatchCounts(ctx, from, to, q.RegionID, q.Category)
	if err != nil {
		return nil, fmt.Errorf("aggregate matches: %w", err)
	}

	series := Series{Labels: []string{}, Needs: []int{}, Accepted: []int{}}
	summary := Summary{}
	for month := from; month.Before(to); month = month.AddDate(0, 1, 0) {
		label := month.Format("2006-01")
		series.Labels = append(series.Labels, label)
		series.Needs = append(series.Needs, needCounts[label])
		series.Accepted = append(series.Accepted, matchCounts[label])
		summary.TotalNeeds += needCounts[label]
		summary.TotalAccepted += matchCounts[label]
	}

	return &MonthlyReport{ChartData: series, Summary: summary}, nil
}

// Overview is the admin dashboard snapshot.
func (s *Service) Overview(ctx context.Context, actor types.Actor) (*Totals, error) {
	if !actor.Admin {
		return nil, types.NewPermissionDenied("仅管理员可访问")
	}

	totals, err := s.source.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregate totals: %w", err)
	}
	return &totals, nil
}

// monthRange turns YYYYMM bounds into [start of first month, start of month
// after last month).
func (s *Service) monthRange(startMonth, endMonth string) (time.Time, time.Time, error) {
	now := s.now()

	end := now
	if endMonth != "" {
		parsed, err := time.Parse(monthLayout, endMonth)
		if err != nil {
			return time.Time{}, time.Time{}, types.NewValidationError(map[string]string{"end_month": "格式应为YYYYMM"})
		}
		end = parsed
	}

	start := now.AddDate(0, -5, 0)
	if startMonth != "" {
		parsed, err := time.Parse(monthLayout, startMonth)
		if err != nil {
			return time.Time{}, time.Time{}, types.NewValidationError(map[string]string{"start_month": "格式应为YYYYMM"})
		}
		start = parsed
	}

	from := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	if !from.Before(to) {
		return time.Time{}, time.Time{}, types.NewValidationError(map[string]string{"start_month": "起始月份应早于结束月份"})
	}
	return from, to, nil
}
