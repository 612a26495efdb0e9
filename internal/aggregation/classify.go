package aggregation

import (
	"sort"

	"github.com/pulseboard/social-listener/internal/models"
)

// ClassifyTrend compares a community's occurrences in the current and previous windows
func ClassifyTrend(current, previous int) string {
	switch {
	case current > previous:
		return models.TrendGrowing
	case current < previous:
		return models.TrendShrinking
	default:
		return models.TrendStable
	}
}

// ClassifyVolume derives how loud a community is from its size estimate and current occurrence count
func ClassifyVolume(size string, current int) string {
	switch {
	case size == models.SizeLarge || current >= 3:
		return models.VolumeLoud
	case size == models.SizeSmall && current <= 1:
		return models.VolumeQuiet
	default:
		return models.VolumeMedium
	}
}

// SortAlerts orders alerts by severity, highest first, then newest first
func SortAlerts(alerts []models.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := alerts[i].Severity.Rank(), alerts[j].Severity.Rank()
		if ri != rj {
			return ri > rj
		}
		return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
	})
}

// CompetitorStats groups mentions by competitor with their mean sentiment,
// most mentioned first
func CompetitorStats(mentions []models.CompetitorMention) []models.CompetitorStat {
	type acc struct {
		count int
		total float64
	}

	groups := make(map[string]*acc)
	for _, m := range mentions {
		g, ok := groups[m.Competitor]
		if !ok {
			g = &acc{}
			groups[m.Competitor] = g
		}
		g.count++
		g.total += m.Sentiment
	}

	stats := make([]models.CompetitorStat, 0, len(groups))
	for name, g := range groups {
		stats = append(stats, models.CompetitorStat{
			Competitor:   name,
			MentionCount: g.count,
			AvgSentiment: g.total / float64(g.count),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].MentionCount != stats[j].MentionCount {
			return stats[i].MentionCount > stats[j].MentionCount
		}
		return stats[i].Competitor < stats[j].Competitor
	})

	return stats
}
