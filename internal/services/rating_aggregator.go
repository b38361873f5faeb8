package services

import (
	"sort"

	"tutorhub/internal/models"
	"tutorhub/internal/utils"
)

// AggregateRatings computes the stats of a set of ratings addressed to one
// user. It has no side effects and the order of ratings only matters for
// breaking ties between equally common tags.
func AggregateRatings(ratings []*models.Rating) *models.RatingStats {
	stats := &models.RatingStats{
		TotalRatings: len(ratings),
		CommonTags:   []models.TagCount{},
	}
	if len(ratings) == 0 {
		return stats
	}

	var overall int
	for _, r := range ratings {
		overall += r.OverallRating
	}
	stats.AverageRating = float64(overall) / float64(len(ratings))

	for _, dim := range models.RatingDimensions {
		var sum, count int
		for _, r := range ratings {
			// absent dimensions count toward neither sum nor denominator
			if v := r.Dimension(dim); v != nil && *v != 0 {
				sum += *v
				count++
			}
		}
		if count > 0 {
			stats.DimensionStats.Set(dim, float64(sum)/float64(count))
		}
	}

	stats.CommonTags = commonTags(ratings, utils.CommonTagsLimit)
	return stats
}

func commonTags(ratings []*models.Rating, limit int) []models.TagCount {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, r := range ratings {
		for _, tag := range r.Tags {
			if _, seen := counts[tag]; !seen {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	tags := make([]models.TagCount, 0, len(order))
	for _, tag := range order {
		tags = append(tags, models.TagCount{Tag: tag, Count: counts[tag]})
	}
	// first-seen order survives among equal counts
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].Count > tags[j].Count
	})

	if len(tags) > limit {
		tags = tags[:limit]
	}
	return tags
}

func roundStats(stats *models.RatingStats, places int) *models.RatingStats {
	rounded := *stats
	rounded.AverageRating = utils.RoundFloat(stats.AverageRating, places)
	d := &rounded.DimensionStats
	d.TeachingQuality = utils.RoundFloat(d.TeachingQuality, places)
	d.ClassroomPerformance = utils.RoundFloat(d.ClassroomPerformance, places)
	d.StudentProgress = utils.RoundFloat(d.StudentProgress, places)
	d.Communication = utils.RoundFloat(d.Communication, places)
	d.Punctuality = utils.RoundFloat(d.Punctuality, places)
	return &rounded
}
