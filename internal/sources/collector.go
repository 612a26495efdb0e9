package sources

import (
	"context"
	"fmt"
	"sync"

	"github.com/pulseboard/social-listener/internal/metrics"
	"github.com/pulseboard/social-listener/internal/models"
	"github.com/sirupsen/logrus"
)

// Collector runs every enabled source concurrently
type Collector struct {
	sources []Source
}

// NewCollector creates a collector over the given sources
func NewCollector(sources ...Source) *Collector {
	return &Collector{sources: sources}
}

// Sources returns the configured sources
func (c *Collector) Sources() []Source {
	return c.sources
}

type sourceResult struct {
	index int
	posts []models.Post
}

// CollectAll fetches from all enabled sources and concatenates their posts in source order.
// A failing or panicking source is logged and contributes whatever it returned.
func (c *Collector) CollectAll(ctx context.Context) []models.Post {
	var wg sync.WaitGroup
	resultsChan := make(chan sourceResult, len(c.sources))

	for i, source := range c.sources {
		if !source.IsEnabled() {
			logrus.Debugf("Skipping disabled source %s", source.GetName())
			continue
		}

		wg.Add(1)
		go func(index int, src Source) {
			defer wg.Done()

			posts, err := fetchSafely(ctx, src)
			if err != nil {
				logrus.WithField("platform", src.GetName()).Errorf("Error fetching from %s: %v", src.GetName(), err)
				metrics.SourceErrorsTotal.WithLabelValues(src.GetName()).Inc()
			}

			logrus.Infof("Found %d posts from %s", len(posts), src.GetName())
			metrics.PostsCollectedTotal.WithLabelValues(src.GetName()).Add(float64(len(posts)))
			resultsChan <- sourceResult{index: index, posts: posts}
		}(i, source)
	}

	// Close channel when all goroutines complete
	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	perSource := make([][]models.Post, len(c.sources))
	for result := range resultsChan {
		perSource[result.index] = result.posts
	}

	allPosts := make([]models.Post, 0)
	for _, posts := range perSource {
		allPosts = append(allPosts, posts...)
	}

	logrus.Infof("Collected %d total posts from all sources", len(allPosts))
	return allPosts
}

func fetchSafely(ctx context.Context, src Source) (posts []models.Post, err error) {
	defer func() {
		if r := recover(); r != nil {
			posts = nil
			err = fmt.Errorf("panic in %s collector: %v", src.GetName(), r)
		}
	}()

	return src.FetchPosts(ctx)
}
