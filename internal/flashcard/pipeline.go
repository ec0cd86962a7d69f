package flashcard

import (
	"context"
	"sync"
)

// ChapterResult pairs a chapter with its generation outcome.
type ChapterResult struct {
	Chapter Chapter
	Result  *GenerationResult
	Err     error
}

// GenerateAll fans chapters out to a bounded worker pool. All workers
// pull from a single shared queue. Results come back in input order;
// a failed chapter carries its error and does not stop the others.
func (g *Generator) GenerateAll(ctx context.Context, chapters []Chapter, workers int) []ChapterResult {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(chapters) {
		workers = len(chapters)
	}

	results := make([]ChapterResult, len(chapters))
	queue := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range queue {
				res, err := g.Generate(ctx, chapters[idx])
				results[idx] = ChapterResult{Chapter: chapters[idx], Result: res, Err: err}
			}
		}()
	}

	for i := range chapters {
		queue <- i
	}
	close(queue)
	wg.Wait()

	return results
}
