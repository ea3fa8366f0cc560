package upload

import (
	"context"
	"fmt"
	"sync"
)

// FileError reports a file that was left out of the result.
type FileError struct {
	Name string
	Err  error
}

func (e FileError) Error() string { return fmt.Sprintf("%s: %v", e.Name, e.Err) }
func (e FileError) Unwrap() error { return e.Err }

// Result lists the URLs of stored files in input order, and the failures.
type Result struct {
	URLs   []string
	Failed []FileError
}

// Tracker uploads a batch one file at a time and reports overall progress
// as (completedFiles*100 + currentPercent) / totalFiles. Reported values
// never decrease.
type Tracker struct {
	uploader Uploader
	maxBytes int64
	report   func(percent int)

	mu      sync.Mutex
	current int
	done    int
	total   int
	last    int
}

// NewTracker wraps uploader. maxBytes <= 0 means DefaultMaxBytes; report
// may be nil.
func NewTracker(uploader Uploader, maxBytes int64, report func(percent int)) *Tracker {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Tracker{uploader: uploader, maxBytes: maxBytes, report: report}
}

// Percent is the last reported value.
func (t *Tracker) Percent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Upload sends files sequentially. A file that fails is omitted from URLs
// and listed in Failed; the others continue. Cancelling ctx stops the batch
// and returns ctx's error together with whatever finished before.
func (t *Tracker) Upload(ctx context.Context, files []File) (Result, error) {
	t.mu.Lock()
	t.current, t.done, t.total, t.last = 0, 0, len(files), 0
	t.mu.Unlock()

	var res Result
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		t.mu.Lock()
		t.current = i
		t.mu.Unlock()

		if f.Size() > t.maxBytes {
			res.Failed = append(res.Failed, FileError{Name: f.Name, Err: ErrTooLarge})
		} else {
			url, err := t.uploader.Upload(ctx, f, t.fileProgress(i))
			switch {
			case err != nil && ctx.Err() != nil:
				return res, ctx.Err()
			case err != nil:
				res.Failed = append(res.Failed, FileError{Name: f.Name, Err: err})
			default:
				res.URLs = append(res.URLs, url)
			}
		}

		t.mu.Lock()
		t.done = i + 1
		t.mu.Unlock()
		t.emit(0, i)
	}
	t.finish()
	return res, nil
}

func (t *Tracker) fileProgress(index int) ProgressFunc {
	return func(sent, total int64) {
		if total <= 0 {
			return
		}
		pct := int(sent * 100 / total)
		if pct > 100 {
			pct = 100
		}
		t.emit(pct, index)
	}
}

// emit computes the overall percent. Callbacks from a file that is no longer
// current are dropped. report runs under the lock so observers see values in
// order; it must not call back into the tracker.
func (t *Tracker) emit(current, index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index != t.current || t.total == 0 {
		return
	}
	if t.done > index {
		current = 0
	}
	t.advance((t.done*100 + current) / t.total)
}

func (t *Tracker) finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.advance(100)
}

func (t *Tracker) advance(overall int) {
	overall = min(overall, 100)
	if overall <= t.last {
		return
	}
	t.last = overall
	if t.report != nil {
		t.report(overall)
	}
}
