package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/kuitang/builder-e2e/internal/config"
	"github.com/kuitang/builder-e2e/internal/obs"
	"github.com/kuitang/builder-e2e/internal/s3client"
)

const defaultConcurrency = 4

// Uploader copies screenshots to object storage.
type Uploader struct {
	client      *s3client.Client
	prefix      string
	concurrency int
	limiter     *rate.Limiter // nil is unlimited
}

// NewUploader wraps client. concurrency <= 0 selects the default.
func NewUploader(client *s3client.Client, prefix string, concurrency int) *Uploader {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Uploader{
		client:      client,
		prefix:      strings.Trim(prefix, "/"),
		concurrency: concurrency,
	}
}

// WithRateLimit caps PutObject calls at rps per second. rps <= 0 removes the cap.
func (u *Uploader) WithRateLimit(rps float64) *Uploader {
	if rps <= 0 {
		u.limiter = nil
		return u
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	u.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return u
}

// NewUploaderFromConfig builds an uploader for the configured bucket.
func NewUploaderFromConfig(ctx context.Context, cfg *config.Config) (*Uploader, error) {
	if !cfg.UploadEnabled() {
		return nil, errors.New("artifact upload is not configured: set ARTIFACTS_BUCKET")
	}
	client, err := s3client.New(ctx, s3client.Config{
		Endpoint:        cfg.AWSEndpointS3,
		Region:          cfg.AWSRegion,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		Bucket:          cfg.ArtifactsBucket,
		UsePathStyle:    cfg.AWSEndpointS3 != "",
	})
	if err != nil {
		return nil, err
	}
	return NewUploader(client, cfg.ArtifactsPrefix, 0).WithRateLimit(cfg.ArtifactsUploadRPS), nil
}

// Key returns the object key for a file at rel (relative to the results dir).
func (u *Uploader) Key(runID, rel string) string {
	return path.Join(u.prefix, runID, filepath.ToSlash(rel))
}

// Upload pushes every *.png under dir and returns the uploaded keys, sorted.
// The first failed upload cancels the rest.
func (u *Uploader) Upload(ctx context.Context, dir, runID string) ([]string, error) {
	if strings.TrimSpace(runID) == "" {
		return nil, errors.New("upload requires a run id")
	}
	files, err := screenshots(dir)
	if err != nil {
		return nil, err
	}
	log := obs.From(obs.WithRunID(ctx, runID)).With("pkg", "artifacts")
	start := time.Now()

	var (
		mu   sync.Mutex
		keys = make([]string, 0, len(files))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)
	for _, rel := range files {
		key := u.Key(runID, rel)
		full := filepath.Join(dir, rel)
		g.Go(func() error {
			if err := u.put(gctx, full, key); err != nil {
				return err
			}
			mu.Lock()
			keys = append(keys, key)
			mu.Unlock()
			log.Debug("artifact_uploaded", "uri", u.client.URI(key))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("artifact_upload_failed", "error", err, "uploaded", len(keys))
		return nil, err
	}

	sort.Strings(keys)
	log.Info("artifacts_uploaded",
		"bucket", u.client.Bucket(),
		"count", len(keys),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return keys, nil
}

func (u *Uploader) put(ctx context.Context, file, key string) error {
	if u.limiter != nil {
		if err := u.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit %s: %w", key, err)
		}
	}
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open %s: %w", file, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", file, err)
	}
	return u.client.Put(ctx, key, f, info.Size(), "image/png")
}

// screenshots lists PNG files under dir, relative to dir.
func screenshots(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), ".png") {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan results dir %s: %w", dir, err)
	}
	return files, nil
}
