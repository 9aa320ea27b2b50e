package bootstrap

import (
	"context"
	"log/slog"

	"github.com/spacesedan/sentisocial/config"
	"github.com/spacesedan/sentisocial/internal/clients"
	"github.com/spacesedan/sentisocial/internal/consumers"
	"github.com/spacesedan/sentisocial/internal/db"
	"github.com/spacesedan/sentisocial/internal/dispatch"
)

// BuildArchive returns nil when no archive table is configured.
func BuildArchive(ctx context.Context, cfg config.ArchiveConfig) (*db.AnalysisArchive, error) {
	if cfg.Table == "" {
		return nil, nil
	}

	client, err := clients.NewDynamoDBClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	slog.Info("[Bootstrap] Analysis archive enabled", slog.String("table", cfg.Table))
	return db.NewAnalysisArchive(client, cfg.Table), nil
}

// BuildHandler wires the write-back handler. archive may be nil.
func BuildHandler(repo *db.Repository, inf *Inference, archive *db.AnalysisArchive) *consumers.AnalysisHandler {
	handler := consumers.NewAnalysisHandler(repo, inf.Analyzer)
	if archive != nil {
		handler.WithArchive(archive)
	}
	return handler
}

// ArchiveRunner runs the archive flush loop on its own context, so its final
// flush can wait until every producer of records has stopped.
type ArchiveRunner struct {
	stop context.CancelFunc
	done chan struct{}
}

// StartArchive starts archive.Run. A nil archive yields a runner whose Stop is a no-op.
func StartArchive(archive *db.AnalysisArchive) *ArchiveRunner {
	r := &ArchiveRunner{done: make(chan struct{})}
	if archive == nil {
		r.stop = func() {}
		close(r.done)
		return r
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.stop = cancel
	go func() {
		defer close(r.done)
		archive.Run(ctx)
	}()
	return r
}

// Stop triggers the final flush and waits for it.
func (r *ArchiveRunner) Stop() {
	r.stop()
	<-r.done
}

// LocalPipeline is the in-process dispatcher plus the archive its handler records to.
type LocalPipeline struct {
	*dispatch.LocalDispatcher
	archive *ArchiveRunner
}

func NewLocalPipeline(handler dispatch.Handler, archive *db.AnalysisArchive, workers, queueSize int) *LocalPipeline {
	return &LocalPipeline{
		LocalDispatcher: dispatch.NewLocalDispatcher(handler, workers, queueSize),
		archive:         StartArchive(archive),
	}
}

// Shutdown drains queued analyses before the archive's final flush.
func (p *LocalPipeline) Shutdown(ctx context.Context) error {
	err := p.LocalDispatcher.Shutdown(ctx)
	p.archive.Stop()
	return err
}
