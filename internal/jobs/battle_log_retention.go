package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/forgo/menagerie/internal/model"
)

// BattleLogStore is what the retention processor needs from battle log
// storage
type BattleLogStore interface {
	BattlesOverRetention(ctx context.Context, keep int) ([]model.BattleLogCount, error)
	ClearOldLogs(ctx context.Context, battleID string, keep int) (int64, error)
}

// BattleLogRetentionProcessor periodically trims every battle's log down to
// its newest keep entries
type BattleLogRetentionProcessor struct {
	store      BattleLogStore
	keep       int
	interval   time.Duration
	startDelay time.Duration
	stopCh     chan struct{}
	wg         sync.WaitGroup
	running    bool
	mu         sync.Mutex
}

// NewBattleLogRetentionProcessor creates a new retention processor. A
// non-positive interval defaults to one hour; a negative keep is zero.
func NewBattleLogRetentionProcessor(store BattleLogStore, keep int, interval time.Duration) *BattleLogRetentionProcessor {
	if interval <= 0 {
		interval = time.Hour
	}
	if keep < 0 {
		keep = 0
	}
	return &BattleLogRetentionProcessor{
		store:      store,
		keep:       keep,
		interval:   interval,
		startDelay: 5 * time.Second,
	}
}

// Start begins the retention processor
func (p *BattleLogRetentionProcessor) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	stop := p.stopCh
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(stop)
	log.Printf("Battle log retention processor started (keep: %d, interval: %v)", p.keep, p.interval)
}

// Stop gracefully stops the retention processor
func (p *BattleLogRetentionProcessor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	stop := p.stopCh
	p.mu.Unlock()

	close(stop)
	p.wg.Wait()
	log.Println("Battle log retention processor stopped")
}

func (p *BattleLogRetentionProcessor) run(stop <-chan struct{}) {
	defer p.wg.Done()

	select {
	case <-time.After(p.startDelay):
		p.sweep()
	case <-stop:
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.sweep()
		case <-stop:
			return
		}
	}
}

func (p *BattleLogRetentionProcessor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := p.RunOnce(ctx); err != nil {
		log.Printf("Error trimming battle logs: %v", err)
	}
}

// RunOnce trims every battle over retention once and returns how many
// entries were deleted. A failing battle does not stop the others.
func (p *BattleLogRetentionProcessor) RunOnce(ctx context.Context) (int64, error) {
	battles, err := p.store.BattlesOverRetention(ctx, p.keep)
	if err != nil {
		return 0, fmt.Errorf("failed to list battles over retention: %w", err)
	}

	var (
		total int64
		errs  []error
	)
	for _, b := range battles {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		n, err := p.store.ClearOldLogs(ctx, b.BattleID, p.keep)
		if err != nil {
			errs = append(errs, fmt.Errorf("battle %s: %w", b.BattleID, err))
			continue
		}
		total += n
	}

	if len(battles) > 0 {
		log.Printf("Battle log retention trimmed %d entries across %d battles", total, len(battles))
	}
	return total, errors.Join(errs...)
}

// IsRunning returns whether the processor is running
func (p *BattleLogRetentionProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
