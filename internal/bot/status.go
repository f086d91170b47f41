package bot

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/NadavMozeson/typescript-discord-bot/internal/logger"
)

// Presence is the slice of *discordgo.Session the rotator needs
type Presence interface {
	UpdateStatusComplex(usd discordgo.UpdateStatusData) (err error)
}

// StatusRotator cycles the bot presence through a fixed list plus the latest
// text handed to SetStatus
type StatusRotator struct {
	presence Presence
	interval time.Duration

	mu       sync.Mutex
	statuses []string
	pinned   string
	idx      int

	started atomic.Bool
	stop    chan struct{}
	done    chan struct{}
}

// NewStatusRotator creates a rotator. A non-positive interval means one minute.
func NewStatusRotator(presence Presence, statuses []string, interval time.Duration) *StatusRotator {
	if interval <= 0 {
		interval = time.Minute
	}
	return &StatusRotator{
		presence: presence,
		interval: interval,
		statuses: statuses,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (r *StatusRotator) Name() string {
	return "status-rotator"
}

// Start sets the first presence immediately and rotates in the background
func (r *StatusRotator) Start() {
	if !r.started.CompareAndSwap(false, true) {
		return
	}
	r.show(r.current())
	go r.loop()
}

// Stop ends rotation and waits for the loop to exit
func (r *StatusRotator) Stop() {
	if !r.started.CompareAndSwap(true, false) {
		return
	}
	close(r.stop)
	<-r.done
}

// SetStatus pins text into the rotation and shows it right away
func (r *StatusRotator) SetStatus(text string) {
	r.mu.Lock()
	r.pinned = text
	r.idx = 0
	r.mu.Unlock()
	r.show(text)
}

func (r *StatusRotator) loop() {
	defer close(r.done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.show(r.next())
		case <-r.stop:
			return
		}
	}
}

// rotation is the pinned text followed by the fixed list
func (r *StatusRotator) rotation() []string {
	if r.pinned == "" {
		return r.statuses
	}
	return append([]string{r.pinned}, r.statuses...)
}

func (r *StatusRotator) current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.rotation()
	if len(all) == 0 {
		return ""
	}
	return all[r.idx%len(all)]
}

func (r *StatusRotator) next() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.rotation()
	if len(all) == 0 {
		return ""
	}
	r.idx = (r.idx + 1) % len(all)
	return all[r.idx]
}

func (r *StatusRotator) show(text string) {
	if text == "" {
		return
	}
	if err := r.update(text); err != nil {
		logger.Warn("Failed to update status", zap.String("status", text), zap.Error(err))
	}
}

func (r *StatusRotator) update(text string) error {
	act := &discordgo.Activity{
		Name: text,
		Type: discordgo.ActivityTypeWatching,
	}
	return r.presence.UpdateStatusComplex(discordgo.UpdateStatusData{
		Activities: []*discordgo.Activity{act},
	})
}
