package bot_test

import (
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NadavMozeson/typescript-discord-bot/internal/bot"
)

type recordingPresence struct {
	mu    sync.Mutex
	shown []string
}

func (p *recordingPresence) UpdateStatusComplex(usd discordgo.UpdateStatusData) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shown = append(p.shown, usd.Activities[0].Name)
	return nil
}

func (p *recordingPresence) all() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.shown...)
}

func TestStatusRotator(t *testing.T) {
	p := &recordingPresence{}
	r := bot.NewStatusRotator(p, []string{"a", "b"}, 10*time.Millisecond)

	r.Start()
	require.Eventually(t, func() bool { return len(p.all()) >= 3 }, time.Second, 5*time.Millisecond)
	r.Stop()

	shown := p.all()
	assert.Equal(t, []string{"a", "b", "a"}, shown[:3])
}

func TestStatusRotator_SetStatusJoinsRotation(t *testing.T) {
	p := &recordingPresence{}
	r := bot.NewStatusRotator(p, []string{"a"}, time.Hour)

	r.SetStatus("12.3K : members")
	assert.Equal(t, []string{"12.3K : members"}, p.all())
}
