// Package chatsync keeps a client-side view of one conversation up to date by
// polling the server on a fixed interval.
//
// A Loop is either idle or active for a (user, other user) pair. Opening a
// pair fetches immediately and then on every tick; each successful fetch
// replaces the whole view. Every Open and Close bumps a generation counter and
// a fetch result is only applied if its generation is still current, so a
// response for a previous pair can never overwrite the view of the current one.
package chatsync

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"Homemade/models"
	"Homemade/pkg/chatclient"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// DefaultInterval is the polling cadence while a conversation is open.
const DefaultInterval = 3 * time.Second

var (
	ErrNotOpen    = errors.New("no conversation is open")
	ErrEmptyDraft = errors.New("message is empty")
)

// Transport is the subset of chatclient.Client the loop uses.
type Transport interface {
	Send(ctx context.Context, s *chatclient.Session, receiverID uint, content string) (*models.Message, error)
	Conversation(ctx context.Context, s *chatclient.Session, otherID uint) ([]models.Message, error)
}

// Pair identifies the open conversation.
type Pair struct {
	UserID  uint
	OtherID uint
}

// View is a snapshot of the loop state handed to the presentation layer.
type View struct {
	Pair     Pair
	Active   bool
	Messages []models.Message
	Draft    string
	// Err is the last fetch or send failure. A successful fetch clears it.
	Err error
	// ScrollToNewest is set when Messages was just replaced by a fetch.
	ScrollToNewest bool

	seq uint64
}

type Options struct {
	// Interval between polls; DefaultInterval when zero. It is also the
	// timeout of each request.
	Interval time.Duration
	Clock    clockwork.Clock
	Logger   *zap.Logger
	// OnUpdate receives every new view, oldest first. It runs on the loop's
	// goroutines: it may call View but must not call Open, Close or Submit.
	OnUpdate func(View)
}

type Loop struct {
	transport Transport
	interval  time.Duration
	clock     clockwork.Clock
	log       *zap.Logger
	onUpdate  func(View)

	mu       sync.Mutex
	gen      uint64
	seq      uint64
	// reqs numbers fetch requests; applied is the newest one whose result
	// reached the view.
	reqs     uint64
	applied  uint64
	session  *chatclient.Session
	pair     Pair
	active   bool
	cancel   context.CancelFunc
	messages []models.Message
	draft    string
	lastErr  error

	notifyMu  sync.Mutex
	delivered uint64

	wg sync.WaitGroup
}

func New(t Transport, opts Options) *Loop {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Loop{
		transport: t,
		interval:  opts.Interval,
		clock:     opts.Clock,
		log:       opts.Logger.Named("chatsync"),
		onUpdate:  opts.OnUpdate,
	}
}

// Open activates the conversation between s and otherID. Any previously open
// conversation is cancelled first; its in-flight responses are discarded.
// Opening the pair that is already open is a no-op.
func (l *Loop) Open(s *chatclient.Session, otherID uint) {
	pair := Pair{UserID: s.UserID, OtherID: otherID}

	l.mu.Lock()
	if l.active && l.pair == pair && l.session == s {
		l.mu.Unlock()
		return
	}
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.session = s
	l.pair = pair
	l.active = true
	l.messages = nil
	l.draft = ""
	l.lastErr = nil
	l.wg.Add(1)
	l.mu.Unlock()

	l.log.Debug("conversation opened", zap.Uint("user_id", pair.UserID), zap.Uint("other_id", pair.OtherID))
	go l.run(ctx, gen, s, pair)
}

// Close returns the loop to idle and waits until no poll goroutine is left.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	wasActive := l.active
	l.gen++
	l.active = false
	l.session = nil
	l.pair = Pair{}
	l.messages = nil
	l.draft = ""
	l.lastErr = nil
	view := l.snapshotLocked(false)
	l.mu.Unlock()

	l.wg.Wait()
	if wasActive {
		l.deliver(view)
	}
}

// View returns the current state.
func (l *Loop) View() View {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.viewLocked(false)
}

// SetDraft records the text the user is composing.
func (l *Loop) SetDraft(text string) {
	l.mu.Lock()
	if l.active {
		l.draft = text
	}
	l.mu.Unlock()
}

// Refresh fetches the open conversation now, outside the regular cadence.
func (l *Loop) Refresh(ctx context.Context) error {
	l.mu.Lock()
	if !l.active {
		l.mu.Unlock()
		return ErrNotOpen
	}
	gen, s, pair := l.gen, l.session, l.pair
	l.mu.Unlock()
	return l.fetch(ctx, gen, s, pair)
}

// Submit sends the draft. The draft is cleared only once the server has
// acknowledged the message; on failure it is kept and the error is returned
// without retrying. A successful send is followed by an immediate fetch.
func (l *Loop) Submit(ctx context.Context) (*models.Message, error) {
	l.mu.Lock()
	if !l.active {
		l.mu.Unlock()
		return nil, ErrNotOpen
	}
	content := l.draft
	if strings.TrimSpace(content) == "" {
		l.mu.Unlock()
		return nil, ErrEmptyDraft
	}
	gen, s, pair := l.gen, l.session, l.pair
	l.mu.Unlock()

	sendCtx, cancel := context.WithTimeout(ctx, l.interval)
	msg, err := l.transport.Send(sendCtx, s, pair.OtherID, content)
	cancel()

	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		return msg, err
	}
	if err != nil {
		l.lastErr = err
		view := l.snapshotLocked(false)
		l.mu.Unlock()
		l.log.Warn("send failed", zap.Uint("other_id", pair.OtherID), zap.Error(err))
		l.deliver(view)
		return nil, err
	}
	if l.draft == content {
		l.draft = ""
	}
	view := l.snapshotLocked(false)
	l.mu.Unlock()
	l.deliver(view)

	if ferr := l.fetch(ctx, gen, s, pair); ferr != nil {
		l.log.Debug("refresh after send failed", zap.Error(ferr))
	}
	return msg, nil
}

func (l *Loop) run(ctx context.Context, gen uint64, s *chatclient.Session, pair Pair) {
	defer l.wg.Done()

	_ = l.fetch(ctx, gen, s, pair)

	ticker := l.clock.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if ctx.Err() != nil {
				return
			}
			_ = l.fetch(ctx, gen, s, pair)
		}
	}
}

// fetch reads the conversation and applies it if gen is still current and no
// request issued after it has been applied already. A failed fetch leaves the
// previous messages in place.
func (l *Loop) fetch(ctx context.Context, gen uint64, s *chatclient.Session, pair Pair) error {
	l.mu.Lock()
	l.reqs++
	req := l.reqs
	l.mu.Unlock()

	reqCtx, cancel := context.WithTimeout(ctx, l.interval)
	msgs, err := l.transport.Conversation(reqCtx, s, pair.OtherID)
	cancel()

	l.mu.Lock()
	if gen != l.gen || req < l.applied {
		l.mu.Unlock()
		l.log.Debug("discarding stale response", zap.Uint("other_id", pair.OtherID), zap.Uint64("request", req))
		return nil
	}
	l.applied = req
	if err != nil {
		l.lastErr = err
		view := l.snapshotLocked(false)
		l.mu.Unlock()
		l.log.Warn("poll failed", zap.Uint("other_id", pair.OtherID), zap.Error(err))
		l.deliver(view)
		return err
	}
	l.messages = msgs
	l.lastErr = nil
	view := l.snapshotLocked(true)
	l.mu.Unlock()
	l.deliver(view)
	return nil
}

// snapshotLocked stamps a view with the next sequence number. l.mu must be held.
func (l *Loop) snapshotLocked(replaced bool) View {
	l.seq++
	v := l.viewLocked(replaced)
	v.seq = l.seq
	return v
}

func (l *Loop) viewLocked(replaced bool) View {
	msgs := make([]models.Message, len(l.messages))
	copy(msgs, l.messages)
	return View{
		Pair:           l.pair,
		Active:         l.active,
		Messages:       msgs,
		Draft:          l.draft,
		Err:            l.lastErr,
		ScrollToNewest: replaced,
	}
}

// deliver passes v to OnUpdate unless a newer view was already delivered.
func (l *Loop) deliver(v View) {
	if l.onUpdate == nil {
		return
	}
	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()
	if v.seq <= l.delivered {
		return
	}
	l.delivered = v.seq
	l.onUpdate(v)
}
