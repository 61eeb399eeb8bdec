// Package breaker реализует circuit breaker для вызовов payment сервиса.
//
// Окно наблюдения count-based: кольцевой буфер последних WindowSize исходов.
// Все переходы состояний выполняются под одним мьютексом.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// State - состояние circuit breaker
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// MarshalText нужен для JSON представления Snapshot
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var (
	// ErrOpenState возвращается, пока breaker открыт; fn не вызывается
	ErrOpenState = errors.New("circuit breaker is open")
	// ErrTooManyRequests возвращается в half-open, если пробный вызов уже выполняется
	ErrTooManyRequests = errors.New("circuit breaker: too many requests")
)

const (
	defaultWindowSize   = 10
	defaultFailureRatio = 0.5
	defaultOpenTimeout  = 10 * time.Second
)

// Settings - параметры breaker. Нулевые значения заменяются дефолтами в New.
type Settings struct {
	Name string
	// WindowSize - сколько последних вызовов учитывается
	WindowSize int
	// MinimumCalls - минимум вызовов в окне, прежде чем breaker может открыться
	MinimumCalls int
	// FailureRatio - доля сбоев в окне, при которой breaker открывается (0 < r <= 1)
	FailureRatio float64
	// OpenTimeout - сколько breaker остаётся открытым до перехода в half-open
	OpenTimeout time.Duration
	// IsFailure решает, считать ли ошибку сбоем. Ошибка, не признанная сбоем, считается
	// успешным вызовом. По умолчанию сбой - любая ошибка, кроме context.Canceled.
	IsFailure func(err error) bool
	// IsExcluded отбирает ошибки, которые не дают исхода: вызов не пишется в окно,
	// а в half-open не меняет состояние. По умолчанию - context.Canceled.
	IsExcluded func(err error) bool
	// OnStateChange вызывается под мьютексом breaker, обращаться к breaker из него нельзя
	OnStateChange func(name string, from, to State)
	// Now - источник времени, подменяется в тестах
	Now func() time.Time
}

// Snapshot - согласованная копия состояния breaker
type Snapshot struct {
	Name               string    `json:"name"`
	State              State     `json:"state"`
	FailureCount       int       `json:"failureCount"`
	TotalCount         int       `json:"totalCount"`
	LastTransitionTime time.Time `json:"lastTransitionTime"`
}

// Breaker - circuit breaker. Безопасен для конкурентного использования.
type Breaker struct {
	name          string
	minimumCalls  int
	failureRatio  float64
	openTimeout   time.Duration
	isFailure     func(error) bool
	isExcluded    func(error) bool
	onStateChange func(name string, from, to State)
	now           func() time.Time

	mu             sync.Mutex
	state          State
	generation     uint64
	lastTransition time.Time
	probing        bool

	window   []bool // true - сбой
	next     int
	total    int
	failures int
}

// New создаёт breaker в состоянии closed
func New(st Settings) *Breaker {
	if st.Name == "" {
		st.Name = "breaker"
	}
	if st.WindowSize <= 0 {
		st.WindowSize = defaultWindowSize
	}
	if st.MinimumCalls <= 0 || st.MinimumCalls > st.WindowSize {
		st.MinimumCalls = st.WindowSize
	}
	if st.FailureRatio <= 0 || st.FailureRatio > 1 {
		st.FailureRatio = defaultFailureRatio
	}
	if st.OpenTimeout <= 0 {
		st.OpenTimeout = defaultOpenTimeout
	}
	if st.IsFailure == nil {
		st.IsFailure = DefaultIsFailure
	}
	if st.IsExcluded == nil {
		st.IsExcluded = DefaultIsExcluded
	}
	if st.Now == nil {
		st.Now = time.Now
	}

	return &Breaker{
		name:           st.Name,
		minimumCalls:   st.MinimumCalls,
		failureRatio:   st.FailureRatio,
		openTimeout:    st.OpenTimeout,
		isFailure:      st.IsFailure,
		isExcluded:     st.IsExcluded,
		onStateChange:  st.OnStateChange,
		now:            st.Now,
		state:          StateClosed,
		lastTransition: st.Now(),
		window:         make([]bool, st.WindowSize),
	}
}

// DefaultIsFailure считает сбоем любую ошибку, кроме отмены вызывающим
func DefaultIsFailure(err error) bool {
	return !errors.Is(err, context.Canceled)
}

// DefaultIsExcluded исключает из учёта вызовы, отменённые вызывающим
func DefaultIsExcluded(err error) bool {
	return errors.Is(err, context.Canceled)
}

// outcome - исход вызова для окна наблюдения
type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeFailure
	outcomeExcluded
)

func (b *Breaker) classify(err error) outcome {
	switch {
	case err == nil:
		return outcomeSuccess
	case b.isExcluded(err):
		return outcomeExcluded
	case b.isFailure(err):
		return outcomeFailure
	default:
		return outcomeSuccess
	}
}

// Name возвращает имя breaker
func (b *Breaker) Name() string {
	return b.name
}

// State возвращает текущее состояние с учётом истёкшего OpenTimeout
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentState(b.now())
}

// Snapshot возвращает копию состояния и счётчиков окна
func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.currentState(b.now())
	return Snapshot{
		Name:               b.name,
		State:              state,
		FailureCount:       b.failures,
		TotalCount:         b.total,
		LastTransitionTime: b.lastTransition,
	}
}

// Execute выполняет fn, если breaker это разрешает, и записывает исход.
// При отказе возвращает ErrOpenState или ErrTooManyRequests, не вызывая fn.
// Ошибка fn возвращается без изменений.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	generation, err := b.beforeCall()
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			b.afterCall(generation, outcomeFailure)
			panic(r)
		}
	}()

	err = fn(ctx)
	b.afterCall(generation, b.classify(err))
	return err
}

func (b *Breaker) beforeCall() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentState(b.now()) {
	case StateOpen:
		return b.generation, ErrOpenState
	case StateHalfOpen:
		if b.probing {
			return b.generation, ErrTooManyRequests
		}
		b.probing = true
	}
	return b.generation, nil
}

func (b *Breaker) afterCall(generation uint64, result outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	state := b.currentState(now)
	// исход вызова, начатого до смены состояния, не учитывается
	if generation != b.generation {
		return
	}

	switch state {
	case StateClosed:
		if result == outcomeExcluded {
			return
		}
		b.record(result == outcomeFailure)
		if b.total >= b.minimumCalls && float64(b.failures)/float64(b.total) >= b.failureRatio {
			b.setState(StateOpen, now)
		}
	case StateHalfOpen:
		switch result {
		case outcomeFailure:
			b.setState(StateOpen, now)
		case outcomeSuccess:
			b.setState(StateClosed, now)
		default:
			// пробный вызов не дал исхода, следующий вызов станет новым пробным
			b.probing = false
		}
	}
}

// currentState переводит open в half-open, если истёк OpenTimeout. Вызывается под мьютексом.
func (b *Breaker) currentState(now time.Time) State {
	if b.state == StateOpen && !now.Before(b.lastTransition.Add(b.openTimeout)) {
		b.setState(StateHalfOpen, now)
	}
	return b.state
}

func (b *Breaker) record(failed bool) {
	if b.total == len(b.window) {
		if b.window[b.next] {
			b.failures--
		}
	} else {
		b.total++
	}

	b.window[b.next] = failed
	if failed {
		b.failures++
	}
	b.next = (b.next + 1) % len(b.window)
}

func (b *Breaker) setState(to State, now time.Time) {
	if b.state == to {
		return
	}
	from := b.state

	b.state = to
	b.generation++
	b.lastTransition = now
	b.probing = false
	// счётчики, открывшие breaker, остаются видны в Snapshot до возврата в closed
	if to == StateClosed {
		b.resetWindow()
	}

	if b.onStateChange != nil {
		b.onStateChange(b.name, from, to)
	}
}

func (b *Breaker) resetWindow() {
	for i := range b.window {
		b.window[i] = false
	}
	b.next = 0
	b.total = 0
	b.failures = 0
}
