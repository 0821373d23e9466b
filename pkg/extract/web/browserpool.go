package web

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"

	"github.com/adaudit/compliance/internal/logging"
)

// BrowserInstance is one pooled headless Chrome process.
type BrowserInstance struct {
	Browser  *rod.Browser
	Launcher *launcher.Launcher
	Created  time.Time
	InUse    bool
	PID      int
}

// BrowserPool manages a bounded set of headless Chrome processes shared
// across concurrent HeadlessBrowser extraction attempts, a process-wide
// singleton per the Services record in SPEC_FULL §9.
type BrowserPool struct {
	mu          sync.RWMutex
	instances   []*BrowserInstance
	maxSize     int
	maxAge      time.Duration
	waitQueue   chan chan *BrowserInstance
	closed      bool
	log         logging.Logger
	cleanupWg   sync.WaitGroup
	cleanupDone chan struct{}
}

func NewBrowserPool(maxSize int, maxAge time.Duration) *BrowserPool {
	p := &BrowserPool{
		maxSize:     maxSize,
		maxAge:      maxAge,
		waitQueue:   make(chan chan *BrowserInstance, maxSize),
		log:         logging.Get().WithField("component", "browser_pool"),
		cleanupDone: make(chan struct{}),
	}
	go p.cleanupLoop()
	return p
}

func (p *BrowserPool) Get(ctx context.Context) (*BrowserInstance, error) {
	p.mu.RLock()
	for _, instance := range p.instances {
		if !instance.InUse {
			p.mu.RUnlock()
			p.mu.Lock()
			if !instance.InUse {
				instance.InUse = true
				p.mu.Unlock()
				return instance, nil
			}
			p.mu.Unlock()
			p.mu.RLock()
		}
	}
	p.mu.RUnlock()

	p.mu.Lock()
	if len(p.instances) < p.maxSize {
		instance, err := p.createInstance()
		if err != nil {
			p.mu.Unlock()
			return nil, err
		}
		instance.InUse = true
		p.instances = append(p.instances, instance)
		p.mu.Unlock()
		return instance, nil
	}
	p.mu.Unlock()

	p.log.Debug("browser pool full, waiting for available instance")
	waitChan := make(chan *BrowserInstance, 1)
	select {
	case p.waitQueue <- waitChan:
		select {
		case instance := <-waitChan:
			return instance, nil
		case <-ctx.Done():
			return nil, errors.New("timeout waiting for browser instance")
		}
	default:
		return nil, errors.New("browser pool is full, cannot create new instance")
	}
}

func (p *BrowserPool) Put(instance *BrowserInstance) {
	if instance == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if time.Since(instance.Created) >= p.maxAge {
		p.removeInstance(instance)
		p.cleanupWg.Add(1)
		go func() {
			defer p.cleanupWg.Done()
			p.cleanupInstance(instance)
		}()
		return
	}

	select {
	case waitChan := <-p.waitQueue:
		instance.InUse = true
		waitChan <- instance
	default:
		instance.InUse = false
	}
}

func (p *BrowserPool) createInstance() (*BrowserInstance, error) {
	l := launcher.New().
		Set("no-sandbox", "").
		Set("disable-dev-shm-usage", "").
		Set("disable-gpu", "").
		Headless(true)
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u).MustConnect().MustIgnoreCertErrors(true)

	return &BrowserInstance{
		Browser:  browser,
		Launcher: l,
		Created:  time.Now(),
		InUse:    false,
		PID:      l.PID(),
	}, nil
}

func (p *BrowserPool) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.mu.Lock()
			p.cleanupExpired()
			p.mu.Unlock()
		case <-p.cleanupDone:
			return
		}
	}
}

func (p *BrowserPool) cleanupExpired() {
	var valid, expired []*BrowserInstance
	for _, instance := range p.instances {
		if time.Since(instance.Created) >= p.maxAge || instance.Browser == nil {
			expired = append(expired, instance)
		} else {
			valid = append(valid, instance)
		}
	}
	p.instances = valid
	for _, instance := range expired {
		p.cleanupWg.Add(1)
		go func(inst *BrowserInstance) {
			defer p.cleanupWg.Done()
			p.cleanupInstance(inst)
		}(instance)
	}
}

func (p *BrowserPool) removeInstance(target *BrowserInstance) {
	for i, instance := range p.instances {
		if instance == target {
			p.instances = append(p.instances[:i], p.instances[i+1:]...)
			return
		}
	}
}

func (p *BrowserPool) cleanupInstance(instance *BrowserInstance) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("panic during browser cleanup", logging.Fields{"panic": r, "pid": instance.PID})
		}
	}()

	if instance.Browser != nil {
		done := make(chan error, 1)
		go func() { done <- instance.Browser.Close() }()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			p.log.Warn("browser close timed out, killing process", logging.Fields{"pid": instance.PID})
		}
	}
	if instance.Launcher != nil {
		instance.Launcher.Kill()
	}
}

// Close shuts down the pool and every pooled instance. Called once at
// process shutdown.
func (p *BrowserPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	instances := p.instances
	p.instances = nil
	p.mu.Unlock()

	close(p.cleanupDone)
	for _, instance := range instances {
		p.cleanupInstance(instance)
	}
	p.cleanupWg.Wait()
}
