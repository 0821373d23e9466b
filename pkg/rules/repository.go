// Package rules implements RuleRepository: a read-only, hot-reloaded JSON
// rule pack reader, laid out per spec §6: {root}/{country}/common/*.json
// plus {root}/{country}/{category}/*.json, with an extra {root}/gcc/{region}/…
// level for GCC jurisdictions. Hot-reload is grounded on the same
// fsnotify-watched pattern the teacher uses for its plugin config files.
package rules

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/adaudit/compliance/internal/logging"
	"github.com/adaudit/compliance/pkg/audit"
)

type Repository struct {
	root    string
	log     logging.Logger
	mu      sync.RWMutex
	cache   map[string]audit.RulePack
	watcher *fsnotify.Watcher
}

func NewRepository(root string, log logging.Logger) (*Repository, error) {
	r := &Repository{
		root:  root,
		log:   log.WithField("component", "rule_repository"),
		cache: make(map[string]audit.RulePack),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	r.watcher = watcher

	if err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	}); err != nil {
		r.log.Warn("failed to walk rule pack root for watching", logging.Fields{"error": err.Error()})
	}

	go r.watchLoop()
	return r, nil
}

func (r *Repository) watchLoop() {
	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				r.log.Info("rule pack change detected, invalidating cache", logging.Fields{"path": event.Name})
				r.mu.Lock()
				r.cache = make(map[string]audit.RulePack)
				r.mu.Unlock()
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.log.Warn("rule pack watcher error", logging.Fields{"error": err.Error()})
		}
	}
}

func (r *Repository) Close() error {
	return r.watcher.Close()
}

// Get returns the filtered rule pack for (country, region, category),
// loading and caching it lazily.
func (r *Repository) Get(country, region, category string) (audit.RulePack, error) {
	key := strings.ToLower(country + "|" + region + "|" + category)

	r.mu.RLock()
	cached, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	pack, err := r.load(country, region, category)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[key] = pack
	r.mu.Unlock()
	return pack, nil
}

func (r *Repository) load(country, region, category string) (audit.RulePack, error) {
	countryDir := strings.ToLower(country)
	var dirs []string
	dirs = append(dirs, filepath.Join(r.root, countryDir, "common"))
	if category != "" {
		dirs = append(dirs, filepath.Join(r.root, countryDir, strings.ToLower(category)))
	}
	if countryDir == "gcc" && region != "" {
		dirs = append(dirs, filepath.Join(r.root, "gcc", strings.ToLower(region)))
	}

	var pack audit.RulePack
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			rules, err := r.loadFile(filepath.Join(dir, entry.Name()))
			if err != nil {
				r.log.Warn("failed to load rule file", logging.Fields{"file": entry.Name(), "error": err.Error()})
				continue
			}
			pack = append(pack, rules...)
		}
	}
	return pack, nil
}

func (r *Repository) loadFile(path string) (audit.RulePack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rules audit.RulePack
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}
