package rules

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/wareedge/rule-engine/internal/logging"
)

// fileRule is the on-disk YAML shape for one rule definition, per spec
// §3/§6. It maps directly onto Rule; Conditions is decoded as a generic
// map so both the structured and {field,operator,value} condition
// shapes round-trip without a second schema.
type fileRule struct {
	ID              string                 `yaml:"id"`
	Name            string                 `yaml:"name"`
	RuleType        string                 `yaml:"rule_type"`
	Category        string                 `yaml:"category"`
	Priority        string                 `yaml:"priority"`
	IsActive        bool                   `yaml:"is_active"`
	PrecedenceLevel int                    `yaml:"precedence_level"`
	Conditions      map[string]interface{} `yaml:"conditions"`
}

// ruleFile is one YAML rule-definition file: a tenant's full rule batch.
type ruleFile struct {
	Tenant string     `yaml:"tenant"`
	Rules  []fileRule `yaml:"rules"`
}

func toRule(fr fileRule) Rule {
	id := fr.ID
	if id == "" {
		// A rule YAML entry with no id is assigned one rather than
		// rejected outright, so a hand-edited file doesn't require the
		// author to invent identifiers.
		id = uuid.NewString()
	}
	return Rule{
		ID:              id,
		Name:            fr.Name,
		RuleType:        Type(fr.RuleType),
		Category:        Category(fr.Category),
		Priority:        Priority(fr.Priority),
		IsActive:        fr.IsActive,
		PrecedenceLevel: fr.PrecedenceLevel,
		Conditions:      Conditions(fr.Conditions),
	}
}

// LoadFile parses one rule-definition YAML file and returns its tenant
// and decoded rules. Rules that fail Validate are returned with
// IsActive forced false, never dropped silently — the caller is
// expected to log the reason (spec §4.D "skipped and logged, not
// applied").
func LoadFile(path string) (tenant string, loaded []Rule, warnings []string, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, nil, err
	}

	var rf ruleFile
	if err := yaml.Unmarshal(raw, &rf); err != nil {
		return "", nil, nil, err
	}

	loaded = make([]Rule, 0, len(rf.Rules))
	for _, fr := range rf.Rules {
		r := toRule(fr)
		if verr := Validate(r); verr != nil {
			r.IsActive = false
			warnings = append(warnings, verr.Error())
		}
		loaded = append(loaded, r)
	}
	return rf.Tenant, loaded, warnings, nil
}

// Watcher watches a directory of rule-definition YAML files and applies
// validated changes to a MemoryStore as files are created or modified.
// Debounce and event-loop shape are adapted from the teacher's
// MangleWatcher (internal/core/mangle_watcher.go), which watches a
// directory of .mg files and re-validates on settle; here the watched
// unit is a tenant's rule-definition YAML file instead of a Datalog
// source file.
type Watcher struct {
	mu          sync.Mutex
	fsw         *fsnotify.Watcher
	dir         string
	store       *MemoryStore
	debounce    map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewWatcher creates a Watcher over dir, applying loaded rule batches to
// store. It does not start watching until Start is called.
func NewWatcher(dir string, store *MemoryStore) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsw:         fsw,
		dir:         dir,
		store:       store,
		debounce:    make(map[string]time.Time),
		debounceDur: 500 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start loads every existing rule file in dir once, then begins
// watching for create/write events. Non-blocking; runs its event loop
// in a goroutine.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	w.loadDir()

	if err := w.fsw.Add(w.dir); err != nil {
		return err
	}

	go w.run()
	return nil
}

// Stop halts the watcher and releases its fsnotify handle.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	_ = w.fsw.Close()
}

func (w *Watcher) loadDir() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		logging.Get(logging.CategoryRules).Error("watcher: read rule dir %s: %v", w.dir, err)
		return
	}
	for _, e := range entries {
		if e.IsDir() || !isRuleFile(e.Name()) {
			continue
		}
		w.applyFile(filepath.Join(w.dir, e.Name()))
	}
}

func isRuleFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !isRuleFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.mu.Lock()
			w.debounce[event.Name] = time.Now()
			w.mu.Unlock()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryRules).Error("watcher: fsnotify error: %v", err)
		case <-ticker.C:
			w.flushSettled()
		}
	}
}

func (w *Watcher) flushSettled() {
	now := time.Now()
	w.mu.Lock()
	var settled []string
	for path, t := range w.debounce {
		if now.Sub(t) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.debounce, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		w.applyFile(path)
	}
}

func (w *Watcher) applyFile(path string) {
	tenant, loaded, warnings, err := LoadFile(path)
	if err != nil {
		logging.Get(logging.CategoryRules).Error("watcher: load %s: %v", path, err)
		return
	}
	for _, msg := range warnings {
		logging.Get(logging.CategoryRules).Warn("watcher: %s: %s", path, msg)
	}
	w.store.LoadAll(tenant, loaded)
	logging.Get(logging.CategoryRules).Info("watcher: applied %d rules for tenant %s from %s", len(loaded), tenant, path)
}
