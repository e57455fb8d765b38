// Copyright 2024-2026 Aiku AI

package bot

import (
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const (
	// NamespaceSeparator joins a module namespace and a command name.
	NamespaceSeparator = ":"
	// moduleSuffix is stripped from a module's type name to derive its namespace.
	moduleSuffix = "Module"
)

// Rejection records a command name a module declared but could not own.
type Rejection struct {
	Name   string
	Reason string
}

// RegisterReport lists the command keys a module claimed and the names that
// were rejected. Rejections never abort the rest of the registration.
type RegisterReport struct {
	Module   string
	Accepted []string
	Rejected []Rejection
}

// String renders the report the way it is shown to users of the load command.
func (r RegisterReport) String() string {
	parts := make([]string, 0, len(r.Accepted)+len(r.Rejected))
	parts = append(parts, r.Accepted...)
	for _, rej := range r.Rejected {
		parts = append(parts, rej.Name+" (Not accessible! "+rej.Reason+")")
	}
	return strings.Join(parts, ", ")
}

// Registry maps command names to modules. Lookups and mutations are guarded
// by one RWMutex so changes are visible to the router immediately.
type Registry struct {
	mu         sync.RWMutex
	commands   map[string]Module
	restricted map[string]Module
	hooks      []ConnectHook
	modules    map[string]Module

	log zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		commands:   make(map[string]Module),
		restricted: make(map[string]Module),
		modules:    make(map[string]Module),
		log:        log.With().Str("component", "registry").Logger(),
	}
}

// ModuleIdentity returns the stable identity of a module: its ModuleName if
// it implements NamedModule, otherwise its package path and type name.
func ModuleIdentity(m Module) string {
	if named, ok := m.(NamedModule); ok {
		return named.ModuleName()
	}
	t := reflect.TypeOf(m)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

func moduleTypeName(m Module) string {
	if named, ok := m.(NamedModule); ok {
		name := named.ModuleName()
		if idx := strings.LastIndex(name, "."); idx >= 0 {
			name = name[idx+1:]
		}
		return name
	}
	t := reflect.TypeOf(m)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// Namespace derives the namespace of a module from its type name by
// stripping the "Module" suffix and lowercasing. ok is false when the type
// name does not follow that convention.
func Namespace(m Module) (ns string, ok bool) {
	name := moduleTypeName(m)
	if !strings.HasSuffix(name, moduleSuffix) || len(name) == len(moduleSuffix) {
		return "", false
	}
	return strings.ToLower(strings.TrimSuffix(name, moduleSuffix)), true
}

// Register claims every command name the module declares. A name already
// owned by a different module is claimed under "<namespace>:<name>" instead.
// Registering a module whose identity is already loaded replaces the old
// registration.
func (r *Registry) Register(m Module) RegisterReport {
	id := ModuleIdentity(m)
	report := RegisterReport{Module: id}

	r.mu.Lock()
	r.unregisterLocked(id)
	r.claimLocked(r.commands, m, id, m.Commands(), &report)
	r.claimLocked(r.restricted, m, id, m.RestrictedCommands(), &report)
	if hook, ok := m.(ConnectHook); ok {
		r.hooks = append(r.hooks, hook)
	}
	r.modules[id] = m
	r.mu.Unlock()

	for _, rej := range report.Rejected {
		r.log.Warn().
			Str("module", id).
			Str("command", rej.Name).
			Str("reason", rej.Reason).
			Msg("Rejected command name")
	}
	r.log.Info().
		Str("module", id).
		Strs("commands", report.Accepted).
		Msg("Registered module")
	return report
}

func (r *Registry) claimLocked(table map[string]Module, m Module, id string, names []string, report *RegisterReport) {
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if strings.Contains(name, NamespaceSeparator) {
			report.Rejected = append(report.Rejected, Rejection{Name: name, Reason: "Remove colon in name"})
			continue
		}
		key := name
		if owner, ok := table[key]; ok && ModuleIdentity(owner) != id {
			ns, ok := Namespace(m)
			if !ok {
				report.Rejected = append(report.Rejected, Rejection{
					Name:   name,
					Reason: "Duplicate exists and module name does not end in " + moduleSuffix,
				})
				continue
			}
			key = ns + NamespaceSeparator + name
			if owner, ok := table[key]; ok && ModuleIdentity(owner) != id {
				report.Rejected = append(report.Rejected, Rejection{
					Name:   name,
					Reason: "Namespaced name " + key + " is owned by " + ModuleIdentity(owner),
				})
				continue
			}
		}
		table[key] = m
		report.Accepted = append(report.Accepted, key)
	}
}

// Unregister removes every command key and connect hook owned by the
// module's identity and returns the removed keys.
func (r *Registry) Unregister(m Module) []string {
	return r.UnregisterIdentity(ModuleIdentity(m))
}

// UnregisterIdentity is Unregister for a known identity.
func (r *Registry) UnregisterIdentity(id string) []string {
	r.mu.Lock()
	removed := r.unregisterLocked(id)
	r.mu.Unlock()

	if len(removed) > 0 {
		r.log.Info().
			Str("module", id).
			Strs("commands", removed).
			Msg("Unregistered module")
	}
	return removed
}

func (r *Registry) unregisterLocked(id string) []string {
	var removed []string
	for _, table := range []map[string]Module{r.commands, r.restricted} {
		for key, owner := range table {
			if ModuleIdentity(owner) == id {
				delete(table, key)
				removed = append(removed, key)
			}
		}
	}
	r.hooks = slices.DeleteFunc(r.hooks, func(h ConnectHook) bool {
		return ModuleIdentity(h) == id
	})
	delete(r.modules, id)
	slices.Sort(removed)
	return removed
}

// Resolution is the outcome of resolving a typed command name.
type Resolution struct {
	Module Module
	// Command is the bare command name with any namespace stripped.
	Command    string
	Restricted bool
}

// Resolve maps a candidate command name to a module. It tries the
// unrestricted table, then the restricted table, then, for names of the form
// "namespace:name", both tables again with the bare name, accepting the
// match only if the module's namespace equals the given one.
func (r *Registry) Resolve(name string) (Resolution, bool) {
	name = strings.ToLower(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	m, restricted, ok := r.lookupLocked(name)
	if !ok {
		ns, bare, found := strings.Cut(name, NamespaceSeparator)
		if !found {
			return Resolution{}, false
		}
		m, restricted, ok = r.lookupLocked(bare)
		if !ok {
			return Resolution{}, false
		}
		if modNS, valid := Namespace(m); !valid || modNS != ns {
			return Resolution{}, false
		}
		name = bare
	}
	if _, bare, found := strings.Cut(name, NamespaceSeparator); found {
		name = bare
	}
	return Resolution{Module: m, Command: name, Restricted: restricted}, true
}

func (r *Registry) lookupLocked(name string) (Module, bool, bool) {
	if m, ok := r.commands[name]; ok {
		return m, false, true
	}
	if m, ok := r.restricted[name]; ok {
		return m, true, true
	}
	return nil, false, false
}

// Find returns the module owning a command key in either table.
func (r *Registry) Find(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, _, ok := r.lookupLocked(strings.ToLower(name))
	return m, ok
}

// Commands returns the sorted unrestricted command keys.
func (r *Registry) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.commands)
}

// RestrictedCommands returns the sorted restricted command keys.
func (r *Registry) RestrictedCommands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.restricted)
}

// CommandsOf returns the unrestricted and restricted keys owned by identity.
func (r *Registry) CommandsOf(id string) (commands, restricted []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for key, owner := range r.commands {
		if ModuleIdentity(owner) == id {
			commands = append(commands, key)
		}
	}
	for key, owner := range r.restricted {
		if ModuleIdentity(owner) == id {
			restricted = append(restricted, key)
		}
	}
	slices.Sort(commands)
	slices.Sort(restricted)
	return commands, restricted
}

// Modules returns the loaded modules ordered by identity.
func (r *Registry) Modules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := sortedKeys(r.modules)
	out := make([]Module, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.modules[id])
	}
	return out
}

// Loaded reports whether a module with the given identity is registered.
func (r *Registry) Loaded(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.modules[id]
	return ok
}

// ConnectHooks returns the connect hooks in registration order.
func (r *Registry) ConnectHooks() []ConnectHook {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.hooks)
}

func sortedKeys(m map[string]Module) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
