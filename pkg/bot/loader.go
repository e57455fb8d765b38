// Copyright 2024-2026 Aiku AI

package bot

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// ErrUnknownModule is returned when no factory matches a module name.
var ErrUnknownModule = errors.New("unknown module")

// ModuleFactory builds a fresh module instance for a network.
type ModuleFactory func(network string) (Module, error)

// LoaderModule loads and unloads modules at runtime and lists the
// registered commands. It is registered by NewClient and cannot be unloaded.
type LoaderModule struct {
	registry  *Registry
	factories map[string]ModuleFactory
	network   string
	log       zerolog.Logger
}

var (
	_ Module       = (*LoaderModule)(nil)
	_ HelpProvider = (*LoaderModule)(nil)
)

// NewLoaderModule creates a loader over the given factory table. Factory
// keys are normalized with NormalizeModuleName.
func NewLoaderModule(registry *Registry, factories map[string]ModuleFactory, network string, log zerolog.Logger) *LoaderModule {
	table := make(map[string]ModuleFactory, len(factories))
	for name, f := range factories {
		table[NormalizeModuleName(name)] = f
	}
	return &LoaderModule{
		registry:  registry,
		factories: table,
		network:   network,
		log:       log.With().Str("component", "loader").Logger(),
	}
}

// NormalizeModuleName maps the accepted spellings of a module name to its
// factory key: "Dice", "dice", "DiceModule" and "bot.DiceModule" all become
// "dice".
func NormalizeModuleName(name string) string {
	name = strings.TrimSpace(name)
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ToLower(name)
	if trimmed := strings.TrimSuffix(name, strings.ToLower(moduleSuffix)); trimmed != "" {
		name = trimmed
	}
	return name
}

// Available returns the sorted names the loader can instantiate.
func (l *LoaderModule) Available() []string {
	names := make([]string, 0, len(l.factories))
	for name := range l.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Instantiate builds a new instance of the named module without registering it.
func (l *LoaderModule) Instantiate(name string) (Module, error) {
	key := NormalizeModuleName(name)
	factory, ok := l.factories[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, name)
	}
	m, err := factory(l.network)
	if err != nil {
		return nil, fmt.Errorf("failed to construct module %s: %w", key, err)
	}
	return m, nil
}

// Load instantiates and registers the named module. Loading a module that
// is already loaded replaces it with a fresh instance.
func (l *LoaderModule) Load(name string) (RegisterReport, error) {
	m, err := l.Instantiate(name)
	if err != nil {
		return RegisterReport{}, err
	}
	return l.registry.Register(m), nil
}

// Unload removes every command of the named module and returns the removed
// command keys.
func (l *LoaderModule) Unload(name string) ([]string, error) {
	m, err := l.Instantiate(name)
	if err != nil {
		return nil, err
	}
	id := ModuleIdentity(m)
	if id == ModuleIdentity(l) {
		return nil, fmt.Errorf("the loader cannot be unloaded")
	}
	if !l.registry.Loaded(id) {
		return nil, fmt.Errorf("module %s is not loaded", NormalizeModuleName(name))
	}
	return l.registry.UnregisterIdentity(id), nil
}

// Reload makes the set of loaded modules match names: modules not listed are
// unloaded, listed modules not yet loaded are loaded. The loader itself is
// never removed. Unknown names are logged and skipped.
func (l *LoaderModule) Reload(names []string) (added, removed int) {
	want := make(map[string]string, len(names))
	for _, name := range names {
		m, err := l.Instantiate(name)
		if err != nil {
			l.log.Warn().Err(err).Str("module", name).Msg("Skipping module in reload")
			continue
		}
		want[ModuleIdentity(m)] = name
	}

	self := ModuleIdentity(l)
	for _, m := range l.registry.Modules() {
		id := ModuleIdentity(m)
		if id == self {
			continue
		}
		if _, ok := want[id]; !ok {
			l.registry.UnregisterIdentity(id)
			removed++
		}
	}
	for id, name := range want {
		if l.registry.Loaded(id) {
			continue
		}
		if _, err := l.Load(name); err != nil {
			l.log.Warn().Err(err).Str("module", name).Msg("Failed to load module in reload")
			continue
		}
		added++
	}

	l.log.Info().
		Int("added", added).
		Int("removed", removed).
		Int("total", len(l.registry.Modules())).
		Msg("Modules reloaded")
	return added, removed
}

func (l *LoaderModule) Commands() []string {
	return []string{"commands"}
}

func (l *LoaderModule) RestrictedCommands() []string {
	return []string{"load", "unload", "allcommands", "admincommands"}
}

func (l *LoaderModule) HandleCommand(evt *CommandEvent) error {
	switch evt.Command {
	case "load":
		report, err := l.Load(evt.Args)
		if err != nil {
			evt.Reply("Loading failed: " + err.Error())
			return nil
		}
		evt.Reply("Loaded commands: " + report.String())
	case "unload":
		removed, err := l.Unload(evt.Args)
		if err != nil {
			evt.Reply("Unloading failed: " + err.Error())
			return nil
		}
		evt.Reply("Unloaded successfully: " + strings.Join(removed, ", "))
	case "commands":
		l.showCommands(evt)
	case "admincommands":
		l.showRestrictedCommands(evt)
	case "allcommands":
		l.showCommands(evt)
		l.showRestrictedCommands(evt)
	}
	return nil
}

func (l *LoaderModule) showCommands(evt *CommandEvent) {
	evt.Reply("Available commands: " + strings.Join(l.registry.Commands(), ", "))
}

func (l *LoaderModule) showRestrictedCommands(evt *CommandEvent) {
	evt.Reply("Admin commands: " + strings.Join(l.registry.RestrictedCommands(), ", "))
}

func (l *LoaderModule) Help(topic, prefix string) []string {
	switch topic {
	case "loader":
		return []string{"Loads and unloads modules at runtime."}
	case "load":
		return []string{"Loads the specified module. Short names (dice instead of DiceModule) are accepted."}
	case "unload":
		return []string{"Unloads the specified module. Short names (dice instead of DiceModule) are accepted."}
	case "commands":
		return []string{"Lists all non-admin commands currently registered."}
	case "allcommands":
		return []string{"Lists all commands currently registered."}
	case "admincommands":
		return []string{"Lists all admin commands currently registered."}
	}
	return nil
}
