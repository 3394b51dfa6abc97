package core

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

var registry = struct {
	sync.RWMutex
	kinds map[ModuleID]ModuleInfo
}{kinds: make(map[ModuleID]ModuleInfo)}

// RegisterModule records the kind described by instance.ModuleInfo().
// It panics on an empty ID, a nil constructor or a duplicate ID, so that a
// broken kind fails at program start. Call it from init().
func RegisterModule(instance Module) {
	info := instance.ModuleInfo()
	switch {
	case info.ID == "":
		panic("core: module ID must not be empty")
	case info.New == nil:
		panic(fmt.Sprintf("core: module %s has no constructor", info.ID))
	}

	registry.Lock()
	defer registry.Unlock()
	if _, dup := registry.kinds[info.ID]; dup {
		panic(fmt.Sprintf("core: module %s registered twice", info.ID))
	}
	registry.kinds[info.ID] = info
}

// GetModule looks up a kind by ID.
func GetModule(id string) (ModuleInfo, bool) {
	registry.RLock()
	defer registry.RUnlock()
	info, ok := registry.kinds[ModuleID(id)]
	return info, ok
}

// GetModules returns every registered kind ordered by ID.
func GetModules() []ModuleInfo {
	return filterModules(func(ModuleInfo) bool { return true })
}

// GetModulesByNamespace returns the kinds whose ID lives under namespace
// ("job" matches "job.command" but not "jobs.x").
func GetModulesByNamespace(namespace string) []ModuleInfo {
	return filterModules(func(info ModuleInfo) bool {
		return info.ID.Namespace() == namespace && info.ID.Name() != string(info.ID)
	})
}

func filterModules(keep func(ModuleInfo) bool) []ModuleInfo {
	registry.RLock()
	defer registry.RUnlock()

	var out []ModuleInfo
	for _, id := range slices.Sorted(maps.Keys(registry.kinds)) {
		if info := registry.kinds[id]; keep(info) {
			out = append(out, info)
		}
	}
	return out
}

// resetRegistry clears the registry. Only for testing.
func resetRegistry() {
	registry.Lock()
	defer registry.Unlock()
	registry.kinds = make(map[ModuleID]ModuleInfo)
}
