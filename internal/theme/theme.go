// Package theme tracks dark/light mode and the user's manual override.
// The "system prefers dark" and "reduced motion" signals are read-only
// inputs owned by the host environment.
package theme

import "sync"

// Prefs is the serializable theme selection.
type Prefs struct {
	IsDarkMode          bool `json:"isDarkMode"`
	HasManualPreference bool `json:"hasManualPreference"`
}

// Info describes the effective theme.
type Info struct {
	IsDark            bool   `json:"isDark"`
	Mode              string `json:"mode"` // "auto", "dark", or "light"
	SystemPrefersDark bool   `json:"systemPrefersDark"`
}

// Accessibility reports environment accessibility signals.
type Accessibility struct {
	PrefersReducedMotion bool `json:"prefersReducedMotion"`
}

// Manager holds theme state. A manual preference, once set, shields the
// local theme from system-preference changes and from broadcasts out of
// other instances.
type Manager struct {
	mu            sync.Mutex
	isDark        bool
	manual        bool
	systemDark    bool
	reducedMotion bool
	onChange      func()
}

// NewManager creates a manager following system preference.
func NewManager() *Manager {
	return &Manager{}
}

// SetOnChange registers a callback invoked after every state change.
func (m *Manager) SetOnChange(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

func (m *Manager) notify() {
	m.mu.Lock()
	fn := m.onChange
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// SetTheme sets dark mode as an explicit user choice.
func (m *Manager) SetTheme(dark bool) {
	m.mu.Lock()
	m.isDark = dark
	m.manual = true
	m.mu.Unlock()
	m.notify()
}

// Toggle flips dark mode, recording a manual preference.
func (m *Manager) Toggle() {
	m.mu.Lock()
	m.isDark = !m.isDark
	m.manual = true
	m.mu.Unlock()
	m.notify()
}

// UseSystemPreference drops any manual preference and adopts the
// system's current choice.
func (m *Manager) UseSystemPreference() {
	m.mu.Lock()
	m.manual = false
	m.isDark = m.systemDark
	m.mu.Unlock()
	m.notify()
}

// SetSystemPreference records the environment's prefers-dark signal.
// The effective theme follows it only while no manual preference is set.
func (m *Manager) SetSystemPreference(dark bool) {
	m.mu.Lock()
	m.systemDark = dark
	changed := false
	if !m.manual && m.isDark != dark {
		m.isDark = dark
		changed = true
	}
	m.mu.Unlock()
	if changed {
		m.notify()
	}
}

// SetReducedMotion records the environment's reduced-motion signal.
func (m *Manager) SetReducedMotion(reduced bool) {
	m.mu.Lock()
	m.reducedMotion = reduced
	m.mu.Unlock()
}

// ApplyRemote applies a theme broadcast from another instance. It is
// dropped when a local manual preference exists, so an explicit in-app
// choice is never silently overwritten by a stale broadcast.
func (m *Manager) ApplyRemote(dark bool) bool {
	m.mu.Lock()
	if m.manual {
		m.mu.Unlock()
		return false
	}
	m.isDark = dark
	m.mu.Unlock()
	m.notify()
	return true
}

// Restore hydrates theme state from a persisted snapshot. A stored
// selection counts as a manual preference; nil falls back to the system
// preference.
func (m *Manager) Restore(p *Prefs) {
	if p == nil {
		m.UseSystemPreference()
		return
	}
	m.mu.Lock()
	m.isDark = p.IsDarkMode
	m.manual = true
	m.mu.Unlock()
	m.notify()
}

// IsDarkMode reports the effective theme.
func (m *Manager) IsDarkMode() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isDark
}

// HasManualPreference reports whether the user chose a theme explicitly.
func (m *Manager) HasManualPreference() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.manual
}

// Prefs returns the serializable selection.
func (m *Manager) Prefs() Prefs {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Prefs{IsDarkMode: m.isDark, HasManualPreference: m.manual}
}

// Info describes the effective theme for display.
func (m *Manager) Info() Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	mode := "auto"
	if m.manual {
		if m.isDark {
			mode = "dark"
		} else {
			mode = "light"
		}
	}
	return Info{IsDark: m.isDark, Mode: mode, SystemPrefersDark: m.systemDark}
}

// AccessibilityInfo reports environment accessibility signals.
func (m *Manager) AccessibilityInfo() Accessibility {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Accessibility{PrefersReducedMotion: m.reducedMotion}
}
