package theme

import "testing"

func TestFollowsSystemUntilManualChoice(t *testing.T) {
	m := NewManager()

	m.SetSystemPreference(true)
	if !m.IsDarkMode() {
		t.Error("should follow system preference when no manual choice exists")
	}

	m.SetSystemPreference(false)
	if m.IsDarkMode() {
		t.Error("should track system preference changes")
	}

	m.SetTheme(true)
	if !m.HasManualPreference() {
		t.Error("SetTheme should record a manual preference")
	}

	// Manual preference shields against system changes.
	m.SetSystemPreference(false)
	if !m.IsDarkMode() {
		t.Error("system change overrode manual preference")
	}
}

func TestToggleRecordsManualPreference(t *testing.T) {
	m := NewManager()
	m.Toggle()
	if !m.IsDarkMode() || !m.HasManualPreference() {
		t.Errorf("after toggle: dark=%v manual=%v", m.IsDarkMode(), m.HasManualPreference())
	}
	m.Toggle()
	if m.IsDarkMode() {
		t.Error("second toggle should flip back to light")
	}
}

func TestUseSystemPreferenceDropsManualChoice(t *testing.T) {
	m := NewManager()
	m.SetSystemPreference(true)
	m.SetTheme(false)

	m.UseSystemPreference()
	if m.HasManualPreference() {
		t.Error("manual preference survived UseSystemPreference")
	}
	if !m.IsDarkMode() {
		t.Error("should adopt the system's current choice")
	}
}

func TestApplyRemoteRespectsManualGuard(t *testing.T) {
	m := NewManager()

	if !m.ApplyRemote(true) {
		t.Error("broadcast should apply when no manual preference exists")
	}
	if !m.IsDarkMode() {
		t.Error("broadcast did not change the theme")
	}

	m.SetTheme(false)
	if m.ApplyRemote(true) {
		t.Error("broadcast should be dropped when a manual preference exists")
	}
	if m.IsDarkMode() {
		t.Error("dropped broadcast still changed the theme")
	}
}

func TestRestore(t *testing.T) {
	t.Run("nil falls back to system", func(t *testing.T) {
		m := NewManager()
		m.SetSystemPreference(true)
		m.Restore(nil)
		if m.HasManualPreference() {
			t.Error("nil restore should not set a manual preference")
		}
		if !m.IsDarkMode() {
			t.Error("nil restore should adopt system preference")
		}
	})

	t.Run("stored selection counts as manual", func(t *testing.T) {
		m := NewManager()
		m.Restore(&Prefs{IsDarkMode: true})
		if !m.IsDarkMode() || !m.HasManualPreference() {
			t.Errorf("restore: dark=%v manual=%v", m.IsDarkMode(), m.HasManualPreference())
		}
	})
}

func TestInfo(t *testing.T) {
	m := NewManager()
	m.SetSystemPreference(true)

	info := m.Info()
	if info.Mode != "auto" || !info.IsDark || !info.SystemPrefersDark {
		t.Errorf("auto info = %+v", info)
	}

	m.SetTheme(false)
	info = m.Info()
	if info.Mode != "light" || info.IsDark {
		t.Errorf("light info = %+v", info)
	}

	m.SetTheme(true)
	if m.Info().Mode != "dark" {
		t.Errorf("dark info = %+v", m.Info())
	}
}

func TestOnChangeCallback(t *testing.T) {
	m := NewManager()
	calls := 0
	m.SetOnChange(func() { calls++ })

	m.Toggle()
	m.SetTheme(true)
	m.UseSystemPreference()
	if calls != 3 {
		t.Errorf("onChange fired %d times, want 3", calls)
	}

	// Unchanged system preference must not fire.
	calls = 0
	m.SetSystemPreference(true)
	m.SetSystemPreference(true)
	if calls != 1 {
		t.Errorf("system preference onChange fired %d times, want 1", calls)
	}

	m.SetOnChange(nil)
	m.Toggle() // must not panic
}

func TestAccessibilityInfo(t *testing.T) {
	m := NewManager()
	if m.AccessibilityInfo().PrefersReducedMotion {
		t.Error("reduced motion should default off")
	}
	m.SetReducedMotion(true)
	if !m.AccessibilityInfo().PrefersReducedMotion {
		t.Error("reduced motion signal lost")
	}
}
