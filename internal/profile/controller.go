package profile

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/cbseprep/internal/kv"
	"github.com/abhisek/cbseprep/internal/validate"
)

// Controller gates the app behind onboarding and tracks the theme. The
// durable store survives restarts; the session store lives for one run.
type Controller struct {
	durable kv.Store
	session kv.Store
	logger  *zap.Logger

	phase   Phase
	profile UserProfile
	theme   Theme
	editing bool
}

// NewController loads persisted state and picks the starting phase.
func NewController(durable, session kv.Store, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{durable: durable, session: session, logger: logger}
	c.load()
	return c
}

func (c *Controller) load() {
	c.theme = LoadTheme(c.durable, c.logger)

	if p, ok := LoadProfile(c.durable, c.logger); ok {
		c.profile = p
		c.phase = PhaseMain
		return
	}

	if v, ok, _ := c.session.Get(KeySplashShown); ok && v == "true" {
		c.phase = PhaseOnboarding
		return
	}

	c.phase = PhaseSplash
	if err := c.session.Set(KeySplashShown, "true"); err != nil {
		c.logger.Warn("mark splash shown", zap.Error(err))
	}
}

func (c *Controller) Phase() Phase         { return c.phase }
func (c *Controller) Profile() UserProfile { return c.profile }
func (c *Controller) Theme() Theme         { return c.theme }
func (c *Controller) Editing() bool        { return c.editing }

// SplashDone advances from splash to onboarding. Other phases are unchanged.
func (c *Controller) SplashDone() {
	if c.phase == PhaseSplash {
		c.phase = PhaseOnboarding
	}
}

// CompleteOnboarding validates p, persists it and enters the main phase.
func (c *Controller) CompleteOnboarding(p UserProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p = p.Normalize()

	if err := SaveProfile(c.durable, p); err != nil {
		c.logger.Error("save profile", zap.Error(err))
		return err
	}

	c.profile = p
	c.phase = PhaseMain
	c.editing = false
	c.logger.Info("onboarding complete",
		zap.Int("class", p.ClassLevel),
		zap.Strings("subjects", p.Subjects))
	return nil
}

// EditPreferences re-enters onboarding with the current profile as the
// starting values.
func (c *Controller) EditPreferences() {
	if c.phase != PhaseMain {
		return
	}
	c.editing = true
	c.phase = PhaseOnboarding
}

// CancelEdit returns to main without changes when editing preferences.
func (c *Controller) CancelEdit() {
	if c.editing {
		c.editing = false
		c.phase = PhaseMain
	}
}

// ToggleTheme flips and persists the theme. The new theme is returned even
// when saving fails.
func (c *Controller) ToggleTheme() (Theme, error) {
	c.theme = c.theme.Toggle()
	if err := c.durable.Set(KeyTheme, string(c.theme)); err != nil {
		c.logger.Warn("save theme", zap.Error(err))
		return c.theme, fmt.Errorf("save theme: %w", err)
	}
	return c.theme, nil
}

// LoadTheme reads the persisted theme. Missing or unknown values give
// DefaultTheme.
func LoadTheme(store kv.Store, logger *zap.Logger) Theme {
	v, ok, err := store.Get(KeyTheme)
	if err != nil {
		logger.Warn("read theme", zap.Error(err))
		return DefaultTheme
	}
	if !ok {
		return DefaultTheme
	}
	t, err := ParseTheme(v)
	if err != nil {
		logger.Warn("ignoring stored theme", zap.String("value", v))
		return DefaultTheme
	}
	return t
}

// SaveTheme persists t.
func SaveTheme(store kv.Store, t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	return store.Set(KeyTheme, string(t))
}

// LoadProfile reads a complete profile. ok is false when the student has not
// onboarded or any field is missing or malformed.
func LoadProfile(store kv.Store, logger *zap.Logger) (UserProfile, bool) {
	get := func(key string) (string, bool) {
		v, ok, err := store.Get(key)
		if err != nil {
			logger.Warn("read profile", zap.String("key", key), zap.Error(err))
			return "", false
		}
		return v, ok
	}

	if v, ok := get(KeyOnboarded); !ok || v != "true" {
		return UserProfile{}, false
	}

	name, ok := get(KeyName)
	if !ok || strings.TrimSpace(name) == "" {
		logger.Info("profile has no name")
		return UserProfile{}, false
	}

	rawClass, ok := get(KeyClass)
	if !ok {
		logger.Info("profile has no class")
		return UserProfile{}, false
	}
	class, err := strconv.Atoi(strings.TrimSpace(rawClass))
	if err != nil {
		logger.Info("profile class is malformed", zap.String("value", rawClass))
		return UserProfile{}, false
	}

	rawSubjects, ok := get(KeySubjects)
	if !ok {
		logger.Info("profile has no subjects")
		return UserProfile{}, false
	}
	if err := validate.JSON(subjectsSchema, []byte(rawSubjects)); err != nil {
		logger.Info("profile subjects are malformed", zap.Error(err))
		return UserProfile{}, false
	}
	var subjects []string
	if err := json.Unmarshal([]byte(rawSubjects), &subjects); err != nil {
		return UserProfile{}, false
	}

	p := UserProfile{Name: name, ClassLevel: class, Subjects: subjects}
	if err := p.Validate(); err != nil {
		logger.Info("stored profile is invalid", zap.Error(err))
		return UserProfile{}, false
	}
	return p.Normalize(), true
}

// SaveProfile writes p. The onboarded flag is written last so a partial
// write reads back as not onboarded.
func SaveProfile(store kv.Store, p UserProfile) error {
	subjects, err := json.Marshal(p.Subjects)
	if err != nil {
		return fmt.Errorf("marshal subjects: %w", err)
	}

	writes := []struct{ key, value string }{
		{KeyName, p.Name},
		{KeyClass, strconv.Itoa(p.ClassLevel)},
		{KeySubjects, string(subjects)},
		{KeyOnboarded, "true"},
	}
	for _, w := range writes {
		if err := store.Set(w.key, w.value); err != nil {
			return fmt.Errorf("save %s: %w", w.key, err)
		}
	}
	return nil
}

// ClearProfile removes the onboarding profile. Theme and chat sessions are
// kept.
func ClearProfile(store kv.Store) error {
	for _, key := range []string{KeyOnboarded, KeyName, KeyClass, KeySubjects} {
		if err := store.Remove(key); err != nil {
			return fmt.Errorf("remove %s: %w", key, err)
		}
	}
	return nil
}
