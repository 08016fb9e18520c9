package session

import (
	"errors"
	"fmt"
	"strings"
)

const DefaultLanguage = "en"

// Prefs is a snapshot of the client preferences.
type Prefs struct {
	Debug    bool
	Language string
}

// Preferences stores the debug flag and UI language next to the session.
type Preferences struct {
	storage Storage
	subs    listeners[Prefs]
}

func NewPreferences(storage Storage) *Preferences {
	return &Preferences{storage: storage}
}

func (p *Preferences) Get() (Prefs, error) {
	debug, _, err := p.storage.Get(KeyDebug)
	if err != nil {
		return Prefs{}, fmt.Errorf("load debug flag: %w", err)
	}
	lang, ok, err := p.storage.Get(KeyLanguage)
	if err != nil {
		return Prefs{}, fmt.Errorf("load language: %w", err)
	}
	if !ok || lang == "" {
		lang = DefaultLanguage
	}
	return Prefs{Debug: debug == "1", Language: lang}, nil
}

// SetDebug stores "1" when on and removes the key when off.
func (p *Preferences) SetDebug(on bool) error {
	var err error
	if on {
		err = p.storage.Set(map[string]string{KeyDebug: "1"})
	} else {
		err = p.storage.Delete(KeyDebug)
	}
	if err != nil {
		return fmt.Errorf("save debug flag: %w", err)
	}
	return p.notify()
}

func (p *Preferences) SetLanguage(lang string) error {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return errors.New("save language: empty language")
	}
	if err := p.storage.Set(map[string]string{KeyLanguage: lang}); err != nil {
		return fmt.Errorf("save language: %w", err)
	}
	return p.notify()
}

// Subscribe calls fn after every preference change.
func (p *Preferences) Subscribe(fn func(Prefs)) (unsubscribe func()) {
	return p.subs.add(fn)
}

func (p *Preferences) notify() error {
	prefs, err := p.Get()
	if err != nil {
		return err
	}
	p.subs.emit(prefs)
	return nil
}

// IsRTL reports whether lang is written right to left. Only Hebrew is
// supported among RTL languages.
func IsRTL(lang string) bool {
	base, _, _ := strings.Cut(strings.ToLower(lang), "-")
	return base == "he"
}
