// Package store persists small preferences encrypted at rest.
//
// Entries live in a YAML file next to a random master key. Key names are
// encrypted deterministically so lookups need no decryption, and each value
// is sealed with its encrypted key name as associated data so values cannot
// be swapped between keys.
package store

import (
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
	"gopkg.in/yaml.v3"
)

const (
	masterKeySize = 32
	fileVersion   = 1
)

var (
	// ErrCorrupt is returned when an entry fails authentication.
	ErrCorrupt = errors.New("preference entry failed authentication")
	// ErrBadMasterKey is returned when the key file has the wrong size.
	ErrBadMasterKey = errors.New("invalid master key file")
)

type prefsFile struct {
	Version int               `yaml:"version"`
	Entries map[string]string `yaml:"entries"`
}

// Prefs is an encrypted string key/value store backed by one file.
// It is safe for concurrent use; the last write wins.
type Prefs struct {
	mu        sync.Mutex
	path      string
	nameMAC   []byte
	nameAEAD  cipher.AEAD
	valueAEAD cipher.AEAD
	entries   map[string]string

	listenersMu sync.Mutex
	listeners   []func(key string)
}

// Open loads (or creates) the preference set name in dir. The files are
// name.yaml and name.key, both mode 0600.
func Open(dir, name string) (*Prefs, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	master, err := loadMasterKey(filepath.Join(dir, name+".key"))
	if err != nil {
		return nil, err
	}

	p := &Prefs{
		path:    filepath.Join(dir, name+".yaml"),
		entries: make(map[string]string),
	}
	if err := p.deriveKeys(master); err != nil {
		return nil, err
	}
	if err := p.load(); err != nil {
		return nil, err
	}
	return p, nil
}

func loadMasterKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != masterKeySize {
			return nil, fmt.Errorf("%w: %s", ErrBadMasterKey, path)
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read master key: %w", err)
	}

	key = make([]byte, masterKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate master key: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}
	if _, err := f.Write(key); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write master key: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to write master key: %w", err)
	}
	return key, nil
}

func (p *Prefs) deriveKeys(master []byte) error {
	subkey := func(info string, size int) ([]byte, error) {
		out := make([]byte, size)
		r := hkdf.New(sha256.New, master, nil, []byte(info))
		if _, err := io.ReadFull(r, out); err != nil {
			return nil, fmt.Errorf("failed to derive %s key: %w", info, err)
		}
		return out, nil
	}

	var err error
	if p.nameMAC, err = subkey("oneclick-vpn prefs name mac", sha256.Size); err != nil {
		return err
	}
	nameKey, err := subkey("oneclick-vpn prefs name", chacha20poly1305.KeySize)
	if err != nil {
		return err
	}
	valueKey, err := subkey("oneclick-vpn prefs value", chacha20poly1305.KeySize)
	if err != nil {
		return err
	}
	if p.nameAEAD, err = chacha20poly1305.New(nameKey); err != nil {
		return err
	}
	if p.valueAEAD, err = chacha20poly1305.NewX(valueKey); err != nil {
		return err
	}
	return nil
}

func (p *Prefs) load() error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read preferences: %w", err)
	}
	var f prefsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse preferences: %w", err)
	}
	if f.Version != fileVersion {
		return fmt.Errorf("unsupported preferences version %d", f.Version)
	}
	if f.Entries != nil {
		p.entries = f.Entries
	}
	return nil
}

// Get returns the value stored under key.
func (p *Prefs) Get(key string) (string, bool, error) {
	name := p.sealName(key)

	p.mu.Lock()
	sealed, ok := p.entries[name]
	p.mu.Unlock()
	if !ok {
		return "", false, nil
	}

	value, err := p.openValue(name, sealed)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key and persists the file.
func (p *Prefs) Set(key, value string) error {
	name := p.sealName(key)
	sealed, err := p.sealValue(name, value)
	if err != nil {
		return err
	}

	p.mu.Lock()
	prev, had := p.entries[name]
	p.entries[name] = sealed
	if err := p.saveLocked(); err != nil {
		if had {
			p.entries[name] = prev
		} else {
			delete(p.entries, name)
		}
		p.mu.Unlock()
		return err
	}
	p.mu.Unlock()

	p.notify(key)
	return nil
}

// OnChange registers fn to run after every successful Set.
func (p *Prefs) OnChange(fn func(key string)) {
	p.listenersMu.Lock()
	p.listeners = append(p.listeners, fn)
	p.listenersMu.Unlock()
}

func (p *Prefs) notify(key string) {
	p.listenersMu.Lock()
	listeners := append([]func(string){}, p.listeners...)
	p.listenersMu.Unlock()
	for _, fn := range listeners {
		fn(key)
	}
}

// saveLocked writes the file atomically. Caller holds p.mu.
func (p *Prefs) saveLocked() error {
	data, err := yaml.Marshal(prefsFile{Version: fileVersion, Entries: p.entries})
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p.path), filepath.Base(p.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), p.path); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

// sealName encrypts key deterministically: the nonce is a MAC of the name.
func (p *Prefs) sealName(key string) string {
	mac := hmac.New(sha256.New, p.nameMAC)
	mac.Write([]byte(key))
	nonce := mac.Sum(nil)[:chacha20poly1305.NonceSize]
	out := p.nameAEAD.Seal(nonce, nonce, []byte(key), nil)
	return base64.RawURLEncoding.EncodeToString(out)
}

func (p *Prefs) sealValue(name, value string) (string, error) {
	nonce := make([]byte, chacha20poly1305.NonceSizeX, chacha20poly1305.NonceSizeX+len(value)+p.valueAEAD.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	out := p.valueAEAD.Seal(nonce, nonce, []byte(value), []byte(name))
	return base64.StdEncoding.EncodeToString(out), nil
}

func (p *Prefs) openValue(name, sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil || len(raw) < chacha20poly1305.NonceSizeX {
		return "", ErrCorrupt
	}
	nonce, ct := raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:]
	plain, err := p.valueAEAD.Open(nil, nonce, ct, []byte(name))
	if err != nil {
		return "", ErrCorrupt
	}
	return string(plain), nil
}
